package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("ключ не найден")

// KVStore - примитив хранилища ключ-значение, поверх которого лежит снимок списка.
// Get возвращает ErrNotFound, если ключа нет.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	HealthCheck(ctx context.Context) error
}
