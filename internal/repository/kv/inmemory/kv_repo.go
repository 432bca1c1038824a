package inmemory

import (
	"context"
	"sync"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"go.uber.org/zap"
)

type KVStorage struct {
	storage map[string]string
	mtx     *sync.RWMutex
	writes  int
}

func NewKVStorage() *KVStorage {
	return &KVStorage{
		storage: make(map[string]string),
		mtx:     &sync.RWMutex{},
	}
}

func (s *KVStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return value, nil
}

func (s *KVStorage) Set(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[key] = value
	s.writes++
	logger.Debug("Repository: Значение записано", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Writes - число успешных записей, нужно тестам воркера
func (s *KVStorage) Writes() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.writes
}
