package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Storage struct {
	client *redis.Client
	prefix string
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Repository: Неудачная проверка ping Redis", err, zap.String("addr", cfg.Addr))
		client.Close()
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к Redis", zap.String("addr", cfg.Addr))
	return NewWithClient(client, cfg.Prefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) Close() {
	if err := s.client.Close(); err != nil {
		logger.Warn("Repository: Ошибка закрытия Redis", zap.Error(err))
		return
	}
	logger.Info("Repository: Соединение с Redis закрыто")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.Error("Repository: Неудачная проверка ping Redis", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()

	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать ключ", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return "", fmt.Errorf("чтение ключа %s: %w", key, err)
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	start := time.Now()

	// без TTL: снимок живёт, пока его не перезапишут
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		logger.Error("Repository: Не удалось записать ключ", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
