package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskList/internal/config"
	"taskList/internal/handlers"
	"taskList/internal/logger"
	repo "taskList/internal/repository"
	"taskList/internal/repository/kv/file"
	"taskList/internal/repository/kv/inmemory"
	"taskList/internal/repository/kv/postgres"
	kvredis "taskList/internal/repository/kv/redis"
	"taskList/internal/repository/snapshot"
	"taskList/internal/service"
	"taskList/internal/worker"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	store     repo.KVStore
	service   *service.TaskListService
	worker    *worker.PersistWorker
	shutdowns []func() error // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	store, err := a.newStore(ctx)
	if err != nil {
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.store = store

	gateway := snapshot.NewGateway(store, a.config.Storage.Key)
	a.worker = worker.NewPersistWorker(gateway,
		worker.WithTimeout(a.config.Persistence.Timeout),
		worker.WithRetries(a.config.Persistence.Retries),
		worker.WithInitialDelay(a.config.Persistence.InitialDelay),
	)

	a.service = service.NewTaskListService(service.NewEngine(), gateway, a.worker)
	a.service.Initialize(ctx)

	handler := handlers.NewTaskHandler(a.service, store, a.worker)
	router := handlers.NewRouter(handler, handlers.RouterConfig{
		RequestTimeout: a.config.HTTP.RequestTimeout,
		RateLimit:      a.config.HTTP.RateLimit,
		AllowedOrigins: a.config.HTTP.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Приложение инициализировано",
		zap.String("storage", a.config.Storage.Type),
		zap.String("key", gateway.Key()))
	return nil
}

func (a *App) newStore(ctx context.Context) (repo.KVStore, error) {
	cfg := a.config.Storage

	switch cfg.Type {
	case config.StorageMemory:
		logger.Warn("Хранилище в памяти: состояние не переживёт перезапуск")
		return inmemory.NewKVStorage(), nil

	case config.StorageFile:
		store, err := file.New(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StorageRedis:
		store, err := kvredis.New(ctx, kvredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func() error {
			store.Close()
			return nil
		})
		return store, nil

	case config.StoragePostgres:
		store, err := postgres.New(ctx, postgres.Config{
			URL:            cfg.Database.URL,
			MaxConnections: cfg.Database.MaxConnections,
			MinConnections: cfg.Database.MinConnections,
			IdleTimeout:    cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func() error {
			store.Close()
			return nil
		})
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Type)
}

// Run блокируется до отмены ctx или падения сервера.
// При остановке сначала гасится HTTP, затем воркер дописывает последний снимок.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	serverErr := make(chan error, 1)

	var wg conc.WaitGroup
	wg.Go(func() {
		a.worker.Start(workerCtx)
	})
	wg.Go(func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	case err, ok := <-serverErr:
		if ok {
			logger.Error("Сервер остановился с ошибкой", err)
			runErr = fmt.Errorf("http сервер: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("остановка http сервера: %w", err))
	}

	stopWorker()
	wg.Wait()

	return multierr.Append(runErr, a.Shutdown())
}

// Shutdown выполняет зарегистрированные функции в обратном порядке
func (a *App) Shutdown() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}
