package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type SnapshotSaver interface {
	Save(context.Context, task.ListState) error
}

type Stats struct {
	Written   uint64 `json:"written"`
	Failed    uint64 `json:"failed"`
	Coalesced uint64 `json:"coalesced"`
}

// PersistWorker пишет снимки в фоне. В очереди не больше одного снимка:
// новый вытесняет ещё не записанный, поэтому старое состояние не может перезаписать новое.
type PersistWorker struct {
	saver   SnapshotSaver
	pending chan task.ListState
	done    chan struct{}

	timeout      time.Duration
	retries      uint64
	initialDelay time.Duration

	written   atomic.Uint64
	failed    atomic.Uint64
	coalesced atomic.Uint64
}

type Option func(*PersistWorker)

func WithTimeout(timeout time.Duration) Option {
	return func(w *PersistWorker) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}

func WithRetries(retries uint64) Option {
	return func(w *PersistWorker) {
		w.retries = retries
	}
}

func WithInitialDelay(delay time.Duration) Option {
	return func(w *PersistWorker) {
		if delay > 0 {
			w.initialDelay = delay
		}
	}
}

func NewPersistWorker(saver SnapshotSaver, opts ...Option) *PersistWorker {
	w := &PersistWorker{
		saver:        saver,
		pending:      make(chan task.ListState, 1),
		done:         make(chan struct{}),
		timeout:      5 * time.Second,
		retries:      3,
		initialDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit не блокирует: если предыдущий снимок ещё ждёт записи, он заменяется
func (w *PersistWorker) Submit(st task.ListState) {
	for {
		select {
		case w.pending <- st:
			return
		default:
		}

		select {
		case <-w.pending:
			w.coalesced.Add(1)
		default:
		}
	}
}

// Start крутится до отмены ctx, затем дописывает последний снимок и закрывает Done
func (w *PersistWorker) Start(ctx context.Context) {
	defer close(w.done)
	logger.Info("Worker: Фоновая запись снимков запущена",
		zap.Duration("timeout", w.timeout),
		zap.Uint64("retries", w.retries))

	for {
		select {
		case st := <-w.pending:
			w.persist(st)
		case <-ctx.Done():
			w.flush()
			logger.Info("Worker: Фоновая запись снимков остановлена",
				zap.Uint64("written", w.written.Load()),
				zap.Uint64("failed", w.failed.Load()))
			return
		}
	}
}

func (w *PersistWorker) Done() <-chan struct{} {
	return w.done
}

func (w *PersistWorker) Stats() Stats {
	return Stats{
		Written:   w.written.Load(),
		Failed:    w.failed.Load(),
		Coalesced: w.coalesced.Load(),
	}
}

func (w *PersistWorker) flush() {
	select {
	case st := <-w.pending:
		logger.Info("Worker: Запись последнего снимка перед остановкой")
		w.persist(st)
	default:
	}
}

// persist не зависит от ctx воркера: начатая запись доводится до успеха или исчерпания попыток
func (w *PersistWorker) persist(st task.ListState) {
	start := time.Now()
	attempts := 0

	operation := func() error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if err := w.saver.Save(attemptCtx, st); err != nil {
			logger.Warn("Worker: Ошибка записи снимка", zap.Int("attempt", attempts), zap.Error(err))
			return err
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.initialDelay
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithMaxRetries(policy, w.retries))
	if err != nil {
		w.failed.Add(1)
		logger.Error("Worker: Снимок не сохранён", fmt.Errorf("после %d попыток: %w", attempts, err),
			zap.Int("tasks", len(st.Tasks)))
		return
	}

	w.written.Add(1)
	logger.Debug("Worker: Снимок сохранён",
		zap.Int("tasks", len(st.Tasks)),
		zap.Int("attempts", attempts),
		zap.Duration("ms", time.Since(start)))
}
