package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SnapshotLoader interface {
	Load(context.Context) (task.ListState, bool)
}

// Persister принимает состояние на фоновую запись и не блокирует вызывающего
type Persister interface {
	Submit(task.ListState)
}

// TaskListService владеет единственным живым ListState.
// Мутации выполняются последовательно, после каждой в Persister уходит ровно результат перехода.
type TaskListService struct {
	engine    *Engine
	loader    SnapshotLoader
	persister Persister

	mtx   sync.Mutex
	state task.ListState
}

func NewTaskListService(engine *Engine, loader SnapshotLoader, persister Persister) *TaskListService {
	if engine == nil {
		engine = NewEngine()
	}
	return &TaskListService{
		engine:    engine,
		loader:    loader,
		persister: persister,
		state:     task.DefaultState(),
	}
}

func (s *TaskListService) Initialize(ctx context.Context) task.ListState {
	start := time.Now()

	snapshot, ok := s.loader.Load(ctx)
	st := s.engine.Restore(snapshot, ok)

	s.mtx.Lock()
	s.state = st
	s.mtx.Unlock()

	logger.Info("Service: Список задач инициализирован",
		zap.Bool("restored", ok),
		zap.Int("tasks", len(st.Tasks)),
		zap.Int("visible", len(st.VisibleTasks)),
		zap.Duration("ms", time.Since(start)))
	return st
}

func (s *TaskListService) State() task.ListState {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.state
}

func (s *TaskListService) SetFilterPreference(showDoneTasks bool) task.ListState {
	return s.apply("set_filter", func(st task.ListState) (task.ListState, error) {
		return s.engine.SetFilterPreference(st, showDoneTasks), nil
	})
}

func (s *TaskListService) Add(description string, estimatedAt time.Time) (task.ListState, error) {
	var addErr error
	st := s.apply("add", func(st task.ListState) (task.ListState, error) {
		next, err := s.engine.Add(st, description, estimatedAt)
		addErr = err
		return next, err
	})
	return st, addErr
}

func (s *TaskListService) ToggleDone(id uuid.UUID) task.ListState {
	return s.apply("toggle_done", func(st task.ListState) (task.ListState, error) {
		if _, ok := st.Find(id); !ok {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		}
		return s.engine.ToggleDone(st, id), nil
	})
}

func (s *TaskListService) Delete(id uuid.UUID) task.ListState {
	return s.apply("delete", func(st task.ListState) (task.ListState, error) {
		if _, ok := st.Find(id); !ok {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		}
		return s.engine.Delete(st, id), nil
	})
}

// apply выполняет переход под блокировкой и отдаёт его результат на запись.
// При ошибке состояние не меняется и ничего не сохраняется.
func (s *TaskListService) apply(op string, transition func(task.ListState) (task.ListState, error)) task.ListState {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	next, err := transition(s.state)
	if err != nil {
		var busErr *BusinessError
		if errors.As(err, &busErr) {
			logger.Warn("Service: Операция отклонена",
				zap.String("op", op),
				zap.String("error_code", busErr.Code))
		} else {
			logger.Error("Service: Ошибка операции", err, zap.String("op", op))
		}
		return s.state
	}

	s.state = next
	if s.persister != nil {
		s.persister.Submit(next)
	}

	logger.Debug("Service: Состояние обновлено",
		zap.String("op", op),
		zap.Int("tasks", len(next.Tasks)),
		zap.Int("visible", len(next.VisibleTasks)))
	return next
}
