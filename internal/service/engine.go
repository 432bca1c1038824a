package service

import (
	"slices"
	"strings"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine - чистые переходы состояния списка: (state, args) -> новое состояние.
// Хранилище здесь не используется, сохранением занимается TaskListService.
type Engine struct {
	now   func() time.Time
	newID func() uuid.UUID
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func WithIDGenerator(newID func() uuid.UUID) EngineOption {
	return func(e *Engine) {
		e.newID = newID
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore строит стартовое состояние из снимка. Без снимка - состояние по умолчанию.
// Сохранённый VisibleTasks не используется и всегда пересчитывается.
func (e *Engine) Restore(snapshot task.ListState, ok bool) task.ListState {
	if !ok {
		return task.DefaultState()
	}

	seen := make(map[uuid.UUID]struct{}, len(snapshot.Tasks))
	tasks := make([]task.Task, 0, len(snapshot.Tasks))
	dropped := 0

	for _, t := range snapshot.Tasks {
		if t.ID == uuid.Nil || strings.TrimSpace(t.Description) == "" {
			dropped++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}

	if dropped > 0 {
		logger.Warn("Service: Из снимка отброшены некорректные задачи", zap.Int("dropped", dropped))
	}

	return derive(task.ListState{
		ShowDoneTasks: snapshot.ShowDoneTasks,
		Tasks:         tasks,
	})
}

func (e *Engine) SetFilterPreference(st task.ListState, showDoneTasks bool) task.ListState {
	return derive(task.ListState{
		ShowDoneTasks: showDoneTasks,
		Tasks:         slices.Clone(st.Tasks),
	})
}

// Add при пустом описании возвращает исходное состояние и ошибку, совместимую с ErrEmptyDescription
func (e *Engine) Add(st task.ListState, description string, estimatedAt time.Time) (task.ListState, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return st, NewValidationError("description", "описание не может быть пустым", ErrEmptyDescription)
	}

	tasks := make([]task.Task, 0, len(st.Tasks)+1)
	tasks = append(tasks, st.Tasks...)
	tasks = append(tasks, task.New(description,
		task.WithID(e.uniqueID(st.Tasks)),
		task.WithEstimatedAt(estimatedAt),
	))

	return derive(task.ListState{
		ShowDoneTasks: st.ShowDoneTasks,
		Tasks:         tasks,
	}), nil
}

// ToggleDone переключает задачу между Pending и Done. Неизвестный id ничего не меняет.
func (e *Engine) ToggleDone(st task.ListState, id uuid.UUID) task.ListState {
	tasks := slices.Clone(st.Tasks)
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		if tasks[i].DoneAt != nil {
			tasks[i].DoneAt = nil
		} else {
			now := e.now()
			tasks[i].DoneAt = &now
		}
		break
	}

	return derive(task.ListState{
		ShowDoneTasks: st.ShowDoneTasks,
		Tasks:         tasks,
	})
}

// Delete удаляет задачу на месте, порядок остальных не меняется. Неизвестный id ничего не меняет.
func (e *Engine) Delete(st task.ListState, id uuid.UUID) task.ListState {
	tasks := make([]task.Task, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		if t.ID == id {
			continue
		}
		tasks = append(tasks, t)
	}

	return derive(task.ListState{
		ShowDoneTasks: st.ShowDoneTasks,
		Tasks:         tasks,
	})
}

// uniqueID повторяет генерацию при совпадении с существующим id
func (e *Engine) uniqueID(existing []task.Task) uuid.UUID {
	for {
		id := e.newID()
		if id == uuid.Nil {
			continue
		}
		clash := false
		for _, t := range existing {
			if t.ID == id {
				clash = true
				break
			}
		}
		if !clash {
			return id
		}
		logger.Warn("Service: Коллизия идентификатора задачи", zap.String("id", id.String()))
	}
}

func derive(st task.ListState) task.ListState {
	if st.Tasks == nil {
		st.Tasks = []task.Task{}
	}
	st.VisibleTasks = task.FilterVisible(st.Tasks, st.ShowDoneTasks)
	return st
}
