package task

import (
	"time"

	"github.com/google/uuid"
)

type TaskOption func(*Task)

// New собирает задачу. Без WithID задача получает случайный UUID.
func New(description string, opts ...TaskOption) Task {
	t := Task{
		ID:          uuid.New(),
		Description: description,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&t)
	}
	return t
}

func WithID(id uuid.UUID) TaskOption {
	if id == uuid.Nil {
		return nil
	}
	return func(task *Task) {
		task.ID = id
	}
}

func WithEstimatedAt(estimatedAt time.Time) TaskOption {
	return func(task *Task) {
		task.EstimatedAt = estimatedAt
	}
}

func WithDoneAt(doneAt time.Time) TaskOption {
	if doneAt.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.DoneAt = &doneAt
	}
}
