package handlers

import (
	"context"
	"time"

	"taskList/internal/models/task"

	"github.com/google/uuid"
)

type TaskListService interface {
	State() task.ListState
	Add(string, time.Time) (task.ListState, error)
	ToggleDone(uuid.UUID) task.ListState
	Delete(uuid.UUID) task.ListState
	SetFilterPreference(bool) task.ListState
}

type HealthChecker interface {
	HealthCheck(context.Context) error
}
