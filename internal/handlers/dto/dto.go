package dto

import (
	"time"

	"taskList/internal/models/task"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Description string    `json:"description"`
	EstimatedAt time.Time `json:"estimatedAt"`
}

type FilterRequest struct {
	ShowDoneTasks *bool `json:"showDoneTasks"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	EstimatedAt time.Time  `json:"estimatedAt"`
	DoneAt      *time.Time `json:"doneAt"`
	Done        bool       `json:"done"`
}

type ListResponse struct {
	ShowDoneTasks bool           `json:"showDoneTasks"`
	VisibleTasks  []TaskResponse `json:"visibleTasks"`
	Total         int            `json:"total"`
	Pending       int            `json:"pending"`
	Done          int            `json:"done"`
}

func FromTask(t task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		EstimatedAt: t.EstimatedAt,
		DoneAt:      t.DoneAt,
		Done:        t.IsDone(),
	}
}

func FromState(st task.ListState) ListResponse {
	visible := make([]TaskResponse, len(st.VisibleTasks))
	for i, t := range st.VisibleTasks {
		visible[i] = FromTask(t)
	}

	counts := st.Counts()
	return ListResponse{
		ShowDoneTasks: st.ShowDoneTasks,
		VisibleTasks:  visible,
		Total:         counts.Total,
		Pending:       counts.Pending,
		Done:          counts.Done,
	}
}
