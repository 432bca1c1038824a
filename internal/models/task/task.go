package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	EstimatedAt time.Time  `json:"estimatedAt"`
	DoneAt      *time.Time `json:"doneAt"`
}

type Status string

const StatusPending Status = "pending"
const StatusDone Status = "done"

func (t Task) IsDone() bool {
	return t.DoneAt != nil
}

func (t Task) Status() Status {
	if t.IsDone() {
		return StatusDone
	}
	return StatusPending
}
