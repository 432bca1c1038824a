package task

import "github.com/google/uuid"

// ListState - всё состояние списка. VisibleTasks всегда выводится из Tasks и ShowDoneTasks.
type ListState struct {
	ShowDoneTasks bool   `json:"showDoneTasks"`
	Tasks         []Task `json:"tasks"`
	VisibleTasks  []Task `json:"visibleTasks"`
}

type Counts struct {
	Total   int
	Pending int
	Done    int
}

func DefaultState() ListState {
	return ListState{
		ShowDoneTasks: true,
		Tasks:         []Task{},
		VisibleTasks:  []Task{},
	}
}

// FilterVisible возвращает новый срез: все задачи при showDone, иначе только невыполненные.
// Порядок сохраняется.
func FilterVisible(tasks []Task, showDone bool) []Task {
	visible := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !showDone && t.IsDone() {
			continue
		}
		visible = append(visible, t)
	}
	return visible
}

func (s ListState) Find(id uuid.UUID) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func (s ListState) Counts() Counts {
	c := Counts{Total: len(s.Tasks)}
	for _, t := range s.Tasks {
		if t.IsDone() {
			c.Done++
		} else {
			c.Pending++
		}
	}
	return c
}
