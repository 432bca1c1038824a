// Package snapshot сериализует ListState и хранит его под одним ключом хранилища.
// Бизнес-логики здесь нет: повреждённый снимок считается отсутствующим.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"
	repo "taskList/internal/repository"

	"go.uber.org/zap"
)

const DefaultKey = "tasksState"

var errIncomplete = errors.New("в снимке нет tasks или showDoneTasks")

// wireState - формат снимка на диске. Указатели отличают отсутствующее поле от нулевого.
type wireState struct {
	ShowDoneTasks *bool        `json:"showDoneTasks"`
	Tasks         *[]task.Task `json:"tasks"`
	VisibleTasks  []task.Task  `json:"visibleTasks"`
}

type Gateway struct {
	store repo.KVStore
	key   string
}

func NewGateway(store repo.KVStore, key string) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	return &Gateway{store: store, key: key}
}

func (g *Gateway) Key() string {
	return g.key
}

// Load возвращает false, если снимка нет, его не удалось прочитать или разобрать
func (g *Gateway) Load(ctx context.Context) (task.ListState, bool) {
	raw, err := g.store.Get(ctx, g.key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Repository: Снимок не найден", zap.String("key", g.key))
			return task.ListState{}, false
		}
		logger.Warn("Repository: Не удалось прочитать снимок", zap.String("key", g.key), zap.Error(err))
		return task.ListState{}, false
	}

	st, err := decode([]byte(raw))
	if err != nil {
		logger.Warn("Repository: Снимок повреждён, будет проигнорирован",
			zap.String("key", g.key),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return task.ListState{}, false
	}

	logger.Info("Repository: Снимок загружен",
		zap.String("key", g.key),
		zap.Int("tasks", len(st.Tasks)))
	return st, true
}

func (g *Gateway) Save(ctx context.Context, st task.ListState) error {
	start := time.Now()

	data, err := encode(st)
	if err != nil {
		return fmt.Errorf("сериализация снимка: %w", err)
	}

	if err := g.store.Set(ctx, g.key, string(data)); err != nil {
		return fmt.Errorf("запись снимка: %w", err)
	}

	logger.Debug("Repository: Снимок сохранён",
		zap.String("key", g.key),
		zap.Int("bytes", len(data)),
		zap.Duration("ms", time.Since(start)))
	return nil
}

func encode(st task.ListState) ([]byte, error) {
	tasks := st.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	visible := st.VisibleTasks
	if visible == nil {
		visible = []task.Task{}
	}
	show := st.ShowDoneTasks

	return json.Marshal(wireState{
		ShowDoneTasks: &show,
		Tasks:         &tasks,
		VisibleTasks:  visible,
	})
}

func decode(data []byte) (task.ListState, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return task.ListState{}, errIncomplete
	}

	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return task.ListState{}, err
	}
	if w.ShowDoneTasks == nil || w.Tasks == nil {
		return task.ListState{}, errIncomplete
	}

	st := task.ListState{
		ShowDoneTasks: *w.ShowDoneTasks,
		Tasks:         *w.Tasks,
		VisibleTasks:  w.VisibleTasks,
	}
	if st.Tasks == nil {
		st.Tasks = []task.Task{}
	}
	return st, nil
}
