package snapshot_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"taskList/internal/models/task"
	"taskList/internal/repository"
	"taskList/internal/repository/kv/inmemory"
	"taskList/internal/repository/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKVStore - мок хранилища
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKVStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func sampleState() task.ListState {
	estimated := time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)
	done := time.Date(2025, 5, 9, 12, 30, 0, 0, time.UTC)

	tasks := []task.Task{
		task.New("Plant seeds", task.WithEstimatedAt(estimated), task.WithDoneAt(done)),
		task.New("Water the garden", task.WithEstimatedAt(estimated)),
	}
	return task.ListState{
		ShowDoneTasks: false,
		Tasks:         tasks,
		VisibleTasks:  task.FilterVisible(tasks, false),
	}
}

func TestGateway_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := snapshot.NewGateway(inmemory.NewKVStorage(), "")

	st := sampleState()
	require.NoError(t, gw.Save(ctx, st))

	loaded, ok := gw.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, st.ShowDoneTasks, loaded.ShowDoneTasks)
	assert.Equal(t, st.Tasks, loaded.Tasks)
	assert.Equal(t, st.VisibleTasks, loaded.VisibleTasks)
}

func TestGateway_DefaultKey(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewKVStorage()
	gw := snapshot.NewGateway(store, "")

	assert.Equal(t, "tasksState", gw.Key())
	require.NoError(t, gw.Save(ctx, task.DefaultState()))

	_, err := store.Get(ctx, "tasksState")
	assert.NoError(t, err)
}

func TestGateway_WireFormat(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewKVStorage()
	gw := snapshot.NewGateway(store, "tasksState")

	st := sampleState()
	require.NoError(t, gw.Save(ctx, st))

	raw, err := store.Get(ctx, "tasksState")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	assert.Equal(t, false, decoded["showDoneTasks"])
	assert.Len(t, decoded["tasks"], 2)
	assert.Len(t, decoded["visibleTasks"], 1)

	first := decoded["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, st.Tasks[0].ID.String(), first["id"])
	assert.Equal(t, "Plant seeds", first["description"])
	assert.Equal(t, "2025-05-10T18:00:00Z", first["estimatedAt"])
	assert.Equal(t, "2025-05-09T12:30:00Z", first["doneAt"])

	second := decoded["tasks"].([]any)[1].(map[string]any)
	assert.Contains(t, second, "doneAt")
	assert.Nil(t, second["doneAt"])
}

func TestGateway_EmptyStateEncodesArrays(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewKVStorage()
	gw := snapshot.NewGateway(store, "k")

	require.NoError(t, gw.Save(ctx, task.ListState{ShowDoneTasks: true}))

	raw, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"showDoneTasks":true,"tasks":[],"visibleTasks":[]}`, raw)
}

func TestGateway_LoadAbsent(t *testing.T) {
	gw := snapshot.NewGateway(inmemory.NewKVStorage(), "tasksState")

	_, ok := gw.Load(context.Background())
	assert.False(t, ok)
}

func TestGateway_LoadCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":        "{{{",
		"null":            "null",
		"empty":           "   ",
		"array":           "[1,2,3]",
		"missing tasks":   `{"showDoneTasks":true}`,
		"missing filter":  `{"tasks":[]}`,
		"null tasks":      `{"showDoneTasks":true,"tasks":null}`,
		"bad task id":     `{"showDoneTasks":true,"tasks":[{"id":0.123,"description":"x"}]}`,
		"bad timestamp":   `{"showDoneTasks":true,"tasks":[{"id":"5f1c7f2e-3a3c-4a4e-9a52-3c1b0f7d9e11","description":"x","doneAt":"yesterday"}]}`,
		"wrong bool type": `{"showDoneTasks":"yes","tasks":[]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := inmemory.NewKVStorage()
			require.NoError(t, store.Set(ctx, "tasksState", raw))

			_, ok := snapshot.NewGateway(store, "tasksState").Load(ctx)
			assert.False(t, ok)
		})
	}
}

func TestGateway_LoadIgnoresUnknownFields(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewKVStorage()
	raw := `{"showDoneTasks":false,"showAddTask":true,"tasks":[{"id":"5f1c7f2e-3a3c-4a4e-9a52-3c1b0f7d9e11","description":"Buy seeds","estimatedAt":"2025-01-01T00:00:00.000Z","doneAt":null}],"visibleTasks":[]}`
	require.NoError(t, store.Set(ctx, "tasksState", raw))

	st, ok := snapshot.NewGateway(store, "tasksState").Load(ctx)
	require.True(t, ok)
	assert.False(t, st.ShowDoneTasks)
	require.Len(t, st.Tasks, 1)
	assert.Equal(t, "Buy seeds", st.Tasks[0].Description)
	assert.Nil(t, st.Tasks[0].DoneAt)
	assert.Empty(t, st.VisibleTasks)
}

func TestGateway_LoadStoreError(t *testing.T) {
	store := new(MockKVStore)
	store.On("Get", mock.Anything, "tasksState").Return("", errors.New("connection refused"))

	_, ok := snapshot.NewGateway(store, "tasksState").Load(context.Background())

	assert.False(t, ok)
	store.AssertExpectations(t)
}

func TestGateway_SaveStoreError(t *testing.T) {
	store := new(MockKVStore)
	store.On("Set", mock.Anything, "tasksState", mock.AnythingOfType("string")).Return(errors.New("disk full"))

	err := snapshot.NewGateway(store, "tasksState").Save(context.Background(), sampleState())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	store.AssertExpectations(t)
}
