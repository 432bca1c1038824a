package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskList/internal/models/task"
	"taskList/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLoader - мок загрузчика снимка
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context) (task.ListState, bool) {
	args := m.Called(ctx)
	return args.Get(0).(task.ListState), args.Bool(1)
}

// recordingPersister запоминает всё, что ушло на запись
type recordingPersister struct {
	mtx    sync.Mutex
	states []task.ListState
}

func (p *recordingPersister) Submit(st task.ListState) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.states = append(p.states, st)
}

func (p *recordingPersister) Submitted() []task.ListState {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return append([]task.ListState(nil), p.states...)
}

func newTestService(t *testing.T, snapshot task.ListState, ok bool) (*service.TaskListService, *recordingPersister) {
	t.Helper()

	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(snapshot, ok)

	persister := &recordingPersister{}
	svc := service.NewTaskListService(newTestEngine(), loader, persister)
	svc.Initialize(context.Background())

	loader.AssertExpectations(t)
	return svc, persister
}

func TestTaskListService_InitializeDefault(t *testing.T) {
	svc, persister := newTestService(t, task.ListState{}, false)

	st := svc.State()
	assert.True(t, st.ShowDoneTasks)
	assert.Empty(t, st.Tasks)
	assert.Empty(t, persister.Submitted())
}

func TestTaskListService_InitializeFromSnapshot(t *testing.T) {
	a := task.New("A", task.WithDoneAt(fixedNow))
	b := task.New("B")

	svc, _ := newTestService(t, task.ListState{
		ShowDoneTasks: false,
		Tasks:         []task.Task{a, b},
	}, true)

	st := svc.State()
	assert.Equal(t, []task.Task{a, b}, st.Tasks)
	assert.Equal(t, []task.Task{b}, st.VisibleTasks)
}

func TestTaskListService_MutationsSubmitPostState(t *testing.T) {
	svc, persister := newTestService(t, task.ListState{}, false)

	st, err := svc.Add("Plant seeds", fixedNow)
	require.NoError(t, err)
	id := st.Tasks[0].ID

	toggled := svc.ToggleDone(id)
	filtered := svc.SetFilterPreference(false)
	deleted := svc.Delete(id)

	submitted := persister.Submitted()
	require.Len(t, submitted, 4)
	assert.Equal(t, st, submitted[0])
	assert.Equal(t, toggled, submitted[1])
	assert.Equal(t, filtered, submitted[2])
	assert.Equal(t, deleted, submitted[3])

	assert.Equal(t, deleted, svc.State())
	assert.Empty(t, deleted.Tasks)
}

func TestTaskListService_AddValidationNotPersisted(t *testing.T) {
	svc, persister := newTestService(t, task.ListState{}, false)

	before := svc.State()
	st, err := svc.Add("   ", fixedNow)

	assert.ErrorIs(t, err, service.ErrEmptyDescription)
	assert.Equal(t, before, st)
	assert.Equal(t, before, svc.State())
	assert.Empty(t, persister.Submitted())
}

func TestTaskListService_UnknownIDStillPersists(t *testing.T) {
	svc, persister := newTestService(t, task.ListState{}, false)
	_, err := svc.Add("A", fixedNow)
	require.NoError(t, err)

	svc.ToggleDone(uuid.New())
	svc.Delete(uuid.New())

	submitted := persister.Submitted()
	require.Len(t, submitted, 3)
	assert.Len(t, submitted[2].Tasks, 1)
}

func TestTaskListService_NilPersister(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(task.ListState{}, false)

	svc := service.NewTaskListService(nil, loader, nil)
	svc.Initialize(context.Background())

	st, err := svc.Add("A", time.Now())
	require.NoError(t, err)
	assert.Len(t, st.Tasks, 1)
}

// TestTaskListService_ConcurrentAdds: последний отправленный снимок совпадает с итоговым состоянием
func TestTaskListService_ConcurrentAdds(t *testing.T) {
	svc, persister := newTestService(t, task.ListState{}, false)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add("task", fixedNow)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final := svc.State()
	submitted := persister.Submitted()

	require.Len(t, submitted, 100)
	assert.Len(t, final.Tasks, 100)
	assert.Equal(t, final, submitted[len(submitted)-1])

	for i, st := range submitted {
		assert.Len(t, st.Tasks, i+1)
	}
}

func TestBusinessError_Format(t *testing.T) {
	err := service.NewValidationError("description", "пусто", service.ErrEmptyDescription)

	assert.Contains(t, err.Error(), "[VALIDATION_ERROR]")
	assert.True(t, errors.Is(err, service.ErrEmptyDescription))

	plain := service.NewBusinessError("CODE", "message", nil, service.ToDetail("k", 1))
	assert.Equal(t, "[CODE] message", plain.Error())
	assert.Equal(t, 1, plain.Details["k"])
}
