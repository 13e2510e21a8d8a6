package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Lousuarez/LourenTask/internal/model"
)

// fakeStore keeps records in memory and commits transitions atomically,
// mirroring the transactional store contract.
type fakeStore struct {
	tasks    map[uint]model.Task
	statuses map[uint]model.Status
	history  []model.TaskHistory
	applyErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:    make(map[uint]model.Task),
		statuses: make(map[uint]model.Status),
	}
}

func (s *fakeStore) Task(_ context.Context, id uint) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	return &t, nil
}

func (s *fakeStore) Status(_ context.Context, id uint) (*model.Status, error) {
	st, ok := s.statuses[id]
	if !ok {
		return nil, errors.New("status not found")
	}
	return &st, nil
}

func (s *fakeStore) TenantStatuses(_ context.Context, tenantID uint) ([]model.Status, error) {
	var out []model.Status
	for _, st := range s.statuses {
		if st.TenantID == tenantID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeStore) ApplyTransition(_ context.Context, task *model.Task, entry *model.TaskHistory) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.tasks[task.ID] = *task
	s.history = append(s.history, *entry)
	return nil
}

func seedStore() *fakeStore {
	s := newFakeStore()
	for _, st := range []model.Status{
		{ID: 1, TenantID: 1, Name: "Open", Order: 1, Active: true},
		{ID: 2, TenantID: 1, Name: "In Execution", Order: 2, Active: true},
		{ID: 3, TenantID: 1, Name: "Paused", Order: 3, Active: true},
		{ID: 4, TenantID: 1, Name: "Done", Order: 4, IsFinal: true, Active: true},
		{ID: 9, TenantID: 2, Name: "Other Tenant Open", Order: 1, Active: true},
	} {
		s.statuses[st.ID] = st
	}
	s.tasks[100] = model.Task{ID: 100, TenantID: 1, StatusID: 1, ResponsibleID: 10}
	return s
}

func fixedClock(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestTransitionStart(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop()).WithClock(fixedClock("2026-03-10T10:00:00Z"))

	task, err := exec.Transition(context.Background(), 100, 2, 10, Options{})
	require.NoError(t, err)

	assert.Equal(t, uint(2), task.StatusID)
	require.NotNil(t, task.StartedAt)
	assert.Equal(t, "2026-03-10T10:00:00Z", task.StartedAt.Format(time.RFC3339))
	assert.Nil(t, task.FinishedAt)

	require.Len(t, store.history, 1)
	entry := store.history[0]
	assert.Equal(t, uint(100), entry.TaskID)
	assert.Equal(t, uint(1), entry.OldStatusID)
	assert.Equal(t, uint(2), entry.NewStatusID)
	assert.Equal(t, uint(10), entry.ChangedByID)
}

func TestTransitionStartedAtStampedOnce(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop()).WithClock(fixedClock("2026-03-10T10:00:00Z"))
	ctx := context.Background()

	_, err := exec.Transition(ctx, 100, 2, 10, Options{})
	require.NoError(t, err)

	exec.WithClock(fixedClock("2026-03-11T10:00:00Z"))
	_, err = exec.Transition(ctx, 100, 3, 10, Options{}) // pause
	require.NoError(t, err)
	task, err := exec.Transition(ctx, 100, 2, 10, Options{}) // resume
	require.NoError(t, err)

	require.NotNil(t, task.StartedAt)
	assert.Equal(t, "2026-03-10T10:00:00Z", task.StartedAt.Format(time.RFC3339),
		"re-entering execution must not reset the original start")
}

func TestTransitionFinishAndReopen(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop()).WithClock(fixedClock("2026-03-10T10:00:00Z"))
	ctx := context.Background()

	_, err := exec.Transition(ctx, 100, 2, 10, Options{})
	require.NoError(t, err)
	task, err := exec.Transition(ctx, 100, 4, 10, Options{})
	require.NoError(t, err)
	require.NotNil(t, task.FinishedAt)

	task, err = exec.Transition(ctx, 100, 1, 10, Options{})
	require.NoError(t, err)
	assert.Nil(t, task.FinishedAt, "reopening clears the completion timestamp")
	assert.NotNil(t, task.StartedAt, "reopening keeps the original start")

	assert.Len(t, store.history, 3)
}

func TestTransitionCrossTenantRejected(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop())

	_, err := exec.Transition(context.Background(), 100, 9, 10, Options{})
	assert.ErrorIs(t, err, ErrCrossTenantStatus)
	assert.Empty(t, store.history)
}

func TestTransitionNotOffered(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop())

	// Open cannot jump straight to Done through a quick action.
	_, err := exec.Transition(context.Background(), 100, 4, 10, Options{})
	assert.ErrorIs(t, err, ErrTransitionNotOffered)
	assert.Empty(t, store.history)
}

func TestTransitionManualOverride(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop()).WithClock(fixedClock("2026-03-10T10:00:00Z"))

	task, err := exec.Transition(context.Background(), 100, 4, 10, Options{AllowManual: true})
	require.NoError(t, err)
	assert.Equal(t, uint(4), task.StatusID)
	require.NotNil(t, task.FinishedAt)
	assert.Len(t, store.history, 1)
}

func TestTransitionStoreFailureChangesNothing(t *testing.T) {
	store := seedStore()
	boom := errors.New("connection reset")
	store.applyErr = boom
	exec := NewExecutor(store, zap.NewNop())

	_, err := exec.Transition(context.Background(), 100, 2, 10, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	persisted := store.tasks[100]
	assert.Equal(t, uint(1), persisted.StatusID)
	assert.Nil(t, persisted.StartedAt)
	assert.Empty(t, store.history)
}

func TestTransitionUnknownTask(t *testing.T) {
	exec := NewExecutor(seedStore(), zap.NewNop())
	_, err := exec.Transition(context.Background(), 999, 2, 10, Options{})
	assert.Error(t, err)
}

func TestTransitionFullLifecycle(t *testing.T) {
	store := seedStore()
	exec := NewExecutor(store, zap.NewNop()).WithClock(fixedClock("2026-03-10T10:00:00Z"))
	ctx := context.Background()

	steps := []struct {
		target  uint
		wantOld uint
	}{
		{target: 2, wantOld: 1}, // start
		{target: 3, wantOld: 2}, // pause
		{target: 2, wantOld: 3}, // resume
		{target: 4, wantOld: 2}, // finish
		{target: 1, wantOld: 4}, // reopen
	}

	for _, step := range steps {
		task, err := exec.Transition(ctx, 100, step.target, 10, Options{})
		require.NoError(t, err)
		assert.Equal(t, step.target, task.StatusID)
	}

	require.Len(t, store.history, len(steps))
	for i, step := range steps {
		assert.Equal(t, step.wantOld, store.history[i].OldStatusID)
		assert.Equal(t, step.target, store.history[i].NewStatusID)
	}
}
