package effect

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/store"
	"github.com/runoshun/opus/internal/testutil"
)

type fixture struct {
	store  *store.Store
	clock  *testutil.FakeClock
	runner *Runner
	syncer *testutil.MockSyncer
	logger *testutil.MockLogger
	effect *SyncEffect
}

func newFixture(t *testing.T, initial domain.RootState) *fixture {
	t.Helper()
	f := &fixture{
		clock:  testutil.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		runner: NewRunner(),
		syncer: &testutil.MockSyncer{},
		logger: &testutil.MockLogger{},
	}
	f.store = store.New(initial, store.WithClock(f.clock), store.WithIDGenerator(&testutil.SequenceIDGenerator{}))
	f.effect = NewSyncEffect(f.runner, f.syncer, f.clock, f.logger, domain.DefaultSyncDelay)
	f.store.RegisterEffect(f.effect)
	t.Cleanup(f.runner.Close)
	return f
}

func (f *fixture) task(t *testing.T, id domain.TaskID) domain.Task {
	t.Helper()
	task, ok := domain.Find(f.store.State().Tasks.TaskList, id)
	require.True(t, ok, "task %d not found", id)
	return task
}

func TestSyncEffect_AddIsSyncedAfterDelay(t *testing.T) {
	f := newFixture(t, domain.NewRootState())

	id := f.store.Add(domain.TaskData{Name: "task1", Description: "first"})

	task := f.task(t, id)
	assert.True(t, task.IsSyncing)
	assert.False(t, task.HasBeenSynced)

	f.clock.WaitForTimers(1)
	f.clock.Advance(999 * time.Millisecond)
	assert.True(t, f.task(t, id).IsSyncing)

	f.clock.Advance(time.Millisecond)
	f.runner.Wait()

	task = f.task(t, id)
	assert.False(t, task.IsSyncing)
	assert.True(t, task.HasBeenSynced)
	assert.Equal(t, []domain.TaskID{id}, f.syncer.Synced)
}

func TestSyncEffect_OverlappingAdds(t *testing.T) {
	f := newFixture(t, domain.NewRootState())

	a := f.store.Add(domain.TaskData{Name: "a"})
	f.clock.WaitForTimers(1)
	f.clock.Advance(500 * time.Millisecond)

	b := f.store.Add(domain.TaskData{Name: "b"})
	f.clock.WaitForTimers(2)
	f.clock.Advance(500 * time.Millisecond)

	require.Eventually(t, func() bool { return f.task(t, a).HasBeenSynced }, time.Second, time.Millisecond)
	assert.True(t, f.task(t, b).IsSyncing)

	f.clock.Advance(500 * time.Millisecond)
	f.runner.Wait()
	assert.True(t, f.task(t, b).HasBeenSynced)
}

func TestSyncEffect_FailureClearsFlags(t *testing.T) {
	f := newFixture(t, domain.NewRootState())
	f.syncer.Err = domain.ErrSyncFailed

	id := f.store.Add(domain.TaskData{Name: "task1"})
	f.clock.WaitForTimers(1)
	f.clock.Advance(domain.DefaultSyncDelay)
	f.runner.Wait()

	task := f.task(t, id)
	assert.False(t, task.IsSyncing)
	assert.False(t, task.HasBeenSynced)

	var warned bool
	for _, line := range f.logger.Snapshot() {
		if strings.HasPrefix(line, "WARN") && strings.Contains(line, "sync failed") {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning, got %v", f.logger.Snapshot())
}

func TestSyncEffect_IgnoresOtherActions(t *testing.T) {
	f := newFixture(t, domain.NewRootState())
	id := f.store.Add(domain.TaskData{Name: "task1"})
	f.clock.WaitForTimers(1)

	f.store.Dispatch(domain.ActionChangeState{ID: id, State: domain.TaskStateFinished})
	f.store.Dispatch(domain.ActionRemove{ID: 99})

	assert.Equal(t, 1, f.clock.PendingCount())
}

func TestSyncEffect_CloseCancelsAndResyncResumes(t *testing.T) {
	f := newFixture(t, domain.NewRootState())

	id := f.store.Add(domain.TaskData{Name: "task1"})
	f.clock.WaitForTimers(1)
	f.runner.Close()

	// Cancelled sequence dispatches nothing more
	assert.True(t, f.task(t, id).IsSyncing)
	assert.Empty(t, f.syncer.Synced)

	// Restart with the interrupted state
	g := newFixture(t, f.store.State())
	n := g.effect.Resync(g.store, g.store.State().Tasks.TaskList)
	assert.Equal(t, 1, n)

	g.clock.WaitForTimers(1)
	g.clock.Advance(domain.DefaultSyncDelay)
	g.runner.Wait()

	assert.True(t, g.task(t, id).HasBeenSynced)
}

func TestNeedsSync(t *testing.T) {
	tasks := []domain.Task{
		{ID: 1, HasBeenSynced: true},
		{ID: 2, IsSyncing: true},
		{ID: 3},
	}

	got := NeedsSync(tasks)
	require.Len(t, got, 2)
	assert.Equal(t, domain.TaskID(2), got[0].ID)
	assert.Equal(t, domain.TaskID(3), got[1].ID)
}

func TestRunner_GoAfterClose(t *testing.T) {
	r := NewRunner()
	r.Close()
	r.Close()

	assert.False(t, r.Go(func(context.Context) { t.Error("must not run") }))
}

func TestRunner_WaitContext(t *testing.T) {
	r := NewRunner()
	release := make(chan struct{})
	r.Go(func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.WaitContext(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, r.WaitContext(context.Background()))
}

func TestSimulatedSyncer(t *testing.T) {
	ctx := context.Background()
	task := domain.Task{ID: 7}

	assert.NoError(t, NewSimulatedSyncer(0).Sync(ctx, task))

	always := NewSimulatedSyncerWithSource(1, rand.NewPCG(1, 2))
	err := always.Sync(ctx, task)
	assert.True(t, errors.Is(err, domain.ErrSyncFailed))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, NewSimulatedSyncer(0).Sync(cancelled, task), context.Canceled)
}
