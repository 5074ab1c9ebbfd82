package effect

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/store"
)

// SyncEffect pushes every newly added task to a backend:
//
//	ADD_TASK → ADD_TASK_PENDING → (delay) → ADD_TASK_SUCCESS | ADD_TASK_FAILURE
//
// Each task runs its own sequence; sequences for different tasks overlap.
// A sequence cancelled by Runner.Close dispatches nothing further, so the
// task stays marked as syncing until Resync picks it up again.
// Fields are ordered to minimize memory padding.
type SyncEffect struct {
	runner *Runner
	syncer domain.Syncer
	clock  domain.Clock
	logger domain.Logger
	delay  time.Duration
}

// NewSyncEffect creates a SyncEffect. A nil logger discards output.
func NewSyncEffect(runner *Runner, syncer domain.Syncer, clock domain.Clock, logger domain.Logger, delay time.Duration) *SyncEffect {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &SyncEffect{
		runner: runner,
		syncer: syncer,
		clock:  clock,
		logger: logger,
		delay:  delay,
	}
}

// Handle starts a sync sequence for ActionAdd and ignores everything else.
// The pending action is dispatched before Handle returns.
func (e *SyncEffect) Handle(_ context.Context, action domain.Action, d store.Dispatcher) {
	add, ok := action.(domain.ActionAdd)
	if !ok {
		return
	}

	task := domain.Task{
		ID:               add.ID,
		CreationDatetime: add.Created,
		TaskData:         add.Data,
	}
	e.start(task, d)
}

// Resync restarts the sequence for tasks that never finished syncing,
// such as those interrupted by a previous shutdown.
func (e *SyncEffect) Resync(d store.Dispatcher, tasks []domain.Task) int {
	n := 0
	for _, task := range NeedsSync(tasks) {
		e.logger.Info(task.ID, "sync", "resuming interrupted sync")
		e.start(task, d)
		n++
	}
	return n
}

// NeedsSync returns the tasks that are syncing or were never synced.
func NeedsSync(tasks []domain.Task) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.IsSyncing || !t.HasBeenSynced {
			out = append(out, t)
		}
	}
	return out
}

func (e *SyncEffect) start(task domain.Task, d store.Dispatcher) {
	d.Dispatch(domain.ActionAddPending{ID: task.ID})

	started := e.runner.Go(func(ctx context.Context) {
		e.run(ctx, task, d)
	})
	if !started {
		e.logger.Debug(task.ID, "sync", "runner closed, sync deferred to next start")
	}
}

func (e *SyncEffect) run(ctx context.Context, task domain.Task, d store.Dispatcher) {
	select {
	case <-ctx.Done():
		return
	case <-e.clock.After(e.delay):
	}

	if err := e.syncer.Sync(ctx, task); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.logger.Warn(task.ID, "sync", fmt.Sprintf("sync failed: %v", err))
		d.Dispatch(domain.ActionAddFail{ID: task.ID, Reason: err.Error()})
		return
	}

	e.logger.Info(task.ID, "sync", "task synced")
	d.Dispatch(domain.ActionAddSuccess{ID: task.ID})
}

// Ensure SyncEffect implements store.Effect.
var _ store.Effect = (*SyncEffect)(nil)
