package domain

import (
	"context"
	"time"
)

// SnapshotStore is session-scoped key/value storage for serialized state.
type SnapshotStore interface {
	// Get returns the stored bytes for key, or ErrSnapshotNotFound.
	Get(key string) ([]byte, error)

	// Put replaces the bytes stored under key.
	Put(key string, data []byte) error
}

// Syncer pushes a newly created task to a backend.
type Syncer interface {
	// Sync returns an error if the task could not be synced.
	Sync(ctx context.Context, task Task) error
}

// IDGenerator hands out task IDs. Implementations must never return
// the same ID twice.
type IDGenerator interface {
	NextID() TaskID
}

// Logger writes categorized log lines, optionally scoped to a task.
// A zero taskID logs only to the global log.
type Logger interface {
	Info(taskID TaskID, category, msg string)
	Debug(taskID TaskID, category, msg string)
	Warn(taskID TaskID, category, msg string)
	Error(taskID TaskID, category, msg string)
}

// NopLogger discards all log lines.
type NopLogger struct{}

func (NopLogger) Info(TaskID, string, string)  {}
func (NopLogger) Debug(TaskID, string, string) {}
func (NopLogger) Warn(TaskID, string, string)  {}
func (NopLogger) Error(TaskID, string, string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f in its own goroutine after d elapses.
	AfterFunc(d time.Duration, f func()) Timer

	// After returns a channel that receives the current time after d elapses.
	After(d time.Duration) <-chan time.Time
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from firing. It returns false if the call
	// already fired or was stopped.
	Stop() bool
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// After wraps time.After.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// TaskStore is the state container the use cases drive.
type TaskStore interface {
	// State returns a copy of the current state.
	State() RootState

	// DispatchContext runs an action through the reducer and effects.
	DispatchContext(ctx context.Context, action Action)

	// AddContext assigns an id to data, dispatches the add and returns the id.
	AddContext(ctx context.Context, data TaskData) TaskID
}
