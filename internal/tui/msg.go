package tui

import "github.com/runoshun/opus/internal/domain"

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgStateChanged carries the store state after a change. It is sent by
// the store subscription, from whatever goroutine dispatched.
type MsgStateChanged struct {
	State domain.RootState
}

func (MsgStateChanged) sealed() {}

// MsgTaskCreated is sent when a new task is created.
type MsgTaskCreated struct {
	TaskID domain.TaskID
}

func (MsgTaskCreated) sealed() {}

// MsgTaskRemoved is sent when a task is removed.
type MsgTaskRemoved struct {
	TaskID domain.TaskID
}

func (MsgTaskRemoved) sealed() {}

// MsgTaskStateUpdated is sent when a task's state changed.
type MsgTaskStateUpdated struct {
	State  domain.TaskState
	TaskID domain.TaskID
}

func (MsgTaskStateUpdated) sealed() {}

// MsgSyncResumed reports how many interrupted syncs were restarted.
type MsgSyncResumed struct {
	Count int
}

func (MsgSyncResumed) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}
