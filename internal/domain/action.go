package domain

import "time"

// ActionType names an action. The names match the persisted/logged form.
type ActionType string

// Recognized action types.
const (
	ActionTypeAdd         ActionType = "ADD_TASK"
	ActionTypeAddPending  ActionType = "ADD_TASK_PENDING"
	ActionTypeAddSuccess  ActionType = "ADD_TASK_SUCCESS"
	ActionTypeAddFail     ActionType = "ADD_TASK_FAILURE"
	ActionTypeChangeState ActionType = "CHANGE_TASK_STATE"
	ActionTypeRemove      ActionType = "REMOVE_TASK"
)

// Action is an immutable intent record handled by Reduce.
//
// go-sumtype:decl Action
type Action interface {
	Type() ActionType
}

// ActionAdd requests creation of a new task.
// ID and Created are assigned by the dispatcher before the action reaches the reducer.
type ActionAdd struct {
	Created time.Time
	Data    TaskData
	ID      TaskID
}

// Type returns ActionTypeAdd.
func (ActionAdd) Type() ActionType { return ActionTypeAdd }

// ActionAddPending marks a task as currently syncing.
type ActionAddPending struct {
	ID TaskID
}

// Type returns ActionTypeAddPending.
func (ActionAddPending) Type() ActionType { return ActionTypeAddPending }

// ActionAddSuccess marks a task as synced.
type ActionAddSuccess struct {
	ID TaskID
}

// Type returns ActionTypeAddSuccess.
func (ActionAddSuccess) Type() ActionType { return ActionTypeAddSuccess }

// ActionAddFail records that syncing a task failed.
type ActionAddFail struct {
	Reason string
	ID     TaskID
}

// Type returns ActionTypeAddFail.
func (ActionAddFail) Type() ActionType { return ActionTypeAddFail }

// ActionChangeState updates a task's lifecycle state.
type ActionChangeState struct {
	State TaskState
	ID    TaskID
}

// Type returns ActionTypeChangeState.
func (ActionChangeState) Type() ActionType { return ActionTypeChangeState }

// ActionRemove deletes a task.
type ActionRemove struct {
	ID TaskID
}

// Type returns ActionTypeRemove.
func (ActionRemove) Type() ActionType { return ActionTypeRemove }
