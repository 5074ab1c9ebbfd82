package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/opus/internal/domain"
)

// ChangeTaskStateInput contains the parameters for changing a task's state.
type ChangeTaskStateInput struct {
	State  domain.TaskState
	TaskID domain.TaskID
}

// ChangeTaskStateOutput contains the result of changing a task's state.
type ChangeTaskStateOutput struct {
	Previous domain.TaskState // State before the change
	Task     domain.Task      // Task after the change
}

// ChangeTaskState is the use case for moving a task to another state.
type ChangeTaskState struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewChangeTaskState creates a new ChangeTaskState use case.
func NewChangeTaskState(store domain.TaskStore, logger domain.Logger) *ChangeTaskState {
	return &ChangeTaskState{store: store, logger: logger}
}

// Execute changes the task's state.
func (uc *ChangeTaskState) Execute(ctx context.Context, in ChangeTaskStateInput) (*ChangeTaskStateOutput, error) {
	if !in.State.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidState, in.State)
	}
	task, err := findTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}
	return changeState(ctx, uc.store, uc.logger, task, in.State)
}

// ToggleTaskInput contains the parameters for toggling a task.
type ToggleTaskInput struct {
	TaskID domain.TaskID
}

// ToggleTask is the use case behind the checkbox: finished tasks reopen,
// everything else becomes finished.
type ToggleTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewToggleTask creates a new ToggleTask use case.
func NewToggleTask(store domain.TaskStore, logger domain.Logger) *ToggleTask {
	return &ToggleTask{store: store, logger: logger}
}

// Execute toggles the task.
func (uc *ToggleTask) Execute(ctx context.Context, in ToggleTaskInput) (*ChangeTaskStateOutput, error) {
	task, err := findTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}
	return changeState(ctx, uc.store, uc.logger, task, task.State.Toggled())
}

func changeState(ctx context.Context, store domain.TaskStore, logger domain.Logger, task domain.Task, state domain.TaskState) (*ChangeTaskStateOutput, error) {
	previous := task.State
	store.DispatchContext(ctx, domain.ActionChangeState{ID: task.ID, State: state})

	updated, err := findTask(store, task.ID)
	if err != nil {
		return nil, err
	}
	if previous != state {
		logger.Info(task.ID, "usecase", fmt.Sprintf("state changed: %s -> %s", previous, state))
	}
	return &ChangeTaskStateOutput{Previous: previous, Task: updated}, nil
}

func findTask(store domain.TaskStore, id domain.TaskID) (domain.Task, error) {
	task, ok := domain.Find(store.State().Tasks.TaskList, id)
	if !ok {
		return domain.Task{}, fmt.Errorf("task #%d: %w", id, domain.ErrTaskNotFound)
	}
	return task, nil
}
