package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/opus/internal/domain"
)

// RemoveTaskInput contains the parameters for removing a task.
type RemoveTaskInput struct {
	TaskID domain.TaskID
}

// RemoveTaskOutput contains the result of removing a task.
type RemoveTaskOutput struct {
	Promoted []domain.TaskID // Children that became root tasks
	Task     domain.Task     // The removed task
}

// RemoveTask is the use case for deleting a task. Its children stay and
// lose the link to it.
type RemoveTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewRemoveTask creates a new RemoveTask use case.
func NewRemoveTask(store domain.TaskStore, logger domain.Logger) *RemoveTask {
	return &RemoveTask{store: store, logger: logger}
}

// Execute removes the task.
func (uc *RemoveTask) Execute(ctx context.Context, in RemoveTaskInput) (*RemoveTaskOutput, error) {
	tasks := uc.store.State().Tasks.TaskList
	task, ok := domain.Find(tasks, in.TaskID)
	if !ok {
		return nil, fmt.Errorf("task #%d: %w", in.TaskID, domain.ErrTaskNotFound)
	}

	var promoted []domain.TaskID
	id := in.TaskID
	for _, child := range domain.FilterByParent(tasks, &id) {
		if len(child.Parents) == 1 {
			promoted = append(promoted, child.ID)
		}
	}

	uc.store.DispatchContext(ctx, domain.ActionRemove{ID: in.TaskID})
	uc.logger.Info(in.TaskID, "usecase", fmt.Sprintf("task removed: %q", task.Name))

	return &RemoveTaskOutput{Task: task, Promoted: promoted}, nil
}
