package usecase

import (
	"context"

	"github.com/runoshun/opus/internal/domain"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID domain.TaskID
}

// ShowTaskOutput contains a task and its direct relatives.
type ShowTaskOutput struct {
	Parents  []domain.Task
	Children []domain.Task
	Task     domain.Task
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	store domain.TaskStore
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(store domain.TaskStore) *ShowTask {
	return &ShowTask{store: store}
}

// Execute returns the task with its parents and children.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	tasks := uc.store.State().Tasks.TaskList
	task, err := findTask(uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}

	out := &ShowTaskOutput{Task: task}
	for _, p := range task.Parents {
		if parent, ok := domain.Find(tasks, p); ok {
			out.Parents = append(out.Parents, parent)
		}
	}
	id := task.ID
	out.Children = domain.FilterByParent(tasks, &id)
	return out, nil
}
