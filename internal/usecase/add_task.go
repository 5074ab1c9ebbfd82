// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/runoshun/opus/internal/domain"
)

// AddTaskInput contains the parameters for creating a task.
// Fields are ordered to minimize memory padding.
type AddTaskInput struct {
	Ticket      *domain.Ticket   // Optional external ticket
	Deadline    *time.Time       // Optional deadline
	Name        string           // Task name (required)
	Description string           // Optional description
	State       domain.TaskState // Initial state (default: open)
	Parents     []domain.TaskID  // Parent task IDs; empty creates a root task
}

// AddTaskOutput contains the result of creating a task.
type AddTaskOutput struct {
	Task domain.Task
}

// AddTask is the use case for creating a task.
type AddTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewAddTask creates a new AddTask use case.
func NewAddTask(store domain.TaskStore, logger domain.Logger) *AddTask {
	return &AddTask{store: store, logger: logger}
}

// Execute validates the input and dispatches the add.
func (uc *AddTask) Execute(ctx context.Context, in AddTaskInput) (*AddTaskOutput, error) {
	data, err := buildTaskData(uc.store.State().Tasks.TaskList, in)
	if err != nil {
		return nil, err
	}

	id := uc.store.AddContext(ctx, data)

	task, ok := domain.Find(uc.store.State().Tasks.TaskList, id)
	if !ok {
		return nil, fmt.Errorf("task %d vanished after add: %w", id, domain.ErrTaskNotFound)
	}

	uc.logger.Info(id, "usecase", fmt.Sprintf("task created: %q", task.Name))
	return &AddTaskOutput{Task: task}, nil
}

// buildTaskData validates in against the existing tasks.
func buildTaskData(existing []domain.Task, in AddTaskInput) (domain.TaskData, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.TaskData{}, domain.ErrEmptyName
	}

	state := in.State
	if state == "" {
		state = domain.TaskStateOpen
	}
	if !state.IsValid() {
		return domain.TaskData{}, fmt.Errorf("%w: %q", domain.ErrInvalidState, state)
	}

	var parents []domain.TaskID
	for _, p := range in.Parents {
		if slices.Contains(parents, p) {
			continue
		}
		if _, ok := domain.Find(existing, p); !ok {
			return domain.TaskData{}, fmt.Errorf("parent #%d: %w", p, domain.ErrParentNotFound)
		}
		parents = append(parents, p)
	}

	return domain.TaskData{
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		State:           state,
		Parents:         parents,
		TicketReference: in.Ticket,
		Deadline:        in.Deadline,
	}, nil
}
