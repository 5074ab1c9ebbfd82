package usecase

import (
	"context"

	"github.com/runoshun/opus/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Parent       *domain.TaskID // List only the subtree below this task
	HideFinished bool           // Skip finished tasks and their subtrees
}

// ListTasksOutput contains the flattened task tree.
type ListTasksOutput struct {
	Nodes []domain.TreeNode
}

// ListTasks is the use case for listing tasks as a tree.
type ListTasks struct {
	store domain.TaskStore
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(store domain.TaskStore) *ListTasks {
	return &ListTasks{store: store}
}

// Execute returns the tree in display order.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	tasks := uc.store.State().Tasks.TaskList
	if in.Parent != nil {
		if _, ok := domain.Find(tasks, *in.Parent); !ok {
			return nil, domain.ErrTaskNotFound
		}
	}

	nodes := domain.FlattenFrom(tasks, in.Parent)
	if in.HideFinished {
		nodes = hideFinished(nodes)
	}
	return &ListTasksOutput{Nodes: nodes}, nil
}

// hideFinished drops finished nodes along with everything nested under them.
func hideFinished(nodes []domain.TreeNode) []domain.TreeNode {
	out := make([]domain.TreeNode, 0, len(nodes))
	skipBelow := -1
	for _, n := range nodes {
		if skipBelow >= 0 {
			if n.Depth > skipBelow {
				continue
			}
			skipBelow = -1
		}
		if n.Task.IsFinished() {
			skipBelow = n.Depth
			continue
		}
		out = append(out, n)
	}
	return out
}
