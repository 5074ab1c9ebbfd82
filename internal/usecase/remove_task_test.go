package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/domain"
)

func TestRemoveTask_Execute(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		domain.TaskData{Name: "a"},
		domain.TaskData{Name: "b"},
		domain.TaskData{Name: "only a", Parents: []domain.TaskID{1}},
		domain.TaskData{Name: "a and b", Parents: []domain.TaskID{1, 2}},
	)

	out, err := NewRemoveTask(s, domain.NopLogger{}).Execute(context.Background(), RemoveTaskInput{TaskID: 1})
	require.NoError(t, err)

	assert.Equal(t, "a", out.Task.Name)
	assert.Equal(t, []domain.TaskID{3}, out.Promoted)

	tasks := s.State().Tasks.TaskList
	assert.Equal(t, []domain.TaskID{2, 3, 4}, ids(tasks))
	only, _ := domain.Find(tasks, 3)
	assert.True(t, only.IsRoot())
	both, _ := domain.Find(tasks, 4)
	assert.Equal(t, []domain.TaskID{2}, both.Parents)
}

func TestRemoveTask_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := NewRemoveTask(s, domain.NopLogger{}).Execute(context.Background(), RemoveTaskInput{TaskID: 1})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}
