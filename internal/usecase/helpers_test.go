package usecase

import (
	"testing"
	"time"

	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/store"
	"github.com/runoshun/opus/internal/testutil"
)

var testStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(domain.NewRootState(),
		store.WithClock(testutil.NewFakeClock(testStart)),
		store.WithIDGenerator(&testutil.SequenceIDGenerator{}),
	)
}

// seed adds tasks in order; ids are 1..n.
func seed(t *testing.T, s *store.Store, data ...domain.TaskData) {
	t.Helper()
	for _, d := range data {
		s.Add(d)
	}
}

func ids(tasks []domain.Task) []domain.TaskID {
	out := make([]domain.TaskID, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
