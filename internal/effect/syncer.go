package effect

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/runoshun/opus/internal/domain"
)

// SimulatedSyncer stands in for a remote backend. It accepts every task
// unless a failure rate is set, in which case each sync fails with that
// probability.
type SimulatedSyncer struct {
	rng      *rand.Rand
	failRate float64
	mu       sync.Mutex
}

// NewSimulatedSyncer creates a syncer failing with probability failRate.
func NewSimulatedSyncer(failRate float64) *SimulatedSyncer {
	return NewSimulatedSyncerWithSource(failRate, rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSimulatedSyncerWithSource is NewSimulatedSyncer with a fixed random
// source for reproducible runs.
func NewSimulatedSyncerWithSource(failRate float64, src rand.Source) *SimulatedSyncer {
	return &SimulatedSyncer{rng: rand.New(src), failRate: failRate}
}

// Sync returns domain.ErrSyncFailed for simulated failures.
func (s *SimulatedSyncer) Sync(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failRate <= 0 {
		return nil
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	if roll < s.failRate {
		return fmt.Errorf("%w: backend rejected task %d", domain.ErrSyncFailed, task.ID)
	}
	return nil
}

// Ensure SimulatedSyncer implements domain.Syncer.
var _ domain.Syncer = (*SimulatedSyncer)(nil)
