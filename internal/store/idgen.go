package store

import (
	"sync"

	"github.com/runoshun/opus/internal/domain"
)

// IDGenerator issues timestamp-based task ids that strictly increase:
// each id is the current Unix time in milliseconds, or the previous id
// plus one when the clock has not moved past it.
type IDGenerator struct {
	clock domain.Clock
	last  domain.TaskID
	mu    sync.Mutex
}

// NewIDGenerator returns a generator that never issues an id at or
// below floor. Pass the largest id of the loaded state so ids are not
// reused after a restart.
func NewIDGenerator(clock domain.Clock, floor domain.TaskID) *IDGenerator {
	return &IDGenerator{clock: clock, last: floor}
}

// NextID returns a new id.
func (g *IDGenerator) NextID() domain.TaskID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := domain.TaskID(g.clock.Now().UnixMilli())
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Ensure IDGenerator implements domain.IDGenerator.
var _ domain.IDGenerator = (*IDGenerator)(nil)
