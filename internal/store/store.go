// Package store holds the application state and routes actions through
// the reducer to subscribers and effects.
package store

import (
	"context"
	"sync"

	"github.com/runoshun/opus/internal/domain"
)

// Dispatcher accepts actions.
type Dispatcher interface {
	Dispatch(action domain.Action)
}

// Effect reacts to dispatched actions, possibly dispatching more.
// Handle is called synchronously after the reducer ran, so it must not
// block; long-running work belongs in its own goroutine.
type Effect interface {
	Handle(ctx context.Context, action domain.Action, d Dispatcher)
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(ctx context.Context, action domain.Action, d Dispatcher)

// Handle calls f.
func (f EffectFunc) Handle(ctx context.Context, action domain.Action, d Dispatcher) {
	f(ctx, action, d)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for creation timestamps.
func WithClock(clock domain.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator sets the task id source.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithLogger sets the logger.
func WithLogger(logger domain.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store owns the state tree. All changes go through Dispatch, which runs
// the reducer under a lock so two reductions never interleave.
//
// Subscribers are called after every change with the latest state, one
// notification at a time. A subscriber must not dispatch synchronously.
// Fields are ordered to minimize memory padding.
type Store struct {
	clock        domain.Clock
	ids          domain.IDGenerator
	logger       domain.Logger
	subscribers  map[int]func(domain.RootState)
	state        domain.RootState
	effects      []Effect
	version      uint64
	notified     uint64
	nextSubID    int
	mu           sync.Mutex // guards state and version
	notifyMu     sync.Mutex // serializes notifications
	subscriberMu sync.Mutex // guards subscribers, nextSubID and effects
}

// New creates a Store holding initial.
func New(initial domain.RootState, opts ...Option) *Store {
	s := &Store{
		state:       initial.Clone(),
		subscribers: make(map[int]func(domain.RootState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = domain.RealClock{}
	}
	if s.logger == nil {
		s.logger = domain.NopLogger{}
	}
	if s.ids == nil {
		s.ids = NewIDGenerator(s.clock, initial.MaxID())
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() domain.RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version increments on every state change.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dispatch applies action with a background context.
func (s *Store) Dispatch(action domain.Action) {
	s.DispatchContext(context.Background(), action)
}

// DispatchContext runs the reducer, notifies subscribers if the state
// changed and then hands the action to every registered effect.
func (s *Store) DispatchContext(ctx context.Context, action domain.Action) {
	if action == nil {
		return
	}

	s.mu.Lock()
	next := domain.ReduceRoot(s.state, action)
	changed := !sameState(next, s.state)
	if changed {
		s.state = next
		s.version++
	}
	s.mu.Unlock()

	s.logger.Debug(actionTaskID(action), "store", string(action.Type()))

	if changed {
		s.notify()
	}

	s.subscriberMu.Lock()
	effects := append([]Effect(nil), s.effects...)
	s.subscriberMu.Unlock()

	for _, e := range effects {
		e.Handle(ctx, action, s)
	}
}

// Add assigns an id and creation time to data, dispatches the add and
// returns the id.
func (s *Store) Add(data domain.TaskData) domain.TaskID {
	return s.AddContext(context.Background(), data)
}

// AddContext is Add with a context passed on to effects.
func (s *Store) AddContext(ctx context.Context, data domain.TaskData) domain.TaskID {
	id := s.ids.NextID()
	s.DispatchContext(ctx, domain.ActionAdd{
		ID:      id,
		Created: s.clock.Now(),
		Data:    data,
	})
	return id
}

// Subscribe registers fn to receive the state after every change.
func (s *Store) Subscribe(fn func(domain.RootState)) (unsubscribe func()) {
	s.subscriberMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subscriberMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subscriberMu.Lock()
			delete(s.subscribers, id)
			s.subscriberMu.Unlock()
		})
	}
}

// RegisterEffect adds an effect. Effects see every later action.
func (s *Store) RegisterEffect(e Effect) {
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	s.effects = append(s.effects, e)
}

// notify delivers the latest state to every subscriber unless a
// concurrent notification already delivered it.
func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.version == s.notified {
		s.mu.Unlock()
		return
	}
	state := s.state.Clone()
	s.notified = s.version
	s.mu.Unlock()

	s.subscriberMu.Lock()
	subs := make([]func(domain.RootState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subscriberMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func sameState(a, b domain.RootState) bool {
	x, y := a.Tasks.TaskList, b.Tasks.TaskList
	if len(x) != len(y) {
		return false
	}
	return len(x) == 0 || &x[0] == &y[0]
}

func actionTaskID(action domain.Action) domain.TaskID {
	switch a := action.(type) {
	case domain.ActionAdd:
		return a.ID
	case domain.ActionAddPending:
		return a.ID
	case domain.ActionAddSuccess:
		return a.ID
	case domain.ActionAddFail:
		return a.ID
	case domain.ActionChangeState:
		return a.ID
	case domain.ActionRemove:
		return a.ID
	}
	return 0
}

// Ensure Store implements Dispatcher and domain.TaskStore.
var (
	_ Dispatcher       = (*Store)(nil)
	_ domain.TaskStore = (*Store)(nil)
)
