// Package persist keeps a session snapshot of the state tree in sync
// with the store, writing it after changes settle.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/infra/snapshot"
)

// Subscriber is the part of the store the persister observes.
type Subscriber interface {
	Subscribe(fn func(domain.RootState)) (unsubscribe func())
}

// Option configures a Persister.
type Option func(*Persister)

// WithClock sets the clock driving the debounce timer.
func WithClock(clock domain.Clock) Option {
	return func(p *Persister) { p.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger domain.Logger) Option {
	return func(p *Persister) { p.logger = logger }
}

// WithDebounce sets the quiet period before a write.
func WithDebounce(d time.Duration) Option {
	return func(p *Persister) { p.debounce = d }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(p *Persister) { p.key = key }
}

// Persister loads the session snapshot at startup and writes the latest
// state once no change has arrived for the debounce period.
//
// Storage that cannot be reached at Load disables the persister for the
// rest of the session; it is not retried.
// Fields are ordered to minimize memory padding.
type Persister struct {
	backend     domain.SnapshotStore
	codec       *snapshot.Codec
	clock       domain.Clock
	logger      domain.Logger
	timer       domain.Timer
	pending     *domain.RootState
	unsubscribe func()
	key         string
	debounce    time.Duration
	pendingSeq  uint64
	writtenSeq  uint64
	lastDigest  snapshot.Digest
	mu          sync.Mutex // guards timer, pending, pendingSeq, unsubscribe, disabled
	writeMu     sync.Mutex // serializes writes; guards writtenSeq, lastDigest
	disabled    bool
}

// New creates a Persister writing through backend. A nil backend
// disables persistence.
func New(backend domain.SnapshotStore, codec *snapshot.Codec, opts ...Option) *Persister {
	p := &Persister{
		backend:  backend,
		codec:    codec,
		key:      domain.SnapshotKey,
		debounce: domain.DefaultPersistDebounce,
		disabled: backend == nil,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = domain.RealClock{}
	}
	if p.logger == nil {
		p.logger = domain.NopLogger{}
	}
	return p
}

// Enabled reports whether snapshots are being written.
func (p *Persister) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.disabled
}

// Load reads the snapshot. It returns the default state and false when
// there is no usable snapshot. Storage errors disable the persister.
func (p *Persister) Load(ctx context.Context) (domain.RootState, bool) {
	if err := ctx.Err(); err != nil {
		return domain.NewRootState(), false
	}
	if !p.Enabled() {
		p.logger.Info(0, "persist", "persistence disabled for this session")
		return domain.NewRootState(), false
	}

	data, err := p.backend.Get(p.key)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		p.logger.Debug(0, "persist", "no snapshot, starting empty")
		return domain.NewRootState(), false
	case err != nil:
		p.disable(fmt.Sprintf("session storage unavailable, persistence disabled: %v", err))
		return domain.NewRootState(), false
	}

	state, err := p.codec.Decode(data)
	if err != nil {
		p.logger.Warn(0, "persist", fmt.Sprintf("ignoring unreadable snapshot: %v", err))
		return domain.NewRootState(), false
	}

	if plain, err := p.codec.Marshal(state); err == nil {
		p.writeMu.Lock()
		p.lastDigest = snapshot.Sum(plain)
		p.writeMu.Unlock()
	}

	p.logger.Info(0, "persist", fmt.Sprintf("loaded %d tasks", len(state.Tasks.TaskList)))
	return state, true
}

// Attach subscribes to s. Every change re-arms the debounce timer.
func (p *Persister) Attach(s Subscriber) {
	unsubscribe := s.Subscribe(p.onChange)

	p.mu.Lock()
	prev := p.unsubscribe
	p.unsubscribe = unsubscribe
	p.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (p *Persister) onChange(state domain.RootState) {
	p.mu.Lock()
	if p.disabled {
		p.mu.Unlock()
		return
	}
	p.pending = &state
	p.pendingSeq++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.debounce <= 0 {
		p.mu.Unlock()
		p.fire()
		return
	}
	p.timer = p.clock.AfterFunc(p.debounce, p.fire)
	p.mu.Unlock()
}

func (p *Persister) fire() {
	state, seq, ok := p.takePending()
	if !ok {
		return
	}
	if err := p.write(state, seq); err != nil {
		p.logger.Error(0, "persist", err.Error())
	}
}

// takePending stops the timer and hands over the unwritten state.
func (p *Persister) takePending() (domain.RootState, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.pending == nil {
		return domain.RootState{}, 0, false
	}
	state := *p.pending
	p.pending = nil
	return state, p.pendingSeq, true
}

// Flush writes any unwritten state now instead of waiting for the timer.
func (p *Persister) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state, seq, ok := p.takePending()
	if !ok {
		return nil
	}
	return p.write(state, seq)
}

// Close stops the debounce timer and detaches from the store. Unwritten
// state is dropped; call Flush first to keep it.
func (p *Persister) Close() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pending = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// write encodes state and stores it unless a newer state was already
// written or the content is unchanged since the last write.
func (p *Persister) write(state domain.RootState, seq uint64) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if seq <= p.writtenSeq {
		return nil
	}

	plain, err := p.codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	digest := snapshot.Sum(plain)
	if digest == p.lastDigest {
		p.writtenSeq = seq
		p.logger.Debug(0, "persist", "snapshot unchanged, skipping write")
		return nil
	}

	data, err := p.codec.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal snapshot: %w", err)
	}
	if err := p.backend.Put(p.key, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	p.lastDigest = digest
	p.writtenSeq = seq
	p.logger.Debug(0, "persist", fmt.Sprintf("snapshot written (%d bytes, %s)", len(data), digest.String()[:12]))
	return nil
}

func (p *Persister) disable(reason string) {
	p.mu.Lock()
	p.disabled = true
	p.mu.Unlock()
	p.logger.Warn(0, "persist", reason)
}
