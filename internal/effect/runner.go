// Package effect runs the side effects triggered by dispatched actions.
package effect

import (
	"context"
	"sync"
)

// Runner tracks effect goroutines so callers can wait for them to
// finish or cancel them on shutdown.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewRunner creates a Runner whose goroutines are cancelled by Close.
func NewRunner() *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{ctx: ctx, cancel: cancel}
}

// Go starts fn in a tracked goroutine. It returns false without
// starting anything once the runner is closed.
func (r *Runner) Go(fn func(ctx context.Context)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(r.ctx)
	}()
	return true
}

// Wait blocks until every started goroutine has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// WaitContext is Wait bounded by ctx.
func (r *Runner) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels running goroutines and waits for them to return.
// Close is idempotent.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
