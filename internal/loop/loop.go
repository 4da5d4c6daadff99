// Package loop provides the single control thread the place page runs on.
// Every mutation of panel state happens inside a function executed by Run;
// network completions and region callbacks are posted back onto it.
package loop

import (
	"context"
	"errors"
	"sync"
)

var ErrStopped = errors.New("loop: stopped")

type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1), stopped: make(chan struct{})}
}

// Post schedules fn for a later turn. Safe from any goroutine, including
// from inside a running turn; it never blocks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions one at a time until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		for _, fn := range l.take() {
			fn()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queue
	l.queue = nil
	return q
}

// Manual is a Scheduler for tests: posted functions run only when the test
// calls Step or Drain.
type Manual struct {
	queue []func()
}

func (m *Manual) Post(fn func()) { m.queue = append(m.queue, fn) }

func (m *Manual) Pending() int { return len(m.queue) }

// Step runs the functions queued before the call; functions they post wait
// for the next Step.
func (m *Manual) Step() {
	q := m.queue
	m.queue = nil
	for _, fn := range q {
		fn()
	}
}

func (m *Manual) Drain() {
	for len(m.queue) > 0 {
		m.Step()
	}
}
