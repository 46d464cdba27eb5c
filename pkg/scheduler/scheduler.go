// Package scheduler drives periodic, non-overlapping refresh cycles.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrNoCallback is returned by Trigger when Start has not registered a
// callback (or Stop has since cleared it).
var ErrNoCallback = errors.New("no callback registered")

// Callback is one refresh cycle. An error return is a handled failure: a
// scheduled tick logs it and re-arms anyway; a manual Trigger hands it to
// the caller.
type Callback func(ctx context.Context) error

// Scheduler arms at most one timer. The next tick is armed only after the
// current callback returns, so cycles never overlap regardless of how long
// a refresh takes. The interval is read fresh from intervalFn on every
// scheduling decision; a non-positive interval arms no timer while Trigger
// keeps working on demand.
type Scheduler struct {
	intervalFn func() time.Duration

	mu    sync.Mutex
	cb    Callback
	ctx   context.Context
	timer *time.Timer
	gen   uint64 // invalidates timers armed before the latest Start/Stop
}

// New creates an idle scheduler. intervalFn is consulted every time a timer
// is (re)armed.
func New(intervalFn func() time.Duration) *Scheduler {
	return &Scheduler{intervalFn: intervalFn}
}

// Start registers the callback, replacing any previous one, and arms the
// timer if the current interval is positive. ctx bounds every scheduled
// tick; cancelling it behaves like Stop for in-flight work.
func (s *Scheduler) Start(ctx context.Context, cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.cb = cb
	s.ctx = ctx
	s.armLocked()
}

// Stop cancels any pending timer and clears the callback. Idempotent and
// safe from any state, including before Start was ever called.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.cb = nil
	s.ctx = nil
}

// Trigger invokes the registered callback immediately and exactly once,
// without touching the timer's schedule. The callback's error is returned
// to the caller instead of being swallowed.
func (s *Scheduler) Trigger() error {
	s.mu.Lock()
	cb := s.cb
	ctx := s.ctx
	s.mu.Unlock()

	if cb == nil {
		return ErrNoCallback
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return cb(ctx)
}

// Scheduled reports whether a timer is currently armed.
func (s *Scheduler) Scheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// armLocked reads the interval fresh and arms the next tick. Callers hold
// s.mu.
func (s *Scheduler) armLocked() {
	interval := s.intervalFn()
	if interval <= 0 {
		s.timer = nil
		return
	}
	gen := s.gen
	s.timer = time.AfterFunc(interval, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.cb == nil {
		s.mu.Unlock()
		return
	}
	cb := s.cb
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := cb(ctx); err != nil {
		log.Printf("Scheduled refresh failed: %v", err)
	}

	// Re-arm only after the callback has returned, and only if no
	// Start/Stop happened while it ran.
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.cb == nil {
		return
	}
	s.armLocked()
}
