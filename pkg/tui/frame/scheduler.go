// ABOUTME: Scheduler delivers animation ticks with non-decreasing millisecond timestamps.
// ABOUTME: The next tick is armed only after the previous callback returns, so slow consumers throttle the cadence.

package frame

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval targets 60 frames per second.
const DefaultInterval = time.Second / 60

// Tick is one animation frame.
type Tick struct {
	Seq  uint64 // 1-based tick number within a run
	Time int64  // milliseconds since the Unix epoch, non-decreasing
}

// Scheduler delivers Ticks from its own goroutine. It is not a fixed-rate
// timer: the wait for tick N+1 starts when the callback for tick N returns.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	onPanic  func(error)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithPanicHandler recovers a panic raised by the tick callback and hands it
// to fn. No further ticks follow. Without a handler the panic propagates.
func WithPanicHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		s.onPanic = fn
	}
}

// NewScheduler creates a Scheduler with the given interval hint. Non-positive
// intervals fall back to DefaultInterval.
func NewScheduler(interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the target gap between the end of one callback and the next tick.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start begins delivering ticks to onTick until Stop is called or ctx is
// done. Calling Start while running is a no-op.
func (s *Scheduler) Start(ctx context.Context, onTick func(Tick)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, onTick, s.done)
}

// Stop halts future ticks. A tick already being delivered completes first;
// once Stop returns no further tick is delivered. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the scheduler has been started and not stopped.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, onTick func(Tick), done chan<- struct{}) {
	defer close(done)
	defer func() {
		if s.onPanic == nil {
			return
		}
		if r := recover(); r != nil {
			s.onPanic(fmt.Errorf("tick callback panic: %v", r))
		}
	}()

	epoch := s.now()
	base := epoch.UnixMilli()
	var seq uint64
	var last int64

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		// A stop racing with the timer wins.
		if ctx.Err() != nil {
			return
		}

		ts := base + s.now().Sub(epoch).Milliseconds()
		if ts < last {
			ts = last
		}
		last = ts
		seq++
		onTick(Tick{Seq: seq, Time: ts})

		timer.Reset(s.interval)
	}
}
