// Package clock abstracts time so delayed transitions can be tested without sleeping.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time and one-shot timers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Sleep waits for d on c or until ctx is done.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// Fake is a deterministic Clock. Time stands still except that every
// After call advances it by the requested duration and fires at once, so
// work that waits on the clock completes synchronously in tests.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	waited  []time.Duration
}

// NewFake returns a Fake starting at initial.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// After advances the fake time by d and returns an already-fired channel.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d > 0 {
		f.current = f.current.Add(d)
	}
	f.waited = append(f.waited, d)
	ch := make(chan time.Time, 1)
	ch <- f.current
	return ch
}

// Advance moves the fake time forward without registering a wait.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Waits returns the durations passed to After, in call order.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waited...)
}
