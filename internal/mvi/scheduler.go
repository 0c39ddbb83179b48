package mvi

import (
	"context"
	"sync"
)

// Step is background work launched by a transition. It runs off the UI context
// and must not touch store state; the returned continuation, if any, is applied
// back on the UI context.
type Step func(ctx context.Context) (continuation func())

// Scheduler launches steps without blocking the caller.
type Scheduler interface {
	Launch(step Step)
}

// Loop runs steps on goroutines and applies their continuations on whichever
// goroutine calls RunUntilIdle. That goroutine is the UI context.
type Loop struct {
	ctx context.Context

	mu       sync.Mutex
	queue    []func()
	inflight int
	wake     chan struct{}
}

// NewLoop returns a Loop whose steps observe ctx.
func NewLoop(ctx context.Context) *Loop {
	return &Loop{ctx: ctx, wake: make(chan struct{}, 1)}
}

// Launch implements Scheduler.
func (l *Loop) Launch(step Step) {
	l.mu.Lock()
	l.inflight++
	l.mu.Unlock()
	go func() {
		cont := step(l.ctx)
		l.mu.Lock()
		l.queue = append(l.queue, func() {
			if cont != nil {
				cont()
			}
		})
		l.mu.Unlock()
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}()
}

// RunUntilIdle applies continuations in completion order until no step is in
// flight. Continuations may launch further steps.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			next := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()
			next()
			l.mu.Lock()
			l.inflight--
			l.mu.Unlock()
			continue
		}
		idle := l.inflight == 0
		l.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Manual records steps and runs them only when asked, on the calling goroutine.
// It makes overlapping asynchronous transitions deterministic in tests.
type Manual struct {
	ctx   context.Context
	steps []Step
}

// NewManual returns an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{ctx: context.Background()}
}

// Launch implements Scheduler.
func (m *Manual) Launch(step Step) {
	m.steps = append(m.steps, step)
}

// Pending reports how many steps are waiting.
func (m *Manual) Pending() int {
	return len(m.steps)
}

// RunNext runs the oldest pending step and applies its continuation.
func (m *Manual) RunNext() bool {
	if len(m.steps) == 0 {
		return false
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	m.run(step)
	return true
}

// RunLast runs the newest pending step and applies its continuation.
func (m *Manual) RunLast() bool {
	if len(m.steps) == 0 {
		return false
	}
	step := m.steps[len(m.steps)-1]
	m.steps = m.steps[:len(m.steps)-1]
	m.run(step)
	return true
}

// RunAll runs steps oldest first, including ones launched by continuations,
// until none remain.
func (m *Manual) RunAll() {
	for m.RunNext() {
	}
}

func (m *Manual) run(step Step) {
	if cont := step(m.ctx); cont != nil {
		cont()
	}
}
