package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mvi/internal/mvi"
)

// stepDoneMsg carries a finished step's continuation back to Update.
type stepDoneMsg struct {
	apply func()
}

// Scheduler turns store steps into Bubble Tea commands. Steps run on the
// program's command goroutines; continuations are applied in Model.Update,
// which is the UI context.
type Scheduler struct {
	ctx     context.Context
	pending []mvi.Step
	wg      sync.WaitGroup
}

var _ mvi.Scheduler = (*Scheduler)(nil)

// NewScheduler returns a Scheduler whose steps observe ctx.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{ctx: ctx}
}

// Launch implements mvi.Scheduler. The step starts once Flush hands it to
// the program.
func (s *Scheduler) Launch(step mvi.Step) {
	s.pending = append(s.pending, step)
}

// Flush returns the steps launched since the last call as one command.
func (s *Scheduler) Flush() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(s.pending))
	for _, step := range s.pending {
		s.wg.Add(1)
		cmds = append(cmds, func() tea.Msg {
			defer s.wg.Done()
			return stepDoneMsg{apply: step(s.ctx)}
		})
	}
	s.pending = nil
	return tea.Batch(cmds...)
}

// Wait blocks until every flushed step has returned or timeout passes. It lets
// fire-and-forget writes finish after the program exits.
func (s *Scheduler) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
