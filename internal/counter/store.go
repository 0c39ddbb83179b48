package counter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/mvi/internal/clock"
	"github.com/verte-zerg/mvi/internal/mvi"
)

// DefaultAsyncDelay is the simulated latency of AsyncIncrement.
const DefaultAsyncDelay = time.Second

const storeName = "counter"

// Store is the counter screen's mvi.Store.
type Store struct {
	state    *mvi.Subject[State]
	sched    mvi.Scheduler
	clock    clock.Clock
	delay    time.Duration
	logger   *slog.Logger
	recorder mvi.Recorder
}

var _ mvi.Store[State, Intent] = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for the async delay.
func WithClock(c clock.Clock) Option { return func(s *Store) { s.clock = c } }

// WithAsyncDelay overrides DefaultAsyncDelay.
func WithAsyncDelay(d time.Duration) Option { return func(s *Store) { s.delay = d } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithRecorder sets the intent recorder.
func WithRecorder(r mvi.Recorder) Option { return func(s *Store) { s.recorder = r } }

// NewStore constructs a counter store with default state.
func NewStore(sched mvi.Scheduler, opts ...Option) *Store {
	s := &Store{
		state:    mvi.NewSubject(State{}),
		sched:    sched,
		clock:    clock.Real(),
		delay:    DefaultAsyncDelay,
		logger:   slog.Default(),
		recorder: mvi.NopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State { return s.state.Get() }

// Subscribe registers fn for every state replacement.
func (s *Store) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

// Send applies intent.
func (s *Store) Send(intent Intent) {
	s.recorder.Intent(storeName, intent.String())
	switch intent {
	case Increment:
		s.handleIncrement()
	case Decrement:
		s.handleDecrement()
	case Reset:
		s.handleReset()
	case AsyncIncrement:
		s.handleAsyncIncrement()
	case ClearLastOperation:
		s.handleClearLastOperation()
	default:
		s.logger.Warn("ignoring unknown counter intent", "intent", int(intent))
	}
}

func (s *Store) handleIncrement() {
	st := s.State()
	next := st.Count + 1
	s.state.Set(st.With(Count(next), LastOperation(fmt.Sprintf("Incremented to %d", next))))
}

func (s *Store) handleDecrement() {
	st := s.State()
	next := st.Count - 1
	s.state.Set(st.With(Count(next), LastOperation(fmt.Sprintf("Decremented to %d", next))))
}

func (s *Store) handleReset() {
	s.state.Set(s.State().With(Count(0), LastOperation("Reset to 0")))
}

// Overlapping async increments are independent; each applies +1 to whatever
// count is current when its delay ends.
func (s *Store) handleAsyncIncrement() {
	s.state.Set(s.State().With(Loading(true), LastOperation("Processing async increment...")))

	clk, delay := s.clock, s.delay
	s.sched.Launch(func(ctx context.Context) func() {
		if err := clock.Sleep(ctx, clk, delay); err != nil {
			s.logger.Debug("async increment abandoned", "error", err)
			return nil
		}
		return func() {
			st := s.State()
			next := st.Count + 1
			s.state.Set(st.With(
				Count(next),
				Loading(false),
				LastOperation(fmt.Sprintf("Async incremented to %d", next)),
			))
		}
	})
}

func (s *Store) handleClearLastOperation() {
	s.state.Set(s.State().With(LastOperation("")))
}
