package counter

import (
	"testing"
	"time"

	"github.com/verte-zerg/mvi/internal/clock"
	"github.com/verte-zerg/mvi/internal/mvi"
)

type recordedIntent struct {
	store string
	name  string
}

type intentLog []recordedIntent

func (l *intentLog) Intent(store, name string) {
	*l = append(*l, recordedIntent{store: store, name: name})
}

func newTestStore(t *testing.T) (*Store, *mvi.Manual, *clock.Fake) {
	t.Helper()
	sched := mvi.NewManual()
	clk := clock.NewFake(time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC))
	return NewStore(sched, WithClock(clk)), sched, clk
}

func TestCountIsNetSumOfSteps(t *testing.T) {
	s, _, _ := newTestStore(t)
	intents := []Intent{Increment, Increment, Decrement, Increment, Reset, Decrement, Decrement, Increment}
	want := 0
	for _, intent := range intents {
		s.Send(intent)
		switch intent {
		case Increment:
			want++
		case Decrement:
			want--
		case Reset:
			want = 0
		}
		if got := s.State().Count; got != want {
			t.Fatalf("after %v expected count %d, got %d", intent, want, got)
		}
	}
	if s.State().LastOperation != "Incremented to -1" {
		t.Fatalf("unexpected last operation: %q", s.State().LastOperation)
	}
}

func TestLastOperationMessages(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Send(Increment)
	if got := s.State().LastOperation; got != "Incremented to 1" {
		t.Fatalf("unexpected message: %q", got)
	}
	s.Send(Decrement)
	s.Send(Decrement)
	if got := s.State().LastOperation; got != "Decremented to -1" {
		t.Fatalf("unexpected message: %q", got)
	}
	s.Send(Reset)
	if got := s.State().LastOperation; got != "Reset to 0" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestClearLastOperationAlwaysEmpties(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Send(ClearLastOperation)
	if s.State().LastOperation != "" {
		t.Fatalf("expected empty last operation")
	}
	s.Send(Increment)
	s.Send(ClearLastOperation)
	if s.State().LastOperation != "" {
		t.Fatalf("expected empty last operation, got %q", s.State().LastOperation)
	}
	if s.State().Count != 1 {
		t.Fatalf("clear should not touch count")
	}
}

func TestAsyncIncrementLoadsThenIncrements(t *testing.T) {
	s, sched, clk := newTestStore(t)
	s.Send(Increment)

	s.Send(AsyncIncrement)
	st := s.State()
	if !st.IsLoading {
		t.Fatalf("expected loading immediately after async increment")
	}
	if st.Count != 1 {
		t.Fatalf("count must not change before the delay, got %d", st.Count)
	}
	if st.LastOperation != "Processing async increment..." {
		t.Fatalf("unexpected processing note: %q", st.LastOperation)
	}

	sched.RunAll()
	st = s.State()
	if st.IsLoading || st.Count != 2 {
		t.Fatalf("unexpected state after delay: %+v", st)
	}
	if st.LastOperation != "Async incremented to 2" {
		t.Fatalf("unexpected message: %q", st.LastOperation)
	}
	waits := clk.Waits()
	if len(waits) != 1 || waits[0] != DefaultAsyncDelay {
		t.Fatalf("expected a single %v wait, got %v", DefaultAsyncDelay, waits)
	}
}

func TestOverlappingAsyncIncrementsAreIndependent(t *testing.T) {
	s, sched, _ := newTestStore(t)
	s.Send(AsyncIncrement)
	s.Send(AsyncIncrement)
	if sched.Pending() != 2 {
		t.Fatalf("expected two independent steps, got %d", sched.Pending())
	}

	sched.RunLast()
	if s.State().Count != 1 || s.State().IsLoading {
		t.Fatalf("first completion should apply, got %+v", s.State())
	}
	s.Send(Increment)
	sched.RunNext()
	if s.State().Count != 3 {
		t.Fatalf("late completion applies to current count, got %d", s.State().Count)
	}
}

func TestSubscribersSeeEveryReplacement(t *testing.T) {
	s, sched, _ := newTestStore(t)
	var seen []State
	cancel := s.Subscribe(func(st State) { seen = append(seen, st) })
	defer cancel()

	s.Send(Increment)
	if len(seen) != 1 || seen[0].Count != 1 {
		t.Fatalf("expected synchronous notification, got %+v", seen)
	}
	s.Send(AsyncIncrement)
	sched.RunAll()
	if len(seen) != 3 || !seen[1].IsLoading || seen[2].IsLoading {
		t.Fatalf("unexpected notifications: %+v", seen)
	}
}

func TestRecorderSeesIntents(t *testing.T) {
	var log intentLog
	s := NewStore(mvi.NewManual(), WithRecorder(&log), WithAsyncDelay(time.Millisecond))
	s.Send(Increment)
	s.Send(ClearLastOperation)
	if len(log) != 2 || log[0] != (recordedIntent{"counter", "increment"}) || log[1].name != "clearLastOperation" {
		t.Fatalf("unexpected recorded intents: %+v", log)
	}
}
