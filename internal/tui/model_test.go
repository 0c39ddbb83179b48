package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mvi/internal/clock"
	"github.com/verte-zerg/mvi/internal/counter"
	"github.com/verte-zerg/mvi/internal/kv"
	"github.com/verte-zerg/mvi/internal/model"
	"github.com/verte-zerg/mvi/internal/todo"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 7, 8, 9, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := NewScheduler(context.Background())
	svc := todo.NewBlobService(kv.NewMemory(), todo.WithServiceClock(clk), todo.WithServiceLogger(logger))
	m := NewModel(
		counter.NewStore(sched, counter.WithClock(clk), counter.WithLogger(logger)),
		todo.NewStore(sched, svc, todo.WithClock(clk), todo.WithLogger(logger)),
		sched,
		WithLogger(logger),
	)
	// A blinking cursor schedules timed commands that drain would wait on.
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

// drain runs cmd and every step it launches, feeding finished steps back into
// the model. Other messages, such as spinner ticks, are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case stepDoneMsg:
			_, more := m.Update(msg)
			queue = append(queue, more)
		}
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(t, m, cmd)
	}
}

func start(t *testing.T, m *Model) {
	t.Helper()
	drain(t, m, m.Init())
}

func TestInitLoadsTodos(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	if m.todos.State().IsLoading {
		t.Fatalf("expected load to finish")
	}
	if !strings.Contains(m.View(), "No todos yet") {
		t.Fatalf("expected empty-state hint:\n%s", m.View())
	}
}

func TestCounterKeys(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	press(t, m, "+", "+", "-")
	st := m.counter.State()
	if st.Count != 1 || st.LastOperation != "Decremented to 1" {
		t.Fatalf("unexpected counter state: %+v", st)
	}
	if !strings.Contains(m.View(), "Count: 1") {
		t.Fatalf("view missing count:\n%s", m.View())
	}
	press(t, m, "a")
	if st := m.counter.State(); st.Count != 2 || st.IsLoading || st.LastOperation != "Async incremented to 2" {
		t.Fatalf("unexpected state after async: %+v", st)
	}
	press(t, m, "x", "0")
	if st := m.counter.State(); st.Count != 0 || st.LastOperation != "Reset to 0" {
		t.Fatalf("unexpected state after reset: %+v", st)
	}
}

func TestAsyncIncrementIgnoredWhileLoading(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	m.counter.Send(counter.AsyncIncrement)
	pending := len(m.sched.pending)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if len(m.sched.pending) != 0 {
		t.Fatalf("key press should only flush the existing step")
	}
	if pending != 1 {
		t.Fatalf("expected one launched step, got %d", pending)
	}
}

func TestAddToggleAndFilterTodos(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	press(t, m, "tab", "a", "B", "u", "y", " ", "m", "i", "l", "k", "enter")

	todos := m.todos.State().Todos
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Fatalf("unexpected todos: %+v", todos)
	}
	if m.mode != modeBrowse || m.todos.State().NewTodoText != "" {
		t.Fatalf("expected input closed and cleared")
	}

	press(t, m, "a", "W", "a", "l", "k", "enter", " ")
	st := m.todos.State()
	if !st.Todos[0].IsCompleted || st.CompletedTodoCount() != 1 || st.ActiveTodoCount() != 1 {
		t.Fatalf("expected first todo completed: %+v", st.Todos)
	}
	if !strings.Contains(m.View(), "1 active · 1 completed") {
		t.Fatalf("view missing counts:\n%s", m.View())
	}

	press(t, m, "2")
	if m.todos.State().CurrentFilter != model.FilterActive {
		t.Fatalf("expected active filter")
	}
	view := m.View()
	if strings.Contains(view, "Buy milk") || !strings.Contains(view, "Walk") {
		t.Fatalf("active filter shows wrong rows:\n%s", view)
	}
	press(t, m, "f")
	if m.todos.State().CurrentFilter != model.FilterCompleted {
		t.Fatalf("f should cycle to completed")
	}
}

func TestBlankAddKeepsInputOpen(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	press(t, m, "tab", "a", " ", "enter")
	if m.mode != modeAdd || len(m.todos.State().Todos) != 0 {
		t.Fatalf("blank title must not be added")
	}
	press(t, m, "esc")
	if m.mode != modeBrowse || m.todos.State().NewTodoText != "" {
		t.Fatalf("esc should close and clear the input")
	}
}

func TestEditAndDeleteTodo(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	press(t, m, "tab", "a", "o", "l", "d", "enter", "e")
	if !m.todos.State().IsEditing() || m.input.Value() != "old" {
		t.Fatalf("expected editing with current title, got %q", m.input.Value())
	}
	press(t, m, "!", "enter")
	st := m.todos.State()
	if st.IsEditing() || st.Todos[0].Title != "old!" {
		t.Fatalf("unexpected state after save: %+v", st)
	}

	press(t, m, "e", "?", "esc")
	if got := m.todos.State().Todos[0].Title; got != "old!" {
		t.Fatalf("cancel must keep the title, got %q", got)
	}

	press(t, m, "d")
	if !m.todos.State().IsEmpty() {
		t.Fatalf("expected todo deleted")
	}
}

func TestCursorStaysInRange(t *testing.T) {
	m := newTestModel(t)
	start(t, m)
	press(t, m, "tab", "a", "x", "enter", "a", "y", "enter", "j", "j", "j")
	if m.cursor != 1 {
		t.Fatalf("cursor should stop at the last row, got %d", m.cursor)
	}
	press(t, m, "d")
	if m.cursor != 0 {
		t.Fatalf("cursor should follow the shrinking list, got %d", m.cursor)
	}
	press(t, m, "k", "k")
	if m.cursor != 0 {
		t.Fatalf("cursor should not go negative, got %d", m.cursor)
	}
}

func TestParseTab(t *testing.T) {
	if ParseTab("Todo") != TabTodo || ParseTab("") != TabCounter || ParseTab("other") != TabCounter {
		t.Fatalf("unexpected tab parsing")
	}
}

func TestSchedulerWait(t *testing.T) {
	sched := NewScheduler(context.Background())
	release := make(chan struct{})
	sched.Launch(func(context.Context) func() {
		<-release
		return nil
	})
	cmd := sched.Flush()
	go func() {
		if batch, ok := cmd().(tea.BatchMsg); ok {
			for _, c := range batch {
				c()
			}
		}
	}()
	if sched.Wait(10 * time.Millisecond) {
		t.Fatalf("wait should time out while the step is blocked")
	}
	close(release)
	if !sched.Wait(time.Second) {
		t.Fatalf("wait should return once the step finishes")
	}
	if sched.Flush() != nil {
		t.Fatalf("flush with nothing pending should be nil")
	}
}
