// Package tui provides the Bubble Tea interface for the counter and todo screens.
package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mvi/internal/counter"
	"github.com/verte-zerg/mvi/internal/model"
	"github.com/verte-zerg/mvi/internal/mvi"
	"github.com/verte-zerg/mvi/internal/todo"
)

// Tab identifies a screen.
type Tab int

const (
	TabCounter Tab = iota
	TabTodo
)

func (t Tab) String() string {
	if t == TabTodo {
		return "todo"
	}
	return "counter"
}

// ParseTab accepts "counter" or "todo"; anything else selects the counter.
func ParseTab(s string) Tab {
	if strings.EqualFold(strings.TrimSpace(s), "todo") {
		return TabTodo
	}
	return TabCounter
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdd
	modeEdit
)

// Model renders both screens and translates key presses into store intents.
// It only reads store state; every change goes through Send or a Binding.
type Model struct {
	counter *counter.Store
	todos   *todo.Store
	sched   *Scheduler
	logger  *slog.Logger

	tab    Tab
	mode   inputMode
	cursor int

	input   textinput.Model
	text    mvi.Binding[string]
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithTab selects the tab shown first.
func WithTab(t Tab) Option { return func(m *Model) { m.tab = t } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(m *Model) { m.logger = l } }

// NewModel builds the UI over two stores that launch their steps on sched.
func NewModel(counterStore *counter.Store, todoStore *todo.Store, sched *Scheduler, opts ...Option) *Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 200

	m := &Model{
		counter: counterStore,
		todos:   todoStore,
		sched:   sched,
		logger:  slog.Default(),
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements tea.Model. The todo list starts loading right away.
func (m *Model) Init() tea.Cmd {
	m.logger.Debug("tui started", "tab", m.tab)
	m.todos.Send(todo.LoadTodos{})
	return tea.Batch(m.spinner.Tick, m.sched.Flush())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case stepDoneMsg:
		if msg.apply != nil {
			msg.apply()
		}
		m.clampCursor()
		return m, m.sched.Flush()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.mode != modeBrowse {
			cmd = m.handleInputKey(msg)
		} else {
			cmd = m.handleBrowseKey(msg)
		}
		m.clampCursor()
		return m, tea.Batch(cmd, m.sched.Flush())
	default:
		return m, nil
	}
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC, key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Tab):
		if m.tab == TabCounter {
			m.tab = TabTodo
		} else {
			m.tab = TabCounter
		}
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	if m.tab == TabCounter {
		m.handleCounterKey(msg)
		return nil
	}
	return m.handleTodoKey(msg)
}

func (m *Model) handleCounterKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Increment):
		m.counter.Send(counter.Increment)
	case key.Matches(msg, m.keys.Decrement):
		m.counter.Send(counter.Decrement)
	case key.Matches(msg, m.keys.Reset):
		m.counter.Send(counter.Reset)
	case key.Matches(msg, m.keys.AsyncIncrement):
		if !m.counter.State().IsLoading {
			m.counter.Send(counter.AsyncIncrement)
		}
	case key.Matches(msg, m.keys.ClearNote):
		m.counter.Send(counter.ClearLastOperation)
	}
}

func (m *Model) handleTodoKey(msg tea.KeyMsg) tea.Cmd {
	filter := m.todos.FilterBinding()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Add):
		return m.beginInput(modeAdd, m.todos.NewTodoTextBinding(), "New todo...")
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.todos.Send(todo.StartEditing{ID: t.ID})
			return m.beginInput(modeEdit, m.todos.EditingTextBinding(), "Edit todo...")
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.todos.Send(todo.ToggleTodo{ID: t.ID})
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.todos.Send(todo.DeleteTodo{ID: t.ID})
		}
	case key.Matches(msg, m.keys.ClearCompleted):
		m.todos.Send(todo.ClearCompleted{})
	case key.Matches(msg, m.keys.NextFilter):
		filter.Set(filter.Get().Next())
	case key.Matches(msg, m.keys.FilterAll):
		filter.Set(model.FilterAll)
	case key.Matches(msg, m.keys.FilterActive):
		filter.Set(model.FilterActive)
	case key.Matches(msg, m.keys.FilterDone):
		filter.Set(model.FilterCompleted)
	case key.Matches(msg, m.keys.Refresh):
		m.todos.Send(todo.RefreshTodos{})
	}
	return nil
}

// beginInput focuses the shared text input on a store field.
func (m *Model) beginInput(mode inputMode, binding mvi.Binding[string], placeholder string) tea.Cmd {
	m.mode = mode
	m.text = binding
	m.input.Placeholder = placeholder
	m.input.SetValue(binding.Get())
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return tea.Quit
	case key.Matches(msg, m.keys.Submit):
		if m.mode == modeAdd {
			if !m.todos.State().CanAddTodo() {
				return nil
			}
			m.todos.Send(todo.AddTodo{})
		} else {
			m.todos.Send(todo.SaveEdit{})
		}
		m.endInput()
		return nil
	case key.Matches(msg, m.keys.Cancel):
		if m.mode == modeAdd {
			m.text.Set("")
		} else {
			m.todos.Send(todo.CancelEdit{})
		}
		m.endInput()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.text.Get() {
		m.text.Set(m.input.Value())
	}
	return cmd
}

func (m *Model) selected() (model.Todo, bool) {
	visible := m.todos.State().FilteredTodos()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Todo{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.todos.State().FilteredTodos())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
