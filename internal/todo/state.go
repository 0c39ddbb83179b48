// Package todo implements the todo list screen's state, intents, store and
// persistence collaborator.
package todo

import (
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/mvi/internal/model"
)

// State is an immutable snapshot of the todo screen. EditingTodoID is
// uuid.Nil when nothing is being edited. Todos is never modified in place;
// transitions build a new slice.
type State struct {
	Todos         []model.Todo
	NewTodoText   string
	CurrentFilter model.Filter
	IsLoading     bool
	IsAddingTodo  bool
	EditingTodoID uuid.UUID
	EditingText   string
}

// Change overrides one field during a copy.
type Change func(*State)

// With returns a copy of s with the given changes applied.
func (s State) With(changes ...Change) State {
	for _, change := range changes {
		change(&s)
	}
	return s
}

// Todos replaces the list.
func Todos(todos []model.Todo) Change { return func(s *State) { s.Todos = todos } }

// NewTodoText sets the add field verbatim.
func NewTodoText(text string) Change { return func(s *State) { s.NewTodoText = text } }

// CurrentFilter selects the visible subset.
func CurrentFilter(f model.Filter) Change { return func(s *State) { s.CurrentFilter = f } }

// Loading sets the initial-load flag.
func Loading(v bool) Change { return func(s *State) { s.IsLoading = v } }

// AddingTodo sets the add-in-flight flag.
func AddingTodo(v bool) Change { return func(s *State) { s.IsAddingTodo = v } }

// Editing points the inline editor at id with text.
func Editing(id uuid.UUID, text string) Change {
	return func(s *State) {
		s.EditingTodoID = id
		s.EditingText = text
	}
}

// EditingText sets the inline editor text.
func EditingText(text string) Change { return func(s *State) { s.EditingText = text } }

// StopEditing clears both editing fields.
func StopEditing() Change { return Editing(uuid.Nil, "") }

// FilteredTodos returns the todos passing CurrentFilter, in list order.
func (s State) FilteredTodos() []model.Todo {
	if s.CurrentFilter == model.FilterAll {
		return s.Todos
	}
	out := make([]model.Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if s.CurrentFilter.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// CanAddTodo reports whether the trimmed new text is non-empty and no add is in flight.
func (s State) CanAddTodo() bool {
	return strings.TrimSpace(s.NewTodoText) != "" && !s.IsAddingTodo
}

// ActiveTodoCount counts todos not yet completed.
func (s State) ActiveTodoCount() int {
	n := 0
	for _, t := range s.Todos {
		if !t.IsCompleted {
			n++
		}
	}
	return n
}

// CompletedTodoCount counts completed todos.
func (s State) CompletedTodoCount() int {
	return len(s.Todos) - s.ActiveTodoCount()
}

// IsEmpty reports whether there are no todos at all.
func (s State) IsEmpty() bool { return len(s.Todos) == 0 }

// IsEditing reports whether a todo is being edited.
func (s State) IsEditing() bool { return s.EditingTodoID != uuid.Nil }

// Index returns the position of id in Todos, or -1.
func (s State) Index(id uuid.UUID) int {
	for i, t := range s.Todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// normalized enforces the list invariants: one entry per ID (first wins) and
// an editing reference that still resolves.
func (s State) normalized() State {
	if unique := dedupe(s.Todos); len(unique) != len(s.Todos) {
		s.Todos = unique
	}
	if s.IsEditing() && s.Index(s.EditingTodoID) < 0 {
		s.EditingTodoID = uuid.Nil
		s.EditingText = ""
	}
	return s
}

func dedupe(todos []model.Todo) []model.Todo {
	seen := make(map[uuid.UUID]struct{}, len(todos))
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func replaced(todos []model.Todo, i int, t model.Todo) []model.Todo {
	out := append([]model.Todo(nil), todos...)
	out[i] = t
	return out
}

func appended(todos []model.Todo, t model.Todo) []model.Todo {
	out := make([]model.Todo, 0, len(todos)+1)
	out = append(out, todos...)
	return append(out, t)
}

func without(todos []model.Todo, id uuid.UUID) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
