package todo

import (
	"github.com/google/uuid"

	"github.com/verte-zerg/mvi/internal/model"
)

// Intent is a user action on the todo screen. The set is closed: only the
// types below implement it.
type Intent interface {
	intentName() string
}

type (
	LoadTodos         struct{}
	RefreshTodos      struct{}
	UpdateNewTodoText struct{ Text string }
	AddTodo           struct{}
	ToggleTodo        struct{ ID uuid.UUID }
	DeleteTodo        struct{ ID uuid.UUID }
	ClearCompleted    struct{}
	StartEditing      struct{ ID uuid.UUID }
	UpdateEditingText struct{ Text string }
	SaveEdit          struct{}
	CancelEdit        struct{}
	ChangeFilter      struct{ Filter model.Filter }
)

func (LoadTodos) intentName() string         { return "loadTodos" }
func (RefreshTodos) intentName() string      { return "refreshTodos" }
func (UpdateNewTodoText) intentName() string { return "updateNewTodoText" }
func (AddTodo) intentName() string           { return "addTodo" }
func (ToggleTodo) intentName() string        { return "toggleTodo" }
func (DeleteTodo) intentName() string        { return "deleteTodo" }
func (ClearCompleted) intentName() string    { return "clearCompleted" }
func (StartEditing) intentName() string      { return "startEditing" }
func (UpdateEditingText) intentName() string { return "updateEditingText" }
func (SaveEdit) intentName() string          { return "saveEdit" }
func (CancelEdit) intentName() string        { return "cancelEdit" }
func (ChangeFilter) intentName() string      { return "changeFilter" }
