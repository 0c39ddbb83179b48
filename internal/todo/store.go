package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/mvi/internal/clock"
	"github.com/verte-zerg/mvi/internal/model"
	"github.com/verte-zerg/mvi/internal/mvi"
)

const storeName = "todo"

// Store is the todo screen's mvi.Store. Mutations update state first and then
// persist through the Service in a background step whose result is not awaited.
type Store struct {
	state    *mvi.Subject[State]
	sched    mvi.Scheduler
	service  Service
	clock    clock.Clock
	logger   *slog.Logger
	recorder mvi.Recorder
}

var _ mvi.Store[State, Intent] = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for creation timestamps.
func WithClock(c clock.Clock) Option { return func(s *Store) { s.clock = c } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithRecorder sets the intent recorder.
func WithRecorder(r mvi.Recorder) Option { return func(s *Store) { s.recorder = r } }

// NewStore constructs a todo store with default state.
func NewStore(sched mvi.Scheduler, service Service, opts ...Option) *Store {
	s := &Store{
		state:    mvi.NewSubject(State{Todos: []model.Todo{}}),
		sched:    sched,
		service:  service,
		clock:    clock.Real(),
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

// NewTodoTextBinding binds the new-todo text field.
func (s *Store) NewTodoTextBinding() mvi.Binding[string] {
	return mvi.NewBinding(
		func() string { return s.State().NewTodoText },
		func(text string) { s.Send(UpdateNewTodoText{Text: text}) },
	)
}

// EditingTextBinding binds the inline edit field.
func (s *Store) EditingTextBinding() mvi.Binding[string] {
	return mvi.NewBinding(
		func() string { return s.State().EditingText },
		func(text string) { s.Send(UpdateEditingText{Text: text}) },
	)
}

// FilterBinding binds the active filter.
func (s *Store) FilterBinding() mvi.Binding[model.Filter] {
	return mvi.NewBinding(
		func() model.Filter { return s.State().CurrentFilter },
		func(f model.Filter) { s.Send(ChangeFilter{Filter: f}) },
	)
}

// Send applies intent.
func (s *Store) Send(intent Intent) {
	if intent == nil {
		return
	}
	s.recorder.Intent(storeName, intent.intentName())
	switch in := intent.(type) {
	case LoadTodos:
		s.handleLoadTodos()
	case RefreshTodos:
		s.handleRefreshTodos()
	case UpdateNewTodoText:
		s.set(s.State().With(NewTodoText(in.Text)))
	case AddTodo:
		s.handleAddTodo()
	case ToggleTodo:
		s.handleToggleTodo(in.ID)
	case DeleteTodo:
		s.handleDeleteTodo(in.ID)
	case ClearCompleted:
		s.handleClearCompleted()
	case StartEditing:
		s.handleStartEditing(in.ID)
	case UpdateEditingText:
		s.set(s.State().With(EditingText(in.Text)))
	case SaveEdit:
		s.handleSaveEdit()
	case CancelEdit:
		s.set(s.State().With(StopEditing()))
	case ChangeFilter:
		s.set(s.State().With(CurrentFilter(in.Filter)))
	default:
		s.logger.Warn("ignoring unknown todo intent", "intent", fmt.Sprintf("%T", intent))
	}
}

func (s *Store) set(next State) {
	s.state.Set(next.normalized())
}

// Loading and data management

func (s *Store) handleLoadTodos() {
	if s.State().IsLoading {
		return
	}
	s.set(s.State().With(Loading(true)))

	service := s.service
	s.sched.Launch(func(ctx context.Context) func() {
		todos := service.LoadTodos(ctx)
		return func() {
			s.set(s.State().With(Todos(todos), Loading(false)))
		}
	})
}

func (s *Store) handleRefreshTodos() {
	service := s.service
	s.sched.Launch(func(ctx context.Context) func() {
		todos := service.LoadTodos(ctx)
		return func() {
			s.set(s.State().With(Todos(todos)))
		}
	})
}

// Adding

func (s *Store) handleAddTodo() {
	st := s.State()
	if !st.CanAddTodo() {
		return
	}
	newTodo := model.NewTodo(strings.TrimSpace(st.NewTodoText), s.clock.Now())
	s.set(st.With(AddingTodo(true)))

	service := s.service
	s.sched.Launch(func(ctx context.Context) func() {
		added := service.AddTodo(ctx, newTodo)
		return func() {
			cur := s.State()
			s.set(cur.With(
				Todos(appended(cur.Todos, added)),
				NewTodoText(""),
				AddingTodo(false),
			))
		}
	})
}

// Todo operations

func (s *Store) handleToggleTodo(id uuid.UUID) {
	st := s.State()
	i := st.Index(id)
	if i < 0 {
		return
	}
	updated := st.Todos[i]
	updated.IsCompleted = !updated.IsCompleted
	s.set(st.With(Todos(replaced(st.Todos, i, updated))))
	s.persistUpdate(updated)
}

func (s *Store) handleDeleteTodo(id uuid.UUID) {
	st := s.State()
	s.set(st.With(Todos(without(st.Todos, id))))

	service := s.service
	s.sched.Launch(func(ctx context.Context) func() {
		service.DeleteTodo(ctx, id)
		return nil
	})
}

func (s *Store) handleClearCompleted() {
	service := s.service
	s.sched.Launch(func(ctx context.Context) func() {
		service.ClearCompleted(ctx)
		todos := service.LoadTodos(ctx)
		return func() {
			s.set(s.State().With(Todos(todos)))
		}
	})
}

// Editing

func (s *Store) handleStartEditing(id uuid.UUID) {
	st := s.State()
	i := st.Index(id)
	if i < 0 {
		return
	}
	s.set(st.With(Editing(id, st.Todos[i].Title)))
}

func (s *Store) handleSaveEdit() {
	st := s.State()
	if !st.IsEditing() {
		return
	}
	i := st.Index(st.EditingTodoID)
	if i < 0 {
		return
	}
	updated := st.Todos[i]
	updated.Title = strings.TrimSpace(st.EditingText)
	s.set(st.With(Todos(replaced(st.Todos, i, updated)), StopEditing()))
	s.persistUpdate(updated)
}

func (s *Store) persistUpdate(t model.Todo) {
	service := s.service
	s.sched.Launch(func(ctx context.Context) func() {
		_ = service.UpdateTodo(ctx, t)
		return nil
	})
}
