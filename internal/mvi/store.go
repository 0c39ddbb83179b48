// Package mvi provides the Model-View-Intent building blocks shared by every screen:
// the Store contract, an observable state holder, two-way bindings and schedulers
// that run background steps off the UI context.
package mvi

import "log/slog"

// Store owns the current state of one screen. Send is the only way to change it;
// it must be called from the UI context.
type Store[S, I any] interface {
	State() S
	Send(intent I)
	Subscribe(fn func(S)) (cancel func())
}

// Subject holds a value and notifies subscribers synchronously on every
// replacement, in subscription order. It is confined to the UI context and is
// not safe for concurrent use.
type Subject[S any] struct {
	value     S
	observers []observer[S]
	nextID    int
}

type observer[S any] struct {
	id int
	fn func(S)
}

// NewSubject returns a Subject holding initial.
func NewSubject[S any](initial S) *Subject[S] {
	return &Subject[S]{value: initial}
}

// Get returns the current value.
func (s *Subject[S]) Get() S {
	return s.value
}

// Set replaces the value and notifies every subscriber before returning.
func (s *Subject[S]) Set(value S) {
	s.value = value
	observers := append([]observer[S](nil), s.observers...)
	for _, o := range observers {
		o.fn(value)
	}
}

// Subscribe registers fn for future replacements. The returned func removes it.
func (s *Subject[S]) Subscribe(fn func(S)) (cancel func()) {
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer[S]{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// LogChanges subscribes a debug logger to every state replacement of st.
func LogChanges[S, I any](st Store[S, I], logger *slog.Logger, name string) (cancel func()) {
	if logger == nil {
		return func() {}
	}
	return st.Subscribe(func(state S) {
		logger.Debug("state replaced", "store", name, "state", state)
	})
}

// Binding is a two-way view binding: Get reads a state field, Set forwards an
// external edit as the corresponding intent.
type Binding[T any] struct {
	get func() T
	set func(T)
}

// NewBinding builds a Binding from its accessor pair.
func NewBinding[T any](get func() T, set func(T)) Binding[T] {
	return Binding[T]{get: get, set: set}
}

// Get returns the bound value.
func (b Binding[T]) Get() T { return b.get() }

// Set forwards v to the store.
func (b Binding[T]) Set(v T) { b.set(v) }

// Recorder observes accepted intents, by store and intent name.
type Recorder interface {
	Intent(store, name string)
}

// NopRecorder discards intent observations.
type NopRecorder struct{}

// Intent implements Recorder.
func (NopRecorder) Intent(string, string) {}
