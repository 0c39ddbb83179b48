// Package counter implements the counter screen's state, intents and store.
package counter

// State is an immutable snapshot of the counter screen. An empty
// LastOperation means there is nothing to show.
type State struct {
	Count         int
	IsLoading     bool
	LastOperation string
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

// Count sets the counter value.
func Count(n int) Change { return func(s *State) { s.Count = n } }

// Loading sets the in-flight flag for the delayed increment.
func Loading(v bool) Change { return func(s *State) { s.IsLoading = v } }

// LastOperation sets the note describing the latest change.
func LastOperation(text string) Change { return func(s *State) { s.LastOperation = text } }
