// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Todo is a single todo entry. ID and CreatedAt never change after creation.
type Todo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTodo creates an active todo with a fresh ID.
func NewTodo(title string, now time.Time) Todo {
	return Todo{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now.Round(0),
	}
}

// Equal compares every field; timestamps compare by instant.
func (t Todo) Equal(other Todo) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.IsCompleted == other.IsCompleted &&
		t.CreatedAt.Equal(other.CreatedAt)
}

// Filter selects which todos a view shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// Filters lists every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// Title is the human-readable label.
func (f Filter) Title() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

func (f Filter) String() string {
	return strings.ToLower(f.Title())
}

// Next cycles to the following filter.
func (f Filter) Next() Filter {
	return Filter((int(f) + 1) % len(Filters()))
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	default:
		return true
	}
}

// ParseFilter accepts "all", "active" or "completed" in any case.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters() {
		if strings.EqualFold(strings.TrimSpace(s), f.String()) {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}
