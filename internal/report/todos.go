package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mvi/internal/model"
)

// ShortIDLen is how many characters of a todo ID the list shows.
const ShortIDLen = 8

// Options controls how Todos renders.
type Options struct {
	// MaxTitleWidth truncates titles wider than this many cells. Zero disables
	// truncation.
	MaxTitleWidth int
	Location      *time.Location
}

// Todos writes one row per todo followed by a count summary.
func Todos(w io.Writer, todos []model.Todo, opts Options) error {
	if len(todos) == 0 {
		_, err := fmt.Fprintln(w, "No todos.")
		return err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	rows := make([][]string, 0, len(todos))
	active := 0
	for _, t := range todos {
		status := "[ ]"
		if t.IsCompleted {
			status = "[x]"
		} else {
			active++
		}
		title := t.Title
		if opts.MaxTitleWidth > 0 {
			title = runewidth.Truncate(title, opts.MaxTitleWidth, "…")
		}
		rows = append(rows, []string{
			ShortID(t),
			status,
			t.CreatedAt.In(loc).Format("2006-01-02 15:04"),
			title,
		})
	}

	lines := Table([]string{"ID", "Done", "Created", "Title"}, rows, nil)
	lines = append(lines, "", Summary(active, len(todos)-active))
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// ShortID is the displayed prefix of t's ID.
func ShortID(t model.Todo) string {
	return t.ID.String()[:ShortIDLen]
}

// Summary phrases the active and completed counts.
func Summary(active, completed int) string {
	return fmt.Sprintf("%d active, %d completed", active, completed)
}
