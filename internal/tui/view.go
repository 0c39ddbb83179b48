package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mvi/internal/counter"
	"github.com/verte-zerg/mvi/internal/model"
	"github.com/verte-zerg/mvi/internal/todo"
)

const (
	boxUnchecked = "☐"
	boxChecked   = "☑"
	minTitleCols = 10
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.tab == TabCounter {
		body = m.renderCounter(m.counter.State())
	} else {
		body = m.renderTodos(m.todos.State())
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		body,
		"",
		m.renderHelp(),
	)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panelStyle.Render(content))
}

func (m *Model) renderTabs() string {
	names := []struct {
		tab   Tab
		title string
	}{
		{TabCounter, "Counter"},
		{TabTodo, "Todos"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.tab == m.tab {
			parts = append(parts, activeTabStyle.Render(n.title))
		} else {
			parts = append(parts, tabStyle.Render(n.title))
		}
	}
	return strings.Join(parts, "   ")
}

func (m *Model) renderCounter(st counter.State) string {
	lines := []string{countStyle.Render(fmt.Sprintf("Count: %d", st.Count))}
	switch {
	case st.IsLoading:
		lines = append(lines, m.spinner.View()+" "+noteStyle.Render(st.LastOperation))
	case st.LastOperation != "":
		lines = append(lines, noteStyle.Render(st.LastOperation))
	default:
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTodos(st todo.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todos"))
	b.WriteString("  ")
	b.WriteString(renderFilters(st.CurrentFilter))
	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeEdit:
		b.WriteString(noteStyle.Render("Editing"))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	switch {
	case st.IsLoading:
		b.WriteString(m.spinner.View() + " Loading...")
	case st.IsEmpty():
		b.WriteString(noteStyle.Render("No todos yet. Press a to add one."))
	default:
		visible := st.FilteredTodos()
		if len(visible) == 0 {
			b.WriteString(noteStyle.Render(fmt.Sprintf("No %s todos.", st.CurrentFilter)))
		}
		for i, t := range visible {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.renderTodoRow(t, i == m.cursor, st.EditingTodoID == t.ID))
		}
	}
	if st.IsAddingTodo {
		b.WriteString("\n" + m.spinner.View() + " Adding...")
	}
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render(renderCounts(st)))
	return b.String()
}

func (m *Model) renderTodoRow(t model.Todo, selected, editing bool) string {
	prefix := "  "
	if selected {
		prefix = selectedStyle.Render("> ")
	}
	box := boxUnchecked
	title := runewidth.Truncate(t.Title, m.titleWidth(), "…")
	if t.IsCompleted {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}
	if editing {
		title = accentStyle.Render(title)
	}
	return prefix + box + " " + title
}

// titleWidth leaves room for the prefix, the box and the panel border.
func (m *Model) titleWidth() int {
	if m.width == 0 {
		return 60
	}
	w := m.width - 12
	if w < minTitleCols {
		return minTitleCols
	}
	return w
}

func renderFilters(current model.Filter) string {
	parts := make([]string, 0, len(model.Filters()))
	for _, f := range model.Filters() {
		if f == current {
			parts = append(parts, activeTabStyle.Render(f.Title()))
		} else {
			parts = append(parts, tabStyle.Render(f.Title()))
		}
	}
	return strings.Join(parts, " · ")
}

func renderCounts(st todo.State) string {
	return fmt.Sprintf("%d active · %d completed", st.ActiveTodoCount(), st.CompletedTodoCount())
}

func (m *Model) renderHelp() string {
	keys := m.keys
	keys.tab = m.tab
	keys.mode = m.mode
	return m.help.View(keys)
}
