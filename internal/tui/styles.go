package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	countStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	noteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Strikethrough(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)
