package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Tab  key.Binding
	Quit key.Binding
	Help key.Binding

	Increment      key.Binding
	Decrement      key.Binding
	Reset          key.Binding
	AsyncIncrement key.Binding
	ClearNote      key.Binding

	Up             key.Binding
	Down           key.Binding
	Add            key.Binding
	Edit           key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	ClearCompleted key.Binding
	NextFilter     key.Binding
	FilterAll      key.Binding
	FilterActive   key.Binding
	FilterDone     key.Binding
	Refresh        key.Binding

	Submit key.Binding
	Cancel key.Binding

	tab  Tab
	mode inputMode
}

func newKeyMap() keyMap {
	return keyMap{
		Tab:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		Increment:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increment")),
		Decrement:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "decrement")),
		Reset:          key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
		AsyncIncrement: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "async +1")),
		ClearNote:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear note")),

		Up:             key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Add:            key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:           key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:         key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		ClearCompleted: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done")),
		NextFilter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		FilterAll:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		FilterActive:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		FilterDone:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap for the active tab and input mode.
func (k keyMap) ShortHelp() []key.Binding {
	if k.mode != modeBrowse {
		return []key.Binding{k.Submit, k.Cancel}
	}
	if k.tab == TabCounter {
		return []key.Binding{k.Increment, k.Decrement, k.AsyncIncrement, k.Tab, k.Help, k.Quit}
	}
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.NextFilter, k.Tab, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	if k.mode != modeBrowse {
		return [][]key.Binding{{k.Submit, k.Cancel}}
	}
	if k.tab == TabCounter {
		return [][]key.Binding{
			{k.Increment, k.Decrement, k.Reset},
			{k.AsyncIncrement, k.ClearNote},
			{k.Tab, k.Help, k.Quit},
		}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Edit},
		{k.Toggle, k.Delete, k.ClearCompleted, k.Refresh},
		{k.NextFilter, k.FilterAll, k.FilterActive, k.FilterDone},
		{k.Tab, k.Help, k.Quit},
	}
}
