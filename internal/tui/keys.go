package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the viewer.
type keyMap struct {
	Quit      key.Binding
	Interval  key.Binding
	Series    key.Binding
	Next      key.Binding
	Prev      key.Binding
	Apply     key.Binding
	Cancel    key.Binding
	Reconnect key.Binding
	Help      key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Interval: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "edit interval"),
	),
	Series: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "edit series"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev field"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "done editing"),
	),
	Reconnect: key.NewBinding(
		key.WithKeys("r", "ctrl+r"),
		key.WithHelp("r", "reconnect"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Interval, k.Series, k.Reconnect, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Interval, k.Series, k.Next, k.Prev},
		{k.Apply, k.Cancel},
		{k.Reconnect, k.Help, k.Quit},
	}
}

// editKeys is shown while a text field has focus.
type editKeys struct{ keyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Next, k.Cancel}
}
