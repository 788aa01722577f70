package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Left      key.Binding
	Down      key.Binding
	Up        key.Binding
	Right     key.Binding
	FarLeft   key.Binding
	FarDown   key.Binding
	FarUp     key.Binding
	FarRight  key.Binding
	Focus     key.Binding
	Reset     key.Binding
	Datasets  key.Binding
	Help      key.Binding
	Close     key.Binding
	Quit      key.Binding
	SelectUp  key.Binding
	SelectDn  key.Binding
	SelectOne key.Binding
}

var keys = keyMap{
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "pan left")),
	Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "pan down")),
	Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "pan up")),
	Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "pan right")),
	FarLeft:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "pan left (far)")),
	FarDown:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "pan down (far)")),
	FarUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "pan up (far)")),
	FarRight:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "pan right (far)")),
	Focus:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus hovered range")),
	Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
	Datasets:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "datasets")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	SelectUp:  key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous")),
	SelectDn:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
	SelectOne: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Focus, k.Reset, k.Datasets, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Focus},
		{k.Left, k.Down, k.Up, k.Right},
		{k.FarLeft, k.FarDown, k.FarUp, k.FarRight},
		{k.Datasets, k.Help, k.Close, k.Quit},
	}
}
