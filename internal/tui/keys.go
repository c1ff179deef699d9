package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	enter     key.Binding
	esc       key.Binding
	quit      key.Binding
	copyReply key.Binding
	clear     key.Binding
	pageUp    key.Binding
	pageDown  key.Binding
	yes       key.Binding
	no        key.Binding
}

var keys = keyMap{
	enter:     key.NewBinding(key.WithKeys("enter")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	quit:      key.NewBinding(key.WithKeys("ctrl+c")),
	copyReply: key.NewBinding(key.WithKeys("ctrl+y")),
	clear:     key.NewBinding(key.WithKeys("ctrl+l")),
	pageUp:    key.NewBinding(key.WithKeys("pgup")),
	pageDown:  key.NewBinding(key.WithKeys("pgdown")),
	yes:       key.NewBinding(key.WithKeys("y")),
	no:        key.NewBinding(key.WithKeys("n", "esc")),
}
