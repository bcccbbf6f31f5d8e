package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Debug      key.Binding
	Escape     key.Binding
	Filter     key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	Status     key.Binding
	Clear      key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	Bigger     key.Binding
	Smaller    key.Binding
	Down       key.Binding
	Up         key.Binding
	Toggle     key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Refresh    key.Binding
	Confirm    key.Binding
	Deny       key.Binding
	FlipActive key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Debug:      key.NewBinding(key.WithKeys("D")),
	Escape:     key.NewBinding(key.WithKeys("esc")),
	Filter:     key.NewBinding(key.WithKeys("/")),
	NextField:  key.NewBinding(key.WithKeys("tab", "down")),
	PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up")),
	Submit:     key.NewBinding(key.WithKeys("enter")),
	Status:     key.NewBinding(key.WithKeys("s")),
	Clear:      key.NewBinding(key.WithKeys("x")),
	PrevPage:   key.NewBinding(key.WithKeys("left", "h")),
	NextPage:   key.NewBinding(key.WithKeys("right", "l")),
	Bigger:     key.NewBinding(key.WithKeys("+", "=")),
	Smaller:    key.NewBinding(key.WithKeys("-")),
	Down:       key.NewBinding(key.WithKeys("j", "down")),
	Up:         key.NewBinding(key.WithKeys("k", "up")),
	Toggle:     key.NewBinding(key.WithKeys("a")),
	Edit:       key.NewBinding(key.WithKeys("e")),
	Delete:     key.NewBinding(key.WithKeys("d")),
	Refresh:    key.NewBinding(key.WithKeys("r")),
	Confirm:    key.NewBinding(key.WithKeys("y", "Y")),
	Deny:       key.NewBinding(key.WithKeys("n", "N")),
	FlipActive: key.NewBinding(key.WithKeys(" ")),
}
