package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Stack
	Push     key.Binding
	Pop      key.Binding
	Root     key.Binding
	SetStack key.Binding
	Back     key.Binding

	// Chrome and overlays
	ToggleBar key.Binding
	Modal     key.Binding

	// Animation
	ToggleAnimation key.Binding
	Interrupt       key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Push, k.Pop, k.Back, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Push, k.Pop, k.Root, k.SetStack, k.Back},
		{k.ToggleBar, k.Modal},
		{k.ToggleAnimation, k.Interrupt},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Push: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("→/l", "push next"),
		),
		Pop: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "pop"),
		),
		Root: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "pop to root"),
		),
		SetStack: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "replace stack"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "bar back"),
		),
		ToggleBar: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "toggle bar"),
		),
		Modal: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "present/dismiss modal"),
		),
		ToggleAnimation: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle animation"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "interrupt"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
