package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all TUI key bindings.
type keyMap struct {
	Fire     key.Binding
	Complete key.Binding
	Pause    key.Binding
	Resume   key.Binding
	Quit     key.Binding
	Help     key.Binding
}

var keys = keyMap{
	Fire: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "fire trigger"),
	),
	Complete: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "complete step"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resume"),
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

// keyBarText renders the context-sensitive key hint string.
func keyBarText(paused, done bool) string {
	if done {
		return keyStyle.Render("q") + keyDescStyle.Render(":quit")
	}
	if paused {
		return keyStyle.Render("r") + keyDescStyle.Render(":resume") + "  " +
			keyStyle.Render("q") + keyDescStyle.Render(":quit")
	}
	return keyStyle.Render("enter") + keyDescStyle.Render(":fire trigger") + "  " +
		keyStyle.Render("c") + keyDescStyle.Render(":complete") + "  " +
		keyStyle.Render("p") + keyDescStyle.Render(":pause") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit") + "  " +
		keyStyle.Render("?") + keyDescStyle.Render(":help")
}
