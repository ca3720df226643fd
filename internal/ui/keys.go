package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	Quit       key.Binding
	Load       key.Binding
	Cancel     key.Binding
	EditPath   key.Binding
	Analyze    key.Binding
	CycleTheme key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load image"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave path"),
		),
		EditPath: key.NewBinding(
			key.WithKeys("o", "/"),
			key.WithHelp("o", "open path"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analyze"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
	}
}

// inputHelp lists the bindings active while the path input has focus.
func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Load, k.Cancel}
}

// browseHelp lists the bindings active outside the path input.
func (k keyMap) browseHelp(canAnalyze bool) []key.Binding {
	bindings := []key.Binding{k.EditPath}
	if canAnalyze {
		bindings = append(bindings, k.Analyze)
	}
	return append(bindings, k.CycleTheme, k.Quit)
}
