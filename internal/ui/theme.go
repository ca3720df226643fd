package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the UI.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Accent  string
	Border  string
	Warning string
	Danger  string
}

// Styles are the Lipgloss styles derived from a Theme.
type Styles struct {
	Title      lipgloss.Style
	Text       lipgloss.Style
	MutedText  lipgloss.Style
	AccentText lipgloss.Style
	Warning    lipgloss.Style
	Danger     lipgloss.Style
	Card       lipgloss.Style
	CardTitle  lipgloss.Style
	HelpKey    lipgloss.Style
	HelpDesc   lipgloss.Style
}

var themes = []Theme{
	{
		Name:    "Dracula",
		Text:    "#f8f8f2",
		Muted:   "#6272a4",
		Accent:  "#8be9fd",
		Border:  "#44475a",
		Warning: "#f1fa8c",
		Danger:  "#ff5555",
	},
	{
		Name:    "Light",
		Text:    "#1f2328",
		Muted:   "#656d76",
		Accent:  "#0969da",
		Border:  "#d0d7de",
		Warning: "#9a6700",
		Danger:  "#cf222e",
	},
}

// GetTheme returns the named theme, or the first theme if the name is unknown.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the name of the theme after name, wrapping around.
func NextTheme(name string) string {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		CardTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		HelpDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
	}
}
