package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/kozaktomas/face-insight/internal/session"
)

const maxCardWidth = 64

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("FaceInsight"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.state.HasImage() {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%s  %s  %s",
			m.imagePath, m.state.Image.MIMEType, formatSize(len(m.state.Image.Data)))))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(styles.Danger.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderPhase(styles))
	b.WriteString("\n")
	b.WriteString(m.renderHelp(styles))
	return b.String()
}

func (m Model) renderPhase(styles Styles) string {
	switch m.state.Phase {
	case session.PhaseAnalyzing:
		return m.spinner.View() + " " + styles.AccentText.Render("Analyzing…") + "\n"

	case session.PhaseError:
		return styles.Danger.Render(m.state.ErrorMessage) + "\n"

	case session.PhaseSuccess:
		return m.renderResults(styles)
	}
	return ""
}

// renderResults draws one card per person, numbered in model order.
func (m Model) renderResults(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(m.locale.ResultsTitle))
	b.WriteString("\n")

	if len(m.state.Results) == 0 {
		b.WriteString(styles.Warning.Render(m.locale.EmptyMessage))
		b.WriteString("\n")
		return b.String()
	}

	width := maxCardWidth
	if m.width > 0 && m.width-2 < width {
		width = max(m.width-2, 20)
	}
	card := styles.Card.Width(width)

	for i, person := range m.state.Results {
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitle.Render(fmt.Sprintf("%s %d", m.locale.PersonLabel, i+1)),
			styles.Text.Render(fmt.Sprintf("%s: %s   %s: %s",
				m.locale.GenderLabel, person.Gender, m.locale.AgeLabel, person.Age)),
			styles.MutedText.Render(person.Description),
		)
		b.WriteString(card.Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp(styles Styles) string {
	bindings := m.keys.browseHelp(m.state.CanAnalyze())
	if m.input.Focused() {
		bindings = m.keys.inputHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		parts = append(parts, renderBinding(styles, binding))
	}
	return strings.Join(parts, styles.HelpDesc.Render(" • "))
}

func renderBinding(styles Styles, binding key.Binding) string {
	h := binding.Help()
	return styles.HelpKey.Render(h.Key) + " " + styles.HelpDesc.Render(h.Desc)
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
