package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles the operation headline.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	phaseStyles = map[string]lipgloss.Style{
		// Terminal states
		"installed": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"exists":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"default":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active states
		"resolving":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"downloading": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"installing":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Error
		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// PhaseStyle returns the lipgloss style for the given phase name.
func PhaseStyle(phase string) lipgloss.Style {
	if s, ok := phaseStyles[phase]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
