package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555")).
			Bold(true)

	amountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e1e2a")).
			Padding(0, 2)
)

func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// cursorRow renders a list row with a selection marker.
func cursorRow(label string, selected bool) string {
	if selected {
		return accentStyle.Render("> ") + selectedStyle.Render(label)
	}
	return "  " + normalStyle.Render(label)
}
