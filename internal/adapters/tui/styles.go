package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("39")
	textMuted   = lipgloss.Color("241")
	errorColor  = lipgloss.Color("203")
	runningDot  = lipgloss.Color("42")
	exitedDot   = lipgloss.Color("245")
	unknownDot  = lipgloss.Color("214")
	borderColor = lipgloss.Color("238")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(borderColor)
)

// summaryStyle colours the running/exited/unknown counts in the header.
func summaryStyle(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}
