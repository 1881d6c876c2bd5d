// Package render draws reports for the terminal: stat cards and progress bars
// with lipgloss, line charts with asciigraph.
package render

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	textColor    = lipgloss.Color("#F9FAFB")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	goodStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	warnStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	badStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
