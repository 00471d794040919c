package interactive

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	accentColor  = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	errorColor   = lipgloss.Color("#F87171") // Red

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Width(meterNameWidth)

	filledStyle = lipgloss.NewStyle().Foreground(accentColor)
	emptyStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle  = lipgloss.NewStyle().Foreground(accentColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	warnStyle   = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)

	onBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#111827")).
		Background(accentColor).
		Padding(0, 1)

	offBadge = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)
)
