package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#374151")

	// Base styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// Status indicators
	styleUp = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	styleStale = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleDown = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	// Box styles
	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// Label styles
	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(14)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Progress bar styles
	styleProgressFilled = lipgloss.NewStyle().
				Foreground(colorSuccess)

	styleProgressEmpty = lipgloss.NewStyle().
				Foreground(colorMuted)
)

// StatusIcon returns a colored connectivity indicator.
func StatusIcon(status string) string {
	switch status {
	case "up":
		return styleUp.Render("● Up")
	case "stale":
		return styleStale.Render("◐ Stale")
	case "down":
		return styleDown.Render("○ Down")
	default:
		return styleMuted().Render("? Unknown")
	}
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

// ProgressBar renders a simple progress bar
func ProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(float64(width) * percent / 100)
	empty := width - filled

	bar := ""
	for i := 0; i < filled; i++ {
		bar += styleProgressFilled.Render("█")
	}
	for i := 0; i < empty; i++ {
		bar += styleProgressEmpty.Render("░")
	}

	return bar
}
