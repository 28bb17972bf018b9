package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorOrange = lipgloss.Color("#f97316")
	colorGray   = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorCyan   = lipgloss.Color("#06b6d4")
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Background(colorDark).
			Foreground(colorWhite).
			Padding(0, 1)
	styleDim    = lipgloss.NewStyle().Foreground(colorGray)
	styleLabel  = lipgloss.NewStyle().Foreground(colorGray)
	styleValue  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleError  = lipgloss.NewStyle().Foreground(colorRed)
	styleNotice = lipgloss.NewStyle().Foreground(colorYellow)
	styleChart  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray)
)

// statusStyle maps a connection status color name onto the palette.
func statusStyle(color string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch color {
	case "green":
		return s.Foreground(colorGreen)
	case "yellow":
		return s.Foreground(colorYellow)
	case "red":
		return s.Foreground(colorRed)
	case "orange":
		return s.Foreground(colorOrange)
	default:
		return lipgloss.NewStyle().Foreground(colorGray)
	}
}
