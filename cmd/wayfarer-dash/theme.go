package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual styling for the wayfarer dashboard.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme for wayfarer dash.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("12"),  // Blue
		Secondary: lipgloss.Color("14"),  // Cyan
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// statusColor maps a sync status label to its theme color.
func (t Theme) statusColor(status string) lipgloss.Color {
	switch status {
	case "synced":
		return t.Success
	case "failed":
		return t.Error
	default:
		return t.Warning
	}
}
