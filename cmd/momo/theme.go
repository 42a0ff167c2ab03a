package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual styling for the momo TUI.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
}

// DefaultTheme returns the default momo color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("12"),  // Blue
		Success: lipgloss.Color("10"),  // Green
		Warning: lipgloss.Color("11"),  // Yellow
		Error:   lipgloss.Color("9"),   // Red
		Muted:   lipgloss.Color("240"), // Gray
	}
}

// titleStyle renders the application title bar.
func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
}

// selectedStyle highlights the cursor row in menus and pickers.
func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Reverse(true)
}

// mutedStyle dims help text and missing-tool entries.
func (t Theme) mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

// statusStyle colors a run status label by outcome.
func (t Theme) statusStyle(status string) lipgloss.Style {
	switch status {
	case "completed":
		return lipgloss.NewStyle().Foreground(t.Success)
	case "cancelled":
		return lipgloss.NewStyle().Foreground(t.Warning)
	case "failed", "tool-missing":
		return lipgloss.NewStyle().Foreground(t.Error)
	default:
		return lipgloss.NewStyle()
	}
}
