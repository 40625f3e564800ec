// Package tui provides the interactive resolution picker shown by
// provision --interactive.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the picker.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	// Title style for headers.
	Title lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for the highlighted row.
	Selected lipgloss.Style

	// Success style for found matches.
	Success lipgloss.Style

	// Warning style for skipped probes.
	Warning lipgloss.Style

	// Danger style for destructive choices.
	Danger lipgloss.Style

	// Help style for the key legend.
	Help lipgloss.Style
}

// DefaultStyles returns styles derived from the default theme.
func DefaultStyles() *Styles {
	theme := DefaultTheme()
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Success:  lipgloss.NewStyle().Foreground(theme.Success),
		Warning:  lipgloss.NewStyle().Foreground(theme.Warning),
		Danger:   lipgloss.NewStyle().Bold(true).Foreground(theme.Error),
		Help:     lipgloss.NewStyle().Foreground(theme.Muted),
	}
}
