package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// StyleManager encapsulates all TUI styles
type StyleManager struct {
	// Header styles
	Title lipgloss.Style
	Flags lipgloss.Style

	// Outcome styles
	Kept    lipgloss.Style
	Dropped lipgloss.Style
	Error   lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:   lipgloss.NewStyle().Bold(true),
		Flags:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Kept:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		Dropped: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles rebuilds the styles against the current default renderer
func RefreshStyles() {
	styles = DefaultStyles()
}
