package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors
var (
	borderColor   = lipgloss.Color("240")
	titleFg       = lipgloss.Color("#ffffff")
	statusFg      = lipgloss.Color("#cccccc")
	errorFg       = lipgloss.Color("#ff6b6b")
	successFg     = lipgloss.Color("#51cf66")
	warnFg        = lipgloss.Color("#fcc419")
	modalBorderFg = lipgloss.Color("62")
	modalBg       = lipgloss.Color("235")
	modalFg       = lipgloss.Color("252")
)

// Base styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(titleFg).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(statusFg).
			AlignHorizontal(lipgloss.Right)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorFg).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(borderColor)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(modalBorderFg).
			Background(modalBg).
			Foreground(modalFg).
			Padding(1, 2)
)

// connectedStatus returns a styled status indicator for connection state
func connectedStatus(connected, offline bool) string {
	switch {
	case connected:
		return lipgloss.NewStyle().Foreground(successFg).Render("🔗 Connected")
	case offline:
		return lipgloss.NewStyle().Foreground(warnFg).Render("🔗 Offline demo")
	}
	return lipgloss.NewStyle().Foreground(errorFg).Render("🔗 Disconnected")
}
