// Package style holds the lipgloss palette used by terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	// Headers and titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	// Text styles
	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)
)

// Save state indicators shown next to a document
var (
	SavedIndicator   = SuccessStyle.Render("✓")
	FailedIndicator  = ErrorStyle.Render("✗")
	PendingIndicator = MutedStyle.Render("○")
)

// Swatch renders a block in the given #RRGGBB colour
func Swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

// Colored renders s in the given #RRGGBB colour
func Colored(color, s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}
