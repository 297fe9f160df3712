// Package tui implements a terminal browser for recorded conversation
// results: a filterable list of resolved parameters with a detail panel
// showing the originating action, rendered as a Bubble Tea app.
package tui

import "github.com/charmbracelet/lipgloss"

// Disposition glyphs — convey meaning without relying on color alone.
const (
	GlyphAnswered      = "✓"
	GlyphDefinedSkip   = "⊘"
	GlyphConditionSkip = "⏭"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)

	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorWhite)

	answeredStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	skippedStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
