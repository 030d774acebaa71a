// Package theme holds the terminal palette and shared lipgloss styles.
// Answer feedback uses the same green, red and amber as the web player.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#3B82F6")
	Secondary = lipgloss.Color("#06B6D4")
	Accent    = lipgloss.Color("#FFC107")
	Success   = lipgloss.Color("#28A745")
	Error     = lipgloss.Color("#DC3545")
	Highlight = lipgloss.Color("#FDE68A")

	Text    = lipgloss.Color("#F1F5F9")
	TextDim = lipgloss.Color("#8A94A6")
	Border  = lipgloss.Color("#3A4255")
	BgDark  = lipgloss.Color("#111827")
	BgCard  = lipgloss.Color("#1F2937")
)

// Result bands.
var (
	BandGreat = Success
	BandGood  = Accent
	BandPoor  = Error
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Body  = lipgloss.NewStyle().Foreground(Text)
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Editor frames the source text and prompt editors.
	Editor = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Choice and answer states.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Skipped    = lipgloss.NewStyle().Foreground(Accent).Bold(true)
)

var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	ProgressDone = lipgloss.NewStyle().Foreground(Secondary)
	ProgressTodo = lipgloss.NewStyle().Foreground(Border)
)
