// Package screen defines what the router needs from a screen, plus the
// optional hooks the app frame looks for.
package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View draws the area between the header and footer bars.
	View(width, height int) string
	// Title is shown in the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider puts a short status, like the question counter, on the
// right of the header.
type StatusProvider interface {
	Status() string
}

// EscHandler screens consume esc themselves while HandlesEsc is true;
// otherwise esc closes the screen.
type EscHandler interface {
	HandlesEsc() bool
}

// Flusher screens hold state that must be written before the program
// exits.
type Flusher interface {
	Flush(ctx context.Context) error
}
