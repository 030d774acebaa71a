// Package welcome is the splash shown before the home screen.
package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

const (
	frameRate = 100 * time.Millisecond

	// Frames at which the banner appears, the tagline is fully typed and
	// keys start to work, and the splash moves on by itself.
	bannerAt = 3
	readyAt  = 9
	leaveAt  = 30
)

const tagline = "Turn anything you read into a quiz."

var sparkles = []string{"·", "✦", "★", "✦"}

type frameMsg struct{}

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

// WelcomeScreen plays the splash and replaces itself with the screen built
// by next, either when a key is pressed once the splash is ready or after
// leaveAt frames.
type WelcomeScreen struct {
	next  func() screen.Screen
	frame int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if w.done {
		return w, nil
	}
	switch msg.(type) {
	case frameMsg:
		w.frame++
		if w.frame >= leaveAt {
			return w, w.leave()
		}
		return w, nextFrame()
	case tea.KeyPressMsg:
		if w.frame >= readyAt {
			return w, w.leave()
		}
	}
	return w, nil
}

func (w *WelcomeScreen) leave() tea.Cmd {
	w.done = true
	return router.ReplaceCmd(w.next())
}

// typed returns the part of the tagline shown at the current frame.
func (w *WelcomeScreen) typed() string {
	if w.frame >= readyAt {
		return tagline
	}
	if w.frame < bannerAt {
		return ""
	}
	n := len(tagline) * (w.frame - bannerAt) / (readyAt - bannerAt)
	return tagline[:n]
}

func (w *WelcomeScreen) View(width, height int) string {
	spark := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkles[w.frame%len(sparkles)])
	mascot := lipgloss.JoinHorizontal(lipgloss.Center,
		spark, "   ", components.Mascot(components.MoodIdle), "   ", spark)

	lines := []string{mascot}
	if w.frame >= bannerAt {
		lines = append(lines, "", components.Banner(width), "",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(w.typed()))
	}
	if w.frame >= readyAt {
		lines = append(lines, "", theme.Hint.Render("press any key to continue"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}
