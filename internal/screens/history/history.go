// Package history lists past quiz sessions rebuilt from the event log.
package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// Limit is the number of sessions loaded.
const Limit = 50

type filter int

const (
	showAll filter = iota
	showFinished
	showOpen
)

func (f filter) String() string {
	return [...]string{"all sessions", "finished", "not finished"}[f]
}

func (f filter) keep(e session.HistoryEntry) bool {
	switch f {
	case showFinished:
		return e.Finished
	case showOpen:
		return !e.Finished
	}
	return true
}

type loadedMsg struct {
	entries []session.HistoryEntry
	err     error
}

// HistoryScreen shows one row per session, newest first, with the selected
// session's details underneath.
type HistoryScreen struct {
	events  store.EventRepo
	all     []session.HistoryEntry
	rows    []session.HistoryEntry
	filter  filter
	cursor  int
	loading bool
	err     error
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

func New(events store.EventRepo) *HistoryScreen {
	return &HistoryScreen{events: events, loading: true}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		entries, err := session.History(context.Background(), events, Limit)
		return loadedMsg{entries: entries, err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "F", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		s.all, s.err = msg.entries, msg.err
		s.apply()

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc", "q":
			return s, router.PopCmd
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = min(s.cursor+1, max(len(s.rows)-1, 0))
		case "home", "g":
			s.cursor = 0
		case "end", "G":
			s.cursor = max(len(s.rows)-1, 0)
		case "f":
			s.filter = (s.filter + 1) % 3
			s.apply()
		}
	}
	return s, nil
}

// apply rebuilds the visible rows for the current filter.
func (s *HistoryScreen) apply() {
	s.rows = s.rows[:0]
	for _, e := range s.all {
		if s.filter.keep(e) {
			s.rows = append(s.rows, e)
		}
	}
	s.cursor = min(s.cursor, max(len(s.rows)-1, 0))
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).MarginTop(2)
	switch {
	case s.err != nil:
		return center.Foreground(theme.Error).Render("Could not read history: " + s.err.Error())
	case s.loading:
		return center.Foreground(theme.TextDim).Render("Loading history...")
	case len(s.all) == 0:
		return center.Foreground(theme.TextDim).Italic(true).Render("No sessions yet. Load a quiz and play!")
	}

	details := s.details()
	top := []string{summarize(s.all), theme.Hint.Render("showing " + s.filter.String()), ""}
	room := max(height-len(top)-lipgloss.Height(details)-1, 1)

	lines := top
	if len(s.rows) == 0 {
		lines = append(lines, theme.Hint.Render("nothing to show"))
	}
	first := scrollStart(s.cursor, len(s.rows), room)
	for i := first; i < min(first+room, len(s.rows)); i++ {
		lines = append(lines, row(s.rows[i], i == s.cursor))
	}
	lines = append(lines, "", details)

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

// scrollStart returns the first visible row so that cursor stays inside a
// window of size rows.
func scrollStart(cursor, total, size int) int {
	if total <= size {
		return 0
	}
	return min(max(cursor-size/2, 0), total-size)
}

// summarize reports the session count and the finished-run scores.
func summarize(entries []session.HistoryEntry) string {
	finished, sum, best := 0, 0, 0
	for _, e := range entries {
		if !e.Finished {
			continue
		}
		finished++
		sum += e.Percent()
		best = max(best, e.Percent())
	}
	text := fmt.Sprintf("%d sessions · %d finished", len(entries), finished)
	if finished > 0 {
		text += fmt.Sprintf(" · average %d%% · best %d%%", sum/finished, best)
	}
	return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(text)
}

func row(e session.HistoryEntry, selected bool) string {
	marker := "  "
	style := lipgloss.NewStyle().Foreground(bandColor(e))
	if selected {
		marker = "› "
		style = style.Bold(true)
	}
	return style.Render(fmt.Sprintf("%s%-16s %6s  %2d/%-2d %4d%%  %s",
		marker, humanize.Time(e.UpdatedAt), session.FormatElapsed(e.ElapsedSeconds),
		e.Score, e.Total, e.Percent(), outcome(e)))
}

func (s *HistoryScreen) details() string {
	if len(s.rows) == 0 {
		return ""
	}
	e := s.rows[s.cursor]
	text := strings.Join([]string{
		"Started " + e.StartedAt.Local().Format("Mon Jan 2 2006, 15:04"),
		fmt.Sprintf("%d of %d questions answered", e.Answered, e.Total),
		fmt.Sprintf("Quiz %s · session %s", short(e.QuizKey), short(e.SessionID)),
	}, "\n")
	return theme.Editor.Foreground(theme.TextDim).Render(text)
}

func outcome(e session.HistoryEntry) string {
	switch {
	case e.Finished:
		return "finished"
	case e.Reset:
		return "restarted"
	}
	return "in progress"
}

func bandColor(e session.HistoryEntry) color.Color {
	if !e.Finished {
		return theme.Text
	}
	switch session.BandFor(e.Percent()) {
	case session.BandGreat:
		return theme.BandGreat
	case session.BandGood:
		return theme.BandGood
	}
	return theme.BandPoor
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
