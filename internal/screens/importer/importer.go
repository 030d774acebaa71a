// Package importer implements the screen where a quiz document is pasted,
// checked and loaded.
package importer

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// maxIssues is how many schema issues are listed under the editor.
const maxIssues = 3

type importedMsg struct {
	Quiz *quiz.Quiz
	Err  error
}

// ImportScreen edits a quiz document and loads it.
type ImportScreen struct {
	env    *screen.Env
	area   textarea.Model
	status string
	valid  bool
	issues []quiz.Issue
	flash  string
	busy   bool
}

var _ screen.Screen = (*ImportScreen)(nil)
var _ screen.KeyHintProvider = (*ImportScreen)(nil)

// New creates an empty ImportScreen.
func New(env *screen.Env) *ImportScreen {
	return NewWithText(env, "")
}

// NewWithText creates an ImportScreen with text already in the editor.
func NewWithText(env *screen.Env, text string) *ImportScreen {
	area := textarea.New()
	area.Placeholder = `Paste the quiz JSON here, e.g. {"questions": [...]}`
	area.ShowLineNumbers = false
	area.SetValue(text)
	area.Focus()

	s := &ImportScreen{env: env, area: area}
	s.check()
	return s
}

func (s *ImportScreen) Init() tea.Cmd {
	return s.area.Focus()
}

func (s *ImportScreen) Title() string {
	return "Load Quiz"
}

func (s *ImportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Load"},
		{Key: "Ctrl+O", Description: "Paste"},
		{Key: "Ctrl+L", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ImportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case importedMsg:
		s.busy = false
		if msg.Err != nil {
			s.flash = quiz.StatusMessage(msg.Err)
			return s, nil
		}
		return s, router.ReplaceCmd(s.env.Nav.Play(nil))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+s":
			return s, s.load()
		case "ctrl+o":
			s.paste()
			return s, nil
		case "ctrl+l":
			s.area.Reset()
			s.flash = ""
			s.check()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	s.check()
	return s, cmd
}

// check refreshes the live validation status.
func (s *ImportScreen) check() {
	q, err := quiz.Parse(s.area.Value())
	if err != nil {
		s.status, s.valid, s.issues = quiz.StatusMessage(err), false, nil
		return
	}
	s.status, s.valid = fmt.Sprintf("✅ Valid JSON. %d questions detected.", q.Len()), true
	s.issues = quiz.Check(q)
}

// paste replaces the editor contents with the clipboard. A shared test
// link is decoded into the quiz it carries.
func (s *ImportScreen) paste() {
	text, err := s.env.Clipboard.ReadAll()
	if err != nil {
		s.flash = "Could not read the clipboard: " + err.Error()
		return
	}
	s.flash = ""
	if strings.Contains(text, "test=") {
		if raw, err := share.DecodeTestLink(text); err == nil {
			text = string(raw)
			s.flash = "Decoded shared test link."
		}
	}
	s.area.SetValue(text)
	s.check()
}

func (s *ImportScreen) load() tea.Cmd {
	if !s.valid {
		s.flash = "Fix the JSON before loading: " + s.status
		return nil
	}
	if s.busy {
		return nil
	}
	s.busy = true
	lib := s.env.Library
	text := s.area.Value()
	return func() tea.Msg {
		q, err := lib.Import(context.Background(), text)
		return importedMsg{Quiz: q, Err: err}
	}
}

func (s *ImportScreen) View(width, height int) string {
	w := min(width-6, 100)
	s.area.SetWidth(w)
	s.area.SetHeight(max(height-10-len(s.issues), 5))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Editor.Render(s.area.View())))
	b.WriteString("\n")

	statusStyle := lipgloss.NewStyle().Foreground(theme.Error)
	if s.valid {
		statusStyle = lipgloss.NewStyle().Foreground(theme.Success)
	}
	b.WriteString(layout.Centered(s.status, width, statusStyle))
	b.WriteString("\n")

	for i, issue := range s.issues {
		if i == maxIssues {
			b.WriteString(layout.Centered(fmt.Sprintf("…and %d more", len(s.issues)-maxIssues), width, theme.Hint))
			b.WriteString("\n")
			break
		}
		b.WriteString(layout.Centered("⚠ "+issue.String(), width, lipgloss.NewStyle().Foreground(theme.Accent)))
		b.WriteString("\n")
	}

	if s.flash != "" {
		b.WriteString(layout.Centered(s.flash, width, lipgloss.NewStyle().Foreground(theme.Accent)))
	}
	return b.String()
}
