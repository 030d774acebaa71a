package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// Menu positions.
const (
	itemPlay = iota
	itemImport
	itemPrompt
	itemHistory
	itemReset
	itemExit
)

// statusMsg carries the current quiz and its saved progress.
type statusMsg struct {
	Quiz     *quiz.Quiz
	Progress *store.ProgressRecord
	Err      error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	env      *screen.Env
	menu     components.Menu
	quiz     *quiz.Quiz
	progress *store.ProgressRecord
	errMsg   string

	confirming bool
	confirm    components.Confirm
	flash      string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.EscHandler = (*HomeScreen)(nil)

// New creates a HomeScreen. The quiz status loads on Init and again
// whenever the screen comes back to the top of the stack.
func New(env *screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	nav := env.Nav
	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd { return router.PushCmd(s()) }
	}
	h.menu = components.NewMenu([]components.MenuItem{
		itemPlay:    {Label: "START QUIZ", Action: push(func() screen.Screen { return nav.Play(nil) }), Disabled: true},
		itemImport:  {Label: "LOAD QUIZ JSON", Action: push(nav.Import)},
		itemPrompt:  {Label: "BUILD PROMPT", Action: push(nav.Prompt)},
		itemHistory: {Label: "HISTORY", Action: push(nav.History)},
		itemReset:   {Label: "RESET PROGRESS", Action: h.askReset, Disabled: true},
		itemExit:    {Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// HandlesEsc keeps esc from quitting while the reset dialog is open.
func (h *HomeScreen) HandlesEsc() bool {
	return h.confirming
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.confirming {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "1-6", Description: "Jump"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) load() tea.Cmd {
	env := h.env
	return func() tea.Msg {
		ctx := context.Background()
		q, err := env.Library.Current(ctx)
		if err != nil || q == nil {
			return statusMsg{Err: err}
		}
		var rec *store.ProgressRecord
		if env.Progress != nil {
			rec, err = env.Progress.LoadProgress(ctx, q.Key())
		}
		return statusMsg{Quiz: q, Progress: rec, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		h.apply(msg)
		return h, nil

	case router.ResumedMsg:
		return h, h.load()

	case tea.KeyPressMsg:
		if h.confirming {
			return h.handleConfirm(msg)
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) apply(msg statusMsg) {
	h.quiz, h.progress, h.errMsg = msg.Quiz, msg.Progress, ""
	if msg.Err != nil {
		h.errMsg = msg.Err.Error()
	}

	label := "START QUIZ"
	switch {
	case h.finished():
		label = "SEE RESULTS"
	case h.progress != nil && (h.progress.Index > 0 || h.progress.ElapsedSeconds > 0):
		label = "CONTINUE QUIZ"
	}
	h.menu.Items[itemPlay].Label = label
	h.menu.SetDisabled(itemReset, h.progress == nil)
	h.menu.SetDisabled(itemPlay, h.quiz == nil)
	if h.quiz != nil && h.menu.Selected == itemImport {
		h.menu.Selected = itemPlay
	}
}

func (h *HomeScreen) finished() bool {
	return h.quiz != nil && h.progress != nil && h.progress.Index >= h.quiz.Len()
}

func (h *HomeScreen) askReset() tea.Cmd {
	h.confirming = true
	h.confirm = components.NewConfirm("Reset your progress on this quiz?", "Reset", "Cancel")
	return nil
}

func (h *HomeScreen) handleConfirm(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		h.confirm = h.confirm.Toggle()
	case "y":
		return h.reset()
	case "n", "esc":
		h.confirming = false
	case "enter":
		if h.confirm.Focused() {
			return h.reset()
		}
		h.confirming = false
	}
	return h, nil
}

func (h *HomeScreen) reset() (screen.Screen, tea.Cmd) {
	h.confirming = false
	if h.quiz == nil || h.env.Progress == nil {
		return h, nil
	}
	if err := h.env.Progress.ClearProgress(context.Background(), h.quiz.Key()); err != nil {
		h.flash = "Reset failed: " + err.Error()
		return h, nil
	}
	h.flash = "Progress reset."
	return h, h.load()
}

// mascot picks the mascot mood from the quiz status.
func (h *HomeScreen) mascot() components.Mood {
	switch {
	case h.quiz == nil:
		return components.MoodAlert
	case h.finished() && session.BandFor(session.Percent(h.progress.Score, h.quiz.Len())) == session.BandGreat:
		return components.MoodCelebrating
	}
	return components.MoodIdle
}

// statusLines describes the current quiz for the stats bar.
func (h *HomeScreen) statusLines() []string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if h.errMsg != "" {
		return []string{lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg)}
	}
	if h.quiz == nil {
		return []string{
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("NO QUIZ LOADED"),
			dim.Render("Load a quiz JSON or build a prompt to get started"),
		}
	}

	title := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(h.quiz.Title())
	n := h.quiz.Len()
	var progress string
	switch p := h.progress; {
	case p == nil:
		progress = fmt.Sprintf("%d QUESTIONS · NOT STARTED", n)
	case h.finished():
		progress = fmt.Sprintf("FINISHED · ★ %d/%d (%d%%) · ⏱ %s",
			p.Score, n, session.Percent(p.Score, n), session.FormatElapsed(p.ElapsedSeconds))
	default:
		progress = fmt.Sprintf("QUESTION %d/%d · ★ %d · ⏱ %s",
			p.Index+1, n, p.Score, session.FormatElapsed(p.ElapsedSeconds))
	}
	return []string{title, lipgloss.NewStyle().Foreground(theme.Secondary).Render(progress)}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.Compact(width, height)
	cw := innerWidth(width)

	sections := []string{title(cw, compact)}
	if !compact {
		sections = append(sections, centered(components.Mascot(h.mascot()), cw))
	}
	sections = append(sections, statsBox(h.statusLines(), cw))

	switch {
	case h.confirming:
		sections = append(sections, centered(h.confirm.View(), cw))
	case height < 32:
		sections = append(sections, centered(menuLines(h.menu), cw))
	default:
		sections = append(sections, centered(menuButtons(h.menu), cw))
	}

	if h.flash != "" {
		sections = append(sections, centered(lipgloss.NewStyle().Foreground(theme.Accent).Render(h.flash), cw))
	}
	if h.env.Generator == nil && !compact {
		sections = append(sections, centered(theme.Hint.Render(llmTip), cw))
	}
	return cabinet(strings.Join(sections, "\n\n"), width, height)
}
