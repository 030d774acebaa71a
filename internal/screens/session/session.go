package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	sess "github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
)

var tickIDs atomic.Int64

// SessionScreen plays the current quiz.
type SessionScreen struct {
	env     *screen.Env
	sess    *sess.Session
	tickID  int
	choices components.ChoiceList
	input   components.TextInput

	confirmQuit bool
	flash       string
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.Flusher = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.EscHandler = (*SessionScreen)(nil)

// New creates a SessionScreen that opens the current quiz on Init.
func New(env *screen.Env) *SessionScreen {
	return &SessionScreen{
		env:    env,
		tickID: int(tickIDs.Add(1)),
	}
}

// NewWithSession creates a SessionScreen for an already opened session.
func NewWithSession(env *screen.Env, s *sess.Session) *SessionScreen {
	scr := New(env)
	scr.sess = s
	scr.syncQuestion()
	return scr
}

func (s *SessionScreen) Init() tea.Cmd {
	if s.sess != nil {
		return tea.Batch(s.tickCmd(), s.input.Init())
	}
	return s.initSession()
}

func (s *SessionScreen) Title() string {
	return "Play"
}

func (s *SessionScreen) HandlesEsc() bool { return true }

func (s *SessionScreen) Status() string {
	if s.sess == nil {
		return ""
	}
	p := s.sess.Progress()
	return fmt.Sprintf("Q %d/%d  ★ %d  ⏱ %s",
		min(p.Index+1, s.sess.Total()), s.sess.Total(), p.Score, sess.FormatElapsed(p.ElapsedSeconds))
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.sess == nil:
		return nil
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep playing"},
		}
	case s.sess.IsAnswered():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Leave"},
		}
	case s.isChoice():
		return []layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "↑↓ Enter", Description: "Select"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Esc", Description: "Leave"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Esc", Description: "Leave"},
		}
	}
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.sess == nil {
		return renderLoading(width)
	}
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	return s.renderQuestionView(width)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionInitMsg:
		return s.handleInit(msg)

	case timerTickMsg:
		return s.handleTimerTick(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.acceptsText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// initSession opens the current quiz and restores its saved progress.
func (s *SessionScreen) initSession() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		ctx := context.Background()
		q, err := env.Library.Current(ctx)
		if err != nil {
			return sessionInitMsg{Err: err}
		}
		if q == nil {
			return sessionInitMsg{Err: errors.New("no quiz loaded; load a quiz JSON first")}
		}
		opened, err := sess.New(ctx, q, sess.Options{
			Progress:      env.Progress,
			Events:        env.Events,
			AutosaveEvery: env.AutosaveEvery,
		})
		if err != nil {
			return sessionInitMsg{Err: err}
		}
		return sessionInitMsg{Session: opened}
	}
}

func (s *SessionScreen) handleInit(msg sessionInitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.sess = msg.Session
	if s.sess.Finished() {
		return s, router.ReplaceCmd(s.env.Nav.Results(s.sess))
	}
	s.syncQuestion()
	return s, tea.Batch(s.tickCmd(), s.input.Init())
}

func (s *SessionScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if msg.id != s.tickID || s.sess == nil || s.sess.Finished() {
		return s, nil
	}
	if err := s.sess.Tick(context.Background()); err != nil {
		s.flash = "Autosave failed: " + err.Error()
	}
	return s, s.tickCmd()
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, router.PopCmd
	}
	if s.sess == nil {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s.leave()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	if s.sess.IsAnswered() {
		switch key {
		case "enter", "space", "right", "n":
			return s.advance()
		}
		return s, nil
	}

	if key == "tab" {
		return s.apply(s.sess.Skip(context.Background()))
	}

	if s.isChoice() {
		switch key {
		case "up", "k":
			s.choices = s.choices.Move(-1)
		case "down", "j":
			s.choices = s.choices.Move(1)
		case "enter", "space":
			return s.apply(s.sess.SubmitChoice(context.Background(), s.choices.Cursor))
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				idx := int(key[0] - '1')
				if idx < len(s.choices.Options) {
					s.choices.Cursor = idx
					return s.apply(s.sess.SubmitChoice(context.Background(), idx))
				}
			}
		}
		return s, nil
	}

	if key == "enter" {
		return s.apply(s.sess.SubmitText(context.Background(), s.input.Value()))
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// apply shows the outcome of an answer or skip.
func (s *SessionScreen) apply(_ *sess.Feedback, err error) (screen.Screen, tea.Cmd) {
	switch {
	case errors.Is(err, sess.ErrEmptyAnswer):
		s.flash = "Type an answer first, or press Tab to skip."
		return s, nil
	case err != nil:
		s.flash = err.Error()
		return s, nil
	}
	s.flash = ""
	s.syncQuestion()
	return s, nil
}

func (s *SessionScreen) advance() (screen.Screen, tea.Cmd) {
	finished, err := s.sess.Advance(context.Background())
	if err != nil {
		s.flash = err.Error()
		return s, nil
	}
	s.flash = ""
	if finished {
		return s, router.ReplaceCmd(s.env.Nav.Results(s.sess))
	}
	s.syncQuestion()
	return s, s.input.Init()
}

// leave saves the timer and returns to the previous screen. Progress is
// kept so the quiz can be continued later.
func (s *SessionScreen) leave() (screen.Screen, tea.Cmd) {
	if err := s.sess.Save(context.Background()); err != nil {
		s.flash = "Could not save progress: " + err.Error()
		return s, nil
	}
	s.tickID = -1
	return s, router.PopCmd
}

// Flush saves the session timer. The app calls it before quitting.
func (s *SessionScreen) Flush(ctx context.Context) error {
	if s.sess == nil {
		return nil
	}
	return s.sess.Save(ctx)
}

// syncQuestion rebuilds the answer widgets for the current question,
// revealing a recorded answer when the question was answered before.
func (s *SessionScreen) syncQuestion() {
	q := s.sess.Current()
	if q == nil {
		return
	}
	ans := s.sess.CurrentAnswer()

	if q.IsChoice() {
		s.choices = components.NewChoiceList(q.Options)
		if ans != nil {
			chosen := -1
			if ans.Index != nil {
				chosen = *ans.Index
				s.choices.Cursor = chosen
			}
			s.choices = s.choices.Reveal(chosen, q.CorrectAnswers.Indices())
		}
		return
	}

	s.input = components.NewTextInput("Type your answer...", 200, 50)
	if ans != nil {
		s.input.SetValue(ans.Text)
		s.input.Submit(ans.Correct)
	}
}

func (s *SessionScreen) isChoice() bool {
	q := s.currentQuestion()
	return q != nil && q.IsChoice()
}

func (s *SessionScreen) currentQuestion() *quiz.Question {
	if s.sess == nil {
		return nil
	}
	return s.sess.Current()
}

func (s *SessionScreen) acceptsText() bool {
	return s.sess != nil && !s.confirmQuit && !s.sess.IsAnswered() && !s.isChoice() && s.currentQuestion() != nil
}

// tickCmd returns a 1-second tick command.
func (s *SessionScreen) tickCmd() tea.Cmd {
	id := s.tickID
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{id: id}
	})
}
