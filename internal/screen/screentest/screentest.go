// Package screentest provides fakes for testing screens.
package screentest

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/library"
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
)

// Doc is a two question quiz: an MCQ "2 + 2?" answered by "4" and a short
// answer "Capital of Spain?" answered by "Madrid".
const Doc = `{"questions": [
  {"id": 1, "type": "mcq", "question": "2 + 2?", "options": ["3", "4"], "correct_answers": [1], "explanation": "Sum."},
  {"id": 2, "type": "short_answer", "question": "Capital of Spain?", "correct_answers": ["Madrid"]}
]}`

// Clipboard is an in-memory clipboard.
type Clipboard struct {
	Text string
	Err  error
}

func (c *Clipboard) ReadAll() (string, error) { return c.Text, c.Err }

func (c *Clipboard) WriteAll(text string) error {
	if c.Err != nil {
		return c.Err
	}
	c.Text = text
	return nil
}

// Stub is a placeholder screen returned by Nav.
type Stub struct {
	Name    string
	Session *session.Session
}

func (s *Stub) Init() tea.Cmd                           { return nil }
func (s *Stub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *Stub) View(int, int) string                    { return s.Name }
func (s *Stub) Title() string                           { return s.Name }
func (s *Stub) KeyHints() []layout.KeyHint              { return nil }

// Nav returns Stub screens named after the destination.
type Nav struct{}

func (Nav) Play(s *session.Session) screen.Screen    { return &Stub{Name: "play", Session: s} }
func (Nav) Results(s *session.Session) screen.Screen { return &Stub{Name: "results", Session: s} }
func (Nav) Import() screen.Screen                    { return &Stub{Name: "import"} }
func (Nav) Prompt() screen.Screen                    { return &Stub{Name: "prompt"} }
func (Nav) History() screen.Screen                   { return &Stub{Name: "history"} }

// Env is a screen.Env backed by an in-memory store.
type Env struct {
	*screen.Env
	Store *store.Store
	Clip  *Clipboard
}

// NewEnv opens an in-memory store and wires an Env around it.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	clip := &Clipboard{}
	return &Env{
		Env: &screen.Env{
			Library:   library.New(st.QuizRepo(), st.ProgressRepo()),
			Progress:  st.ProgressRepo(),
			Events:    st.EventRepo(),
			Sources:   st.SourceRepo(),
			Clipboard: clip,
			Nav:       Nav{},
			Prompt:    quizgen.DefaultSettings(),
		},
		Store: st,
		Clip:  clip,
	}
}

// Load imports doc into the library.
func (e *Env) Load(t *testing.T, doc string) *quiz.Quiz {
	t.Helper()
	q, err := e.Library.Import(context.Background(), doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return q
}

// Session opens a session for the current quiz.
func (e *Env) Session(t *testing.T) *session.Session {
	t.Helper()
	q, err := e.Library.Current(context.Background())
	if err != nil || q == nil {
		t.Fatalf("current quiz: %v", errors.Join(err, errors.New("no quiz loaded")))
	}
	s, err := session.New(context.Background(), q, session.Options{Progress: e.Progress, Events: e.Events})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}

// Key builds a key press for a printable rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special builds a key press for a non-printable key such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Ctrl builds a ctrl+r key press.
func Ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// Exec runs cmd and returns its message, or nil for a nil cmd.
func Exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// Routed reports whether msg is a router op of kind op, and returns the
// screen it opens. The screen is nil for router.Pop.
func Routed(msg tea.Msg, op router.Op) (screen.Screen, bool) {
	nav, ok := msg.(router.NavMsg)
	if !ok || nav.Op != op {
		return nil, false
	}
	return nav.Screen, true
}
