package summary

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/screen/screentest"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
)

// finished plays the test quiz through: the MCQ right, the text question skipped.
func finished(t *testing.T) (*screentest.Env, *session.Session) {
	t.Helper()
	env := screentest.NewEnv(t)
	env.Load(t, screentest.Doc)
	s := env.Session(t)
	ctx := context.Background()
	if _, err := s.SubmitChoice(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Skip(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(ctx); err != nil {
		t.Fatal(err)
	}
	return env, s
}

func press(t *testing.T, s *SummaryScreen, msg tea.KeyPressMsg) tea.Msg {
	t.Helper()
	_, cmd := s.Update(msg)
	out := screentest.Exec(cmd)
	if flash, ok := out.(screen.FlashMsg); ok {
		s.Update(flash)
	}
	return out
}

func TestSummaryScreen_Display(t *testing.T) {
	env, sess := finished(t)
	s := New(env.Env, sess)

	if s.Title() != "Results" {
		t.Errorf("Title = %q", s.Title())
	}
	view := s.View(100, 40)
	for _, want := range []string{"50%", "Score: 1 / 2", "Time: 00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Perfect score!") {
		t.Error("half marks should not show the perfect banner")
	}
	if strings.Contains(view, "Capital of Spain?") {
		t.Error("review should be hidden until toggled")
	}
}

func TestSummaryScreen_Review(t *testing.T) {
	env, sess := finished(t)
	s := New(env.Env, sess)

	press(t, s, screentest.Key('r'))
	view := s.View(120, 40)
	for _, want := range []string{"2 + 2?", "✓ Correct", "Capital of Spain?", "- Skipped", "Correct: Madrid", "Sum."} {
		if !strings.Contains(view, want) {
			t.Errorf("review missing %q", want)
		}
	}

	press(t, s, screentest.Special(tea.KeyDown))
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	press(t, s, screentest.Special(tea.KeyDown))
	if s.selected != 1 {
		t.Error("selection should stop at the last row")
	}
}

func TestSummaryScreen_Share(t *testing.T) {
	env, sess := finished(t)
	env.ShareSite = "https://example.org"
	s := New(env.Env, sess)

	press(t, s, screentest.Key('c'))
	if env.Clip.Text != share.ClipboardText(50) {
		t.Errorf("clipboard = %q", env.Clip.Text)
	}
	if !strings.Contains(s.View(100, 40), "Score copied to clipboard") {
		t.Error("expected copy confirmation")
	}

	press(t, s, screentest.Key('w'))
	if !strings.HasPrefix(env.Clip.Text, "https://wa.me/?text=") {
		t.Errorf("whatsapp link = %q", env.Clip.Text)
	}

	press(t, s, screentest.Key('l'))
	raw, err := share.DecodeTestLink(env.Clip.Text)
	if err != nil {
		t.Fatalf("decode test link: %v", err)
	}
	if string(raw) != string(sess.Quiz().Raw) {
		t.Error("test link should carry the quiz document")
	}
}

func TestSummaryScreen_ExplainWithoutProvider(t *testing.T) {
	env, sess := finished(t)
	s := New(env.Env, sess)

	press(t, s, screentest.Key('e'))
	if !strings.Contains(env.Clip.Text, "2 + 2?") {
		t.Errorf("expected explain prompt on clipboard, got %q", env.Clip.Text)
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	env, sess := finished(t)
	s := New(env.Env, sess)

	msg := press(t, s, screentest.Key('R'))
	next, ok := screentest.Routed(msg, router.Replace)
	if !ok {
		t.Fatalf("R produced %#v, want a replace", msg)
	}
	if stub := next.(*screentest.Stub); stub.Name != "play" || stub.Session != sess {
		t.Errorf("restart went to %+v", stub)
	}
	if sess.Index() != 0 || sess.Score() != 0 {
		t.Error("restart should reset the session")
	}

	msg = press(t, s, screentest.Key('n'))
	if next, ok := screentest.Routed(msg, router.Replace); !ok || next.Title() != "import" {
		t.Errorf("n produced %#v", msg)
	}

	if _, cmd := s.Update(screentest.Special(tea.KeyEscape)); cmd == nil {
		t.Error("esc should pop the screen")
	}
}
