package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen/screentest"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
)

func loaded(t *testing.T, env *screentest.Env) *HomeScreen {
	t.Helper()
	h := New(env.Env)
	h.Update(h.Init()())
	return h
}

func TestHomeScreen_NoQuiz(t *testing.T) {
	env := screentest.NewEnv(t)
	h := loaded(t, env)

	if !h.menu.Items[itemPlay].Disabled || !h.menu.Items[itemReset].Disabled {
		t.Error("play and reset should be disabled without a quiz")
	}
	if h.menu.Selected != itemImport {
		t.Errorf("Selected = %d, want the import item", h.menu.Selected)
	}
	if !strings.Contains(h.View(120, 40), "NO QUIZ LOADED") {
		t.Error("expected the empty state")
	}
	if h.mascot() != components.MoodAlert {
		t.Error("mascot should be alert without a quiz")
	}
}

func TestHomeScreen_QuizStatus(t *testing.T) {
	env := screentest.NewEnv(t)
	env.Load(t, screentest.Doc)
	h := loaded(t, env)

	if h.menu.Items[itemPlay].Disabled || h.menu.Selected != itemPlay {
		t.Error("play should be enabled and selected")
	}
	if h.menu.Items[itemPlay].Label != "START QUIZ" {
		t.Errorf("label = %q", h.menu.Items[itemPlay].Label)
	}
	if !strings.Contains(h.View(120, 40), "NOT STARTED") {
		t.Error("expected not started status")
	}

	s := env.Session(t)
	if _, err := s.SubmitChoice(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, cmd := h.Update(router.ResumedMsg{})
	h.Update(screentest.Exec(cmd))
	if h.menu.Items[itemPlay].Label != "CONTINUE QUIZ" {
		t.Errorf("label = %q", h.menu.Items[itemPlay].Label)
	}
	if !strings.Contains(h.View(120, 40), "QUESTION 2/2 · ★ 1") {
		t.Error("expected progress in the stats bar")
	}
}

func TestHomeScreen_Navigation(t *testing.T) {
	env := screentest.NewEnv(t)
	env.Load(t, screentest.Doc)
	h := loaded(t, env)

	_, cmd := h.Update(screentest.Special(tea.KeyEnter))
	next, ok := screentest.Routed(screentest.Exec(cmd), router.Push)
	if !ok || next.Title() != "play" {
		t.Fatalf("enter opened %#v", next)
	}

	h.Update(screentest.Special(tea.KeyDown))
	h.Update(screentest.Special(tea.KeyDown))
	_, cmd = h.Update(screentest.Special(tea.KeyEnter))
	if next, ok := screentest.Routed(screentest.Exec(cmd), router.Push); !ok || next.Title() != "prompt" {
		t.Errorf("expected the prompt screen")
	}
}

func TestHomeScreen_ResetProgress(t *testing.T) {
	env := screentest.NewEnv(t)
	q := env.Load(t, screentest.Doc)
	s := env.Session(t)
	if _, err := s.Skip(context.Background()); err != nil {
		t.Fatal(err)
	}
	h := loaded(t, env)
	if h.menu.Items[itemReset].Disabled {
		t.Fatal("reset should be enabled with saved progress")
	}

	h.menu.Selected = itemReset
	h.Update(screentest.Special(tea.KeyEnter))
	if !h.confirming || !h.HandlesEsc() {
		t.Fatal("reset should ask for confirmation")
	}
	h.Update(screentest.Special(tea.KeyEnter))
	if h.confirming {
		t.Fatal("enter on Cancel should close the dialog")
	}
	if rec, _ := env.Progress.LoadProgress(context.Background(), q.Key()); rec == nil {
		t.Fatal("cancel should keep the progress")
	}

	h.Update(screentest.Special(tea.KeyEnter))
	h.Update(screentest.Special(tea.KeyRight))
	_, cmd := h.Update(screentest.Special(tea.KeyEnter))
	h.Update(screentest.Exec(cmd))

	if rec, _ := env.Progress.LoadProgress(context.Background(), q.Key()); rec != nil {
		t.Error("progress should be cleared")
	}
	if !h.menu.Items[itemReset].Disabled {
		t.Error("reset should be disabled once progress is gone")
	}
}
