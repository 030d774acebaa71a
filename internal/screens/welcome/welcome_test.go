package welcome

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/screen/screentest"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
)

func newTestWelcome() (*WelcomeScreen, *int) {
	calls := 0
	return New(func() screen.Screen {
		calls++
		return &screentest.Stub{Name: "home"}
	}), &calls
}

func advance(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for range n {
		_, cmd = w.Update(frameMsg{})
	}
	return cmd
}

func TestWelcomeFrames(t *testing.T) {
	w, _ := newTestWelcome()

	if strings.Contains(w.View(100, 30), "MrQuizzer") || strings.Contains(w.View(100, 30), "███╗") {
		t.Error("banner shown on the first frame")
	}

	advance(w, bannerAt+1)
	typed := w.typed()
	if typed == "" || typed == tagline || !strings.HasPrefix(tagline, typed) {
		t.Errorf("tagline mid-typing = %q", typed)
	}

	advance(w, readyAt)
	view := w.View(100, 30)
	for _, want := range []string{tagline, "███╗", "press any key"} {
		if !strings.Contains(view, want) {
			t.Errorf("ready view is missing %q", want)
		}
	}
	if !strings.Contains(w.View(60, 30), components.BannerText) {
		t.Error("compact banner expected on a narrow terminal")
	}
}

func TestWelcomeIgnoresKeysUntilReady(t *testing.T) {
	w, calls := newTestWelcome()
	advance(w, readyAt-1)

	if _, cmd := w.Update(screentest.Key('a')); cmd != nil {
		t.Error("key before the splash is ready returned a command")
	}
	if *calls != 0 {
		t.Error("next screen built too early")
	}
}

func TestWelcomeKeyLeavesOnce(t *testing.T) {
	w, calls := newTestWelcome()
	advance(w, readyAt)

	_, cmd := w.Update(screentest.Special(tea.KeyEnter))
	next, ok := screentest.Routed(screentest.Exec(cmd), router.Replace)
	if !ok || next.Title() != "home" {
		t.Fatalf("enter produced %#v", next)
	}

	if _, cmd := w.Update(screentest.Key('x')); cmd != nil {
		t.Error("second key transitioned again")
	}
	if cmd := advance(w, 1); cmd != nil {
		t.Error("frames kept ticking after leaving")
	}
	if *calls != 1 {
		t.Errorf("next screen built %d times", *calls)
	}
}

func TestWelcomeLeavesByItself(t *testing.T) {
	w, calls := newTestWelcome()

	cmd := advance(w, leaveAt)
	if _, ok := screentest.Routed(screentest.Exec(cmd), router.Replace); !ok {
		t.Fatal("splash did not move on after its last frame")
	}
	if *calls != 1 {
		t.Errorf("next screen built %d times", *calls)
	}
}
