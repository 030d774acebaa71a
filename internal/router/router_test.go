package router

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/screen"
)

type page struct {
	name    string
	inits   int
	got     []tea.Msg
	flushed int
	err     error
}

func (p *page) Init() tea.Cmd {
	p.inits++
	return nil
}

func (p *page) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	p.got = append(p.got, msg)
	return p, nil
}

func (p *page) View(int, int) string { return p.name }
func (p *page) Title() string        { return p.name }

type savingPage struct{ page }

func (p *savingPage) Flush(context.Context) error {
	p.flushed++
	return p.err
}

func run(t *testing.T, r *Router, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	return r.Update(cmd())
}

func TestRouterNavigation(t *testing.T) {
	home := &page{name: "home"}
	r := New(home)

	play := &page{name: "play"}
	run(t, r, PushCmd(play))
	if r.Depth() != 2 || r.Active() != play || play.inits != 1 {
		t.Fatalf("after push: depth %d, active %s, inits %d", r.Depth(), r.Active().Title(), play.inits)
	}

	results := &page{name: "results"}
	run(t, r, ReplaceCmd(results))
	if r.Depth() != 2 || r.Active() != results || results.inits != 1 {
		t.Fatalf("after replace: depth %d, active %s", r.Depth(), r.Active().Title())
	}

	resume := run(t, r, PopCmd)
	if r.Depth() != 1 || r.Active() != home {
		t.Fatalf("after pop: depth %d, active %s", r.Depth(), r.Active().Title())
	}
	if resume == nil {
		t.Fatal("pop returned no command")
	}
	r.Update(resume())
	if len(home.got) != 1 || home.got[0] != (ResumedMsg{}) {
		t.Errorf("home received %v, want a single ResumedMsg", home.got)
	}
}

func TestRouterPopKeepsRoot(t *testing.T) {
	home := &page{name: "home"}
	r := New(home)

	if cmd := run(t, r, PopCmd); cmd != nil {
		t.Error("popping the root returned a command")
	}
	if r.Depth() != 1 || r.Active() != home {
		t.Error("root screen was popped")
	}
}

func TestRouterForwardsToActive(t *testing.T) {
	home := &page{name: "home"}
	top := &page{name: "top"}
	r := New(home)
	run(t, r, PushCmd(top))

	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if len(top.got) != 1 || len(home.got) != 0 {
		t.Errorf("top got %d messages, home got %d", len(top.got), len(home.got))
	}
	if v := r.View(80, 24); v != "top" {
		t.Errorf("View() = %q", v)
	}
}

func TestRouterFlush(t *testing.T) {
	bottom := &savingPage{page: page{name: "bottom"}}
	top := &savingPage{page: page{name: "top", err: errors.New("disk full")}}
	r := New(bottom)
	run(t, r, PushCmd(&page{name: "plain"}))
	run(t, r, PushCmd(top))

	err := r.Flush(context.Background())
	if err == nil || err.Error() != "disk full" {
		t.Errorf("Flush() = %v, want the top screen's error", err)
	}
	if bottom.flushed != 1 || top.flushed != 1 {
		t.Errorf("flushed bottom %d, top %d times", bottom.flushed, top.flushed)
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{Push: "push", Pop: "pop", Replace: "replace", Op(9): "unknown"} {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", int(op), got, want)
		}
	}
}
