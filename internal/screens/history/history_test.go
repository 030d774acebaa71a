package history

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen/screentest"
)

func TestScrollStart(t *testing.T) {
	tests := []struct{ cursor, total, size, want int }{
		{0, 5, 10, 0},
		{0, 30, 10, 0},
		{15, 30, 10, 10},
		{29, 30, 10, 20},
	}
	for _, tt := range tests {
		if got := scrollStart(tt.cursor, tt.total, tt.size); got != tt.want {
			t.Errorf("scrollStart(%d, %d, %d) = %d, want %d", tt.cursor, tt.total, tt.size, got, tt.want)
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	env := screentest.NewEnv(t)
	s := New(env.Events)

	if !strings.Contains(s.View(100, 30), "Loading history") {
		t.Error("expected loading view")
	}
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "No sessions yet") {
		t.Error("expected empty view")
	}
}

func TestHistoryScreen_ListsSessions(t *testing.T) {
	env := screentest.NewEnv(t)
	env.Load(t, screentest.Doc)
	ctx := context.Background()

	sess := env.Session(t)
	if _, err := sess.SubmitChoice(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Advance(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.SubmitText(ctx, "Madrid"); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Advance(ctx); err != nil {
		t.Fatal(err)
	}

	s := New(env.Events)
	s.Update(s.Init()())
	if len(s.all) != 1 {
		t.Fatalf("entries = %d, want 1", len(s.all))
	}
	view := s.View(120, 30)
	for _, want := range []string{"2/2", "100%", "finished", "average 100%", "2 of 2 questions answered"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}

	s.Update(screentest.Key('f'))
	if len(s.rows) != 1 || !strings.Contains(s.View(120, 30), "showing finished") {
		t.Error("finished filter should keep the finished session")
	}
	s.Update(screentest.Key('f'))
	if len(s.rows) != 0 || !strings.Contains(s.View(120, 30), "nothing to show") {
		t.Error("open filter should hide the finished session")
	}

	_, cmd := s.Update(screentest.Special(tea.KeyEscape))
	if _, ok := screentest.Routed(screentest.Exec(cmd), router.Pop); !ok {
		t.Error("esc should pop")
	}
}
