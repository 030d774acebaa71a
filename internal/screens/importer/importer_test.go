package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen/screentest"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
)

func TestImportScreen_LiveStatus(t *testing.T) {
	env := screentest.NewEnv(t)
	s := New(env.Env)

	if s.valid || s.status != "Waiting for JSON..." {
		t.Errorf("empty editor status = %q", s.status)
	}

	s = NewWithText(env.Env, `{"title": "x"}`)
	if s.valid || !strings.Contains(s.status, "Missing") {
		t.Errorf("status = %q", s.status)
	}

	s = NewWithText(env.Env, "Sure! "+screentest.Doc)
	if !s.valid || s.status != "✅ Valid JSON. 2 questions detected." {
		t.Errorf("status = %q", s.status)
	}
	if !strings.Contains(s.View(100, 40), "2 questions detected") {
		t.Error("status should be rendered")
	}
}

func TestImportScreen_LoadInvalid(t *testing.T) {
	env := screentest.NewEnv(t)
	s := NewWithText(env.Env, `{"questions": [`)

	_, cmd := s.Update(screentest.Ctrl('s'))
	if cmd != nil {
		t.Error("invalid JSON should not be loaded")
	}
	if !strings.Contains(s.flash, "Fix the JSON") {
		t.Errorf("flash = %q", s.flash)
	}
}

func TestImportScreen_Load(t *testing.T) {
	env := screentest.NewEnv(t)
	s := NewWithText(env.Env, screentest.Doc)

	_, cmd := s.Update(screentest.Ctrl('s'))
	msg := screentest.Exec(cmd)
	if _, ok := msg.(importedMsg); !ok {
		t.Fatalf("ctrl+s produced %T", msg)
	}
	_, cmd = s.Update(msg)
	next, ok := screentest.Routed(screentest.Exec(cmd), router.Replace)
	if !ok || next.Title() != "play" {
		t.Fatal("loading should open the play screen")
	}

	q, err := env.Library.Current(context.Background())
	if err != nil || q == nil || q.Len() != 2 {
		t.Fatalf("current quiz = %v, %v", q, err)
	}
}

func TestImportScreen_PasteTestLink(t *testing.T) {
	env := screentest.NewEnv(t)
	env.Clip.Text = share.TestLink("https://example.org", []byte(screentest.Doc))
	s := New(env.Env)

	s.Update(screentest.Ctrl('o'))
	if s.area.Value() != screentest.Doc {
		t.Errorf("editor = %q", s.area.Value())
	}
	if !s.valid {
		t.Errorf("decoded link should be valid, status %q", s.status)
	}

	env.Clip.Err = errors.New("no display")
	s.Update(screentest.Ctrl('o'))
	if !strings.Contains(s.flash, "no display") {
		t.Errorf("flash = %q", s.flash)
	}

	s.Update(screentest.Ctrl('l'))
	if s.area.Value() != "" || s.valid {
		t.Error("ctrl+l should clear the editor")
	}
}
