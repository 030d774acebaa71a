package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestFrameRender(t *testing.T) {
	f := Frame{
		Title:  "Quiz",
		Status: "3/10",
		Hints:  []KeyHint{{Key: "Esc", Description: "Back"}},
	}

	var gotW, gotH int
	out := f.Render(80, 24, func(w, h int) string {
		gotW, gotH = w, h
		return "body"
	})

	if gotW != 80 || gotH != 18 {
		t.Errorf("body size = %dx%d, want 80x18", gotW, gotH)
	}
	if h := lipgloss.Height(out); h != 24 {
		t.Errorf("frame height = %d, want 24", h)
	}
	for _, want := range []string{"MrQuizzer", "Quiz", "3/10", "body", "Esc", "Back"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame is missing %q", want)
		}
	}
}

func TestFrameTooSmall(t *testing.T) {
	called := false
	out := Frame{Title: "Quiz"}.Render(40, 10, func(int, int) string {
		called = true
		return ""
	})
	if called {
		t.Error("body rendered in a terminal below the minimum size")
	}
	if !strings.Contains(out, "Terminal too small") {
		t.Errorf("missing resize notice:\n%s", out)
	}
}

func TestFooterDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+E", Description: "Explain this question"},
		{Key: "Ctrl+S", Description: "Skip to the next question"},
	}
	out := Frame{Hints: hints}.footer(MinWidth)

	if !strings.Contains(out, "Navigate") {
		t.Error("first hint dropped")
	}
	if strings.Contains(out, "Skip to the next question") {
		t.Error("overflowing hint was kept")
	}
	if h := lipgloss.Height(out); h != 3 {
		t.Errorf("footer height = %d, want a single line bar", h)
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{120, 40, false},
		{99, 40, true},
		{120, 25, true},
	}
	for _, tt := range tests {
		if got := Compact(tt.w, tt.h); got != tt.want {
			t.Errorf("Compact(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}
