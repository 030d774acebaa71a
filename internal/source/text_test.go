package source

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  line one\n\n\tline   two  ")
	if got != "line one line two" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate kept = %q", got)
	}
	got := Truncate("ñandú y más", 5)
	if got != "ñandú"+TruncatedMarker {
		t.Errorf("Truncate = %q", got)
	}
	if !strings.HasSuffix(Truncate(strings.Repeat("x", 20), 10), "[Truncated]") {
		t.Error("expected marker")
	}
}
