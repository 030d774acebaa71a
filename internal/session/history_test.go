package session

import (
	"context"
	"testing"
)

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s, _, events := newTestSession(t)
	first := s.ID()

	if _, err := s.SubmitChoice(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Skip(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	second := s.ID()
	for _, step := range []func() error{
		func() error { _, err := s.SubmitChoice(ctx, 1); return err },
		func() error { _, err := s.Advance(ctx); return err },
		func() error { _, err := s.SubmitChoice(ctx, 0); return err },
		func() error { _, err := s.Advance(ctx); return err },
		func() error { _, err := s.SubmitText(ctx, "Madrid"); return err },
		func() error { _, err := s.Advance(ctx); return err },
	} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := History(ctx, events, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	latest := entries[0]
	if latest.SessionID != second || !latest.Finished || latest.Score != 3 || latest.Total != 3 || latest.Answered != 3 {
		t.Errorf("latest = %+v", latest)
	}
	if latest.Percent() != 100 {
		t.Errorf("Percent = %d", latest.Percent())
	}

	older := entries[1]
	if older.SessionID != first || older.Finished || !older.Reset || older.Score != 1 || older.Answered != 2 {
		t.Errorf("older = %+v", older)
	}

	limited, err := History(ctx, events, 1)
	if err != nil || len(limited) != 1 || limited[0].SessionID != second {
		t.Errorf("limited history = %+v, %v", limited, err)
	}
}
