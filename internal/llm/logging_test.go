package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

type recordingEventRepo struct {
	store.EventRepo
	llm []store.LLMRequestEventData
	err error
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.llm = append(r.llm, data)
	return r.err
}

func TestLoggingProvider_RecordsEvent(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`"Because Madrid is the capital."`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, repo)

	ctx := WithPurpose(context.Background(), PurposeExplain)
	req := Request{System: "tutor", Messages: []Message{{Role: RoleUser, Content: "why Madrid?"}}}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(repo.llm) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.llm))
	}
	ev := repo.llm[0]
	if ev.Provider != "mock" || ev.Purpose != "explain" || !ev.Success || ev.InputTokens != 12 {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.ResponseBody != `"Because Madrid is the capital."` {
		t.Errorf("ResponseBody = %q", ev.ResponseBody)
	}
	if !strings.Contains(ev.RequestBody, "[system]\ntutor") || !strings.Contains(ev.RequestBody, "[user]\nwhy Madrid?") {
		t.Errorf("RequestBody = %q", ev.RequestBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &recordingEventRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &RateLimitError{Err: errors.New("429")}})

	_, err := WithLogging(mock, repo).Generate(context.Background(), Request{Schema: answerSchema()})
	var limited *RateLimitError
	if !errors.As(err, &limited) {
		t.Fatalf("provider error not passed through: %v", err)
	}
	ev := repo.llm[0]
	if ev.Success || ev.Purpose != "unknown" || !strings.Contains(ev.ErrorMessage, "rate limited") {
		t.Errorf("unexpected event %+v", ev)
	}
	if !strings.Contains(ev.RequestBody, "[schema test-answer]") {
		t.Errorf("schema missing from RequestBody: %q", ev.RequestBody)
	}
}

func TestWithLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider()
	if WithLogging(mock, nil) != Provider(mock) {
		t.Error("expected provider to be returned unwrapped")
	}
}

func TestClip(t *testing.T) {
	short := "question 1"
	if clip(short) != short {
		t.Error("short body changed")
	}

	long := strings.Repeat("é", maxLoggedBody)
	got := clip(long)
	if len(got) >= len(long) || !strings.Contains(got, "bytes omitted]") {
		t.Fatalf("long body not clipped: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("clip split a multi-byte character")
	}
}
