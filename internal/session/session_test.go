package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

const testQuizJSON = `{
  "metadata": {"language": "en", "difficulty": "easy"},
  "questions": [
    {"id": 1, "type": "mcq", "question": "2 + 2?", "options": ["3", "4", "5"], "correct_answers": [1], "explanation": "Basic sum."},
    {"id": 2, "type": "true_false", "question": "Water is wet.", "options": ["True", "False"], "correct_answers": [0]},
    {"id": 3, "type": "short_answer", "question": "Capital of Spain?", "correct_answers": ["Madrid"]}
  ]
}`

// mockProgressRepo implements store.ProgressRepo for testing.
type mockProgressRepo struct {
	records map[string]*store.ProgressRecord
	saves   int
	saveErr error
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{records: map[string]*store.ProgressRecord{}}
}

func (m *mockProgressRepo) LoadProgress(_ context.Context, quizKey string) (*store.ProgressRecord, error) {
	rec, ok := m.records[quizKey]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *mockProgressRepo) SaveProgress(_ context.Context, rec *store.ProgressRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	cp := *rec
	m.records[rec.QuizKey] = &cp
	return nil
}

func (m *mockProgressRepo) ClearProgress(_ context.Context, quizKey string) error {
	delete(m.records, quizKey)
	return nil
}

// mockEventRepo implements store.EventRepo for testing.
type mockEventRepo struct {
	sessionEvents []store.SessionEventData
}

func (m *mockEventRepo) AppendLLMRequest(_ context.Context, _ store.LLMRequestEventData) error {
	return nil
}
func (m *mockEventRepo) QueryLLMEvents(_ context.Context, _ store.QueryOpts) ([]store.LLMRequestEventRecord, error) {
	return nil, nil
}
func (m *mockEventRepo) GetLLMEvent(_ context.Context, _ int) (*store.LLMRequestEventRecord, error) {
	return nil, nil
}
func (m *mockEventRepo) LLMUsageByPurpose(_ context.Context) ([]store.LLMUsageStats, error) {
	return nil, nil
}
func (m *mockEventRepo) LLMUsageByModel(_ context.Context) ([]store.LLMUsageStats, error) {
	return nil, nil
}
func (m *mockEventRepo) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	m.sessionEvents = append(m.sessionEvents, data)
	return nil
}
func (m *mockEventRepo) QuerySessionEvents(_ context.Context, _ store.QueryOpts) ([]store.SessionEventRecord, error) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	out := make([]store.SessionEventRecord, len(m.sessionEvents))
	for i, e := range m.sessionEvents {
		out[i] = store.SessionEventRecord{
			ID:               i + 1,
			Sequence:         int64(i + 1),
			Timestamp:        base.Add(time.Duration(i) * time.Minute),
			SessionEventData: e,
		}
	}
	return out, nil
}

func (m *mockEventRepo) actions() []string {
	out := make([]string, len(m.sessionEvents))
	for i, e := range m.sessionEvents {
		out[i] = e.Action
	}
	return out
}

func testQuiz(t *testing.T) *quiz.Quiz {
	t.Helper()
	q, err := quiz.Parse(testQuizJSON)
	if err != nil {
		t.Fatalf("parse test quiz: %v", err)
	}
	return q
}

func newTestSession(t *testing.T) (*Session, *mockProgressRepo, *mockEventRepo) {
	t.Helper()
	progress := newMockProgressRepo()
	events := &mockEventRepo{}
	s, err := New(context.Background(), testQuiz(t), Options{Progress: progress, Events: events})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, progress, events
}

func TestNew_RejectsEmptyQuiz(t *testing.T) {
	if _, err := New(context.Background(), nil, Options{}); !errors.Is(err, quiz.ErrNoQuestions) {
		t.Errorf("nil quiz: got %v, want ErrNoQuestions", err)
	}
	if _, err := New(context.Background(), &quiz.Quiz{}, Options{}); !errors.Is(err, quiz.ErrNoQuestions) {
		t.Errorf("empty quiz: got %v, want ErrNoQuestions", err)
	}
}

func TestNew_FreshState(t *testing.T) {
	s, _, events := newTestSession(t)

	if s.Index() != 0 || s.Score() != 0 || s.Elapsed() != 0 {
		t.Errorf("unexpected initial state: index=%d score=%d elapsed=%v", s.Index(), s.Score(), s.Elapsed())
	}
	if s.Phase() != PhaseQuestion {
		t.Errorf("Phase = %v, want question", s.Phase())
	}
	if s.ID() == "" {
		t.Error("expected a session id")
	}
	if got := events.actions(); len(got) != 1 || got[0] != store.ActionStart {
		t.Errorf("events = %v, want [start]", got)
	}
}

func TestSubmitChoice_CorrectAndWrong(t *testing.T) {
	s, progress, _ := newTestSession(t)
	ctx := context.Background()

	fb, err := s.SubmitChoice(ctx, 1)
	if err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if !fb.Correct || fb.CorrectAnswer != "4" || fb.Explanation != "Basic sum." {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if s.Score() != 1 || !s.IsAnswered() || s.Phase() != PhaseFeedback {
		t.Errorf("score=%d answered=%v phase=%v", s.Score(), s.IsAnswered(), s.Phase())
	}
	if progress.saves != 1 {
		t.Errorf("saves = %d, want 1", progress.saves)
	}

	if _, err := s.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	fb, err = s.SubmitChoice(ctx, 1)
	if err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if fb.Correct || fb.CorrectAnswer != "True" {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if s.Score() != 1 {
		t.Errorf("score = %d, want 1", s.Score())
	}
}

func TestSubmit_Guards(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()

	if _, err := s.SubmitChoice(ctx, 7); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("out of range: got %v, want ErrInvalidChoice", err)
	}
	if _, err := s.SubmitText(ctx, "4"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("text on choice: got %v, want ErrWrongKind", err)
	}
	if _, err := s.Advance(ctx); !errors.Is(err, ErrNotAnswered) {
		t.Errorf("advance unanswered: got %v, want ErrNotAnswered", err)
	}

	if _, err := s.SubmitChoice(ctx, 0); err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if _, err := s.SubmitChoice(ctx, 1); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("double answer: got %v, want ErrAlreadyAnswered", err)
	}
	if _, err := s.Skip(ctx); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("skip after answer: got %v, want ErrAlreadyAnswered", err)
	}
	if s.Score() != 0 {
		t.Errorf("score = %d, want 0", s.Score())
	}
}

func TestSubmitText(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()
	s.progress.Index = 2

	if _, err := s.SubmitChoice(ctx, 0); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("choice on text: got %v, want ErrInvalidChoice", err)
	}
	if _, err := s.SubmitText(ctx, "   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("blank: got %v, want ErrEmptyAnswer", err)
	}

	fb, err := s.SubmitText(ctx, "  madrid ")
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if !fb.Correct || !fb.Last || fb.CorrectAnswer != "Madrid" {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if got := s.CurrentAnswer(); got == nil || got.Text != "madrid" {
		t.Errorf("recorded answer = %+v", got)
	}
}

func TestSkip_RecordsExplicitAnswer(t *testing.T) {
	s, _, events := newTestSession(t)
	ctx := context.Background()

	fb, err := s.Skip(ctx)
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if fb.Correct || !fb.Skipped {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if a := s.CurrentAnswer(); a == nil || a.Type != AnswerSkip {
		t.Errorf("expected skip answer, got %+v", a)
	}
	if got := events.actions(); got[len(got)-1] != store.ActionSkip {
		t.Errorf("last event = %s, want skip", got[len(got)-1])
	}
}

func TestFullRun_FinishesAndStopsTimer(t *testing.T) {
	s, _, events := newTestSession(t)
	ctx := context.Background()

	steps := []func() (*Feedback, error){
		func() (*Feedback, error) { return s.SubmitChoice(ctx, 1) },
		func() (*Feedback, error) { return s.Skip(ctx) },
		func() (*Feedback, error) { return s.SubmitText(ctx, "Madrid") },
	}
	for i, step := range steps {
		if _, err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if err := s.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
		done, err := s.Advance(ctx)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if done != (i == len(steps)-1) {
			t.Errorf("advance %d: done = %v", i, done)
		}
	}

	if !s.Finished() || s.Phase() != PhaseFinished {
		t.Fatal("expected finished session")
	}
	if s.Score() != 2 {
		t.Errorf("score = %d, want 2", s.Score())
	}
	if _, err := s.Skip(ctx); !errors.Is(err, ErrFinished) {
		t.Errorf("skip after finish: got %v, want ErrFinished", err)
	}
	if _, err := s.Advance(ctx); !errors.Is(err, ErrFinished) {
		t.Errorf("advance after finish: got %v, want ErrFinished", err)
	}

	before := s.Elapsed()
	_ = s.Tick(ctx)
	if s.Elapsed() != before {
		t.Error("timer should stop once finished")
	}

	got := events.actions()
	if got[len(got)-1] != store.ActionFinish {
		t.Errorf("last event = %s, want finish", got[len(got)-1])
	}
}

func TestPersistFailure_LeavesStateUnchanged(t *testing.T) {
	s, progress, _ := newTestSession(t)
	ctx := context.Background()
	progress.saveErr = errors.New("disk full")

	if _, err := s.SubmitChoice(ctx, 1); err == nil {
		t.Fatal("expected error")
	}
	if s.IsAnswered() || s.Score() != 0 || s.CurrentAnswer() != nil {
		t.Error("failed write must not change the session")
	}

	progress.saveErr = nil
	if _, err := s.SubmitChoice(ctx, 1); err != nil {
		t.Fatalf("retry: %v", err)
	}
	progress.saveErr = errors.New("disk full")
	if _, err := s.Advance(ctx); err == nil {
		t.Fatal("expected error")
	}
	if s.Index() != 0 {
		t.Errorf("index = %d, want 0 after failed advance", s.Index())
	}
}

func TestResume_AtUnansweredQuestion(t *testing.T) {
	s, progress, _ := newTestSession(t)
	ctx := context.Background()
	q := s.Quiz()

	_, _ = s.SubmitChoice(ctx, 1)
	_, _ = s.Advance(ctx)

	resumed, err := New(ctx, q, Options{Progress: progress})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if resumed.Index() != 1 || resumed.Score() != 1 || resumed.IsAnswered() {
		t.Errorf("resumed index=%d score=%d answered=%v", resumed.Index(), resumed.Score(), resumed.IsAnswered())
	}
	if resumed.ID() != s.ID() {
		t.Error("resumed session should keep its id")
	}
}

func TestResume_AnsweredQuestionStaysAnswered(t *testing.T) {
	s, progress, _ := newTestSession(t)
	ctx := context.Background()

	_, _ = s.SubmitChoice(ctx, 1)

	resumed, err := New(ctx, s.Quiz(), Options{Progress: progress})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !resumed.IsAnswered() || resumed.Phase() != PhaseFeedback {
		t.Fatalf("expected feedback phase, got %v", resumed.Phase())
	}
	if _, err := resumed.SubmitChoice(ctx, 1); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("got %v, want ErrAlreadyAnswered", err)
	}
	if fb := resumed.Feedback(); fb == nil || !fb.Correct {
		t.Errorf("feedback = %+v", fb)
	}
}

func TestResume_RecomputesScore(t *testing.T) {
	q := testQuiz(t)
	progress := newMockProgressRepo()
	progress.records[q.Key()] = &store.ProgressRecord{
		QuizKey: q.Key(),
		Index:   1,
		Score:   99,
		Answers: json.RawMessage(`[{"type":"choice","index":1,"correct":false}]`),
	}

	s, err := New(context.Background(), q, Options{Progress: progress})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Score() != 1 {
		t.Errorf("score = %d, want 1", s.Score())
	}
	if !s.Progress().Answers[0].Correct {
		t.Error("expected correctness to be re-derived")
	}
}

func TestResume_DiscardsProgressThatDoesNotFit(t *testing.T) {
	q := testQuiz(t)
	cases := map[string]*store.ProgressRecord{
		"index out of range": {Index: 9},
		"too many answers":   {Index: 1, Answers: json.RawMessage(`[{"type":"skip"},{"type":"skip"},{"type":"skip"},{"type":"skip"}]`)},
		"answer ahead":       {Index: 0, Answers: json.RawMessage(`[null,{"type":"skip"}]`)},
		"bad option":         {Index: 0, Answers: json.RawMessage(`[{"type":"choice","index":8}]`)},
		"text on choice":     {Index: 0, Answers: json.RawMessage(`[{"type":"text","text":"4"}]`)},
		"unknown type":       {Index: 0, Answers: json.RawMessage(`[{"type":"guess"}]`)},
		"malformed answers":  {Index: 0, Answers: json.RawMessage(`{`)},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			progress := newMockProgressRepo()
			rec.QuizKey = q.Key()
			progress.records[q.Key()] = rec

			s, err := New(context.Background(), q, Options{Progress: progress})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if s.Index() != 0 || s.Score() != 0 || s.IsAnswered() {
				t.Errorf("expected fresh state, got index=%d score=%d", s.Index(), s.Score())
			}
		})
	}
}

func TestReset(t *testing.T) {
	s, progress, events := newTestSession(t)
	ctx := context.Background()
	oldID := s.ID()

	_, _ = s.SubmitChoice(ctx, 1)
	_, _ = s.Advance(ctx)

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Index() != 0 || s.Score() != 0 || s.IsAnswered() {
		t.Errorf("unexpected state after reset: index=%d score=%d", s.Index(), s.Score())
	}
	if s.ID() == oldID {
		t.Error("expected a new session id")
	}
	if len(progress.records) != 0 {
		t.Error("expected persisted progress to be cleared")
	}
	got := events.actions()
	if got[len(got)-2] != store.ActionReset || got[len(got)-1] != store.ActionStart {
		t.Errorf("events = %v", got)
	}
}

func TestAutosave(t *testing.T) {
	progress := newMockProgressRepo()
	s, err := New(context.Background(), testQuiz(t), Options{Progress: progress, AutosaveEvery: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		_ = s.Tick(ctx)
	}
	if progress.saves != 0 {
		t.Errorf("saves = %d before boundary, want 0", progress.saves)
	}
	_ = s.Tick(ctx)
	if progress.saves != 1 {
		t.Errorf("saves = %d at boundary, want 1", progress.saves)
	}
	if rec := progress.records[s.Quiz().Key()]; rec.ElapsedSeconds != 10 {
		t.Errorf("saved elapsed = %d, want 10", rec.ElapsedSeconds)
	}

	if err := s.AddSeconds(ctx, 25); err != nil {
		t.Fatalf("AddSeconds: %v", err)
	}
	if progress.saves != 2 {
		t.Errorf("saves = %d after jump, want 2", progress.saves)
	}
}

func TestInMemorySession(t *testing.T) {
	s, err := New(context.Background(), testQuiz(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.SubmitChoice(context.Background(), 1); err != nil {
		t.Fatalf("SubmitChoice: %v", err)
	}
	if err := s.Save(context.Background()); err != nil {
		t.Errorf("Save without repo: %v", err)
	}
}
