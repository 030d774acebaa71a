package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// Options configures a Session.
type Options struct {
	// Progress persists the session after every committed transition.
	// Nil keeps the session in memory only.
	Progress store.ProgressRepo

	// Events receives start, answer, skip, finish and reset events. Optional.
	Events store.EventRepo

	// AutosaveEvery persists the timer every N elapsed seconds.
	// Zero saves the timer only with answers and navigation.
	AutosaveEvery int
}

// Session is the quiz session state machine. It is not safe for
// concurrent use; callers that share a Session must serialize access.
type Session struct {
	quiz     *quiz.Quiz
	id       string
	progress Progress
	answered bool
	opts     Options
}

// New opens a session for q, resuming saved progress when it fits the
// quiz. Progress that does not fit is discarded.
func New(ctx context.Context, q *quiz.Quiz, opts Options) (*Session, error) {
	if q == nil || q.Len() == 0 {
		return nil, quiz.ErrNoQuestions
	}

	s := &Session{
		quiz: q,
		opts: opts,
	}
	s.progress = freshProgress(q.Len())

	if opts.Progress != nil {
		rec, err := opts.Progress.LoadProgress(ctx, q.Key())
		if err != nil {
			return nil, fmt.Errorf("load progress: %w", err)
		}
		if rec != nil {
			p, err := restoreProgress(q, rec)
			if err != nil {
				slog.Warn("discarding saved progress", "quiz", q.Key(), "err", err)
			} else {
				s.progress = p
				s.id = rec.SessionID
			}
		}
	}

	if s.id == "" {
		s.id = uuid.New().String()
	}
	s.answered = s.progress.Index < q.Len() && s.progress.Answers[s.progress.Index] != nil

	s.record(ctx, store.ActionStart, s.progress.Index, false, "")
	return s, nil
}

// ID returns the session identifier used in events.
func (s *Session) ID() string { return s.id }

// Quiz returns the quiz being played.
func (s *Session) Quiz() *quiz.Quiz { return s.quiz }

// Progress returns a copy of the current state.
func (s *Session) Progress() Progress { return s.progress.clone() }

// Index returns the current question index.
func (s *Session) Index() int { return s.progress.Index }

// Total returns the number of questions.
func (s *Session) Total() int { return s.quiz.Len() }

// Score returns the number of correct answers.
func (s *Session) Score() int { return s.progress.Score }

// Elapsed returns the time spent on the quiz.
func (s *Session) Elapsed() time.Duration {
	return time.Duration(s.progress.ElapsedSeconds) * time.Second
}

// Finished reports whether every question has been passed.
func (s *Session) Finished() bool { return s.progress.Index >= s.quiz.Len() }

// IsAnswered reports whether the current question has been answered.
func (s *Session) IsAnswered() bool { return s.answered }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	switch {
	case s.Finished():
		return PhaseFinished
	case s.answered:
		return PhaseFeedback
	default:
		return PhaseQuestion
	}
}

// Current returns the current question, or nil once finished.
func (s *Session) Current() *quiz.Question {
	if s.Finished() {
		return nil
	}
	return &s.quiz.Questions[s.progress.Index]
}

// CurrentAnswer returns the answer to the current question, or nil.
func (s *Session) CurrentAnswer() *Answer {
	if s.Finished() {
		return nil
	}
	return s.progress.Answers[s.progress.Index].clone()
}

// Feedback returns the feedback for the current question once answered.
func (s *Session) Feedback() *Feedback {
	if !s.answered || s.Finished() {
		return nil
	}
	return s.feedbackFor(s.progress.Index, s.progress.Answers[s.progress.Index])
}

// SubmitChoice answers the current choice question with option idx.
func (s *Session) SubmitChoice(ctx context.Context, idx int) (*Feedback, error) {
	q, err := s.answerable()
	if err != nil {
		return nil, err
	}
	if !q.IsChoice() || idx < 0 || idx >= len(q.Options) {
		return nil, ErrInvalidChoice
	}
	chosen := idx
	ans := &Answer{Type: AnswerChoice, Index: &chosen, Correct: quiz.CheckChoice(q, idx)}
	return s.commitAnswer(ctx, ans, store.ActionAnswer, strconv.Itoa(idx))
}

// SubmitText answers the current text question.
func (s *Session) SubmitText(ctx context.Context, text string) (*Feedback, error) {
	q, err := s.answerable()
	if err != nil {
		return nil, err
	}
	if q.IsChoice() {
		return nil, ErrWrongKind
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyAnswer
	}
	ans := &Answer{Type: AnswerText, Text: text, Correct: quiz.CheckText(q, text)}
	return s.commitAnswer(ctx, ans, store.ActionAnswer, text)
}

// Skip records the current question as skipped. A skip is never correct.
func (s *Session) Skip(ctx context.Context) (*Feedback, error) {
	if _, err := s.answerable(); err != nil {
		return nil, err
	}
	return s.commitAnswer(ctx, &Answer{Type: AnswerSkip}, store.ActionSkip, "")
}

// Advance moves past an answered question and reports whether the quiz is
// now finished.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	if s.Finished() {
		return true, ErrFinished
	}
	if !s.answered {
		return false, ErrNotAnswered
	}

	next := s.progress.clone()
	next.Index++
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.progress = next
	s.answered = !s.Finished() && next.Answers[next.Index] != nil

	if s.Finished() {
		s.record(ctx, store.ActionFinish, next.Index, false, "")
		return true, nil
	}
	return false, nil
}

// Reset clears saved progress and restarts from the first question under a
// new session id.
func (s *Session) Reset(ctx context.Context) error {
	if s.opts.Progress != nil {
		if err := s.opts.Progress.ClearProgress(ctx, s.quiz.Key()); err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}
	}
	s.record(ctx, store.ActionReset, s.progress.Index, false, "")

	s.progress = freshProgress(s.quiz.Len())
	s.answered = false
	s.id = uuid.New().String()
	s.record(ctx, store.ActionStart, 0, false, "")
	return nil
}

// Tick adds one second to the timer while the quiz is in progress.
func (s *Session) Tick(ctx context.Context) error {
	return s.AddSeconds(ctx, 1)
}

// AddSeconds adds n seconds to the timer while the quiz is in progress and
// autosaves when the timer crosses an AutosaveEvery boundary.
func (s *Session) AddSeconds(ctx context.Context, n int) error {
	if n <= 0 || s.Finished() {
		return nil
	}
	before := s.progress.ElapsedSeconds
	s.progress.ElapsedSeconds += n

	every := s.opts.AutosaveEvery
	if every > 0 && before/every != s.progress.ElapsedSeconds/every {
		return s.persist(ctx, s.progress)
	}
	return nil
}

// Save persists the current state, e.g. before the player is closed.
func (s *Session) Save(ctx context.Context) error {
	return s.persist(ctx, s.progress)
}

// Results summarises the session so far.
func (s *Session) Results() *Results {
	return BuildResults(s.quiz, s.progress)
}

// answerable returns the current question if it can still be answered.
func (s *Session) answerable() (*quiz.Question, error) {
	if s.Finished() {
		return nil, ErrFinished
	}
	if s.answered {
		return nil, ErrAlreadyAnswered
	}
	return s.Current(), nil
}

// commitAnswer writes ans for the current question, persisting first so a
// failed write leaves the session unchanged.
func (s *Session) commitAnswer(ctx context.Context, ans *Answer, action, detail string) (*Feedback, error) {
	next := s.progress.clone()
	next.Answers[next.Index] = ans
	if ans.Correct {
		next.Score++
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.progress = next
	s.answered = true

	s.record(ctx, action, next.Index, ans.Correct, detail)
	return s.feedbackFor(next.Index, ans), nil
}

func (s *Session) feedbackFor(idx int, ans *Answer) *Feedback {
	q := &s.quiz.Questions[idx]
	fb := &Feedback{
		Correct:     ans.Correct,
		Skipped:     ans.Type == AnswerSkip,
		Explanation: q.Explanation,
		Last:        idx == s.quiz.Len()-1,
	}
	if q.IsChoice() {
		fb.CorrectAnswer = quiz.CorrectText(q)
	} else {
		fb.CorrectAnswer = quiz.FirstCorrectText(q)
	}
	return fb
}

func (s *Session) persist(ctx context.Context, p Progress) error {
	if s.opts.Progress == nil {
		return nil
	}
	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	err = s.opts.Progress.SaveProgress(ctx, &store.ProgressRecord{
		QuizKey:        s.quiz.Key(),
		SessionID:      s.id,
		Index:          p.Index,
		Score:          p.Score,
		ElapsedSeconds: p.ElapsedSeconds,
		Answers:        answers,
	})
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// record appends a session event. Failures are logged, not returned.
func (s *Session) record(ctx context.Context, action string, idx int, correct bool, answer string) {
	if s.opts.Events == nil {
		return
	}
	err := s.opts.Events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:      s.id,
		QuizKey:        s.quiz.Key(),
		Action:         action,
		QuestionIndex:  idx,
		Correct:        correct,
		Answer:         answer,
		Score:          s.progress.Score,
		Total:          s.quiz.Len(),
		ElapsedSeconds: s.progress.ElapsedSeconds,
	})
	if err != nil {
		slog.Warn("failed to record session event", "action", action, "err", err)
	}
}

func freshProgress(n int) Progress {
	return Progress{Answers: make([]*Answer, n)}
}
