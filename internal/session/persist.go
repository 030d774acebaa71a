package session

import (
	"encoding/json"
	"fmt"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// restoreProgress rebuilds Progress from a stored record and checks that
// it fits q. Correctness and score are recomputed from the recorded
// answers, so a record edited by hand cannot break the score invariant.
func restoreProgress(q *quiz.Quiz, rec *store.ProgressRecord) (Progress, error) {
	n := q.Len()
	if rec.Index < 0 || rec.Index > n {
		return Progress{}, fmt.Errorf("index %d outside 0..%d", rec.Index, n)
	}
	if rec.ElapsedSeconds < 0 {
		return Progress{}, fmt.Errorf("negative elapsed time %d", rec.ElapsedSeconds)
	}

	var answers []*Answer
	if len(rec.Answers) > 0 {
		if err := json.Unmarshal(rec.Answers, &answers); err != nil {
			return Progress{}, fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(answers) > n {
		return Progress{}, fmt.Errorf("%d answers for %d questions", len(answers), n)
	}

	p := Progress{
		Index:          rec.Index,
		ElapsedSeconds: rec.ElapsedSeconds,
		Answers:        make([]*Answer, n),
	}
	for i, a := range answers {
		if a == nil {
			continue
		}
		if i > rec.Index {
			return Progress{}, fmt.Errorf("answer recorded for question %d ahead of index %d", i+1, rec.Index)
		}
		checked, err := recheck(&q.Questions[i], a)
		if err != nil {
			return Progress{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		p.Answers[i] = checked
		if checked.Correct {
			p.Score++
		}
	}
	return p, nil
}

// recheck validates a stored answer against its question and recomputes
// its correctness.
func recheck(q *quiz.Question, a *Answer) (*Answer, error) {
	out := a.clone()
	switch a.Type {
	case AnswerSkip:
		out.Correct = false
	case AnswerChoice:
		if a.Index == nil || !q.IsChoice() || *a.Index < 0 || *a.Index >= len(q.Options) {
			return nil, ErrInvalidChoice
		}
		out.Correct = quiz.CheckChoice(q, *a.Index)
	case AnswerText:
		if q.IsChoice() {
			return nil, ErrWrongKind
		}
		out.Correct = quiz.CheckText(q, a.Text)
	default:
		return nil, fmt.Errorf("unknown answer type %q", a.Type)
	}
	return out, nil
}
