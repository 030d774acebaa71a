// Package library keeps track of the quiz currently loaded for play.
package library

import (
	"context"
	"fmt"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// KeepQuizzes is how many previously loaded quizzes stay in the database.
const KeepQuizzes = 20

// Library loads quiz documents and remembers the current one.
type Library struct {
	quizzes  store.QuizRepo
	progress store.ProgressRepo
}

// New returns a Library. progress may be nil.
func New(quizzes store.QuizRepo, progress store.ProgressRepo) *Library {
	return &Library{quizzes: quizzes, progress: progress}
}

// Import parses text, stores it as the current quiz and clears any progress
// saved for it, so the quiz starts from the first question.
func (l *Library) Import(ctx context.Context, text string) (*quiz.Quiz, error) {
	q, err := quiz.Parse(text)
	if err != nil {
		return nil, err
	}
	if err := l.Save(ctx, q); err != nil {
		return nil, err
	}
	if l.progress != nil {
		if err := l.progress.ClearProgress(ctx, q.Key()); err != nil {
			return nil, fmt.Errorf("clear progress: %w", err)
		}
	}
	return q, nil
}

// Save makes q the current quiz without touching its progress.
func (l *Library) Save(ctx context.Context, q *quiz.Quiz) error {
	err := l.quizzes.SaveQuiz(ctx, &store.QuizRecord{
		Key:           q.Key(),
		Title:         q.Title(),
		QuestionCount: q.Len(),
		Data:          q.Raw,
	})
	if err != nil {
		return err
	}
	return l.quizzes.PruneQuizzes(ctx, KeepQuizzes)
}

// Current returns the most recently loaded quiz, or nil if none.
func (l *Library) Current(ctx context.Context) (*quiz.Quiz, error) {
	rec, err := l.quizzes.CurrentQuiz(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	q, err := quiz.ParseBytes(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("stored quiz %s: %w", rec.Key, err)
	}
	return q, nil
}

// Forget removes every stored quiz.
func (l *Library) Forget(ctx context.Context) error {
	return l.quizzes.ClearQuizzes(ctx)
}
