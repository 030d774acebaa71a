package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo. There is at most one row per quiz.
type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) LoadProgress(ctx context.Context, quizKey string) (*ProgressRecord, error) {
	b := builder()
	query, args := b.Select("quiz_key", "session_id", "current_index", "score", "elapsed_seconds", "answers", "updated_at").
		From(b.Table(progressTableName)).
		Where(entsql.EQ("quiz_key", quizKey)).
		Query()

	var (
		rec     ProgressRecord
		answers string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.QuizKey, &rec.SessionID, &rec.Index, &rec.Score, &rec.ElapsedSeconds, &answers, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	rec.Answers = []byte(answers)
	return &rec, nil
}

func (r *progressRepo) SaveProgress(ctx context.Context, rec *ProgressRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	answers := string(rec.Answers)
	if answers == "" {
		answers = "[]"
	}
	query, args := builder().Insert(progressTableName).
		Columns("quiz_key", "session_id", "current_index", "score", "elapsed_seconds", "answers", "updated_at").
		Values(rec.QuizKey, rec.SessionID, rec.Index, rec.Score, rec.ElapsedSeconds, answers, rec.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("quiz_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *progressRepo) ClearProgress(ctx context.Context, quizKey string) error {
	query, args := builder().Delete(progressTableName).
		Where(entsql.EQ("quiz_key", quizKey)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}
