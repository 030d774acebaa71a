package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// quizRepo implements QuizRepo.
type quizRepo struct {
	db *sql.DB
}

func (r *quizRepo) SaveQuiz(ctx context.Context, rec *QuizRecord) error {
	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = time.Now().UTC()
	}
	query, args := builder().Insert(quizzesTableName).
		Columns("quiz_key", "title", "question_count", "data", "loaded_at").
		Values(rec.Key, rec.Title, rec.QuestionCount, string(rec.Data), rec.LoadedAt).
		OnConflict(
			entsql.ConflictColumns("quiz_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (r *quizRepo) CurrentQuiz(ctx context.Context) (*QuizRecord, error) {
	b := builder()
	query, args := b.Select("quiz_key", "title", "question_count", "data", "loaded_at").
		From(b.Table(quizzesTableName)).
		OrderBy(entsql.Desc("loaded_at"), entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		rec  QuizRecord
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&rec.Key, &rec.Title, &rec.QuestionCount, &data, &rec.LoadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query current quiz: %w", err)
	}
	rec.Data = []byte(data)
	return &rec, nil
}

func (r *quizRepo) PruneQuizzes(ctx context.Context, keep int) error {
	// Nothing to do unless a quiz exists past the keep window.
	b := builder()
	query, args := b.Select("id").
		From(b.Table(quizzesTableName)).
		OrderBy(entsql.Desc("loaded_at"), entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()

	var overflow int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&overflow); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil // fewer than keep quizzes exist
		}
		return fmt.Errorf("query quizzes for prune: %w", err)
	}

	// Everything not in the newest keep rows goes.
	query, args = b.Select("id").
		From(b.Table(quizzesTableName)).
		OrderBy(entsql.Desc("loaded_at"), entsql.Desc("id")).
		Limit(keep).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query kept quizzes: %w", err)
	}
	var kept []any
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan kept quiz: %w", err)
		}
		kept = append(kept, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	del := b.Delete(quizzesTableName)
	if len(kept) > 0 {
		del = del.Where(entsql.NotIn("id", kept...))
	}
	query, args = del.Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune quizzes: %w", err)
	}
	return nil
}

func (r *quizRepo) ClearQuizzes(ctx context.Context) error {
	query, args := builder().Delete(quizzesTableName).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear quizzes: %w", err)
	}
	return nil
}
