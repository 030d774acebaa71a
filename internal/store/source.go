package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// currentSlot is the only slot used today; the column leaves room for
// named drafts.
const currentSlot = "current"

// sourceRepo implements SourceRepo.
type sourceRepo struct {
	db *sql.DB
}

func (r *sourceRepo) SaveSource(ctx context.Context, rec *SourceRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	var settings any
	if len(rec.Settings) > 0 {
		settings = string(rec.Settings)
	}
	query, args := builder().Insert(sourcesTableName).
		Columns("slot", "origin", "text", "settings", "updated_at").
		Values(currentSlot, rec.Origin, rec.Text, settings, rec.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("slot"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save source: %w", err)
	}
	return nil
}

func (r *sourceRepo) LatestSource(ctx context.Context) (*SourceRecord, error) {
	b := builder()
	query, args := b.Select("origin", "text", "settings", "updated_at").
		From(b.Table(sourcesTableName)).
		Where(entsql.EQ("slot", currentSlot)).
		Query()

	var (
		rec      SourceRecord
		settings sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&rec.Origin, &rec.Text, &settings, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load source: %w", err)
	}
	if settings.Valid {
		rec.Settings = []byte(settings.String)
	}
	return &rec, nil
}

func (r *sourceRepo) ClearSource(ctx context.Context) error {
	query, args := builder().Delete(sourcesTableName).
		Where(entsql.EQ("slot", currentSlot)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear source: %w", err)
	}
	return nil
}
