package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventsCounter is the counters row that numbers session and LLM events
// together, so both logs can be merged in the order things happened.
const eventsCounter = "events"

// eventRepo implements EventRepo. Every append reserves its sequence
// number and inserts the row in one transaction.
type eventRepo struct {
	db *sql.DB
	mu *sync.Mutex
}

// append inserts one event row into table. cols and vals exclude the
// sequence and timestamp columns, which append fills in.
func (r *eventRepo) append(ctx context.Context, table string, cols []string, vals ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return err
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seq, time.Now().UTC()}, vals...)...).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return tx.Commit()
}

// nextSequence bumps the events counter and returns the new value, which
// starts at 1.
func nextSequence(ctx context.Context, tx *sql.Tx) (int64, error) {
	query, args := builder().Insert(countersTableName).
		Columns("name", "value").
		Values(eventsCounter, 1).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) { u.Add("value", 1) }),
		).
		Returning("value").
		Query()

	var seq int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next event sequence: %w", err)
	}
	return seq, nil
}

// applyQueryOpts filters an event selector by QueryOpts and orders it
// newest first.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	sel = sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	return sel
}
