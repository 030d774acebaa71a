package store

import (
	"context"
	"fmt"
)

var sessionEventColumns = []string{
	"id", "sequence", "timestamp", "session_id", "quiz_key", "action",
	"question_index", "correct", "answer", "score", "total", "elapsed_seconds",
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.append(ctx, sessionEventsTableName, sessionEventColumns[3:],
		data.SessionID,
		data.QuizKey,
		data.Action,
		data.QuestionIndex,
		data.Correct,
		data.Answer,
		data.Score,
		data.Total,
		data.ElapsedSeconds,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	b := builder()
	sel := applyQueryOpts(b.Select(sessionEventColumns...).From(b.Table(sessionEventsTableName)), opts)
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEventRecord
	for rows.Next() {
		var e SessionEventRecord
		if err := rows.Scan(
			&e.ID,
			&e.Sequence,
			&e.Timestamp,
			&e.SessionID,
			&e.QuizKey,
			&e.Action,
			&e.QuestionIndex,
			&e.Correct,
			&e.Answer,
			&e.Score,
			&e.Total,
			&e.ElapsedSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
