package session

import (
	"context"
	"sort"
	"time"

	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// HistoryEntry summarises one session from the event log.
type HistoryEntry struct {
	SessionID      string
	QuizKey        string
	StartedAt      time.Time
	UpdatedAt      time.Time
	Answered       int
	Score          int
	Total          int
	ElapsedSeconds int
	Finished       bool
	Reset          bool
}

// Percent returns the score as a rounded percentage of the total.
func (e HistoryEntry) Percent() int { return Percent(e.Score, e.Total) }

// History rebuilds per-session summaries from the event log, newest first.
// A limit of zero returns every session.
func History(ctx context.Context, events store.EventRepo, limit int) ([]HistoryEntry, error) {
	recs, err := events.QuerySessionEvents(ctx, store.QueryOpts{})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*HistoryEntry)
	var order []*HistoryEntry
	for _, r := range recs {
		e, ok := byID[r.SessionID]
		if !ok {
			e = &HistoryEntry{SessionID: r.SessionID, QuizKey: r.QuizKey, StartedAt: r.Timestamp}
			byID[r.SessionID] = e
			order = append(order, e)
		}
		e.UpdatedAt = r.Timestamp
		e.Total = r.Total
		switch r.Action {
		case store.ActionReset:
			e.Reset = true
			continue
		case store.ActionAnswer, store.ActionSkip:
			e.Answered++
		case store.ActionFinish:
			e.Finished = true
		}
		e.Score = r.Score
		e.ElapsedSeconds = r.ElapsedSeconds
	}

	out := make([]HistoryEntry, 0, len(order))
	for _, e := range order {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
