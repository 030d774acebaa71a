// Package redisprogress keeps quiz progress in Redis so several `serve`
// instances, or a browser front end and the terminal player, share one
// position per quiz.
package redisprogress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/piscinadeentropia/mrquizzer/internal/store"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mrquizzer:progress:"

// Repo implements store.ProgressRepo on top of a Redis client.
type Repo struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a Repo. A zero ttl keeps progress until it is cleared.
func New(client *redis.Client, ttl time.Duration) *Repo {
	return &Repo{client: client, ttl: ttl}
}

// Open parses a redis:// URL and returns a Repo after a successful ping.
func Open(ctx context.Context, url string, ttl time.Duration) (*Repo, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl), nil
}

// Close releases the underlying client.
func (r *Repo) Close() error {
	return r.client.Close()
}

type record struct {
	QuizKey        string          `json:"quiz_key"`
	SessionID      string          `json:"session_id"`
	Index          int             `json:"index"`
	Score          int             `json:"score"`
	ElapsedSeconds int             `json:"elapsed_seconds"`
	Answers        json.RawMessage `json:"answers"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (r *Repo) LoadProgress(ctx context.Context, quizKey string) (*store.ProgressRecord, error) {
	raw, err := r.client.Get(ctx, r.key(quizKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &store.ProgressRecord{
		QuizKey:        rec.QuizKey,
		SessionID:      rec.SessionID,
		Index:          rec.Index,
		Score:          rec.Score,
		ElapsedSeconds: rec.ElapsedSeconds,
		Answers:        rec.Answers,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

func (r *Repo) SaveProgress(ctx context.Context, rec *store.ProgressRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	answers := rec.Answers
	if len(answers) == 0 {
		answers = json.RawMessage("[]")
	}
	raw, err := json.Marshal(record{
		QuizKey:        rec.QuizKey,
		SessionID:      rec.SessionID,
		Index:          rec.Index,
		Score:          rec.Score,
		ElapsedSeconds: rec.ElapsedSeconds,
		Answers:        answers,
		UpdatedAt:      rec.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := r.client.Set(ctx, r.key(rec.QuizKey), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *Repo) ClearProgress(ctx context.Context, quizKey string) error {
	if err := r.client.Del(ctx, r.key(quizKey)).Err(); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

func (r *Repo) key(quizKey string) string {
	return keyPrefix + quizKey
}
