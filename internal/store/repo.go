package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// QuizRecord is a stored quiz document.
type QuizRecord struct {
	Key           string
	Title         string
	QuestionCount int
	Data          []byte
	LoadedAt      time.Time
}

// QuizRepo stores loaded quizzes.
type QuizRepo interface {
	// SaveQuiz stores the quiz and makes it the current one. Saving a quiz
	// that already exists refreshes it.
	SaveQuiz(ctx context.Context, rec *QuizRecord) error

	// CurrentQuiz returns the most recently loaded quiz, or nil if none.
	CurrentQuiz(ctx context.Context) (*QuizRecord, error)

	// PruneQuizzes deletes all but the N most recently loaded quizzes.
	PruneQuizzes(ctx context.Context, keep int) error

	// ClearQuizzes deletes every stored quiz.
	ClearQuizzes(ctx context.Context) error
}

// ProgressRecord is the persisted state of a quiz session.
type ProgressRecord struct {
	QuizKey        string
	SessionID      string
	Index          int
	Score          int
	ElapsedSeconds int
	Answers        json.RawMessage
	UpdatedAt      time.Time
}

// ProgressRepo persists session progress, one record per quiz.
type ProgressRepo interface {
	// LoadProgress returns the progress for a quiz, or nil if none exists.
	LoadProgress(ctx context.Context, quizKey string) (*ProgressRecord, error)

	// SaveProgress upserts the progress for rec.QuizKey.
	SaveProgress(ctx context.Context, rec *ProgressRecord) error

	// ClearProgress removes the progress for a quiz.
	ClearProgress(ctx context.Context, quizKey string) error
}

// Source origins.
const (
	OriginText = "text"
	OriginFile = "file"
	OriginPDF  = "pdf"
	OriginURL  = "url"
)

// SourceRecord is the cached prompt-builder input.
type SourceRecord struct {
	Origin    string
	Text      string
	Settings  json.RawMessage
	UpdatedAt time.Time
}

// SourceRepo caches the source material and prompt settings between runs.
type SourceRepo interface {
	SaveSource(ctx context.Context, rec *SourceRecord) error
	// LatestSource returns the cached source, or nil if none.
	LatestSource(ctx context.Context) (*SourceRecord, error)
	ClearSource(ctx context.Context) error
}

// Session event actions.
const (
	ActionStart  = "start"
	ActionAnswer = "answer"
	ActionSkip   = "skip"
	ActionFinish = "finish"
	ActionReset  = "reset"
)

// SessionEventData captures one quiz session transition.
type SessionEventData struct {
	SessionID      string
	QuizKey        string
	Action         string
	QuestionIndex  int
	Correct        bool
	Answer         string
	Score          int
	Total          int
	ElapsedSeconds int
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM calls by a grouping key.
type LLMUsageStats struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	// GetLLMEvent returns the event with the given id, or nil if missing.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsageStats, error)

	// AppendSessionEvent records a quiz session transition.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)
}
