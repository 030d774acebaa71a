package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	quizzesTableName       = "quizzes"
	progressTableName      = "progress"
	sourcesTableName       = "sources"
	sessionEventsTableName = "session_events"
	llmEventsTableName     = "llm_request_events"
	countersTableName      = "counters"
)

// longText is the size ent maps to an unbounded TEXT column.
const longText = 2147483647

var (
	// quizzesColumns holds every quiz the user loaded. The newest row is the
	// current quiz.
	quizzesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "quiz_key", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "question_count", Type: field.TypeInt, Default: 0},
		{Name: "data", Type: field.TypeString, Size: longText},
		{Name: "loaded_at", Type: field.TypeTime},
	}
	quizzesTable = &schema.Table{
		Name:       quizzesTableName,
		Columns:    quizzesColumns,
		PrimaryKey: []*schema.Column{quizzesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quiz_loaded_at", Unique: false, Columns: []*schema.Column{quizzesColumns[5]}},
		},
	}

	progressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "quiz_key", Type: field.TypeString, Unique: true},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "current_index", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "elapsed_seconds", Type: field.TypeInt, Default: 0},
		{Name: "answers", Type: field.TypeString, Size: longText},
		{Name: "updated_at", Type: field.TypeTime},
	}
	progressTable = &schema.Table{
		Name:       progressTableName,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0]},
	}

	sourcesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "slot", Type: field.TypeString, Unique: true},
		{Name: "origin", Type: field.TypeString, Default: ""},
		{Name: "text", Type: field.TypeString, Size: longText},
		{Name: "settings", Type: field.TypeString, Size: longText, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	sourcesTable = &schema.Table{
		Name:       sourcesTableName,
		Columns:    sourcesColumns,
		PrimaryKey: []*schema.Column{sourcesColumns[0]},
	}

	sessionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "quiz_key", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "question_index", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeBool, Default: false},
		{Name: "answer", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "total", Type: field.TypeInt, Default: 0},
		{Name: "elapsed_seconds", Type: field.TypeInt, Default: 0},
	}
	sessionEventsTable = &schema.Table{
		Name:       sessionEventsTableName,
		Columns:    sessionEventsColumns,
		PrimaryKey: []*schema.Column{sessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_timestamp", Unique: false, Columns: []*schema.Column{sessionEventsColumns[2]}},
			{Name: "sessionevent_session_id", Unique: false, Columns: []*schema.Column{sessionEventsColumns[3]}},
			{Name: "sessionevent_action", Unique: false, Columns: []*schema.Column{sessionEventsColumns[5]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: longText, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       llmEventsTableName,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Unique: false, Columns: []*schema.Column{llmEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Unique: false, Columns: []*schema.Column{llmEventsColumns[5]}},
		},
	}

	// countersColumns holds named monotonic counters.
	countersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeInt64, Default: 0},
	}
	countersTable = &schema.Table{
		Name:       countersTableName,
		Columns:    countersColumns,
		PrimaryKey: []*schema.Column{countersColumns[0]},
	}

	// tables lists every table managed by the migrator.
	tables = []*schema.Table{
		quizzesTable,
		progressTable,
		sourcesTable,
		sessionEventsTable,
		llmEventsTable,
		countersTable,
	}
)
