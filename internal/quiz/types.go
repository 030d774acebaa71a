package quiz

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// Type identifies how a question is answered.
type Type string

const (
	TypeMCQ         Type = "mcq"
	TypeTrueFalse   Type = "true_false"
	TypeShortAnswer Type = "short_answer"
	TypeFillBlank   Type = "fill_blank"
)

// Types lists every question type in display order.
var Types = []Type{TypeMCQ, TypeTrueFalse, TypeShortAnswer, TypeFillBlank}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Quiz is a loaded quiz definition. It is immutable once parsed.
type Quiz struct {
	Metadata  Metadata   `json:"metadata"`
	Questions []Question `json:"questions"`

	// Raw is the cleaned JSON document the quiz was parsed from.
	Raw []byte `json:"-"`
}

// Metadata describes how a quiz was generated. Every field is optional.
type Metadata struct {
	Language          string `json:"language,omitempty"`
	Difficulty        string `json:"difficulty,omitempty"`
	NumberOfQuestions int    `json:"number_of_questions,omitempty"`
	GeneratedAt       string `json:"generated_at,omitempty"`
}

// Key returns a stable identifier for the quiz content. Progress records
// are stored under this key.
func (q *Quiz) Key() string {
	sum := sha256.Sum256(q.Raw)
	return hex.EncodeToString(sum[:])
}

// Len returns the number of questions.
func (q *Quiz) Len() int { return len(q.Questions) }

// Title returns a short human label for the quiz.
func (q *Quiz) Title() string {
	parts := make([]string, 0, 3)
	if q.Metadata.Language != "" {
		parts = append(parts, strings.ToUpper(q.Metadata.Language))
	}
	if q.Metadata.Difficulty != "" {
		parts = append(parts, q.Metadata.Difficulty)
	}
	parts = append(parts, strconv.Itoa(q.Len())+" questions")
	return strings.Join(parts, " · ")
}

// Question is a single quiz item.
type Question struct {
	ID             string   `json:"id"`
	Type           Type     `json:"type"`
	Text           string   `json:"question"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswers Answers  `json:"correct_answers"`
	Explanation    string   `json:"explanation,omitempty"`
}

// IsChoice reports whether the question is answered by picking an option.
// A choice-typed question that ships without options falls back to free
// text.
func (q *Question) IsChoice() bool {
	return (q.Type == TypeMCQ || q.Type == TypeTrueFalse) && len(q.Options) > 0
}

// UnmarshalJSON accepts numeric or string ids, renders number and bool
// options as text, and reads the prompt from "question", falling back to
// "text".
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             json.RawMessage   `json:"id"`
		Type           Type              `json:"type"`
		Question       string            `json:"question"`
		Text           string            `json:"text"`
		Options        []json.RawMessage `json:"options"`
		CorrectAnswers Answers           `json:"correct_answers"`
		Explanation    string            `json:"explanation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID = scalarString(raw.ID)
	q.Type = Type(strings.ToLower(strings.TrimSpace(string(raw.Type))))
	q.Text = raw.Question
	if q.Text == "" {
		q.Text = raw.Text
	}
	q.Options = nil
	if len(raw.Options) > 0 {
		// Positions matter: correct answers index into this slice.
		q.Options = make([]string, len(raw.Options))
		for i, opt := range raw.Options {
			q.Options[i] = scalarString(opt)
		}
	}
	q.CorrectAnswers = raw.CorrectAnswers
	q.Explanation = raw.Explanation
	return nil
}

// Answers holds the accepted answers of a question. For choice questions
// the entries are 0-based option indices; for text questions they are the
// accepted strings.
type Answers []string

// UnmarshalJSON accepts an array or a single scalar, with numbers and
// strings mixed freely.
func (a *Answers) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*a = nil
		return nil
	}
	var items []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
	} else {
		items = []json.RawMessage{data}
	}
	out := make(Answers, 0, len(items))
	for _, item := range items {
		s := scalarString(item)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	*a = out
	return nil
}

// Indices returns the entries that parse as integers.
func (a Answers) Indices() []int {
	var out []int
	for _, s := range a {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil && f == float64(int(f)) {
				out = append(out, int(f))
			}
			continue
		}
		out = append(out, n)
	}
	return out
}

// scalarString renders a JSON string, number or bool as plain text.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}
