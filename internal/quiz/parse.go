package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("quiz: empty input")
	// ErrMissingQuestions is returned when the document has no questions array.
	ErrMissingQuestions = errors.New(`quiz: missing "questions" array`)
	// ErrNoQuestions is returned when the questions array is empty.
	ErrNoQuestions = errors.New("quiz: questions array is empty")
)

// SyntaxError wraps a JSON decoding failure.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "quiz: invalid JSON: " + e.Err.Error() }
func (e *SyntaxError) Unwrap() error { return e.Err }

// jsonBlock matches from the first opening brace to the last closing brace,
// so chat preambles and markdown fences around the document are ignored.
var jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)

// Extract returns the JSON object embedded in text, or the trimmed text
// itself when no braces are present.
func Extract(text string) string {
	text = strings.TrimSpace(text)
	if m := jsonBlock.FindString(text); m != "" {
		return m
	}
	return text
}

// Parse applies the load-time contract to user supplied text and returns
// the quiz it describes.
func Parse(text string) (*Quiz, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}
	doc := Extract(text)

	var probe struct {
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(doc), &probe); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	trimmed := bytes.TrimSpace(probe.Questions)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMissingQuestions
	}

	var q Quiz
	if err := json.Unmarshal([]byte(doc), &q); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	if len(q.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	q.Raw = []byte(doc)
	return &q, nil
}

// ParseBytes is Parse for byte input.
func ParseBytes(data []byte) (*Quiz, error) {
	return Parse(string(data))
}

// Status describes the outcome of Parse the way the import screen shows it.
func Status(text string) (string, bool) {
	q, err := Parse(text)
	if err != nil {
		return StatusMessage(err), false
	}
	return fmt.Sprintf("✅ Valid JSON. %d questions detected.", q.Len()), true
}

// StatusMessage renders a Parse error for display.
func StatusMessage(err error) string {
	var syn *SyntaxError
	switch {
	case errors.Is(err, ErrEmpty):
		return "Waiting for JSON..."
	case errors.Is(err, ErrMissingQuestions):
		return `❌ Missing "questions" array.`
	case errors.Is(err, ErrNoQuestions):
		return "❌ The questions array is empty."
	case errors.As(err, &syn):
		return "❌ Invalid JSON: " + syn.Err.Error()
	default:
		return "❌ " + err.Error()
	}
}
