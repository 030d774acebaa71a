package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// answerSchema is a short-answer grading document.
func answerSchema() *Schema {
	return &Schema{
		Name: "test-answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer":     map[string]any{"type": "string"},
				"confidence": map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
				"kind":       map[string]any{"type": "string", "enum": []any{"mcq", "true_false", "short_answer"}},
				"options": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"answer", "confidence"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"all fields", `{"answer":"4","confidence":5,"kind":"mcq","options":["3","4"]}`, false},
		{"required only", `{"answer":"Madrid","confidence":2}`, false},
		{"missing required", `{"answer":"4"}`, true},
		{"wrong type", `{"answer":4,"confidence":2}`, true},
		{"out of range", `{"answer":"4","confidence":9}`, true},
		{"bad enum", `{"answer":"4","confidence":2,"kind":"essay"}`, true},
		{"extra field", `{"answer":"4","confidence":2,"hint":"sum"}`, true},
		{"array items", `{"answer":"4","confidence":2,"options":[1,2]}`, true},
		{"not json", `Sure! Here is your quiz`, true},
		{"empty", "  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(answerSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse(%s) = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invalid *InvalidResponseError
			if !errors.As(err, &invalid) {
				t.Fatalf("got %T, want *InvalidResponseError", err)
			}
			if string(invalid.Content) != tt.raw {
				t.Errorf("Content = %q, want the raw response", invalid.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage("free text")); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	s := answerSchema()
	s.Name = "test-answer-cache"
	first, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compileSchema: %v", err)
	}
	second, err := compileSchema(s)
	if err != nil {
		t.Fatalf("compileSchema: %v", err)
	}
	if first != second {
		t.Error("second compile should come from the cache")
	}
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                       `{"a":1}`,
		"  {\"a\":1}\n":                 `{"a":1}`,
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n{\"a\":1}\n```\n":         `{"a":1}`,
		"```JSON\n{\n  \"a\": 1\n}```": "{\n  \"a\": 1\n}",
		"```":                           "",
	}
	for in, want := range tests {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
