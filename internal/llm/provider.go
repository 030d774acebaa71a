package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider sends one request to a language model.
type Provider interface {
	// Generate returns the model output for req. With req.Schema set the
	// content is a JSON document that validated against the schema;
	// otherwise it is the model text encoded as a JSON string.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider key, such as "anthropic" or "openrouter".
	Name() string

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is a single-turn or short multi-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured output through the provider's native
	// mechanism. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature in 0..1. Zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output. Definition must stay
// within the subset every provider accepts: object, array, string, integer,
// number and boolean types with properties, items, required and enum.
type Schema struct {
	// Name is kebab-case, e.g. "quiz-document". OpenAI uses it as the
	// schema name and it keys the compiled-schema cache.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is a provider stop reason normalized across SDKs.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is the model output for one request.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// Text returns the content as plain text: a JSON string is unquoted and
// anything else is returned as is. Both are trimmed.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(r.Content))
}

// finish turns raw model text into a Response for req. Structured output is
// unfenced and validated; a document that fails validation after the model
// hit its token limit is reported as truncated.
func finish(req Request, raw string, usage Usage, model string, stop StopReason) (*Response, error) {
	resp := &Response{Usage: usage, Model: model, StopReason: stop}

	if req.Schema == nil {
		text, err := json.Marshal(raw)
		if err != nil {
			return nil, &InvalidResponseError{Err: err}
		}
		resp.Content = text
		return resp, nil
	}

	body := json.RawMessage(stripFences(raw))
	if err := validateResponse(req.Schema, body); err != nil {
		if stop == StopMaxTokens {
			return nil, &TruncatedError{Content: body}
		}
		return nil, err
	}
	resp.Content = body
	return resp, nil
}
