package quizgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/piscinadeentropia/mrquizzer/internal/llm"
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

const explainSystem = `You are a patient tutor. Explain why the correct answer is right in at most 6 short sentences of plain text, in the language of the question. No markdown.`

// Explainer asks a provider to explain a quiz question.
type Explainer struct {
	provider  llm.Provider
	maxTokens int
}

// NewExplainer creates an Explainer.
func NewExplainer(provider llm.Provider) *Explainer {
	return &Explainer{provider: provider, maxTokens: 600}
}

// Explain returns a plain-text explanation of q.
func (e *Explainer) Explain(ctx context.Context, q *quiz.Question) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplain)
	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      explainSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: ExplainPrompt(q)}},
		MaxTokens:   e.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("explain question: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", &llm.InvalidResponseError{Err: errors.New("empty explanation")}
	}
	return text, nil
}
