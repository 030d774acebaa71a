package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/piscinadeentropia/mrquizzer/internal/llm"
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

const systemPrompt = `You write quizzes from source material.

Rules:
- Follow the INPUT DATA settings exactly: language, difficulty, number and types of questions.
- Every choice question points to its correct options by 0-based index, written as a string such as "0".
- Text questions list every acceptable answer as a short string.
- Never invent facts that contradict the source text.
- Return only the quiz JSON.`

// Config controls the behavior of the Generator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxSourceChars caps the source text sent to the provider.
	MaxSourceChars int

	// Retries is the number of corrective attempts after a quiz fails
	// validation.
	Retries int
}

// DefaultConfig returns the recommended generation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      8192,
		Temperature:    0.4,
		MaxSourceChars: 60000,
		Retries:        1,
	}
}

// GenerateInput is the source and settings for one quiz.
type GenerateInput struct {
	Source   string
	Settings Settings
}

// InvalidQuizError is returned when the provider keeps producing a quiz
// that fails validation.
type InvalidQuizError struct {
	Issues []quiz.Issue
	Err    error
}

func (e *InvalidQuizError) Error() string {
	if e.Err != nil {
		return "generated quiz is invalid: " + e.Err.Error()
	}
	return "generated quiz is invalid: " + (&quiz.IssuesError{Issues: e.Issues}).Error()
}

func (e *InvalidQuizError) Unwrap() error { return e.Err }

// Generator turns source text into a quiz with an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// NewGenerator creates a Generator with the given provider and config.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// Generate produces a validated quiz. A quiz that does not parse or has
// Check issues is sent back once with the problems listed.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) (*quiz.Quiz, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)

	source := input.Source
	if g.config.MaxSourceChars > 0 && len(source) > g.config.MaxSourceChars {
		source = truncateRunes(source, g.config.MaxSourceChars)
	}
	prompt, err := BuildPrompt(source, input.Settings)
	if err != nil {
		return nil, err
	}

	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}
	var lastErr *InvalidQuizError

	retries := max(g.config.Retries, 0)
	for attempt := 0; attempt <= retries; attempt++ {
		resp, err := g.provider.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Messages:    messages,
			Schema:      QuizSchema,
			MaxTokens:   g.config.MaxTokens,
			Temperature: g.config.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		q, invalid := validateGenerated(resp.Content)
		if invalid == nil {
			return q, nil
		}
		lastErr = invalid
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: string(resp.Content)},
			llm.Message{Role: llm.RoleUser, Content: correctionMessage(invalid)},
		)
	}
	return nil, lastErr
}

func validateGenerated(content []byte) (*quiz.Quiz, *InvalidQuizError) {
	q, err := quiz.ParseBytes(content)
	if err != nil {
		return nil, &InvalidQuizError{Err: err}
	}
	if issues := quiz.Check(q); len(issues) > 0 {
		return nil, &InvalidQuizError{Issues: issues}
	}
	return q, nil
}

func correctionMessage(e *InvalidQuizError) string {
	var b strings.Builder
	b.WriteString("The quiz you returned is invalid:\n")
	if e.Err != nil {
		fmt.Fprintf(&b, "- %s\n", quiz.StatusMessage(e.Err))
	}
	for _, is := range e.Issues {
		fmt.Fprintf(&b, "- %s\n", is.String())
	}
	b.WriteString("Return the corrected quiz JSON only.")
	return b.String()
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
