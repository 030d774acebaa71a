package llm

import "context"

// Purpose labels why a request was made. It is stored with each logged
// request so usage can be broken down by feature.
type Purpose string

const (
	PurposeQuizGen Purpose = "quiz-gen"
	PurposeExplain Purpose = "explain"
	PurposeUnknown Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose returns a copy of ctx carrying p.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose stored in ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
