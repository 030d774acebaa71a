package quiz

import (
	"strings"
)

// CheckChoice reports whether option idx is one of the question's correct
// options.
func CheckChoice(q *Question, idx int) bool {
	for _, want := range q.CorrectAnswers.Indices() {
		if want == idx {
			return true
		}
	}
	return false
}

// CheckText compares a typed answer against the accepted answers.
//
// Surrounding whitespace is trimmed and the comparison ignores case. Inner
// spacing must match.
func CheckText(q *Question, text string) bool {
	got := strings.TrimSpace(text)
	if got == "" {
		return false
	}
	for _, want := range q.CorrectAnswers {
		if strings.EqualFold(got, strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// CorrectText renders the correct answer of q for display.
func CorrectText(q *Question) string {
	if q.IsChoice() {
		idx := q.CorrectAnswers.Indices()
		if len(idx) == 0 {
			return "N/A"
		}
		parts := make([]string, 0, len(idx))
		for _, i := range idx {
			parts = append(parts, OptionText(q, i))
		}
		return strings.Join(parts, ", ")
	}
	return strings.Join(q.CorrectAnswers, " / ")
}

// FirstCorrectText returns the first accepted text answer, as shown after a
// wrong free-text attempt.
func FirstCorrectText(q *Question) string {
	if q.IsChoice() || len(q.CorrectAnswers) == 0 {
		return CorrectText(q)
	}
	return q.CorrectAnswers[0]
}

// OptionText returns the text of option i, or "N/A" when out of range.
func OptionText(q *Question, i int) string {
	if i < 0 || i >= len(q.Options) {
		return "N/A"
	}
	return q.Options[i]
}
