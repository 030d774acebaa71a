package prompt

import (
	"fmt"
	"slices"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
)

// Languages offered by the language row. Other codes can be set in the
// config file.
var Languages = []string{"en", "es", "fr", "de", "it", "pt", "ca"}

// row is one editable setting. adjust moves a value by delta; for flags
// any delta toggles.
type row struct {
	label  string
	value  func(s quizgen.Settings) string
	adjust func(s quizgen.Settings, delta int) quizgen.Settings
}

func flagRow(label string, field func(s *quizgen.Settings) *bool) row {
	return row{
		label: label,
		value: func(s quizgen.Settings) string { return check(*field(&s)) },
		adjust: func(s quizgen.Settings, _ int) quizgen.Settings {
			p := field(&s)
			*p = !*p
			return s
		},
	}
}

func typeRow(label string, t quiz.Type) row {
	return row{
		label:  label,
		value:  func(s quizgen.Settings) string { return check(s.HasType(t)) },
		adjust: func(s quizgen.Settings, _ int) quizgen.Settings { return s.ToggleType(t) },
	}
}

var rows = []row{
	{
		label: "Language",
		value: func(s quizgen.Settings) string { return s.Language },
		adjust: func(s quizgen.Settings, delta int) quizgen.Settings {
			s.Language = cycle(Languages, s.Language, delta)
			return s
		},
	},
	{
		label: "Difficulty",
		value: func(s quizgen.Settings) string { return s.Difficulty },
		adjust: func(s quizgen.Settings, delta int) quizgen.Settings {
			s.Difficulty = cycle(quizgen.Difficulties, s.Difficulty, delta)
			return s
		},
	},
	{
		label: "Questions",
		value: func(s quizgen.Settings) string { return fmt.Sprint(s.NumberOfQuestions) },
		adjust: func(s quizgen.Settings, delta int) quizgen.Settings {
			s.NumberOfQuestions = clamp(s.NumberOfQuestions+delta, quizgen.MinQuestions, quizgen.MaxQuestions)
			return s
		},
	},
	{
		label: "MCQ options",
		value: func(s quizgen.Settings) string { return fmt.Sprint(s.MCQOptions) },
		adjust: func(s quizgen.Settings, delta int) quizgen.Settings {
			s.MCQOptions = clamp(s.MCQOptions+delta, quizgen.MinMCQOptions, quizgen.MaxMCQOptions)
			return s
		},
	},
	typeRow("Multiple choice", quiz.TypeMCQ),
	typeRow("True / false", quiz.TypeTrueFalse),
	typeRow("Short answer", quiz.TypeShortAnswer),
	typeRow("Fill in the blank", quiz.TypeFillBlank),
	flagRow("Explanations", func(s *quizgen.Settings) *bool { return &s.IncludeExplanations }),
	flagRow("Tricky questions", func(s *quizgen.Settings) *bool { return &s.TrickyQuestions }),
	flagRow("Multiple correct", func(s *quizgen.Settings) *bool { return &s.AllowMultipleCorrect }),
	flagRow("Restrict to text", func(s *quizgen.Settings) *bool { return &s.RestrictToText }),
	flagRow("AI's own content", func(s *quizgen.Settings) *bool { return &s.AllowAIOwnContent }),
	flagRow("Attached documents", func(s *quizgen.Settings) *bool { return &s.AttachAdditionalDocuments }),
}

// cycle returns the value delta steps from cur in values, wrapping around.
// An unknown cur starts from the first value.
func cycle(values []string, cur string, delta int) string {
	i := slices.Index(values, cur)
	if i < 0 {
		return values[0]
	}
	n := len(values)
	return values[((i+delta)%n+n)%n]
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
