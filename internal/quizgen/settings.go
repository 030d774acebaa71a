package quizgen

import (
	"fmt"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

// Difficulty levels accepted by the prompt builder.
var Difficulties = []string{"easy", "medium", "hard"}

// Bounds for the number of questions and MCQ options.
const (
	MinQuestions  = 1
	MaxQuestions  = 50
	MinMCQOptions = 2
	MaxMCQOptions = 6
)

// Settings are the generation options embedded in the prompt. Field order
// is the order the model sees them in.
type Settings struct {
	Language                  string      `json:"language" yaml:"language"`
	Difficulty                string      `json:"difficulty" yaml:"difficulty"`
	NumberOfQuestions         int         `json:"number_of_questions" yaml:"number_of_questions"`
	QuestionTypes             []quiz.Type `json:"question_types" yaml:"question_types"`
	IncludeExplanations       bool        `json:"include_explanations" yaml:"include_explanations"`
	TrickyQuestions           bool        `json:"tricky_questions" yaml:"tricky_questions"`
	AttachAdditionalDocuments bool        `json:"attach_additional_documents" yaml:"attach_additional_documents"`
	AllowAIOwnContent         bool        `json:"allow_ai_own_content" yaml:"allow_ai_own_content"`
	MCQOptions                int         `json:"mcq_options" yaml:"mcq_options"`
	AllowMultipleCorrect      bool        `json:"allow_multiple_correct" yaml:"allow_multiple_correct"`
	RestrictToText            bool        `json:"restrict_to_text" yaml:"restrict_to_text"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Language:            "en",
		Difficulty:          "medium",
		NumberOfQuestions:   10,
		QuestionTypes:       []quiz.Type{quiz.TypeMCQ},
		IncludeExplanations: true,
		MCQOptions:          4,
		RestrictToText:      true,
	}
}

// Normalize fills empty fields with defaults and clamps numeric fields.
// Boolean fields are left as they are.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	if s.Language == "" {
		s.Language = def.Language
	}
	if s.Difficulty == "" {
		s.Difficulty = def.Difficulty
	}
	switch {
	case s.NumberOfQuestions == 0:
		s.NumberOfQuestions = def.NumberOfQuestions
	case s.NumberOfQuestions < MinQuestions:
		s.NumberOfQuestions = MinQuestions
	case s.NumberOfQuestions > MaxQuestions:
		s.NumberOfQuestions = MaxQuestions
	}
	if len(s.QuestionTypes) == 0 {
		s.QuestionTypes = def.QuestionTypes
	} else {
		s.QuestionTypes = dedupTypes(s.QuestionTypes)
	}
	switch {
	case s.MCQOptions == 0:
		s.MCQOptions = def.MCQOptions
	case s.MCQOptions < MinMCQOptions:
		s.MCQOptions = MinMCQOptions
	case s.MCQOptions > MaxMCQOptions:
		s.MCQOptions = MaxMCQOptions
	}
	return s
}

// Validate rejects unknown question types and difficulties.
func (s Settings) Validate() error {
	if !validDifficulty(s.Difficulty) {
		return fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s.Difficulty)
	}
	for _, t := range s.QuestionTypes {
		if !t.Valid() {
			return fmt.Errorf("unknown question type %q", t)
		}
	}
	if s.NumberOfQuestions < MinQuestions || s.NumberOfQuestions > MaxQuestions {
		return fmt.Errorf("number of questions must be between %d and %d", MinQuestions, MaxQuestions)
	}
	return nil
}

// HasType reports whether t is among the selected question types.
func (s Settings) HasType(t quiz.Type) bool {
	for _, have := range s.QuestionTypes {
		if have == t {
			return true
		}
	}
	return false
}

// ToggleType adds or removes t. Removing the last type is a no-op, so at
// least one type stays selected.
func (s Settings) ToggleType(t quiz.Type) Settings {
	if !s.HasType(t) {
		s.QuestionTypes = append(append([]quiz.Type(nil), s.QuestionTypes...), t)
		return s
	}
	if len(s.QuestionTypes) == 1 {
		return s
	}
	out := make([]quiz.Type, 0, len(s.QuestionTypes)-1)
	for _, have := range s.QuestionTypes {
		if have != t {
			out = append(out, have)
		}
	}
	s.QuestionTypes = out
	return s
}

func validDifficulty(d string) bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

func dedupTypes(types []quiz.Type) []quiz.Type {
	seen := make(map[quiz.Type]bool, len(types))
	out := make([]quiz.Type, 0, len(types))
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
