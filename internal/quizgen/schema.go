package quizgen

import "github.com/piscinadeentropia/mrquizzer/internal/llm"

// QuizSchema is the structured-output schema for generated quizzes. Every
// property is required and correct answers are strings for all question
// types, since strict structured output cannot express a union; choice
// answers hold 0-based option indices such as "2".
var QuizSchema = &llm.Schema{
	Name:        "quiz-document",
	Description: "A quiz generated from a source text, with metadata and questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"metadata": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"language":            map[string]any{"type": "string", "description": "ISO language code of the questions"},
					"difficulty":          map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
					"number_of_questions": map[string]any{"type": "integer"},
					"generated_at":        map[string]any{"type": "string", "description": "UTC timestamp, YYYY-MM-DDTHH:MM:SSZ"},
				},
				"required":             []any{"language", "difficulty", "number_of_questions", "generated_at"},
				"additionalProperties": false,
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "integer",
							"description": "1-based position of the question",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"mcq", "true_false", "short_answer", "fill_blank"},
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question text in the requested language",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Answer options for mcq and true_false. Empty array for other types.",
						},
						"correct_answers": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "For mcq and true_false: 0-based option indices as strings. Otherwise the accepted answer strings.",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "1-2 sentence explanation, or empty when explanations are disabled",
						},
					},
					"required":             []any{"id", "type", "question", "options", "correct_answers", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"metadata", "questions"},
		"additionalProperties": false,
	},
}
