package quizgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

// ErrNoSource is returned when a prompt is requested without source text.
var ErrNoSource = errors.New("enter source text first")

const generationRules = `Generation rules:
Generate exactly 'number_of_questions' questions. If the text lacks sufficient explicit facts, create inference questions consistent with the specified 'difficulty'.
For each question produce an object with these fields:
id: integer (1..N)
type: one of 'mcq','true_false','short_answer','fill_blank' (only the types listed in 'question_types')
question: string (phrased in the specified language)
options: array of strings (only for 'mcq' or 'true_false'; for 'true_false' use ['True','False'] translated to the specified language; 'mcq' questions have 'mcq_options' options)
correct_answers: array of indices (integers, 0-based, pointing to 'options') for 'mcq'/'true_false', with a single index unless 'allow_multiple_correct' is true; for 'short_answer' and 'fill_blank' provide an array of one or more correct answer strings
explanation: string (only if include_explanations=true; brief, 1-2 sentences)
If 'restrict_to_text' is true, every question must be answerable from the text alone. If 'allow_ai_own_content' is true, you may add related facts that are not in the text. If 'tricky_questions' is true, include plausible distractors and questions that require careful reading.`

const finalStructure = `Final JSON structure to return:
{
  "metadata": {
    "language": "...",
    "difficulty": "...",
    "number_of_questions": N,
    "generated_at": "YYYY-MM-DDTHH:MM:SSZ"
  },
  "questions": [ ... array of question objects ... ]
}`

const outputRequirements = `Output requirements:
OUTPUT ONLY the JSON (no extra text, no explanations, no markdown fences).
Use valid double quotes and strict JSON format.`

// BuildPrompt returns the prompt that asks a chat assistant to turn text
// into a quiz document.
func BuildPrompt(text string, s Settings) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSource
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return "", err
	}

	textJSON, err := marshalNoEscape(text)
	if err != nil {
		return "", err
	}
	settingsJSON, err := marshalNoEscape(s)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an automatic question generator based on a source text. ")
	b.WriteString("Input: a JSON object with two fields: 'text' (string) containing the source text, and 'settings' (object).\n\n")
	b.WriteString("INPUT DATA:\n{\n")
	fmt.Fprintf(&b, "  \"text\": %s,\n", textJSON)
	fmt.Fprintf(&b, "  \"settings\": %s\n", settingsJSON)
	b.WriteString("}\n\n")
	b.WriteString(generationRules)
	b.WriteString("\n\n")
	b.WriteString(finalStructure)
	b.WriteString("\n\n")
	b.WriteString(outputRequirements)
	b.WriteString("\n")
	return b.String(), nil
}

// ExplainPrompt asks for a detailed explanation of q and its answer.
func ExplainPrompt(q *quiz.Question) string {
	return fmt.Sprintf("Explain this question:\n\nQuestion: %q\nCorrect Answer: %q\n\nPlease provide a detailed explanation.",
		q.Text, quiz.CorrectText(q))
}

// RegeneratePrompt asks for new questions from the same source, listing
// the existing ones so they are not repeated. An empty source falls back
// to a generic label.
func RegeneratePrompt(source string, questions []quiz.Question) string {
	source = strings.TrimSpace(source)
	if source == "" {
		source = "Previous text"
	}
	texts := make([]string, len(questions))
	for i := range questions {
		texts[i] = questions[i].Text
	}
	old, err := marshalNoEscape(texts)
	if err != nil {
		old = []byte("[]")
	}
	return fmt.Sprintf("Generate NEW questions based on: %q. DO NOT repeat these: %s. Use same JSON schema.", source, old)
}

// marshalNoEscape encodes v as compact JSON without HTML escaping, so
// source text keeps its <, > and & characters.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode prompt data: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
