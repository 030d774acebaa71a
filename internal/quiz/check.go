package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Issue is a non-fatal problem found by Check.
type Issue struct {
	// Question is the 1-based question number, or 0 for the whole document.
	Question int
	Message  string
}

func (i Issue) String() string {
	if i.Question == 0 {
		return i.Message
	}
	return fmt.Sprintf("question %d: %s", i.Question, i.Message)
}

// IssuesError reports Check issues as a load failure.
type IssuesError struct {
	Issues []Issue
}

func (e *IssuesError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.String()
	}
	return "quiz: " + strings.Join(msgs, "; ")
}

// DocumentSchema describes the quiz document accepted on import. It is
// looser than the schema used for generation: ids and answers may be
// numbers or strings and most fields are optional.
var DocumentSchema = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"metadata": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language":            map[string]any{"type": "string"},
				"difficulty":          map[string]any{"type": "string"},
				"number_of_questions": map[string]any{"type": "integer", "minimum": 0},
				"generated_at":        map[string]any{"type": "string"},
			},
		},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"type", "correct_answers"},
				"anyOf": []any{
					map[string]any{"required": []any{"question"}},
					map[string]any{"required": []any{"text"}},
				},
				"properties": map[string]any{
					"id":          map[string]any{"type": []any{"integer", "string"}},
					"type":        map[string]any{"type": "string"},
					"question":    map[string]any{"type": "string"},
					"text":        map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
					"options": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"correct_answers": map[string]any{
						"anyOf": []any{
							map[string]any{
								"type":  "array",
								"items": map[string]any{"type": []any{"integer", "string"}},
							},
							map[string]any{"type": []any{"integer", "string"}},
						},
					},
				},
			},
		},
	},
}

var printer = message.NewPrinter(language.English)

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants decoded JSON values, not Go literals.
		b, err := json.Marshal(DocumentSchema)
		if err != nil {
			compileErr = err
			return
		}
		var def any
		if err := json.Unmarshal(b, &def); err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://quiz-document.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// Check reviews a parsed quiz beyond the load contract. The returned issues
// do not stop a quiz from being played.
func Check(q *Quiz) []Issue {
	var issues []Issue
	issues = append(issues, schemaIssues(q.Raw)...)

	seen := make(map[string]int)
	for i := range q.Questions {
		n := i + 1
		qs := &q.Questions[i]
		if strings.TrimSpace(qs.Text) == "" {
			issues = append(issues, Issue{n, "question text is empty"})
		}
		if !qs.Type.Valid() {
			issues = append(issues, Issue{n, fmt.Sprintf("unknown type %q", qs.Type)})
		}
		if qs.ID != "" {
			if prev, ok := seen[qs.ID]; ok {
				issues = append(issues, Issue{n, fmt.Sprintf("id %q already used by question %d", qs.ID, prev)})
			} else {
				seen[qs.ID] = n
			}
		}

		switch {
		case (qs.Type == TypeMCQ || qs.Type == TypeTrueFalse) && len(qs.Options) == 0:
			issues = append(issues, Issue{n, "choice question has no options; it will be answered as text"})
		case qs.IsChoice():
			idx := qs.CorrectAnswers.Indices()
			if len(idx) == 0 {
				issues = append(issues, Issue{n, "no correct option index"})
			}
			for _, k := range idx {
				if k < 0 || k >= len(qs.Options) {
					issues = append(issues, Issue{n, fmt.Sprintf("correct option %d is out of range (%d options)", k, len(qs.Options))})
				}
			}
		default:
			if len(qs.CorrectAnswers) == 0 {
				issues = append(issues, Issue{n, "no accepted answers"})
			}
		}
	}
	return issues
}

// schemaIssues validates the raw document against DocumentSchema and
// flattens the error tree into one issue per failing location.
func schemaIssues(raw []byte) []Issue {
	if len(raw) == 0 {
		return nil
	}
	sch, err := documentSchema()
	if err != nil {
		return []Issue{{0, "schema: " + err.Error()}}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return []Issue{{0, "invalid JSON: " + err.Error()}}
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{0, err.Error()}}
	}

	byLoc := make(map[string]string)
	collectLeaves(verr, byLoc)
	locs := make([]string, 0, len(byLoc))
	for loc := range byLoc {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	issues := make([]Issue, 0, len(locs))
	for _, loc := range locs {
		issues = append(issues, Issue{questionFromLocation(loc), "schema: " + locationLabel(loc) + byLoc[loc]})
	}
	return issues
}

func collectLeaves(e *jsonschema.ValidationError, out map[string]string) {
	if len(e.Causes) == 0 {
		loc := "/" + strings.Join(e.InstanceLocation, "/")
		if _, ok := out[loc]; !ok {
			out[loc] = e.ErrorKind.LocalizedString(printer)
		}
		return
	}
	for _, c := range e.Causes {
		collectLeaves(c, out)
	}
}

// questionFromLocation maps "/questions/3/..." to question number 4.
func questionFromLocation(loc string) int {
	var n int
	if _, err := fmt.Sscanf(loc, "/questions/%d", &n); err == nil {
		return n + 1
	}
	return 0
}

func locationLabel(loc string) string {
	if loc == "/" {
		return ""
	}
	return loc + ": "
}
