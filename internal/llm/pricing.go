package llm

import (
	"regexp"
	"strings"
)

// ModelCost is list pricing in USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost returns pricing for a model id as reported by a provider, or
// nil when the model is not in the table. Dated snapshots, -latest aliases
// and OpenRouter vendor prefixes resolve to the base model; OpenRouter
// ":free" variants cost nothing.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(strings.TrimSpace(modelID))
	if strings.HasSuffix(id, ":free") {
		return &ModelCost{}
	}
	id, _, _ = strings.Cut(id, ":")
	if _, rest, ok := strings.Cut(id, "/"); ok {
		id = rest
	}
	id = strings.TrimPrefix(id, "models/")

	for {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
		trimmed := versionSuffix.ReplaceAllString(id, "")
		if trimmed == id {
			return nil
		}
		id = trimmed
	}
}

// versionSuffix matches one trailing snapshot marker.
var versionSuffix = regexp.MustCompile(`-(latest|exp|preview|\d{8}|\d{4}-\d{2}-\d{2}|\d{2}-\d{4}|\d{2}-\d{2}|\d{3})$`)

// modelCosts covers the models reachable through the default and
// documented model settings. Prices as of 2026-09.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-opus-4-1":   {15, 75},
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-7-sonnet": {3, 15},
	"claude-3-haiku":    {0.25, 1.25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-flash":          {0.3, 2.5},
	"gemini-flash-lite":     {0.1, 0.4},

	"llama-3.1-8b-instruct":          {0.02, 0.03},
	"llama-3.3-70b-instruct":         {0.13, 0.4},
	"mistral-small-3.2-24b-instruct": {0.05, 0.1},
}
