package quizgen

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is a chat assistant that accepts a prompt in its URL.
type Target string

const (
	ChatGPT    Target = "chatgpt"
	Perplexity Target = "perplexity"
)

// MaxLinkPromptLen is the longest encoded prompt placed in a link. Longer
// prompts make the assistants reject the URL.
const MaxLinkPromptLen = 1800

var targetBase = map[Target]string{
	ChatGPT:    "https://chatgpt.com/",
	Perplexity: "https://www.perplexity.ai/",
}

// Link is a deep link to an assistant.
type Link struct {
	Target Target
	URL    string
	// CopyPrompt is set when the prompt did not fit in the URL. URL is then
	// the bare site and the caller should put the prompt on the clipboard.
	CopyPrompt bool
}

// ParseTarget accepts "chatgpt" or "perplexity" in any case.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := targetBase[t]; !ok {
		return "", fmt.Errorf("unknown assistant %q (want chatgpt or perplexity)", s)
	}
	return t, nil
}

// DeepLink builds the link that opens target with prompt prefilled.
func DeepLink(target Target, prompt string) (Link, error) {
	base, ok := targetBase[target]
	if !ok {
		return Link{}, fmt.Errorf("unknown assistant %q", target)
	}
	encoded := encodeComponent(prompt)
	if len(encoded) > MaxLinkPromptLen {
		return Link{Target: target, URL: base, CopyPrompt: true}, nil
	}
	return Link{Target: target, URL: base + "?q=" + encoded}, nil
}

// encodeComponent escapes s for a query value with spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
