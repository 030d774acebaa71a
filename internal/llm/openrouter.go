package llm

import (
	"errors"
	"net/http"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterReferer = "https://github.com/piscinadeentropia/mrquizzer"
	openRouterTitle   = "MrQuizzer"
)

// NewOpenRouterProvider returns an OpenAI-compatible provider for
// OpenRouter. Model names are OpenRouter ids such as
// "google/gemini-2.5-flash" and are not aliased.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openrouter: model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	client := &http.Client{Transport: attribution{base: http.DefaultTransport}}
	return newOpenAICompatible("openrouter", cfg.APIKey, baseURL, cfg.Model, client), nil
}

// attribution adds the headers OpenRouter uses to credit the calling app.
type attribution struct {
	base http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return a.base.RoundTrip(r)
}
