package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// ErrNotConfigured means neither the config nor the environment names a
// provider with credentials.
var ErrNotConfigured = errors.New("no LLM provider configured")

// NewProvider builds the provider cfg selects. Each attempt is logged to
// events when it is non-nil and the whole call is retried per cfg.Retry
// within cfg.Timeout.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(WithLogging(base, events), cfg.Retry, cfg.Timeout), nil
}

// Resolve returns cfg when its provider has credentials. Otherwise it
// falls back to DiscoverConfig, keeping cfg's retry policy and timeout.
func Resolve(cfg Config) (Config, error) {
	if cfg.Validate() == nil {
		return cfg, nil
	}
	found, ok := DiscoverConfig()
	if !ok {
		return Config{}, ErrNotConfigured
	}
	found.Retry = cfg.Retry
	found.Timeout = cfg.Timeout
	return found, nil
}
