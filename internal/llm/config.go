package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider keys accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects a provider and holds credentials and models for each.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries. Zero disables it.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig is the backoff policy of WithRetry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses Anthropic with the small models of every provider.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// ApplyEnv overrides cfg with the MRQUIZZER_* variables that are set.
func ApplyEnv(cfg Config) Config {
	overrides := []struct {
		env string
		dst *string
	}{
		{"MRQUIZZER_LLM_PROVIDER", &cfg.Provider},
		{"MRQUIZZER_ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
		{"MRQUIZZER_ANTHROPIC_MODEL", &cfg.Anthropic.Model},
		{"MRQUIZZER_OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"MRQUIZZER_OPENAI_MODEL", &cfg.OpenAI.Model},
		{"MRQUIZZER_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL},
		{"MRQUIZZER_GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"MRQUIZZER_GEMINI_MODEL", &cfg.Gemini.Model},
		{"MRQUIZZER_OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey},
		{"MRQUIZZER_OPENROUTER_MODEL", &cfg.OpenRouter.Model},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	return cfg
}

// slots returns the key and model fields of the selected provider, or nil
// for providers without them.
func (c *Config) slots() (key, model *string) {
	switch c.Provider {
	case ProviderAnthropic:
		return &c.Anthropic.APIKey, &c.Anthropic.Model
	case ProviderOpenAI:
		return &c.OpenAI.APIKey, &c.OpenAI.Model
	case ProviderGemini:
		return &c.Gemini.APIKey, &c.Gemini.Model
	case ProviderOpenRouter:
		return &c.OpenRouter.APIKey, &c.OpenRouter.Model
	}
	return nil, nil
}

// WithModel returns c with the selected provider's model set. An empty
// name keeps the current model.
func (c Config) WithModel(model string) Config {
	if _, m := c.slots(); m != nil && model != "" {
		*m = model
	}
	return c
}

// Model returns the selected provider's model setting.
func (c Config) Model() string {
	if _, m := c.slots(); m != nil {
		return *m
	}
	if c.Provider == ProviderMock {
		return "mock"
	}
	return ""
}

// Validate reports a missing API key or an unknown provider.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	key, _ := c.slots()
	if key == nil {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if *key == "" {
		return fmt.Errorf("%s provider needs an API key (set it in the config file or MRQUIZZER_%s_API_KEY)",
			c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}

// discoveryOrder is the order standard API key variables are probed in.
var discoveryOrder = []struct{ env, provider string }{
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// DiscoverConfig returns a default Config for the first provider whose
// standard API key variable is set.
func DiscoverConfig() (Config, bool) {
	for _, d := range discoveryOrder {
		k := os.Getenv(d.env)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = d.provider
		key, _ := cfg.slots()
		*key = k
		return cfg, true
	}
	return Config{}, false
}
