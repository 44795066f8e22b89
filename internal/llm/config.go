package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the LLM provider used for quiz generation.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one generation including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // for OpenAI-compatible gateways
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

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with default models and retry policy.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envBinding maps a SKILLGENIE_ variable onto a Config field.
type envBinding struct {
	name  string
	field func(*Config) *string
}

var envBindings = []envBinding{
	{"SKILLGENIE_LLM_PROVIDER", func(c *Config) *string { return &c.Provider }},
	{"SKILLGENIE_ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"SKILLGENIE_ANTHROPIC_MODEL", func(c *Config) *string { return &c.Anthropic.Model }},
	{"SKILLGENIE_OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"SKILLGENIE_OPENAI_MODEL", func(c *Config) *string { return &c.OpenAI.Model }},
	{"SKILLGENIE_OPENAI_BASE_URL", func(c *Config) *string { return &c.OpenAI.BaseURL }},
	{"SKILLGENIE_GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"SKILLGENIE_GEMINI_MODEL", func(c *Config) *string { return &c.Gemini.Model }},
	{"SKILLGENIE_OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
	{"SKILLGENIE_OPENROUTER_MODEL", func(c *Config) *string { return &c.OpenRouter.Model }},
}

// ConfigFromEnv builds a Config from SKILLGENIE_* variables on top of the
// defaults. It reports whether any provider variable was set.
func ConfigFromEnv() (Config, bool) {
	cfg := DefaultConfig()
	found := false
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			*b.field(&cfg) = v
			found = true
		}
	}
	if d, err := time.ParseDuration(os.Getenv("SKILLGENIE_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg, found
}

// DiscoverConfig checks the vendors' own API key variables in order
// (Gemini, OpenAI, Anthropic, OpenRouter) and configures the first one
// found. It returns false when none is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	candidates := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range candidates {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			*p.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// ResolveConfig prefers explicit SKILLGENIE_* configuration and falls back
// to discovery.
func ResolveConfig() (Config, bool) {
	if cfg, ok := ConfigFromEnv(); ok {
		return cfg, true
	}
	return DiscoverConfig()
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "SKILLGENIE_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "SKILLGENIE_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "SKILLGENIE_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "SKILLGENIE_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
