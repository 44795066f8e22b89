package llm

import (
	"context"
	"fmt"

	"github.com/skillgenie/skillgenie/internal/store"
)

// NewProvider builds the configured provider and wraps it as
//
//	caller → timeout → retry → logging → provider
//
// so each attempt is logged and the whole call is bounded. A nil repo
// disables logging.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if repo != nil {
		base = WithLogging(base, cfg.Provider, repo)
	}
	return WithTimeout(WithRetry(base, cfg.Retry), cfg.Timeout), nil
}
