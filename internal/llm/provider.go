package llm

import (
	"context"
	"fmt"
)

// NewClient builds the LLMClient named by cfg.Provider. A disabled config
// yields a client that always reports ErrUnavailable, so callers fall back
// to their deterministic paths.
func NewClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if !cfg.Enabled {
		return DisabledClient{}, nil
	}
	switch cfg.Provider {
	case "", ProviderGrok:
		return NewGrokClient(cfg, observer), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, observer), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, observer)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// DisabledClient is used when the LLM is switched off.
type DisabledClient struct{}

func (DisabledClient) Generate(context.Context, GenerateRequest) (*GenerateResponse, error) {
	return nil, ErrUnavailable
}

func (DisabledClient) Available(context.Context) bool { return false }
