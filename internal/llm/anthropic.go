package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

type anthropicTransport struct {
	client anthropic.Client
	hasKey bool
}

// NewAnthropicClient creates an LLMClient backed by the Anthropic Messages API.
// Retries are handled by the wrapping client, so the SDK's own retries are off.
func NewAnthropicClient(cfg LLMConfig, observer Observer) LLMClient {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" && !strings.Contains(cfg.Endpoint, "api.x.ai") {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.Model == "" || strings.HasPrefix(cfg.Model, "grok") {
		cfg.Model = defaultAnthropicModel
	}
	t := &anthropicTransport{client: anthropic.NewClient(opts...), hasKey: cfg.APIKey != ""}
	return newRetryingClient(cfg, ProviderAnthropic, t, observer)
}

func (t *anthropicTransport) complete(ctx context.Context, c completion) (string, string, error) {
	if !t.hasKey {
		return "", "", fmt.Errorf("%w: anthropic api key not set", ErrUnavailable)
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(c.prompt)),
		},
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}

	resp, err := t.client.Messages.New(ctx, params)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(variant.Text)
		}
	}
	return b.String(), string(resp.Model), nil
}

func (t *anthropicTransport) available(context.Context) bool {
	return t.hasKey
}
