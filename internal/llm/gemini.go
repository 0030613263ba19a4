package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiTransport struct {
	client *genai.Client
}

// NewGeminiClient creates an LLMClient backed by the Gemini API.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key not set", ErrUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if cfg.Model == "" || strings.HasPrefix(cfg.Model, "grok") {
		cfg.Model = defaultGeminiModel
	}
	return newRetryingClient(cfg, ProviderGemini, &geminiTransport{client: client}, observer), nil
}

func (t *geminiTransport) complete(ctx context.Context, c completion) (string, string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.temperature)),
		MaxOutputTokens: int32(c.maxTokens),
	}
	if c.system != "" {
		gc.SystemInstruction = genai.NewContentFromText(c.system, genai.RoleUser)
	}

	resp, err := t.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(c.prompt, genai.RoleUser)}, gc)
	if err != nil {
		return "", "", err
	}
	text := resp.Text()
	if text == "" {
		return "", "", fmt.Errorf("%w: empty gemini response", ErrInvalidOutput)
	}
	return text, resp.ModelVersion, nil
}

func (t *geminiTransport) available(context.Context) bool {
	return t.client != nil
}
