package llm

import (
	"context"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available reports whether the provider can currently serve requests.
	Available(ctx context.Context) bool
}

// completion is a single provider round trip.
type completion struct {
	model       string
	system      string
	prompt      string
	temperature float64
	maxTokens   int
}

// transport performs one provider call without retries.
type transport interface {
	complete(ctx context.Context, c completion) (text string, model string, err error)
	available(ctx context.Context) bool
}

// retryingClient layers timeouts, retries and call events over a transport.
type retryingClient struct {
	cfg      LLMConfig
	provider string
	t        transport
	observer Observer
}

func newRetryingClient(cfg LLMConfig, provider string, t transport, observer Observer) *retryingClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &retryingClient{cfg: cfg, provider: provider, t: t, observer: observer}
}

func (c *retryingClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok := c.cfg.resolve(req)

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	call := completion{
		model:       c.cfg.Model,
		system:      req.SystemPrompt,
		prompt:      req.UserPrompt,
		temperature: temp,
		maxTokens:   maxTok,
	}

	event := LLMCallEvent{Task: req.Task, Provider: c.provider, Model: c.cfg.Model}
	var lastErr error
	for event.Attempts < 1+c.cfg.MaxRetries {
		event.Attempts++
		text, model, err := c.t.complete(ctx, call)
		if err == nil {
			event.LatencyMs = time.Since(start).Milliseconds()
			event.Success = true
			c.observer.OnCallComplete(event)
			if model == "" {
				model = c.cfg.Model
			}
			return &GenerateResponse{Text: text, Model: model, LatencyMs: event.LatencyMs}, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}

	finalErr := classify(ctx, lastErr)
	event.LatencyMs = time.Since(start).Milliseconds()
	event.ErrorCode = ErrorCode(finalErr)
	c.observer.OnCallComplete(event)
	return nil, finalErr
}

func (c *retryingClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.t.available(ctx)
}
