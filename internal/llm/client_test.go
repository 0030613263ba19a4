package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) LLMConfig {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	return cfg
}

func writeChat(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"model": "grok-beta",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func TestGrokClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "grok-beta", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "You are Maya", req.Messages[0].Content)
		assert.Equal(t, "hello", req.Messages[1].Content)
		assert.Equal(t, 300, req.MaxTokens)

		writeChat(w, "Welcome to Lina Point!")
	}))
	defer srv.Close()

	client := NewGrokClient(testConfig(srv.URL), NoopObserver{})
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskConcierge,
		SystemPrompt: "You are Maya",
		UserPrompt:   "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "Welcome to Lina Point!", resp.Text)
	assert.Equal(t, "grok-beta", resp.Model)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))
}

func TestGrokClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		writeChat(w, "late")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Tasks = map[TaskType]TaskConfig{
		TaskEvaluate: {Temperature: 0, MaxTokens: 64, TimeoutMs: 50},
	}

	client := NewGrokClient(cfg, NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskEvaluate, UserPrompt: "grade"})

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGrokClient_Generate_Unavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1") // nothing listening
	cfg.MaxRetries = 0

	client := NewGrokClient(cfg, NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskEvaluate, UserPrompt: "grade"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGrokClient_Generate_UnauthorizedIsUnavailable(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2

	client := NewGrokClient(cfg, NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskEvaluate, UserPrompt: "grade"})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGrokClient_Generate_RetryOnTransientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("internal error"))
			return
		}
		writeChat(w, "ok")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1

	client := NewGrokClient(cfg, NoopObserver{})
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskResearch, UserPrompt: "trends"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGrokClient_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad request"))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0

	client := NewGrokClient(cfg, NoopObserver{})
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskResearch, UserPrompt: "trends"})

	assert.ErrorIs(t, err, ErrRetryExhausted)
}

func TestGrokClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.True(t, NewGrokClient(testConfig(srv.URL), NoopObserver{}).Available(context.Background()))
	assert.False(t, NewGrokClient(testConfig("http://127.0.0.1:1"), NoopObserver{}).Available(context.Background()))
}

func TestGrokClient_ObserverEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeChat(w, "ok")
	}))
	defer srv.Close()

	var captured LLMCallEvent
	obs := ObserverFunc(func(e LLMCallEvent) { captured = e })

	_, err := NewGrokClient(testConfig(srv.URL), obs).Generate(context.Background(), GenerateRequest{
		Task:       TaskLyrics,
		UserPrompt: "song",
	})

	require.NoError(t, err)
	assert.Equal(t, TaskLyrics, captured.Task)
	assert.Equal(t, ProviderGrok, captured.Provider)
	assert.True(t, captured.Success)
}

func TestGrokClient_ObserverTimeoutErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	cfg.Tasks = map[TaskType]TaskConfig{TaskEvaluate: {MaxTokens: 16, TimeoutMs: 50}}

	var captured LLMCallEvent
	obs := ObserverFunc(func(e LLMCallEvent) { captured = e })
	_, err := NewGrokClient(cfg, obs).Generate(context.Background(), GenerateRequest{Task: TaskEvaluate, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, captured.Success)
	assert.Equal(t, "TIMEOUT", captured.ErrorCode)
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	client, err := NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.False(t, client.Available(context.Background()))
	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskEvaluate})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "ollama"

	_, err := NewClient(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNewClient_GeminiRequiresKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderGemini
	cfg.APIKey = ""

	_, err := NewClient(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGrokClient_ObserverCountsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeChat(w, "third time lucky")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2

	var events []LLMCallEvent
	obs := ObserverFunc(func(e LLMCallEvent) { events = append(events, e) })
	resp, err := NewGrokClient(cfg, obs).Generate(context.Background(), GenerateRequest{Task: TaskContent, UserPrompt: "post"})

	require.NoError(t, err)
	assert.Equal(t, "third time lucky", resp.Text)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Attempts)
	assert.True(t, events[0].Success)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "TIMEOUT", ErrorCode(ErrTimeout))
	assert.Equal(t, "INVALID_OUTPUT", ErrorCode(fmt.Errorf("%w: no JSON", ErrInvalidOutput)))
	assert.Equal(t, "RETRY_EXHAUSTED", ErrorCode(fmt.Errorf("%w: boom", ErrRetryExhausted)))
	assert.Equal(t, "UNKNOWN", ErrorCode(errors.New("other")))
}
