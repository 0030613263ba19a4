package testutil

import (
	"context"
	"sync"

	"github.com/linapoint/resortagents/internal/llm"
)

// FakeLLM is a scripted llm.LLMClient. Responses are consumed in order; once
// exhausted the last one repeats. Err, when set, is returned from every call.
type FakeLLM struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Requests  []llm.GenerateRequest
}

func NewFakeLLM(responses ...string) *FakeLLM {
	return &FakeLLM{Responses: responses}
}

// NewFailingLLM returns a client whose every call fails with llm.ErrUnavailable.
func NewFailingLLM() *FakeLLM {
	return &FakeLLM{Err: llm.ErrUnavailable}
}

func (f *FakeLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Responses) == 0 {
		return &llm.GenerateResponse{Text: "", Model: "fake"}, nil
	}
	idx := len(f.Requests) - 1
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	return &llm.GenerateResponse{Text: f.Responses[idx], Model: "fake"}, nil
}

func (f *FakeLLM) Available(context.Context) bool { return f.Err == nil }

// Calls returns how many requests have been made.
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// CallsFor counts requests for one task type.
func (f *FakeLLM) CallsFor(task llm.TaskType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.Requests {
		if r.Task == task {
			n++
		}
	}
	return n
}
