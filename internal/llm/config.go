package llm

import "github.com/linapoint/resortagents/internal/config"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskEvaluate    TaskType = "evaluate"
	TaskConcierge   TaskType = "concierge"
	TaskLyrics      TaskType = "lyrics"
	TaskResearch    TaskType = "research"
	TaskContent     TaskType = "content"
	TaskAnalysis    TaskType = "analysis"
	TaskSelfImprove TaskType = "self_improve"
	TaskProfile     TaskType = "profile"
)

// Provider names accepted by NewClient.
const (
	ProviderGrok      = "grok"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   string
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig pointed at the Grok chat completions API.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		Provider:   ProviderGrok,
		Endpoint:   "https://api.x.ai/v1",
		Model:      "grok-beta",
		TimeoutMs:  20000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskEvaluate:    {Temperature: 0.0, MaxTokens: 256, TimeoutMs: 10000},
			TaskConcierge:   {Temperature: 0.7, MaxTokens: 300, TimeoutMs: 12000},
			TaskLyrics:      {Temperature: 0.7, MaxTokens: 1024, TimeoutMs: 30000},
			TaskResearch:    {Temperature: 0.4, MaxTokens: 1024, TimeoutMs: 20000},
			TaskContent:     {Temperature: 0.7, MaxTokens: 2048, TimeoutMs: 30000},
			TaskAnalysis:    {Temperature: 0.3, MaxTokens: 1024, TimeoutMs: 20000},
			TaskSelfImprove: {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 30000},
			TaskProfile:     {Temperature: 0.7, MaxTokens: 500, TimeoutMs: 20000},
		},
	}
}

// FromSettings overlays loaded settings onto the defaults. Empty fields keep
// the default value.
func FromSettings(s config.LLMSettings) LLMConfig {
	cfg := DefaultConfig()
	cfg.Enabled = s.Enabled
	cfg.LogCalls = s.LogCalls
	cfg.APIKey = s.ProviderKey()
	if s.Provider != "" {
		cfg.Provider = s.Provider
	}
	if s.Endpoint != "" {
		cfg.Endpoint = s.Endpoint
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.TimeoutMs > 0 {
		cfg.TimeoutMs = s.TimeoutMs
	}
	cfg.MaxRetries = s.MaxRetries
	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// resolve returns the temperature and token limit for req.
func (c LLMConfig) resolve(req GenerateRequest) (float64, int) {
	tc := c.Tasks[req.Task]
	temp, maxTok := tc.Temperature, tc.MaxTokens
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	if maxTok <= 0 {
		maxTok = 1024
	}
	return temp, maxTok
}
