package domain

import (
	"encoding/json"
	"time"
)

// AgentRun is the audit record of one agent invocation.
type AgentRun struct {
	ID           string
	UserID       string
	AgentName    AgentName
	RequestID    string
	Status       AgentRunStatus
	Input        json.RawMessage
	Output       json.RawMessage
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
	DurationMs   int64
}

// AgentPrompt is a versioned system prompt. Only one prompt per agent is active.
type AgentPrompt struct {
	ID         string
	AgentName  string
	PromptText string
	Active     bool
	UpdatedAt  time.Time
}
