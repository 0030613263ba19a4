package domain

import "time"

// ConversationContext is the concierge state carried between messages.
type ConversationContext struct {
	LastIntent    string         `json:"lastIntent,omitempty"`
	LastAction    string         `json:"lastAction,omitempty"`
	PendingAction *PendingAction `json:"pending_action,omitempty"`
}

// PendingAction is a multi-turn flow the guest has started but not finished.
type PendingAction struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

const (
	PendingBookFlow     = "book_flow"
	PendingMagicContent = "magic_content"
)

type WhatsAppSession struct {
	ID            string
	PhoneNumber   string
	UserID        string
	IsActive      bool
	Context       ConversationContext
	LastMessage   string
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type WhatsAppMessage struct {
	ID            string
	SessionID     string
	UserID        string
	PhoneNumber   string
	Direction     MessageDirection
	Body          string
	TwilioSID     string
	AgentResponse map[string]any
	CreatedAt     time.Time
}
