package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/linapoint/resortagents/internal/domain"
)

type dbSession struct {
	ID            string         `db:"id"`
	PhoneNumber   string         `db:"phone_number"`
	UserID        string         `db:"user_id"`
	IsActive      int            `db:"is_active"`
	Context       string         `db:"context"`
	LastMessage   string         `db:"last_message"`
	LastMessageAt sql.NullString `db:"last_message_at"`
	CreatedAt     string         `db:"created_at"`
	UpdatedAt     string         `db:"updated_at"`
}

func (s dbSession) toDomain() *domain.WhatsAppSession {
	return &domain.WhatsAppSession{
		ID:            s.ID,
		PhoneNumber:   s.PhoneNumber,
		UserID:        s.UserID,
		IsActive:      intToBool(s.IsActive),
		Context:       decodeJSON[domain.ConversationContext](s.Context),
		LastMessage:   s.LastMessage,
		LastMessageAt: parseNullableTime(s.LastMessageAt),
		CreatedAt:     parseTime(s.CreatedAt),
		UpdatedAt:     parseTime(s.UpdatedAt),
	}
}

func fromDomainSession(s *domain.WhatsAppSession) dbSession {
	return dbSession{
		ID:            s.ID,
		PhoneNumber:   s.PhoneNumber,
		UserID:        s.UserID,
		IsActive:      boolToInt(s.IsActive),
		Context:       encodeJSON(s.Context, "{}"),
		LastMessage:   s.LastMessage,
		LastMessageAt: nullableTime(s.LastMessageAt),
		CreatedAt:     formatTime(s.CreatedAt),
		UpdatedAt:     formatTime(s.UpdatedAt),
	}
}

type dbMessage struct {
	ID            string `db:"id"`
	SessionID     string `db:"session_id"`
	UserID        string `db:"user_id"`
	PhoneNumber   string `db:"phone_number"`
	Direction     string `db:"direction"`
	Body          string `db:"body"`
	TwilioSID     string `db:"twilio_sid"`
	AgentResponse string `db:"agent_response"`
	CreatedAt     string `db:"created_at"`
}

func (m dbMessage) toDomain() *domain.WhatsAppMessage {
	return &domain.WhatsAppMessage{
		ID:            m.ID,
		SessionID:     m.SessionID,
		UserID:        m.UserID,
		PhoneNumber:   m.PhoneNumber,
		Direction:     domain.MessageDirection(m.Direction),
		Body:          m.Body,
		TwilioSID:     m.TwilioSID,
		AgentResponse: decodeJSON[map[string]any](m.AgentResponse),
		CreatedAt:     parseTime(m.CreatedAt),
	}
}

const (
	sessionColumns = `id, phone_number, user_id, is_active, context, last_message, last_message_at, created_at, updated_at`
	messageColumns = `id, session_id, user_id, phone_number, direction, body, twilio_sid, agent_response, created_at`
)

type SQLiteWhatsAppRepo struct {
	db db.DBTX
}

func NewSQLiteWhatsAppRepo(conn db.DBTX) *SQLiteWhatsAppRepo {
	return &SQLiteWhatsAppRepo{db: conn}
}

func (r *SQLiteWhatsAppRepo) GetActiveSession(ctx context.Context, phone string) (*domain.WhatsAppSession, error) {
	var row dbSession
	query := `SELECT ` + sessionColumns + ` FROM whatsapp_sessions
		WHERE phone_number = ? AND is_active = 1 ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("whatsapp session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("getting whatsapp session: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteWhatsAppRepo) CreateSession(ctx context.Context, s *domain.WhatsAppSession) error {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	query := `INSERT INTO whatsapp_sessions (` + sessionColumns + `) VALUES (:id, :phone_number,
		:user_id, :is_active, :context, :last_message, :last_message_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fromDomainSession(s)); err != nil {
		return fmt.Errorf("inserting whatsapp session: %w", err)
	}
	return nil
}

func (r *SQLiteWhatsAppRepo) UpdateSession(ctx context.Context, s *domain.WhatsAppSession) error {
	s.UpdatedAt = time.Now().UTC()
	query := `UPDATE whatsapp_sessions SET user_id = :user_id, is_active = :is_active, context = :context,
		last_message = :last_message, last_message_at = :last_message_at, updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, fromDomainSession(s))
	if err != nil {
		return fmt.Errorf("updating whatsapp session: %w", err)
	}
	return expectAffected(res, "whatsapp session")
}

func (r *SQLiteWhatsAppRepo) CreateMessage(ctx context.Context, m *domain.WhatsAppMessage) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	row := dbMessage{
		ID:            m.ID,
		SessionID:     m.SessionID,
		UserID:        m.UserID,
		PhoneNumber:   m.PhoneNumber,
		Direction:     string(m.Direction),
		Body:          m.Body,
		TwilioSID:     m.TwilioSID,
		AgentResponse: encodeJSON(m.AgentResponse, "{}"),
		CreatedAt:     formatTime(m.CreatedAt),
	}
	query := `INSERT INTO whatsapp_messages (` + messageColumns + `) VALUES (:id, :session_id, :user_id,
		:phone_number, :direction, :body, :twilio_sid, :agent_response, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting whatsapp message: %w", err)
	}
	return nil
}

func (r *SQLiteWhatsAppRepo) ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.WhatsAppMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM whatsapp_messages
		WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`
	out, err := r.listMessages(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (r *SQLiteWhatsAppRepo) ListMessagesByPhone(ctx context.Context, phone string) ([]*domain.WhatsAppMessage, error) {
	return r.listMessages(ctx, `SELECT `+messageColumns+` FROM whatsapp_messages WHERE phone_number = ? ORDER BY created_at, rowid`, phone)
}

func (r *SQLiteWhatsAppRepo) listMessages(ctx context.Context, query string, args ...any) ([]*domain.WhatsAppMessage, error) {
	var rows []dbMessage
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing whatsapp messages: %w", err)
	}
	out := make([]*domain.WhatsAppMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
