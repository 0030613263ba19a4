package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
)

var ErrNotFound = errors.New("not found")

type ProfileRepo interface {
	Create(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, p *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Profile, error)
	GetByAccessToken(ctx context.Context, token string) (*domain.Profile, error)
	UpdateMagicProfile(ctx context.Context, userID, summary string) error
	List(ctx context.Context) ([]*domain.Profile, error)
	// ListProactiveTargets returns opted-in profiles with a phone number and
	// at least one reservation checking out after now.
	ListProactiveTargets(ctx context.Context, now time.Time) ([]*domain.Profile, error)
	// ListLapsedGuests returns profiles with an email whose latest
	// non-cancelled stay checked out before lastStayBefore.
	ListLapsedGuests(ctx context.Context, lastStayBefore time.Time) ([]*domain.Profile, error)
}

type ReservationRepo interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error)
	ListCheckInBetween(ctx context.Context, status domain.ReservationStatus, from, to time.Time) ([]*domain.Reservation, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Reservation, error)
}

type PriceRepo interface {
	Create(ctx context.Context, q *domain.PriceQuote) error
	ListRecent(ctx context.Context, limit int) ([]*domain.PriceQuote, error)
}

type TourBookingRepo interface {
	Create(ctx context.Context, b *domain.TourBooking) error
	ListByBookingID(ctx context.Context, bookingID string) ([]*domain.TourBooking, error)
	// MarkPaid flips every pending row of the booking to paid and returns the number updated.
	MarkPaid(ctx context.Context, bookingID, paymentIntent string) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.TourBooking, error)
}

type QuestionnaireRepo interface {
	Create(ctx context.Context, q *domain.QuestionnaireRow) error
	GetLatest(ctx context.Context, userID, reservationID string) (*domain.QuestionnaireRow, error)
}

type MagicContentRepo interface {
	Create(ctx context.Context, c *domain.MagicContent) error
	Update(ctx context.Context, c *domain.MagicContent) error
	GetByID(ctx context.Context, id string) (*domain.MagicContent, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.MagicContent, error)
}

type WhatsAppRepo interface {
	GetActiveSession(ctx context.Context, phone string) (*domain.WhatsAppSession, error)
	CreateSession(ctx context.Context, s *domain.WhatsAppSession) error
	UpdateSession(ctx context.Context, s *domain.WhatsAppSession) error
	CreateMessage(ctx context.Context, m *domain.WhatsAppMessage) error
	// ListRecentMessages returns the newest limit messages in chronological order.
	ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.WhatsAppMessage, error)
	ListMessagesByPhone(ctx context.Context, phone string) ([]*domain.WhatsAppMessage, error)
}

type CampaignRepo interface {
	Create(ctx context.Context, c *domain.Campaign) error
	Update(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context, status domain.CampaignStatus, limit int) ([]*domain.Campaign, error)
	ListCreatedSince(ctx context.Context, status domain.CampaignStatus, since time.Time) ([]*domain.Campaign, error)
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*domain.Campaign, error)
}

type MarketingContentRepo interface {
	Create(ctx context.Context, c *domain.MarketingContentRow) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*domain.MarketingContentRow, error)
}

type MarketingLogRepo interface {
	Create(ctx context.Context, l *domain.MarketingAgentLog) error
	ListByAgent(ctx context.Context, agentName string, limit int) ([]*domain.MarketingAgentLog, error)
}

type EmailListRepo interface {
	Upsert(ctx context.Context, s *domain.EmailSubscriber) error
	Get(ctx context.Context, email string) (*domain.EmailSubscriber, error)
}

type AgentRunRepo interface {
	Create(ctx context.Context, r *domain.AgentRun) error
	Finish(ctx context.Context, r *domain.AgentRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AgentRun, error)
}

type AgentPromptRepo interface {
	GetActive(ctx context.Context, agentName string) (*domain.AgentPrompt, error)
	ListActive(ctx context.Context) ([]*domain.AgentPrompt, error)
	// Activate stores text as the active prompt for the agent, deactivating older versions.
	Activate(ctx context.Context, agentName, text string) (*domain.AgentPrompt, error)
}
