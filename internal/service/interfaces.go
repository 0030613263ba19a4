package service

import (
	"context"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/payments"
)

type AuthService interface {
	// Authenticate resolves a bearer access token to its profile.
	Authenticate(ctx context.Context, token string) (*domain.Profile, error)
	IsAdmin(p *domain.Profile) bool
}

type BookingService interface {
	BookFlow(ctx context.Context, userID string, req BookFlowRequest) (*BookFlowResult, error)
	DebugTourBookings(ctx context.Context, bookingID string) ([]*domain.TourBooking, error)
}

type MagicService interface {
	GenerateForReservation(ctx context.Context, userID string, req MagicRequest) ([]MagicItem, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.MagicContent, error)
}

type ConciergeService interface {
	HandleInbound(ctx context.Context, phone, body string) (*InboundResult, error)
}

type WhatsAppJobs interface {
	SendCheckInReminders(ctx context.Context, now time.Time) (*ReminderResult, error)
	SendProactiveMessages(ctx context.Context, now time.Time) (*ProactiveResult, error)
	SendAdminMessage(ctx context.Context, phone, message string) (string, error)
}

type MarketingService interface {
	CreateCampaign(ctx context.Context, createdBy string, req CampaignRequest) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, status domain.CampaignStatus, limit int) ([]*domain.Campaign, error)
	RunCampaign(ctx context.Context, createdBy string, req CampaignRequest) (*CampaignRunResult, error)
	RunDaily(ctx context.Context, now time.Time) (*DailyMarketingResult, error)
	PostBookingCampaign(ctx context.Context, guest GuestContact, now time.Time) error
	ReEngagementCampaign(ctx context.Context, guests []GuestContact, now time.Time) (int, error)
	ReEngageLapsedGuests(ctx context.Context, now time.Time) (*ReEngagementResult, error)
}

type SelfImproveService interface {
	// RunAndPersist digests recent activity from the database before running.
	RunAndPersist(ctx context.Context) (*agents.SelfImproveResult, error)
	RunWithInputs(ctx context.Context, in agents.SelfImproveInputs) (*agents.SelfImproveResult, error)
}

type EventService interface {
	CheckEvents(ctx context.Context, now time.Time) ([]EventTrigger, error)
	AnalyzeProfile(ctx context.Context, userID string) (string, error)
	TriggerWorkflow(ctx context.Context, req WorkflowRequest) (*WorkflowResult, error)
}

type PaymentService interface {
	CreateIntent(ctx context.Context, req PaymentIntentRequest) (*payments.Intent, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
