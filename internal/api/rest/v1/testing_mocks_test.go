package v1

import (
	"context"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/payments"
	"github.com/linapoint/resortagents/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockAuthService) IsAdmin(p *domain.Profile) bool {
	args := m.Called(p)
	return args.Bool(0)
}

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) BookFlow(ctx context.Context, userID string, req service.BookFlowRequest) (*service.BookFlowResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookFlowResult), args.Error(1)
}

func (m *MockBookingService) DebugTourBookings(ctx context.Context, bookingID string) ([]*domain.TourBooking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TourBooking), args.Error(1)
}

// MockMagicService is a mock implementation of MagicService
type MockMagicService struct {
	mock.Mock
}

func (m *MockMagicService) GenerateForReservation(ctx context.Context, userID string, req service.MagicRequest) ([]service.MagicItem, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.MagicItem), args.Error(1)
}

func (m *MockMagicService) ListForUser(ctx context.Context, userID string) ([]*domain.MagicContent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MagicContent), args.Error(1)
}

// MockConciergeService is a mock implementation of ConciergeService
type MockConciergeService struct {
	mock.Mock
}

func (m *MockConciergeService) HandleInbound(ctx context.Context, phone, body string) (*service.InboundResult, error) {
	args := m.Called(ctx, phone, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InboundResult), args.Error(1)
}

// MockWhatsAppJobs is a mock implementation of WhatsAppJobs
type MockWhatsAppJobs struct {
	mock.Mock
}

func (m *MockWhatsAppJobs) SendCheckInReminders(ctx context.Context, now time.Time) (*service.ReminderResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReminderResult), args.Error(1)
}

func (m *MockWhatsAppJobs) SendProactiveMessages(ctx context.Context, now time.Time) (*service.ProactiveResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProactiveResult), args.Error(1)
}

func (m *MockWhatsAppJobs) SendAdminMessage(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

// MockMarketingService is a mock implementation of MarketingService
type MockMarketingService struct {
	mock.Mock
}

func (m *MockMarketingService) CreateCampaign(ctx context.Context, createdBy string, req service.CampaignRequest) (*domain.Campaign, error) {
	args := m.Called(ctx, createdBy, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockMarketingService) ListCampaigns(ctx context.Context, status domain.CampaignStatus, limit int) ([]*domain.Campaign, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Campaign), args.Error(1)
}

func (m *MockMarketingService) RunCampaign(ctx context.Context, createdBy string, req service.CampaignRequest) (*service.CampaignRunResult, error) {
	args := m.Called(ctx, createdBy, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CampaignRunResult), args.Error(1)
}

func (m *MockMarketingService) RunDaily(ctx context.Context, now time.Time) (*service.DailyMarketingResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DailyMarketingResult), args.Error(1)
}

func (m *MockMarketingService) PostBookingCampaign(ctx context.Context, guest service.GuestContact, now time.Time) error {
	args := m.Called(ctx, guest, now)
	return args.Error(0)
}

func (m *MockMarketingService) ReEngagementCampaign(ctx context.Context, guests []service.GuestContact, now time.Time) (int, error) {
	args := m.Called(ctx, guests, now)
	return args.Int(0), args.Error(1)
}

func (m *MockMarketingService) ReEngageLapsedGuests(ctx context.Context, now time.Time) (*service.ReEngagementResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReEngagementResult), args.Error(1)
}

// MockSelfImproveService is a mock implementation of SelfImproveService
type MockSelfImproveService struct {
	mock.Mock
}

func (m *MockSelfImproveService) RunAndPersist(ctx context.Context) (*agents.SelfImproveResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agents.SelfImproveResult), args.Error(1)
}

func (m *MockSelfImproveService) RunWithInputs(ctx context.Context, in agents.SelfImproveInputs) (*agents.SelfImproveResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agents.SelfImproveResult), args.Error(1)
}

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CheckEvents(ctx context.Context, now time.Time) ([]service.EventTrigger, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.EventTrigger), args.Error(1)
}

func (m *MockEventService) AnalyzeProfile(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockEventService) TriggerWorkflow(ctx context.Context, req service.WorkflowRequest) (*service.WorkflowResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WorkflowResult), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, req service.PaymentIntentRequest) (*payments.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Intent), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

type mockServices struct {
	auth        *MockAuthService
	booking     *MockBookingService
	magic       *MockMagicService
	concierge   *MockConciergeService
	whatsApp    *MockWhatsAppJobs
	marketing   *MockMarketingService
	selfImprove *MockSelfImproveService
	events      *MockEventService
	payments    *MockPaymentService
}

func newMockServices() *mockServices {
	return &mockServices{
		auth:        new(MockAuthService),
		booking:     new(MockBookingService),
		magic:       new(MockMagicService),
		concierge:   new(MockConciergeService),
		whatsApp:    new(MockWhatsAppJobs),
		marketing:   new(MockMarketingService),
		selfImprove: new(MockSelfImproveService),
		events:      new(MockEventService),
		payments:    new(MockPaymentService),
	}
}

func (m *mockServices) services() Services {
	return Services{
		Auth:        m.auth,
		Booking:     m.booking,
		Magic:       m.magic,
		Concierge:   m.concierge,
		WhatsApp:    m.whatsApp,
		Marketing:   m.marketing,
		SelfImprove: m.selfImprove,
		Events:      m.events,
		Payments:    m.payments,
	}
}
