package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/require"
)

type resortRepos struct {
	db             *sqlx.DB
	profiles       *repository.SQLiteProfileRepo
	reservations   *repository.SQLiteReservationRepo
	tours          *repository.SQLiteTourBookingRepo
	prices         *repository.SQLitePriceRepo
	questionnaires *repository.SQLiteQuestionnaireRepo
	contents       *repository.SQLiteMagicContentRepo
	chats          *repository.SQLiteWhatsAppRepo
	campaigns      *repository.SQLiteCampaignRepo
	marketing      *repository.SQLiteMarketingContentRepo
	logs           *repository.SQLiteMarketingLogRepo
	emails         *repository.SQLiteEmailListRepo
	runs           *repository.SQLiteAgentRunRepo
	prompts        *repository.SQLiteAgentPromptRepo
}

func newResortRepos(t *testing.T) *resortRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &resortRepos{
		db:             database,
		profiles:       repository.NewSQLiteProfileRepo(database),
		reservations:   repository.NewSQLiteReservationRepo(database),
		tours:          repository.NewSQLiteTourBookingRepo(database),
		prices:         repository.NewSQLitePriceRepo(database),
		questionnaires: repository.NewSQLiteQuestionnaireRepo(database),
		contents:       repository.NewSQLiteMagicContentRepo(database),
		chats:          repository.NewSQLiteWhatsAppRepo(database),
		campaigns:      repository.NewSQLiteCampaignRepo(database),
		marketing:      repository.NewSQLiteMarketingContentRepo(database),
		logs:           repository.NewSQLiteMarketingLogRepo(database),
		emails:         repository.NewSQLiteEmailListRepo(database),
		runs:           repository.NewSQLiteAgentRunRepo(database),
		prompts:        repository.NewSQLiteAgentPromptRepo(database),
	}
}

func (r *resortRepos) seedProfile(t *testing.T, name string, opts ...testutil.ProfileOption) *domain.Profile {
	t.Helper()
	p := testutil.NewTestProfile(name, opts...)
	require.NoError(t, r.profiles.Create(context.Background(), p))
	return p
}

func (r *resortRepos) seedReservation(t *testing.T, userID string, opts ...testutil.ReservationOption) *domain.Reservation {
	t.Helper()
	res := testutil.NewTestReservation(userID, opts...)
	require.NoError(t, r.reservations.Create(context.Background(), res))
	return res
}

type sentMessage struct {
	To   string
	Body string
}

// recordingSender captures outbound WhatsApp messages. failFor makes sends
// to that number fail.
type recordingSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor string
}

func (s *recordingSender) Send(_ context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && to == s.failFor {
		return "", fmt.Errorf("twilio rejected %s", to)
	}
	s.sent = append(s.sent, sentMessage{To: to, Body: body})
	return fmt.Sprintf("SM%03d", len(s.sent)), nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

// stubCrew returns a canned crew result, or err.
type stubCrew struct {
	mu     sync.Mutex
	result *agents.CrewResult
	err    error
	briefs []agents.CampaignBrief
}

func (c *stubCrew) Run(_ context.Context, brief agents.CampaignBrief) (*agents.CrewResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.briefs = append(c.briefs, brief)
	if c.err != nil {
		return nil, c.err
	}
	res := *c.result
	res.Metrics.CampaignID = brief.CampaignID
	return &res, nil
}

func cannedCrewResult(now time.Time) *agents.CrewResult {
	at := now.Add(2 * time.Hour)
	return &agents.CrewResult{
		Research: domain.Research{Trends: []string{"overwater villas"}},
		Content: []domain.MarketingPost{
			{Type: "social", Platform: "instagram", Title: "Sunrise", Content: "Wake up over the reef", Status: "draft"},
			{Type: "email", Platform: "email", Title: "Your magic awaits", Content: "Dear guest, the reef is calling.", Status: "draft"},
		},
		Schedule: []domain.ScheduledPost{
			{Platform: "instagram", Title: "Sunrise", ScheduledTime: at, Status: "scheduled"},
		},
		Engagement:        []domain.EngagementPlan{{Type: "poll", Name: "Favourite sunset spot", Status: "active"}},
		Metrics:           domain.CampaignMetrics{Impressions: 1000, Clicks: 50, Conversions: 5},
		MLInsights:        []string{"Short captions convert better"},
		ContentIterations: 2,
	}
}
