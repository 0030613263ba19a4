package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImprover struct {
	mu     sync.Mutex
	result *agents.SelfImproveResult
	err    error
	inputs []agents.SelfImproveInputs
}

func (s *stubImprover) Run(_ context.Context, in agents.SelfImproveInputs) (*agents.SelfImproveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestSelfImproveService(repos *resortRepos, improver Improver) SelfImproveService {
	return NewSelfImproveService(improver, repos.runs, repos.reservations, repos.tours, repos.profiles, repos.prompts, nil)
}

func TestSelfImproveService_RunAndPersist_ActivatesPrompts(t *testing.T) {
	repos := newResortRepos(t)
	ctx := context.Background()
	guest := repos.seedProfile(t, "Data Point", testutil.WithMayaInterests("cenotes"))
	repos.seedReservation(t, guest.UserID)
	require.NoError(t, repos.tours.Create(ctx, &domain.TourBooking{
		UserID: guest.UserID, BookingID: "b-1", TourName: "Coral Garden Snorkeling",
		TourType: domain.TourSnorkeling, Price: 105, CommissionEarned: 10.5, Status: domain.TourBookingPaid,
	}))

	improver := &stubImprover{result: &agents.SelfImproveResult{
		Insights: []string{"Guests ask about cenotes"},
		PromptUpdates: []agents.PromptUpdate{
			{AgentName: string(domain.AgentConcierge), PromptText: "Mention cenote tours early."},
			{AgentName: string(domain.AgentContentMagic), PromptText: "  "},
		},
		Score: 0.85,
	}}
	svc := newTestSelfImproveService(repos, improver)

	result, err := svc.RunAndPersist(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.85, result.Score)

	require.Len(t, improver.inputs, 1)
	in := improver.inputs[0]
	assert.Contains(t, in.BookingSummary, "Bookings: 1")
	assert.Contains(t, in.PrefsSummary, "Profiles sampled: 1")
	assert.Contains(t, in.PrefsSummary, "cenotes")
	assert.Contains(t, in.ConversionSummary, "Recent tour bookings: 1 (1 paid)")
	assert.Contains(t, in.ConversionSummary, "commission 10.50")

	active, err := repos.prompts.GetActive(ctx, string(domain.AgentConcierge))
	require.NoError(t, err)
	assert.Equal(t, "Mention cenote tours early.", active.PromptText)

	_, err = repos.prompts.GetActive(ctx, string(domain.AgentContentMagic))
	assert.Error(t, err, "blank prompt updates are skipped")

	runs, err := repos.runs.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	assert.Equal(t, domain.AgentSelfImprove, runs[0].AgentName)
	assert.Equal(t, domain.RunCompleted, runs[0].Status)
}

func TestSelfImproveService_RunWithInputs_PassesDigestsThrough(t *testing.T) {
	repos := newResortRepos(t)
	improver := &stubImprover{result: &agents.SelfImproveResult{Score: 1}}
	svc := newTestSelfImproveService(repos, improver)

	in := agents.SelfImproveInputs{LogsSummary: "Triggered via n8n stub", BookingSummary: "{}"}
	_, err := svc.RunWithInputs(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, improver.inputs, 1)
	assert.Equal(t, in, improver.inputs[0])
}

func TestSelfImproveService_ImproverFailure(t *testing.T) {
	repos := newResortRepos(t)
	svc := newTestSelfImproveService(repos, &stubImprover{err: errors.New("no model")})

	_, err := svc.RunAndPersist(context.Background())
	require.Error(t, err)

	active, err := repos.prompts.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSummarizeRuns(t *testing.T) {
	runs := []*domain.AgentRun{
		{AgentName: domain.AgentConcierge, Status: domain.RunCompleted},
		{AgentName: domain.AgentConcierge, Status: domain.RunFailed},
		{AgentName: domain.AgentPriceScout, Status: domain.RunCompleted},
	}
	assert.Equal(t, "Agent runs: 3; price_scout 1 (0 failed); whatsapp_concierge 2 (1 failed)", summarizeRuns(runs))
}
