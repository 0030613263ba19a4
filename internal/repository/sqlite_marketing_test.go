package repository

import (
	"context"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketingContentRepo_ListByCampaign(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMarketingContentRepo(db)
	ctx := context.Background()
	at := time.Now().UTC().Add(24 * time.Hour)

	require.NoError(t, repo.Create(ctx, &domain.MarketingContentRow{CampaignID: "c1", Type: "email", Platform: "email", Title: "welcome", ScheduledTime: &at, Status: "scheduled"}))
	require.NoError(t, repo.Create(ctx, &domain.MarketingContentRow{CampaignID: "c1", Type: "social_post", Platform: "instagram", Title: "Post 1"}))

	got, err := repo.ListByCampaign(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].ScheduledTime)
	assert.WithinDuration(t, at, *got[0].ScheduledTime, time.Millisecond)
	assert.Equal(t, "draft", got[1].Status)
	assert.Nil(t, got[1].ScheduledTime)
}

func TestMarketingLogRepo_ListByAgent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMarketingLogRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.MarketingAgentLog{
		AgentName: "DailyImprovement", Action: "Daily performance summary", Status: "completed",
		OutputData: map[string]any{"totalCampaigns": float64(3)},
	}))
	require.NoError(t, repo.Create(ctx, &domain.MarketingAgentLog{AgentName: "MarketingCrew", Action: "run", Status: "completed"}))

	got, err := repo.ListByAgent(ctx, "DailyImprovement", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, float64(3), got[0].OutputData["totalCampaigns"])
}

func TestEmailListRepo_Upsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteEmailListRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.EmailSubscriber{Email: "g@example.com", FirstName: "Gia", EmailSentCount: 1}))
	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &domain.EmailSubscriber{
		Email: "g@example.com", FirstName: "Gia", Interests: []string{"booked_guest"},
		EmailSentCount: 2, LastEmailSent: &now,
	}))

	got, err := repo.Get(ctx, "g@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, got.EmailSentCount)
	assert.Equal(t, "new", got.EngagementLevel)
	assert.Equal(t, []string{"booked_guest"}, got.Interests)
	require.NotNil(t, got.LastEmailSent)

	_, err = repo.Get(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
