package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignRepo_CrewResultsRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCampaignRepo(db)
	ctx := context.Background()

	c := testutil.NewTestCampaign("Spring")
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResearchData)
	assert.Nil(t, got.Metrics)

	c.Status = domain.CampaignCompleted
	c.ResearchData = &domain.Research{Trends: []string{"digital detox experiences"}}
	c.GeneratedContent = []domain.MarketingPost{{Type: "social_post", Platform: "instagram", Title: "Post 1", Status: "draft"}}
	c.EngagementCampaigns = []domain.EngagementPlan{{Type: "dms", Name: "Proactive DM Campaign", Status: "pending_activation"}}
	c.Metrics = &domain.CampaignMetrics{CampaignID: c.ID, Impressions: 1200, Clicks: 60}
	c.MLInsights = []string{"Couples respond to sunset imagery"}
	require.NoError(t, repo.Update(ctx, c))

	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignCompleted, got.Status)
	if diff := cmp.Diff(c.ResearchData, got.ResearchData); diff != "" {
		t.Errorf("research mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.GeneratedContent, got.GeneratedContent); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, got.Metrics)
	assert.Equal(t, 1200, got.Metrics.Impressions)
	assert.Equal(t, c.MLInsights, got.MLInsights)
}

func TestCampaignRepo_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCampaignRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	old := testutil.NewTestCampaign("Old", testutil.WithCreatedAt(now.Add(-48*time.Hour)))
	fresh := testutil.NewTestCampaign("Fresh", testutil.WithCreatedAt(now.Add(-time.Hour)))
	done := testutil.NewTestCampaign("Done", testutil.WithCampaignStatus(domain.CampaignCompleted),
		testutil.WithCreatedAt(now.Add(-2*time.Hour)))
	for _, c := range []*domain.Campaign{old, fresh, done} {
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.List(ctx, "", 50)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Fresh", all[0].Name)

	drafts, err := repo.List(ctx, domain.CampaignDraft, 50)
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	limited, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	recentDrafts, err := repo.ListCreatedSince(ctx, domain.CampaignDraft, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recentDrafts, 1)
	assert.Equal(t, "Fresh", recentDrafts[0].Name)

	updated, err := repo.ListUpdatedSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, updated, 2)
}
