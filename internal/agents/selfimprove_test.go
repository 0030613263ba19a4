package agents

import (
	"context"
	"testing"

	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleInputs = SelfImproveInputs{
	LogsSummary:       "price_scout completed 4; whatsapp_concierge failed 1",
	BookingSummary:    "snorkeling tour, snorkeling tour, anniversary dinner",
	PrefsSummary:      "family with kids, reggae music, snorkeling",
	ConversionSummary: "3 paid of 5 bookings",
}

func TestTrendInsights(t *testing.T) {
	got := TrendInsights(sampleInputs)
	assert.Equal(t, []string{
		"Family preference cluster detected; consider bundling kids activities.",
		"Romance-related bookings rising; highlight couples packages.",
		"Top terms: snorkeling, tour",
	}, got)

	assert.Empty(t, TrendInsights(SelfImproveInputs{}))
}

func TestSelfImprover_StopsOnHighScore(t *testing.T) {
	fake := testutil.NewFakeLLM(
		"Concierge should ask for dates earlier.",
		`{"insights":["ask dates early"],"prompt_updates":[{"agent_name":"whatsapp_concierge","prompt_text":"Ask for dates first."},{"agent_name":"","prompt_text":"x"}],"score":0.9}`,
	)
	res, err := NewSelfImprover(fake, NewPrompts(nil), logger.NewNop()).Run(context.Background(), sampleInputs)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.InDelta(t, 0.9, res.Score, 1e-9)
	assert.Equal(t, []string{"ask dates early"}, res.Insights)
	assert.Equal(t, []PromptUpdate{{AgentName: "whatsapp_concierge", PromptText: "Ask for dates first."}}, res.PromptUpdates)
	assert.Equal(t, "Concierge should ask for dates earlier.", res.CrewSummary)
	assert.Len(t, res.MLInsights, 3)

	require.Len(t, fake.Requests, 2)
	assert.Contains(t, fake.Requests[1].SystemPrompt, "Self-Improvement Agent")
	assert.Contains(t, fake.Requests[1].UserPrompt, `"crew_summary":"Concierge should ask for dates earlier."`)
}

func TestSelfImprover_RetriesUpToThreeTimes(t *testing.T) {
	fake := testutil.NewFakeLLM("summary", `{"insights":["a","b","c","d","e","f","g","h","i","j"],"score":0.4}`)
	res, err := NewSelfImprover(fake, NewPrompts(nil), logger.NewNop()).Run(context.Background(), sampleInputs)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.Len(t, res.Insights, 8)
	assert.Equal(t, 6, fake.CallsFor(llm.TaskSelfImprove))
}

func TestSelfImprover_LLMDownDefaults(t *testing.T) {
	res, err := NewSelfImprover(testutil.NewFailingLLM(), NewPrompts(nil), logger.NewNop()).Run(context.Background(), sampleInputs)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.InDelta(t, 0.5, res.Score, 1e-9)
	assert.Empty(t, res.Insights)
	assert.Empty(t, res.PromptUpdates)
	assert.Equal(t, crewUnavailable, res.CrewSummary)
}

func TestSelfImprover_ClampsOutOfRangeScore(t *testing.T) {
	tests := []struct {
		name       string
		score      string
		want       float64
		iterations int
	}{
		{"above one", "7", 1, 1},
		{"percentage", "85", 1, 1},
		{"negative", "-0.4", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeLLM("summary", `{"insights":["x"],"score":`+tt.score+`}`)
			res, err := NewSelfImprover(fake, NewPrompts(nil), logger.NewNop()).Run(context.Background(), sampleInputs)
			require.NoError(t, err)

			assert.InDelta(t, tt.want, res.Score, 1e-9)
			assert.Equal(t, tt.iterations, res.Iterations)
		})
	}
}
