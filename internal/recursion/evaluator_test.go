package recursion

import (
	"context"
	"testing"

	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEvaluator_ParsesGrade(t *testing.T) {
	fake := testutil.NewFakeLLM(`{"score": 0.9, "feedback": "clear and warm"}`)
	grade := NewTextEvaluator(fake).Evaluate(context.Background(), "Be friendly.", "Hi there!")

	assert.InDelta(t, 0.9, grade.Score, 1e-9)
	assert.Equal(t, "clear and warm", grade.Feedback)

	require.Len(t, fake.Requests, 1)
	req := fake.Requests[0]
	assert.Equal(t, llm.TaskEvaluate, req.Task)
	assert.Contains(t, req.SystemPrompt, "strict evaluator")
	assert.Equal(t, "Goal: Be friendly.\nOutput: Hi there!", req.UserPrompt)
}

func TestTextEvaluator_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		client llm.LLMClient
	}{
		{"llm down", testutil.NewFailingLLM()},
		{"prose answer", testutil.NewFakeLLM("Looks good to me")},
		{"score missing", testutil.NewFakeLLM(`{"feedback":"ok"}`)},
		{"nil client", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade := NewTextEvaluator(tt.client).Evaluate(context.Background(), "goal", "out")
			assert.Equal(t, 0.5, grade.Score)
			assert.Equal(t, "Could not parse evaluator response.", grade.Feedback)
		})
	}
}

func TestTextEvaluator_ClampsScore(t *testing.T) {
	grade := NewTextEvaluator(testutil.NewFakeLLM(`{"score": 7, "feedback": "wow"}`)).Evaluate(context.Background(), "g", "o")
	assert.Equal(t, 1.0, grade.Score)
}
