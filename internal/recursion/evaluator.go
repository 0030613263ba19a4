package recursion

import (
	"context"
	"fmt"

	"github.com/linapoint/resortagents/internal/llm"
)

const (
	evaluatorSystemPrompt = `You are a strict evaluator. Return JSON {"score": number 0-1, "feedback": "short"}.`
	unparsedFeedback      = "Could not parse evaluator response."
	fallbackScore         = 0.5
)

// Grade is a text quality verdict.
type Grade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// TextEvaluator grades free text against a goal using the LLM. It never
// fails: an unreachable model or an unparseable answer yields a neutral grade.
type TextEvaluator struct {
	client llm.LLMClient
}

func NewTextEvaluator(client llm.LLMClient) *TextEvaluator {
	return &TextEvaluator{client: client}
}

func (e *TextEvaluator) Evaluate(ctx context.Context, goal, output string) Grade {
	if e == nil || e.client == nil {
		return Grade{Score: fallbackScore, Feedback: unparsedFeedback}
	}
	resp, err := e.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskEvaluate,
		SystemPrompt: evaluatorSystemPrompt,
		UserPrompt:   fmt.Sprintf("Goal: %s\nOutput: %s", goal, output),
	})
	if err != nil {
		return Grade{Score: fallbackScore, Feedback: unparsedFeedback}
	}
	raw, err := llm.ExtractJSON[rawGrade](resp.Text, nil)
	if err != nil || raw.Score == nil {
		return Grade{Score: fallbackScore, Feedback: unparsedFeedback}
	}
	return Grade{Score: ClampScore(*raw.Score), Feedback: raw.Feedback}
}

type rawGrade struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// ClampScore bounds a model-reported score to [0,1].
func ClampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
