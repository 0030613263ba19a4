package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/recursion"
	"go.uber.org/zap"
)

const (
	selfImproveMinScore   = 0.8
	selfImproveMaxInsight = 8
	crewSystemPrompt      = "You are a crew orchestrator. Summarize cross-agent improvements and highlight one prompt change per agent."
	crewUnavailable       = "Crew synthesis unavailable."
)

// SelfImproveInputs are plain-text digests of recent activity.
type SelfImproveInputs struct {
	LogsSummary       string `json:"logs"`
	BookingSummary    string `json:"bookings"`
	PrefsSummary      string `json:"prefs"`
	ConversionSummary string `json:"conversions"`
}

type PromptUpdate struct {
	AgentName  string `json:"agent_name"`
	PromptText string `json:"prompt_text"`
}

type SelfImproveResult struct {
	Insights      []string       `json:"insights"`
	PromptUpdates []PromptUpdate `json:"promptUpdates"`
	Score         float64        `json:"score"`
	MLInsights    []string       `json:"mlInsights"`
	CrewSummary   string         `json:"crewSummary"`
	Iterations    int            `json:"iterations"`
}

// SelfImprover reviews recent activity and proposes prompt changes.
type SelfImprover struct {
	client  llm.LLMClient
	prompts *Prompts
	log     logger.Logger
}

func NewSelfImprover(client llm.LLMClient, prompts *Prompts, log logger.Logger) *SelfImprover {
	if log == nil {
		log = logger.NewNop()
	}
	return &SelfImprover{client: client, prompts: prompts, log: log}
}

// Run repeats the analysis until the model reports a score of at least 0.8
// or three passes have run.
func (s *SelfImprover) Run(ctx context.Context, in SelfImproveInputs) (*SelfImproveResult, error) {
	pass := func(ctx context.Context, _ int) (SelfImproveResult, error) {
		return s.analyze(ctx, in)
	}
	evaluate := func(_ context.Context, r SelfImproveResult, _ int) (recursion.Evaluation[SelfImproveResult], error) {
		return recursion.Evaluation[SelfImproveResult]{Score: r.Score, Value: r}, nil
	}
	refine := func(ctx context.Context, _ SelfImproveResult, _ string, iteration int) (SelfImproveResult, error) {
		s.log.Debug("self-improvement score below threshold, retrying", zap.Int("iteration", iteration+1))
		return s.analyze(ctx, in)
	}

	out, err := recursion.Run(ctx, pass, evaluate, refine, recursion.Options{MaxIterations: 3, MinScore: recursion.Threshold(selfImproveMinScore)})
	if err != nil {
		return nil, fmt.Errorf("self-improvement: %w", err)
	}
	res := out.Value
	res.Iterations = out.Iterations
	return &res, nil
}

type selfImproveJSON struct {
	Insights      []string       `json:"insights"`
	PromptUpdates []PromptUpdate `json:"prompt_updates"`
	Score         *float64       `json:"score"`
}

func (s *SelfImprover) analyze(ctx context.Context, in SelfImproveInputs) (SelfImproveResult, error) {
	if err := ctx.Err(); err != nil {
		return SelfImproveResult{}, err
	}
	res := SelfImproveResult{
		Insights:      []string{},
		PromptUpdates: []PromptUpdate{},
		Score:         0.5,
		MLInsights:    TrendInsights(in),
	}

	payload := map[string]any{
		"logs":        in.LogsSummary,
		"bookings":    in.BookingSummary,
		"prefs":       in.PrefsSummary,
		"conversions": in.ConversionSummary,
		"mlInsights":  res.MLInsights,
	}
	res.CrewSummary = crewUnavailable
	if summary, err := s.ask(ctx, crewSystemPrompt, payload); err == nil && strings.TrimSpace(summary) != "" {
		res.CrewSummary = strings.TrimSpace(summary)
	}

	delete(payload, "mlInsights")
	payload["ml_insights"] = res.MLInsights
	payload["crew_summary"] = res.CrewSummary
	raw, err := s.ask(ctx, s.prompts.System(ctx, domain.AgentSelfImprove), payload)
	if err != nil {
		s.log.Warn("self-improvement analysis failed", zap.Error(err))
		return res, nil
	}
	parsed, err := llm.ExtractJSON[selfImproveJSON](raw, nil)
	if err != nil {
		s.log.Warn("self-improvement output unparseable", zap.Error(err))
		return res, nil
	}
	if len(parsed.Insights) > selfImproveMaxInsight {
		parsed.Insights = parsed.Insights[:selfImproveMaxInsight]
	}
	if parsed.Insights != nil {
		res.Insights = parsed.Insights
	}
	for _, u := range parsed.PromptUpdates {
		if strings.TrimSpace(u.AgentName) == "" || strings.TrimSpace(u.PromptText) == "" {
			continue
		}
		res.PromptUpdates = append(res.PromptUpdates, u)
	}
	if parsed.Score != nil {
		res.Score = recursion.ClampScore(*parsed.Score)
	}
	return res, nil
}

func (s *SelfImprover) ask(ctx context.Context, system string, payload map[string]any) (string, error) {
	if s.client == nil {
		return "", llm.ErrUnavailable
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSelfImprove,
		SystemPrompt: system,
		UserPrompt:   string(body),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

var stopWords = map[string]bool{
	"with": true, "from": true, "that": true, "this": true, "were": true, "have": true,
	"into": true, "over": true, "than": true, "they": true, "their": true, "none": true,
	"total": true, "recent": true,
}

// TrendInsights is a keyword heuristic over the booking, preference and
// conversion digests.
func TrendInsights(in SelfImproveInputs) []string {
	var out []string
	prefs := strings.ToLower(in.PrefsSummary)
	bookings := strings.ToLower(in.BookingSummary)
	if strings.Contains(prefs, "family") || strings.Contains(prefs, "kids") {
		out = append(out, "Family preference cluster detected; consider bundling kids activities.")
	}
	if strings.Contains(bookings, "anniversary") || strings.Contains(bookings, "romance") {
		out = append(out, "Romance-related bookings rising; highlight couples packages.")
	}
	if terms := topTerms(strings.Join([]string{in.BookingSummary, in.PrefsSummary, in.ConversionSummary}, " "), 3); len(terms) > 0 {
		out = append(out, "Top terms: "+strings.Join(terms, ", "))
	}
	return out
}

// topTerms returns up to n words of four or more letters that occur at
// least twice, most frequent first.
func topTerms(text string, n int) []string {
	counts := map[string]int{}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) }) {
		if len(w) < 4 || stopWords[w] {
			continue
		}
		counts[w]++
	}
	var terms []string
	for w, c := range counts {
		if c >= 2 {
			terms = append(terms, w)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
