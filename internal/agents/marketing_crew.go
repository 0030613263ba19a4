package agents

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/llm"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/recursion"
	"go.uber.org/zap"
)

const (
	defaultCTA          = "Book your magic experience now"
	marketingGoal       = "Produce on-brand marketing posts that drive direct bookings with the Magic is You theme."
	marketingRefineHint = "Make the hook stronger and the call to action clearer."
)

// CampaignBrief is what the crew works from.
type CampaignBrief struct {
	CampaignID     string
	Objective      string
	TargetAudience string
	KeyMessages    []string
	Platforms      []string
}

// CrewResult collects the output of every crew step.
type CrewResult struct {
	Research          domain.Research         `json:"researchData"`
	Content           []domain.MarketingPost  `json:"generatedContent"`
	Schedule          []domain.ScheduledPost  `json:"scheduledPosts"`
	Engagement        []domain.EngagementPlan `json:"engagementCampaigns"`
	Metrics           domain.CampaignMetrics  `json:"metrics"`
	MLInsights        []string                `json:"mlInsights"`
	PromptUpdates     []string                `json:"promptUpdates"`
	ContentIterations int                     `json:"contentIterations"`
}

// MarketingCrew runs research, content, scheduling, engagement and
// measurement for a campaign, in that order.
type MarketingCrew struct {
	client    llm.LLMClient
	evaluator *recursion.TextEvaluator
	prompts   *Prompts
	opts      recursion.Options
	log       logger.Logger
	rand      func() float64
	now       func() time.Time
}

func NewMarketingCrew(client llm.LLMClient, prompts *Prompts, opts recursion.Options, log logger.Logger) *MarketingCrew {
	if log == nil {
		log = logger.NewNop()
	}
	return &MarketingCrew{
		client:    client,
		evaluator: recursion.NewTextEvaluator(client),
		prompts:   prompts,
		opts:      opts,
		log:       log,
		rand:      rand.Float64,
		now:       time.Now,
	}
}

func (m *MarketingCrew) Run(ctx context.Context, brief CampaignBrief) (*CrewResult, error) {
	log := m.log.With(zap.String("campaign_id", brief.CampaignID))
	res := &CrewResult{}

	log.Debug("crew step", zap.String("step", "research"))
	res.Research = m.research(ctx, brief)

	log.Debug("crew step", zap.String("step", "content"))
	content, iterations, err := m.content(ctx, brief, res.Research)
	if err != nil {
		return nil, fmt.Errorf("marketing content: %w", err)
	}
	res.Content, res.ContentIterations = content, iterations

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug("crew step", zap.String("step", "schedule"))
	res.Schedule = m.schedule(brief.CampaignID, res.Content)
	res.Engagement = engagementPlans(brief.Platforms)

	log.Debug("crew step", zap.String("step", "measure"))
	res.Metrics, res.MLInsights, res.PromptUpdates = m.measure(ctx, brief)

	log.Info("marketing crew finished",
		zap.Int("posts", len(res.Content)),
		zap.Int("content_iterations", res.ContentIterations))
	return res, nil
}

type researchJSON struct {
	Trends        []string `json:"trends"`
	Competitors   []string `json:"competitors"`
	Influencers   []string `json:"influencers"`
	Opportunities []string `json:"opportunities"`
}

func fallbackResearch() domain.Research {
	return domain.Research{
		Trends:          []string{"tropical wellness escapes", "digital detox experiences"},
		Competitors:     []string{"Turneffe Island", "South Water Caye"},
		Influencers:     []string{"travel bloggers", "wellness influencers"},
		Opportunities:   []string{"early bird bookings", "couples packages"},
		RefinementNotes: "Fallback research data loaded",
	}
}

func (m *MarketingCrew) research(ctx context.Context, brief CampaignBrief) domain.Research {
	prompt := fmt.Sprintf(`You are a travel marketing research expert. Analyze current trends for %s.

For Lina Point Resort (overwater luxury), identify:
1. Top 3 travel trends from last 30 days
2. 2-3 direct competitors and their marketing angles
3. 3-5 relevant travel influencers in the luxury/wellness space
4. Market opportunities for direct bookings

Campaign objective: %s

Return JSON with: { trends: [], competitors: [], influencers: [], opportunities: [] }`, brief.TargetAudience, brief.Objective)

	raw, err := m.ask(ctx, llm.TaskResearch, prompt)
	if err != nil {
		m.log.Warn("research failed, using fallback", zap.Error(err))
		return fallbackResearch()
	}
	parsed, err := llm.ExtractJSON[researchJSON](raw, nil)
	if err != nil {
		m.log.Warn("research output unparseable, using fallback", zap.Error(err))
		return fallbackResearch()
	}
	return domain.Research{
		Trends:        nonNil(parsed.Trends),
		Competitors:   nonNil(parsed.Competitors),
		Influencers:   nonNil(parsed.Influencers),
		Opportunities: nonNil(parsed.Opportunities),
		RefinementNotes: fmt.Sprintf("Analyzed 30-day trends for %s. Found %d opportunities.",
			brief.TargetAudience, len(parsed.Opportunities)),
	}
}

type contentItemJSON struct {
	Type     string   `json:"type"`
	Platform string   `json:"platform"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags"`
	CTA      string   `json:"cta"`
}

type contentDraft struct {
	posts    []domain.MarketingPost
	fallback bool
}

func fallbackContent() []domain.MarketingPost {
	return []domain.MarketingPost{{
		Type:         "social_post",
		Platform:     "instagram",
		Title:        "The Magic Awaits",
		Content:      "The magic is YOU. Discover your transformation at Lina Point. #MagicIsYou #OverwaterLuxury",
		Hashtags:     []string{"#linapoint", "#belize", "#wellness"},
		CallToAction: "Book now",
		Status:       "draft",
	}}
}

func (m *MarketingCrew) content(ctx context.Context, brief CampaignBrief, research domain.Research) ([]domain.MarketingPost, int, error) {
	generate := func(ctx context.Context, _ int) (contentDraft, error) {
		return m.draftContent(ctx, brief, research, ""), nil
	}
	evaluate := func(ctx context.Context, d contentDraft, _ int) (recursion.Evaluation[contentDraft], error) {
		if d.fallback {
			return recursion.Evaluation[contentDraft]{Score: 1, Feedback: "fallback content", Value: d}, nil
		}
		grade := m.evaluator.Evaluate(ctx, marketingGoal, summarizePosts(d.posts))
		return recursion.Evaluation[contentDraft]{Score: grade.Score, Feedback: grade.Feedback, Value: d}, nil
	}
	refine := func(ctx context.Context, _ contentDraft, feedback string, iteration int) (contentDraft, error) {
		hint := fmt.Sprintf("Iteration %d: %s", iteration+1, domain.CoalesceStr(feedback, marketingRefineHint))
		return m.draftContent(ctx, brief, research, hint), nil
	}
	out, err := recursion.Run(ctx, generate, evaluate, refine, m.opts)
	if err != nil {
		return nil, 0, err
	}
	return out.Value.posts, out.Iterations, nil
}

func (m *MarketingCrew) draftContent(ctx context.Context, brief CampaignBrief, research domain.Research, hint string) contentDraft {
	prompt := fmt.Sprintf(`Create marketing content for Lina Point Resort using "The Magic is You" mantra and kundalini/mystical themes.

Objective: %s
Target: %s
Platforms: %s
Key Messages: %s

Research insights:
- Trends: %s
- Opportunities: %s

Generate 3 posts:
1. Instagram post (caption + hashtags)
2. TikTok script (9-15 sec, trending sounds)
3. Email subject line & opening

Format as JSON array: [{ type, platform, title, content, hashtags, cta }]`,
		brief.Objective, brief.TargetAudience, strings.Join(brief.Platforms, ", "), strings.Join(brief.KeyMessages, ", "),
		strings.Join(research.Trends, ", "), strings.Join(research.Opportunities, ", "))
	if hint != "" {
		prompt += "\nRefinement: " + hint
	}

	raw, err := m.ask(ctx, llm.TaskContent, prompt)
	if err != nil {
		m.log.Warn("content generation failed, using fallback", zap.Error(err))
		return contentDraft{posts: fallbackContent(), fallback: true}
	}
	items, err := llm.ExtractJSONArray[contentItemJSON](raw)
	if err != nil || len(items) == 0 {
		return contentDraft{posts: fallbackContent(), fallback: true}
	}

	platforms := brief.Platforms
	if len(platforms) == 0 {
		platforms = []string{"instagram"}
	}
	posts := make([]domain.MarketingPost, 0, len(items))
	for i, item := range items {
		posts = append(posts, domain.MarketingPost{
			Type:         domain.CoalesceStr(item.Type, "social_post"),
			Platform:     domain.CoalesceStr(item.Platform, platforms[i%len(platforms)]),
			Title:        domain.CoalesceStr(item.Title, fmt.Sprintf("Post %d", i+1)),
			Content:      domain.CoalesceStr(item.Content, item.Body),
			Hashtags:     nonNil(item.Hashtags),
			CallToAction: domain.CoalesceStr(item.CTA, defaultCTA),
			Status:       "draft",
		})
	}
	return contentDraft{posts: posts}
}

func summarizePosts(posts []domain.MarketingPost) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "[%s] %s: %s (CTA: %s)\n", p.Platform, p.Title, p.Content, p.CallToAction)
	}
	return strings.TrimSpace(b.String())
}

// schedule staggers posts one hour apart starting an hour from now.
func (m *MarketingCrew) schedule(campaignID string, posts []domain.MarketingPost) []domain.ScheduledPost {
	now := m.now().UTC()
	out := make([]domain.ScheduledPost, 0, len(posts))
	for i, p := range posts {
		id := fmt.Sprintf("%s-%d", campaignID, i)
		out = append(out, domain.ScheduledPost{
			Platform:      p.Platform,
			ContentID:     id,
			Title:         p.Title,
			ScheduledTime: now.Add(time.Duration(i+1) * time.Hour),
			Status:        "scheduled",
			MockURL:       fmt.Sprintf("https://%s.com/posts/%s", p.Platform, id),
		})
	}
	return out
}

func engagementPlans(platforms []string) []domain.EngagementPlan {
	return []domain.EngagementPlan{
		{
			Type: "reply_sequence",
			Name: "Smart Comment Replies",
			Prompt: fmt.Sprintf("Reply to comments on %s posts about Lina Point. Use \"The Magic is You\" theme. "+
				"Keep replies personalized and 2-3 sentences. Always include a soft CTA to DM or visit website.",
				strings.Join(platforms, "/")),
			Status:   "active",
			Response: "Reply generator activated for top posts",
		},
		{
			Type: "email_drip",
			Name: "Welcome Email Sequence",
			Prompt: "Create 3-email drip sequence for new bookings from this campaign. " +
				"Email 1: Welcome + magic experience preview. Email 2: Testimonials + exclusive offer. " +
				"Email 3: Last-minute deal for return visitors.",
			Status:   "configured",
			Response: "Email drip sequence configured",
		},
		{
			Type: "dms",
			Name: "Proactive DM Campaign",
			Prompt: "Send friendly DMs to commenters and followers interested in travel. " +
				"Ask about their travel style, then suggest if Lina Point matches their vibe. " +
				"Include direct booking link only if they show clear interest.",
			Status:   "pending_activation",
			Response: "DM campaign template ready",
		},
	}
}

type analysisJSON struct {
	MLInsights    []string `json:"mlInsights"`
	PromptUpdates []string `json:"promptUpdates"`
}

var (
	fallbackInsights = []string{
		"CTR is above 2% - strong copy performance",
		"Conversion rate could improve by testing urgency CTAs",
		"Email collection lower than expected - add signup incentive",
	}
	fallbackPromptUpdates = []string{
		"Increase frequency of urgency-based CTAs",
		"Add limited-time offer mentions to emails",
		"Emphasize exclusivity in social posts",
	}
)

// measure produces simulated metrics and asks the LLM what to change.
func (m *MarketingCrew) measure(ctx context.Context, brief CampaignBrief) (domain.CampaignMetrics, []string, []string) {
	randInt := func(span, base int) int { return int(m.rand()*float64(span)) + base }
	metrics := domain.CampaignMetrics{
		CampaignID:      brief.CampaignID,
		Impressions:     randInt(5000, 1000),
		Clicks:          randInt(500, 50),
		Engagements:     randInt(200, 20),
		Conversions:     randInt(20, 2),
		EmailsCollected: randInt(100, 10),
		CTR:             m.rand()*0.08 + 0.02,
		ConversionRate:  m.rand()*0.05 + 0.01,
		DateTracked:     m.now().UTC(),
	}

	prompt := fmt.Sprintf(`Analyze these marketing metrics and suggest improvements:

Metrics:
- Impressions: %d
- Clicks: %d
- CTR: %.2f%%
- Conversions: %d
- Conversion Rate: %.2f%%
- Emails Collected: %d

Campaign Brief:
- Objective: %s
- Target: %s

Generate JSON with: { "mlInsights": [], "promptUpdates": [] }`,
		metrics.Impressions, metrics.Clicks, metrics.CTR*100, metrics.Conversions,
		metrics.ConversionRate*100, metrics.EmailsCollected, brief.Objective, brief.TargetAudience)

	raw, err := m.ask(ctx, llm.TaskAnalysis, prompt)
	if err != nil {
		return metrics, fallbackInsights, fallbackPromptUpdates
	}
	parsed, err := llm.ExtractJSON[analysisJSON](raw, nil)
	if err != nil {
		return metrics, fallbackInsights, fallbackPromptUpdates
	}
	return metrics, nonNil(parsed.MLInsights), nonNil(parsed.PromptUpdates)
}

func (m *MarketingCrew) ask(ctx context.Context, task llm.TaskType, prompt string) (string, error) {
	if m.client == nil {
		return "", llm.ErrUnavailable
	}
	resp, err := m.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: m.prompts.System(ctx, domain.AgentMarketingCrew),
		UserPrompt:   prompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
