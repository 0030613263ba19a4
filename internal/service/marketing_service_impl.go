package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultCampaignLimit = 50
	dailyImprovementName = "DailyImprovement"
	marketingCrewName    = "MarketingCrew"
)

type CampaignRequest struct {
	Name           string   `json:"name"`
	Objective      string   `json:"objective"`
	TargetAudience string   `json:"targetAudience"`
	KeyMessages    []string `json:"keyMessages"`
	Platforms      []string `json:"platforms"`
}

type CampaignRunResult struct {
	CampaignID          string                 `json:"campaignId"`
	ContentGenerated    int                    `json:"contentGenerated"`
	PostsScheduled      int                    `json:"postsScheduled"`
	EngagementCampaigns int                    `json:"engagementCampaigns"`
	Metrics             domain.CampaignMetrics `json:"metrics"`
	Insights            []string               `json:"insights"`
}

type DailyCampaignOutcome struct {
	CampaignID       string `json:"campaignId"`
	Status           string `json:"status"`
	ContentGenerated int    `json:"contentGenerated,omitempty"`
	PostsScheduled   int    `json:"postsScheduled,omitempty"`
	Error            string `json:"error,omitempty"`
}

// DailySummary aggregates campaign metrics over the last day. Rates are
// percentages with two decimals, or "N/A" when undefined.
type DailySummary struct {
	CampaignCount  int    `json:"campaignCount"`
	Impressions    int    `json:"impressions"`
	Clicks         int    `json:"clicks"`
	Conversions    int    `json:"conversions"`
	CTR            string `json:"ctr"`
	ConversionRate string `json:"conversionRate"`
}

type DailyMarketingResult struct {
	Processed int                    `json:"processed"`
	Total     int                    `json:"total"`
	Results   []DailyCampaignOutcome `json:"results"`
	Summary   *DailySummary          `json:"summary,omitempty"`
}

// lapsedAfterMonths is how long after checkout a guest becomes a
// re-engagement target.
const lapsedAfterMonths = 6

type ReEngagementResult struct {
	Lapsed    int `json:"lapsed"`
	Scheduled int `json:"scheduled"`
}

// GuestContact identifies a guest for email campaigns.
type GuestContact struct {
	Email    string
	Name     string
	RoomType string
	CheckIn  time.Time
}

// CampaignRunner executes the marketing crew for a brief.
type CampaignRunner interface {
	Run(ctx context.Context, brief agents.CampaignBrief) (*agents.CrewResult, error)
}

type marketingService struct {
	crew      CampaignRunner
	campaigns repository.CampaignRepo
	content   repository.MarketingContentRepo
	logs      repository.MarketingLogRepo
	emails    repository.EmailListRepo
	profiles  repository.ProfileRepo
	recorder  *runRecorder
	log       logger.Logger
	observer  UseCaseObserver
	now       func() time.Time
}

func NewMarketingService(
	crew CampaignRunner,
	campaigns repository.CampaignRepo,
	content repository.MarketingContentRepo,
	logs repository.MarketingLogRepo,
	emails repository.EmailListRepo,
	profiles repository.ProfileRepo,
	runs repository.AgentRunRepo,
	log logger.Logger,
	observers ...UseCaseObserver,
) MarketingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &marketingService{
		crew:      crew,
		campaigns: campaigns,
		content:   content,
		logs:      logs,
		emails:    emails,
		profiles:  profiles,
		recorder:  newRunRecorder(runs, log),
		log:       log,
		observer:  combineObservers(observers),
		now:       time.Now,
	}
}

func (s *marketingService) CreateCampaign(ctx context.Context, createdBy string, req CampaignRequest) (*domain.Campaign, error) {
	c := &domain.Campaign{
		Name:           domain.CoalesceStr(strings.TrimSpace(req.Name), "Untitled Campaign"),
		Objective:      req.Objective,
		TargetAudience: req.TargetAudience,
		KeyMessages:    nonNilStrings(req.KeyMessages),
		Platforms:      nonNilStrings(req.Platforms),
		Status:         domain.CampaignDraft,
		CreatedBy:      createdBy,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}
	return c, nil
}

func (s *marketingService) ListCampaigns(ctx context.Context, status domain.CampaignStatus, limit int) ([]*domain.Campaign, error) {
	if limit <= 0 {
		limit = defaultCampaignLimit
	}
	list, err := s.campaigns.List(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	return list, nil
}

// RunCampaign records a running campaign, executes the crew on it and stores
// the results.
func (s *marketingService) RunCampaign(ctx context.Context, createdBy string, req CampaignRequest) (result *CampaignRunResult, err error) {
	fields := map[string]any{"objective": req.Objective}
	defer observe(ctx, s.observer, "run-campaign", time.Now(), &err, fields)

	if req.Objective == "" || req.TargetAudience == "" || len(req.Platforms) == 0 {
		return nil, invalidf("Missing required fields: objective, targetAudience, platforms")
	}

	c := &domain.Campaign{
		Name:           domain.CoalesceStr(strings.TrimSpace(req.Name), fmt.Sprintf("Campaign-%d", s.now().UnixMilli())),
		Objective:      req.Objective,
		TargetAudience: req.TargetAudience,
		KeyMessages:    nonNilStrings(req.KeyMessages),
		Platforms:      req.Platforms,
		Status:         domain.CampaignRunning,
		CreatedBy:      createdBy,
	}
	if err = s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}
	fields["campaign_id"] = c.ID

	crew, err := s.execute(ctx, c)
	if err != nil {
		return nil, err
	}
	s.persistContent(ctx, c.ID, crew.Content)
	s.writeLog(ctx, &domain.MarketingAgentLog{
		CampaignID: c.ID,
		AgentName:  marketingCrewName,
		Action:     "Campaign executed",
		Status:     string(domain.CampaignCompleted),
		OutputData: map[string]any{
			"contentGenerated": len(crew.Content),
			"postsScheduled":   len(crew.Schedule),
			"iterations":       crew.ContentIterations,
		},
	})

	return &CampaignRunResult{
		CampaignID:          c.ID,
		ContentGenerated:    len(crew.Content),
		PostsScheduled:      len(crew.Schedule),
		EngagementCampaigns: len(crew.Engagement),
		Metrics:             crew.Metrics,
		Insights:            crew.MLInsights,
	}, nil
}

// execute runs the crew for c and stores the outcome, marking the campaign
// failed when the crew errors.
func (s *marketingService) execute(ctx context.Context, c *domain.Campaign) (*agents.CrewResult, error) {
	brief := agents.CampaignBrief{
		CampaignID:     c.ID,
		Objective:      c.Objective,
		TargetAudience: c.TargetAudience,
		KeyMessages:    c.KeyMessages,
		Platforms:      c.Platforms,
	}
	run := s.recorder.start(ctx, domain.AgentMarketingCrew, c.CreatedBy, c.ID, brief)
	crew, err := s.crew.Run(ctx, brief)
	s.recorder.finish(ctx, run, crew, err)
	if err != nil {
		c.Status = domain.CampaignFailed
		if uerr := s.campaigns.Update(ctx, c); uerr != nil {
			s.log.Warn("failed to mark campaign failed", zap.String("campaign_id", c.ID), zap.Error(uerr))
		}
		return nil, fmt.Errorf("running marketing crew: %w", err)
	}
	applyCrewResult(c, crew)
	c.Status = domain.CampaignCompleted
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("saving campaign results: %w", err)
	}
	return crew, nil
}

func applyCrewResult(c *domain.Campaign, r *agents.CrewResult) {
	research := r.Research
	metrics := r.Metrics
	c.ResearchData = &research
	c.GeneratedContent = r.Content
	c.ScheduledPosts = r.Schedule
	c.EngagementCampaigns = r.Engagement
	c.Metrics = &metrics
	c.MLInsights = r.MLInsights
	c.PromptUpdates = r.PromptUpdates
}

func (s *marketingService) persistContent(ctx context.Context, campaignID string, posts []domain.MarketingPost) {
	for _, p := range posts {
		row := &domain.MarketingContentRow{
			CampaignID:    campaignID,
			Type:          p.Type,
			Platform:      p.Platform,
			Title:         p.Title,
			Content:       p.Content,
			Status:        domain.CoalesceStr(p.Status, "draft"),
			ScheduledTime: p.ScheduledTime,
		}
		if err := s.content.Create(ctx, row); err != nil {
			s.log.Warn("failed to store marketing content", zap.String("campaign_id", campaignID), zap.Error(err))
		}
	}
}

func (s *marketingService) writeLog(ctx context.Context, entry *domain.MarketingAgentLog) {
	if err := s.logs.Create(ctx, entry); err != nil {
		s.log.Warn("failed to write marketing log", zap.String("agent", entry.AgentName), zap.Error(err))
	}
}

// RunDaily executes draft campaigns created in the last day, then records a
// performance summary over campaigns touched in the same window.
func (s *marketingService) RunDaily(ctx context.Context, now time.Time) (result *DailyMarketingResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "daily-marketing", time.Now(), &err, fields)

	since := now.Add(-24 * time.Hour)
	drafts, err := s.campaigns.ListCreatedSince(ctx, domain.CampaignDraft, since)
	if err != nil {
		return nil, fmt.Errorf("listing draft campaigns: %w", err)
	}

	result = &DailyMarketingResult{Total: len(drafts), Results: []DailyCampaignOutcome{}}
	for _, c := range drafts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		crew, runErr := s.execute(ctx, c)
		if runErr != nil {
			result.Results = append(result.Results, DailyCampaignOutcome{CampaignID: c.ID, Status: "failed", Error: runErr.Error()})
			continue
		}
		s.persistContent(ctx, c.ID, crew.Content)
		result.Processed++
		result.Results = append(result.Results, DailyCampaignOutcome{
			CampaignID:       c.ID,
			Status:           "success",
			ContentGenerated: len(crew.Content),
			PostsScheduled:   len(crew.Schedule),
		})
	}
	fields["processed"] = result.Processed
	fields["total"] = result.Total

	recent, err := s.campaigns.ListUpdatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("listing recent campaigns: %w", err)
	}
	if len(recent) > 0 {
		summary := summarizeCampaigns(recent)
		result.Summary = &summary
		s.writeLog(ctx, &domain.MarketingAgentLog{
			AgentName: dailyImprovementName,
			Action:    "Daily performance summary",
			Status:    string(domain.CampaignCompleted),
			OutputData: map[string]any{
				"campaignCount":  summary.CampaignCount,
				"impressions":    summary.Impressions,
				"clicks":         summary.Clicks,
				"conversions":    summary.Conversions,
				"ctr":            summary.CTR,
				"conversionRate": summary.ConversionRate,
				"timestamp":      now.UTC().Format(time.RFC3339),
			},
		})
	}
	return result, nil
}

func summarizeCampaigns(campaigns []*domain.Campaign) DailySummary {
	var sum DailySummary
	for _, c := range campaigns {
		sum.CampaignCount++
		if c.Metrics == nil {
			continue
		}
		sum.Impressions += c.Metrics.Impressions
		sum.Clicks += c.Metrics.Clicks
		sum.Conversions += c.Metrics.Conversions
	}
	sum.CTR = percentOrNA(sum.Clicks, sum.Impressions)
	sum.ConversionRate = percentOrNA(sum.Conversions, sum.Clicks)
	return sum
}

func percentOrNA(num, den int) string {
	if den <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", float64(num)/float64(den)*100)
}

// PostBookingCampaign runs an email engagement campaign for a new guest and
// adds them to the mailing list.
func (s *marketingService) PostBookingCampaign(ctx context.Context, guest GuestContact, now time.Time) error {
	if guest.Email == "" {
		return invalidf("guest email is required")
	}
	keyMessages := []string{
		"Your magic awaits",
		"Prepare for transformation",
		"The magic is YOU",
		fmt.Sprintf("%s experience preview", domain.CoalesceStr(guest.RoomType, "Overwater")),
	}
	c := &domain.Campaign{
		Name:           "Post-Booking: " + domain.CoalesceStr(guest.Name, guest.Email),
		Objective:      string(domain.ObjectiveEngagement),
		TargetAudience: guest.Email,
		KeyMessages:    keyMessages,
		Platforms:      []string{"email"},
		Status:         domain.CampaignRunning,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return fmt.Errorf("creating post-booking campaign: %w", err)
	}
	crew, err := s.execute(ctx, c)
	if err != nil {
		return err
	}

	sentAt := now.UTC()
	sentCount := 0
	if emailPost(crew.Content) != nil {
		sentCount = 1
	}
	first := strings.Fields(guest.Name)
	firstName := ""
	if len(first) > 0 {
		firstName = first[0]
	}
	if err := s.emails.Upsert(ctx, &domain.EmailSubscriber{
		Email:           guest.Email,
		FirstName:       firstName,
		Interests:       []string{"booked_guest", "overwater_luxury"},
		EngagementLevel: "new",
		EmailSentCount:  sentCount,
		LastEmailSent:   &sentAt,
	}); err != nil {
		return fmt.Errorf("updating email list: %w", err)
	}
	return nil
}

// ReEngagementCampaign drafts a win-back email and schedules it for every
// past guest the next day. Returns the number of emails scheduled.
func (s *marketingService) ReEngagementCampaign(ctx context.Context, guests []GuestContact, now time.Time) (int, error) {
	crew, err := s.crew.Run(ctx, agents.CampaignBrief{
		CampaignID:     fmt.Sprintf("re-engagement-%d", now.UnixMilli()),
		Objective:      string(domain.ObjectiveDirectBookings),
		TargetAudience: "Past guests",
		KeyMessages: []string{
			"We miss your magic",
			"Return to paradise",
			"Special returning guest offer",
			"The magic is calling you back",
		},
		Platforms: []string{"email"},
	})
	if err != nil {
		return 0, fmt.Errorf("running marketing crew: %w", err)
	}
	email := emailPost(crew.Content)
	if email == nil {
		return 0, nil
	}

	sendAt := now.Add(24 * time.Hour).UTC()
	scheduled := 0
	for _, g := range guests {
		row := &domain.MarketingContentRow{
			Type:          "email",
			Platform:      "email",
			Title:         fmt.Sprintf("re-engagement email for %s", domain.CoalesceStr(g.Name, g.Email)),
			Content:       email.Content,
			Status:        "scheduled",
			ScheduledTime: &sendAt,
		}
		if err := s.content.Create(ctx, row); err != nil {
			s.log.Warn("failed to schedule re-engagement email", zap.String("email", g.Email), zap.Error(err))
			continue
		}
		scheduled++
	}
	return scheduled, nil
}

// ReEngageLapsedGuests finds guests whose last stay ended more than
// lapsedAfterMonths ago and schedules the win-back email for them.
func (s *marketingService) ReEngageLapsedGuests(ctx context.Context, now time.Time) (res *ReEngagementResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "re-engagement", time.Now(), &err, fields)

	lapsed, err := s.profiles.ListLapsedGuests(ctx, now.AddDate(0, -lapsedAfterMonths, 0))
	if err != nil {
		return nil, err
	}
	res = &ReEngagementResult{Lapsed: len(lapsed)}
	fields["lapsed"] = res.Lapsed
	if len(lapsed) == 0 {
		return res, nil
	}

	guests := make([]GuestContact, 0, len(lapsed))
	for _, p := range lapsed {
		guests = append(guests, GuestContact{Email: p.Email, Name: p.FullName})
	}
	res.Scheduled, err = s.ReEngagementCampaign(ctx, guests, now)
	if err != nil {
		return nil, err
	}
	fields["scheduled"] = res.Scheduled
	return res, nil
}

// emailPost picks the email piece of a crew's output.
func emailPost(posts []domain.MarketingPost) *domain.MarketingPost {
	for i := range posts {
		if posts[i].Type == "email" || posts[i].Platform == "email" {
			return &posts[i]
		}
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
