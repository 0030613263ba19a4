package domain

import "time"

type CampaignObjective string

const (
	ObjectiveDirectBookings CampaignObjective = "direct_bookings"
	ObjectiveBrandAwareness CampaignObjective = "brand_awareness"
	ObjectiveEngagement     CampaignObjective = "engagement"
	ObjectiveEmailGrowth    CampaignObjective = "email_growth"
)

// Campaign is a marketing campaign and, once run, the crew's results.
type Campaign struct {
	ID                  string
	Name                string
	Objective           string
	TargetAudience      string
	KeyMessages         []string
	Platforms           []string
	Status              CampaignStatus
	CreatedBy           string
	ResearchData        *Research
	GeneratedContent    []MarketingPost
	ScheduledPosts      []ScheduledPost
	EngagementCampaigns []EngagementPlan
	Metrics             *CampaignMetrics
	MLInsights          []string
	PromptUpdates       []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Research struct {
	Trends          []string `json:"trends"`
	Competitors     []string `json:"competitors"`
	Influencers     []string `json:"influencers"`
	Opportunities   []string `json:"opportunities"`
	RefinementNotes string   `json:"refinementNotes"`
}

type MarketingPost struct {
	Type          string     `json:"type"`
	Platform      string     `json:"platform"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Hashtags      []string   `json:"hashtags,omitempty"`
	CallToAction  string     `json:"callToAction,omitempty"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
	Status        string     `json:"status"`
}

type ScheduledPost struct {
	Platform      string    `json:"platform"`
	ContentID     string    `json:"contentId"`
	Title         string    `json:"title"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
	MockURL       string    `json:"mockUrl"`
}

type EngagementPlan struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Prompt   string `json:"prompt"`
	Status   string `json:"status"`
	Response string `json:"response"`
}

type CampaignMetrics struct {
	CampaignID      string    `json:"campaignId"`
	Impressions     int       `json:"impressions"`
	Clicks          int       `json:"clicks"`
	Engagements     int       `json:"engagements"`
	Conversions     int       `json:"conversions"`
	EmailsCollected int       `json:"emailsCollected"`
	CTR             float64   `json:"ctr"`
	ConversionRate  float64   `json:"conversionRate"`
	DateTracked     time.Time `json:"dateTracked"`
}

// MarketingContentRow is a single piece of content persisted for delivery.
type MarketingContentRow struct {
	ID            string
	CampaignID    string
	Type          string
	Platform      string
	Title         string
	Content       string
	Status        string
	ScheduledTime *time.Time
	CreatedAt     time.Time
}

// MarketingAgentLog records one step of a marketing agent.
type MarketingAgentLog struct {
	ID         string
	CampaignID string
	AgentName  string
	Action     string
	Status     string
	OutputData map[string]any
	CreatedAt  time.Time
}

type EmailSubscriber struct {
	Email           string
	FirstName       string
	Interests       []string
	EngagementLevel string
	EmailSentCount  int
	LastEmailSent   *time.Time
}
