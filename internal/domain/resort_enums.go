package domain

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type TourBookingStatus string

const (
	TourBookingPending TourBookingStatus = "pending"
	TourBookingPaid    TourBookingStatus = "paid"
)

type TourCategory string

const (
	TourFishing    TourCategory = "fishing"
	TourSnorkeling TourCategory = "snorkeling"
	TourMainland   TourCategory = "mainland"
	TourDining     TourCategory = "dining"
)

// DefaultInterests are used when neither the request nor the profile names any.
var DefaultInterests = []string{string(TourSnorkeling), string(TourDining)}

type BudgetTier string

const (
	TierBudget BudgetTier = "budget"
	TierMid    BudgetTier = "mid"
	TierLuxury BudgetTier = "luxury"
)

// TierForBudget maps a tour budget in dollars to a price tier.
func TierForBudget(tourBudget float64) BudgetTier {
	switch {
	case tourBudget > 500:
		return TierLuxury
	case tourBudget > 300:
		return TierMid
	default:
		return TierBudget
	}
}

// Allows reports whether a tour at price fits the tier.
func (t BudgetTier) Allows(price float64) bool {
	switch t {
	case TierBudget:
		return price < 200
	case TierMid:
		return price >= 200 && price < 400
	default:
		return true
	}
}

type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

type ContentType string

const (
	ContentSong       ContentType = "song"
	ContentVideo      ContentType = "video"
	ContentAudioRemix ContentType = "audio_remix"
)

// ValidContentTypes is the accepted set of content type strings.
var ValidContentTypes = map[string]bool{
	"song": true, "video": true, "audio_remix": true,
}

type ContentStatus string

const (
	ContentProcessing ContentStatus = "processing"
	ContentCompleted  ContentStatus = "completed"
	ContentFailed     ContentStatus = "failed"
)

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignRunning   CampaignStatus = "running"
	CampaignCompleted CampaignStatus = "completed"
	CampaignFailed    CampaignStatus = "failed"
)

type AgentName string

const (
	AgentPriceScout        AgentName = "price_scout"
	AgentExperienceCurator AgentName = "experience_curator"
	AgentContentMagic      AgentName = "content_magic"
	AgentConcierge         AgentName = "whatsapp_concierge"
	AgentSelfImprove       AgentName = "self_improve"
	AgentMarketingCrew     AgentName = "marketing_crew"
	AgentProfileAnalysis   AgentName = "profile"
)

type AgentRunStatus string

const (
	RunStarted   AgentRunStatus = "started"
	RunCompleted AgentRunStatus = "completed"
	RunFailed    AgentRunStatus = "failed"
)
