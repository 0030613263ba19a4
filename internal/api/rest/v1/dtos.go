package v1

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/service"
)

var validate = validator.New()

func validationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return fmt.Errorf("Field: %s, Tag: %s", verrs[0].Field(), verrs[0].Tag())
	}
	return err
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BookFlowRequest mirrors service.BookFlowRequest on the wire.
type BookFlowRequest struct {
	RoomType      string   `json:"roomType" validate:"required"`
	CheckInDate   string   `json:"checkInDate" validate:"required"`
	CheckOutDate  string   `json:"checkOutDate" validate:"required"`
	Location      string   `json:"location"`
	GroupSize     int      `json:"groupSize" validate:"gte=0"`
	TourBudget    float64  `json:"tourBudget" validate:"gte=0"`
	Interests     []string `json:"interests"`
	ActivityLevel string   `json:"activityLevel" validate:"omitempty,oneof=low medium high"`
}

func (r *BookFlowRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

func (r *BookFlowRequest) toService() service.BookFlowRequest {
	return service.BookFlowRequest{
		RoomType:      r.RoomType,
		CheckInDate:   r.CheckInDate,
		CheckOutDate:  r.CheckOutDate,
		Location:      r.Location,
		GroupSize:     r.GroupSize,
		TourBudget:    r.TourBudget,
		Interests:     r.Interests,
		ActivityLevel: r.ActivityLevel,
	}
}

// BookFlowResponse keeps the same shape on success and failure so clients can
// always render a package.
type BookFlowResponse struct {
	Success         bool                   `json:"success"`
	BookingID       string                 `json:"booking_id,omitempty"`
	BeatPrice       float64                `json:"beat_price"`
	SavingsPercent  float64                `json:"savings_percent"`
	CuratedPackage  service.CuratedPackage `json:"curated_package"`
	Recommendations []string               `json:"recommendations"`
	Error           string                 `json:"error,omitempty"`
}

func failedBookFlow(message string) BookFlowResponse {
	return BookFlowResponse{
		CuratedPackage:  service.EmptyPackage(),
		Recommendations: []string{},
		Error:           message,
	}
}

type MagicGenerateResponse struct {
	Success bool                `json:"success"`
	Items   []service.MagicItem `json:"items"`
	Message string              `json:"message"`
}

type MagicContentResponse struct {
	ID                 string    `json:"id"`
	ReservationID      string    `json:"reservation_id"`
	ContentType        string    `json:"content_type"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Genre              string    `json:"genre,omitempty"`
	MediaURL           string    `json:"media_url,omitempty"`
	DurationSeconds    int       `json:"duration_seconds"`
	Status             string    `json:"status"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	GenerationProvider string    `json:"generation_provider,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func newMagicContentResponse(c *domain.MagicContent) MagicContentResponse {
	return MagicContentResponse{
		ID:                 c.ID,
		ReservationID:      c.ReservationID,
		ContentType:        string(c.ContentType),
		Title:              c.Title,
		Description:        c.Description,
		Genre:              c.Genre,
		MediaURL:           c.MediaURL,
		DurationSeconds:    c.DurationSeconds,
		Status:             string(c.Status),
		ErrorMessage:       c.ErrorMessage,
		GenerationProvider: c.GenerationProvider,
		CreatedAt:          c.CreatedAt,
	}
}

type MagicListResponse struct {
	Success  bool                   `json:"success"`
	Contents []MagicContentResponse `json:"contents"`
	Count    int                    `json:"count"`
}

// AnalyzeProfileRequest optionally names another guest. Only admins may
// analyze a profile other than their own.
type AnalyzeProfileRequest struct {
	UserID string `json:"userId"`
}

type CampaignRequest struct {
	Name           string   `json:"name"`
	Objective      string   `json:"objective" validate:"omitempty,oneof=direct_bookings brand_awareness engagement email_growth"`
	TargetAudience string   `json:"targetAudience"`
	KeyMessages    []string `json:"keyMessages"`
	Platforms      []string `json:"platforms"`
}

func (r *CampaignRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

func (r *CampaignRequest) toService() service.CampaignRequest {
	return service.CampaignRequest{
		Name:           r.Name,
		Objective:      r.Objective,
		TargetAudience: r.TargetAudience,
		KeyMessages:    r.KeyMessages,
		Platforms:      r.Platforms,
	}
}

type CampaignResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Objective      string                  `json:"objective"`
	TargetAudience string                  `json:"target_audience"`
	KeyMessages    []string                `json:"key_messages"`
	Platforms      []string                `json:"platforms"`
	Status         string                  `json:"status"`
	CreatedBy      string                  `json:"created_by,omitempty"`
	ContentCount   int                     `json:"content_count"`
	Metrics        *domain.CampaignMetrics `json:"metrics,omitempty"`
	MLInsights     []string                `json:"ml_insights,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

func newCampaignResponse(c *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		Objective:      c.Objective,
		TargetAudience: c.TargetAudience,
		KeyMessages:    c.KeyMessages,
		Platforms:      c.Platforms,
		Status:         string(c.Status),
		CreatedBy:      c.CreatedBy,
		ContentCount:   len(c.GeneratedContent),
		Metrics:        c.Metrics,
		MLInsights:     c.MLInsights,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type CampaignListResponse struct {
	Success   bool               `json:"success"`
	Total     int                `json:"total"`
	Campaigns []CampaignResponse `json:"campaigns"`
}

type RunCampaignResponse struct {
	Success    bool                       `json:"success"`
	CampaignID string                     `json:"campaignId"`
	Message    string                     `json:"message"`
	Results    *service.CampaignRunResult `json:"results"`
}

type PaymentIntentRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3"`
	BookingID string  `json:"bookingId"`
	UseStripe bool    `json:"useStripe"`
}

func (r *PaymentIntentRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type AdminWhatsAppRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (r *AdminWhatsAppRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type TourBookingResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	BookingID        string    `json:"booking_id"`
	TourName         string    `json:"tour_name"`
	TourType         string    `json:"tour_type"`
	Price            float64   `json:"price"`
	AffiliateLink    string    `json:"affiliate_link,omitempty"`
	CommissionEarned float64   `json:"commission_earned"`
	Status           string    `json:"status"`
	PaymentIntent    string    `json:"payment_intent,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func newTourBookingResponse(t *domain.TourBooking) TourBookingResponse {
	return TourBookingResponse{
		ID:               t.ID,
		UserID:           t.UserID,
		BookingID:        t.BookingID,
		TourName:         t.TourName,
		TourType:         string(t.TourType),
		Price:            t.Price,
		AffiliateLink:    t.AffiliateLink,
		CommissionEarned: t.CommissionEarned,
		Status:           string(t.Status),
		PaymentIntent:    t.PaymentIntent,
		CreatedAt:        t.CreatedAt,
	}
}
