package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/payments"
	"github.com/linapoint/resortagents/internal/repository"
	"go.uber.org/zap"
)

type PaymentIntentRequest struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	BookingID string  `json:"bookingId"`
	UseStripe bool    `json:"useStripe"`
}

// IntentCreator creates payment intents with processor fallback.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, req payments.IntentRequest, useStripe bool) (*payments.Intent, error)
}

// PostBookingFollowUp starts guest marketing once a booking is paid.
type PostBookingFollowUp interface {
	PostBookingCampaign(ctx context.Context, guest GuestContact, now time.Time) error
}

type paymentService struct {
	gateway       IntentCreator
	tours         repository.TourBookingRepo
	profiles      repository.ProfileRepo
	followUp      PostBookingFollowUp
	webhookSecret string
	log           logger.Logger
	observer      UseCaseObserver
	now           func() time.Time
}

// NewPaymentService builds the payment use cases. followUp may be nil, in
// which case paid bookings trigger no campaign.
func NewPaymentService(
	gateway IntentCreator,
	tours repository.TourBookingRepo,
	profiles repository.ProfileRepo,
	followUp PostBookingFollowUp,
	webhookSecret string,
	log logger.Logger,
	observers ...UseCaseObserver,
) PaymentService {
	if log == nil {
		log = logger.NewNop()
	}
	return &paymentService{
		gateway:       gateway,
		tours:         tours,
		profiles:      profiles,
		followUp:      followUp,
		webhookSecret: webhookSecret,
		log:           log,
		observer:      combineObservers(observers),
		now:           time.Now,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, req PaymentIntentRequest) (intent *payments.Intent, err error) {
	fields := map[string]any{"booking_id": req.BookingID}
	defer observe(ctx, s.observer, "create-payment-intent", time.Now(), &err, fields)

	intent, err = s.gateway.CreatePaymentIntent(ctx, payments.IntentRequest{
		Amount:    req.Amount,
		Currency:  req.Currency,
		BookingID: req.BookingID,
	}, req.UseStripe)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidAmount) {
			return nil, invalidf("Invalid amount")
		}
		return nil, err
	}
	fields["processor"] = intent.Processor
	return intent, nil
}

// HandleWebhook applies a processor event. Succeeded intents mark the
// booking's tours paid and, on first delivery, start the guest's
// post-booking campaign. Failures are logged.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "payment-webhook", time.Now(), &err, fields)

	event, err := payments.ParseEvent(payload, signature, s.webhookSecret, s.now())
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return err
		}
		return invalidf("%v", err)
	}
	fields["event_type"] = event.Type

	switch event.Type {
	case payments.EventPaymentSucceeded:
		pi, err := event.PaymentIntent()
		if err != nil {
			return invalidf("%v", err)
		}
		bookingID := pi.Metadata["booking_id"]
		if bookingID == "" {
			s.log.Warn("payment succeeded without booking id", zap.String("payment_intent", pi.ID))
			return nil
		}
		n, err := s.tours.MarkPaid(ctx, bookingID, pi.ID)
		if err != nil {
			return fmt.Errorf("marking booking %s paid: %w", bookingID, err)
		}
		fields["tours_paid"] = n
		s.log.Info("payment succeeded",
			zap.String("booking_id", bookingID),
			zap.String("payment_intent", pi.ID),
			zap.Int64("tours_paid", n))
		if n > 0 {
			fields["post_booking_campaign"] = s.startPostBooking(ctx, bookingID)
		}
	case payments.EventPaymentFailed:
		pi, err := event.PaymentIntent()
		if err != nil {
			return invalidf("%v", err)
		}
		reason := ""
		if pi.LastPaymentError != nil {
			reason = pi.LastPaymentError.Message
		}
		s.log.Warn("payment failed",
			zap.String("payment_intent", pi.ID),
			zap.String("booking_id", pi.Metadata["booking_id"]),
			zap.String("reason", reason))
	default:
		s.log.Debug("ignoring payment event", zap.String("type", event.Type))
	}
	return nil
}

// startPostBooking runs the post-booking campaign for the guest behind
// bookingID. Failures are logged and never fail the webhook, since the
// processor would redeliver an event that has already been applied.
func (s *paymentService) startPostBooking(ctx context.Context, bookingID string) bool {
	if s.followUp == nil || s.profiles == nil {
		return false
	}
	log := s.log.With(zap.String("booking_id", bookingID))

	rows, err := s.tours.ListByBookingID(ctx, bookingID)
	if err != nil || len(rows) == 0 {
		log.Warn("post-booking campaign skipped, booking has no tours", zap.Error(err))
		return false
	}
	guest, err := s.profiles.GetByUserID(ctx, rows[0].UserID)
	if err != nil {
		log.Warn("post-booking campaign skipped, guest profile missing", zap.Error(err))
		return false
	}
	if guest.Email == "" {
		log.Info("post-booking campaign skipped, guest has no email")
		return false
	}
	if err := s.followUp.PostBookingCampaign(ctx, GuestContact{Email: guest.Email, Name: guest.FullName}, s.now()); err != nil {
		log.Warn("post-booking campaign failed", zap.Error(err))
		return false
	}
	return true
}
