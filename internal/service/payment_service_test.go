package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/payments"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	name string
	err  error
}

func (p stubProcessor) Name() string { return p.name }

func (p stubProcessor) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &payments.Intent{ClientSecret: p.name + "_secret_" + req.BookingID, Processor: p.name}, nil
}

const testWebhookSecret = "whsec_test"

func signedWebhook(t *testing.T, payload string, now time.Time) string {
	t.Helper()
	ts := now.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, payments.ComputeSignature([]byte(payload), ts, testWebhookSecret))
}

func TestPaymentService_CreateIntent(t *testing.T) {
	repos := newResortRepos(t)
	gateway := payments.NewGateway(
		stubProcessor{name: payments.ProcessorSquare},
		stubProcessor{name: payments.ProcessorStripe},
		nil,
	)
	svc := NewPaymentService(gateway, repos.tours, nil, nil, testWebhookSecret, nil)
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, PaymentIntentRequest{Amount: 120, BookingID: "b-1"})
	require.NoError(t, err)
	assert.Equal(t, payments.ProcessorSquare, intent.Processor)

	intent, err = svc.CreateIntent(ctx, PaymentIntentRequest{Amount: 120, BookingID: "b-1", UseStripe: true})
	require.NoError(t, err)
	assert.Equal(t, payments.ProcessorStripe, intent.Processor)

	_, err = svc.CreateIntent(ctx, PaymentIntentRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPaymentService_CreateIntent_BothProcessorsFail(t *testing.T) {
	repos := newResortRepos(t)
	gateway := payments.NewGateway(
		stubProcessor{name: payments.ProcessorSquare, err: errors.New("square down")},
		stubProcessor{name: payments.ProcessorStripe, err: errors.New("stripe down")},
		nil,
	)
	svc := NewPaymentService(gateway, repos.tours, nil, nil, "", nil)

	_, err := svc.CreateIntent(context.Background(), PaymentIntentRequest{Amount: 10})
	assert.ErrorIs(t, err, payments.ErrProcessorsFailed)
}

func TestPaymentService_HandleWebhook_MarksToursPaid(t *testing.T) {
	repos := newResortRepos(t)
	ctx := context.Background()
	for _, name := range []string{"Coral Garden Snorkeling", "Mayan Ruins Deep Jungle Trek"} {
		require.NoError(t, repos.tours.Create(ctx, &domain.TourBooking{
			UserID: "u1", BookingID: "b-42", TourName: name, Price: 100, Status: domain.TourBookingPending,
		}))
	}
	now := time.Now()
	svc := NewPaymentService(nil, repos.tours, nil, nil, testWebhookSecret, nil).(*paymentService)
	svc.now = func() time.Time { return now }

	payload := `{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","amount":20000,"currency":"usd","metadata":{"booking_id":"b-42"}}}}`
	require.NoError(t, svc.HandleWebhook(ctx, []byte(payload), signedWebhook(t, payload, now)))

	rows, err := repos.tours.ListByBookingID(ctx, "b-42")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, domain.TourBookingPaid, r.Status)
		assert.Equal(t, "pi_123", r.PaymentIntent)
	}
}

func TestPaymentService_HandleWebhook_RejectsBadSignature(t *testing.T) {
	repos := newResortRepos(t)
	svc := NewPaymentService(nil, repos.tours, nil, nil, testWebhookSecret, nil)
	payload := `{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`

	err := svc.HandleWebhook(context.Background(), []byte(payload), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, payments.ErrInvalidSignature)
}

func TestPaymentService_HandleWebhook_IgnoresOtherEvents(t *testing.T) {
	repos := newResortRepos(t)
	svc := NewPaymentService(nil, repos.tours, nil, nil, "", nil)

	for _, payload := range []string{
		`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","last_payment_error":{"message":"card declined"}}}}`,
		`{"id":"evt_3","type":"charge.refunded","data":{"object":{}}}`,
		`{"id":"evt_4","type":"payment_intent.succeeded","data":{"object":{"id":"pi_4","metadata":{}}}}`,
	} {
		assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(payload), ""))
	}
}

type recordingFollowUp struct {
	guests []GuestContact
	err    error
}

func (f *recordingFollowUp) PostBookingCampaign(_ context.Context, guest GuestContact, _ time.Time) error {
	f.guests = append(f.guests, guest)
	return f.err
}

func paidWebhook(bookingID string) string {
	return `{"id":"evt_9","type":"payment_intent.succeeded","data":{"object":{"id":"pi_9","metadata":{"booking_id":"` + bookingID + `"}}}}`
}

func TestPaymentService_HandleWebhook_StartsPostBookingCampaign(t *testing.T) {
	repos := newResortRepos(t)
	ctx := context.Background()
	guest := repos.seedProfile(t, "Ana Cruz", testutil.WithEmail("ana@example.com"))
	require.NoError(t, repos.tours.Create(ctx, &domain.TourBooking{
		UserID: guest.UserID, BookingID: "b-77", TourName: "Reef Snorkel", Price: 95, Status: domain.TourBookingPending,
	}))
	followUp := &recordingFollowUp{}
	svc := NewPaymentService(nil, repos.tours, repos.profiles, followUp, "", nil)

	require.NoError(t, svc.HandleWebhook(ctx, []byte(paidWebhook("b-77")), ""))

	require.Len(t, followUp.guests, 1)
	assert.Equal(t, GuestContact{Email: "ana@example.com", Name: "Ana Cruz"}, followUp.guests[0])

	// Redelivery finds nothing pending and starts no second campaign.
	require.NoError(t, svc.HandleWebhook(ctx, []byte(paidWebhook("b-77")), ""))
	assert.Len(t, followUp.guests, 1)
}

func TestPaymentService_HandleWebhook_PostBookingFailureIsNotFatal(t *testing.T) {
	repos := newResortRepos(t)
	ctx := context.Background()
	guest := repos.seedProfile(t, "Ben")
	require.NoError(t, repos.tours.Create(ctx, &domain.TourBooking{
		UserID: guest.UserID, BookingID: "b-78", TourName: "Cave Tubing", Price: 80, Status: domain.TourBookingPending,
	}))
	followUp := &recordingFollowUp{err: errors.New("crew unavailable")}
	svc := NewPaymentService(nil, repos.tours, repos.profiles, followUp, "", nil)

	require.NoError(t, svc.HandleWebhook(ctx, []byte(paidWebhook("b-78")), ""))
	assert.Len(t, followUp.guests, 1)

	rows, err := repos.tours.ListByBookingID(ctx, "b-78")
	require.NoError(t, err)
	assert.Equal(t, domain.TourBookingPaid, rows[0].Status)
}

func TestPaymentService_HandleWebhook_NoEmailSkipsCampaign(t *testing.T) {
	repos := newResortRepos(t)
	ctx := context.Background()
	guest := repos.seedProfile(t, "Quiet Guest", testutil.WithEmail(""))
	require.NoError(t, repos.tours.Create(ctx, &domain.TourBooking{
		UserID: guest.UserID, BookingID: "b-79", TourName: "Sunset Sail", Price: 60, Status: domain.TourBookingPending,
	}))
	followUp := &recordingFollowUp{}
	svc := NewPaymentService(nil, repos.tours, repos.profiles, followUp, "", nil)

	require.NoError(t, svc.HandleWebhook(ctx, []byte(paidWebhook("b-79")), ""))
	assert.Empty(t, followUp.guests)
}
