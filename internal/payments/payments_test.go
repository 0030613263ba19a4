package payments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSquare(appID, token string) *Square {
	s := NewSquare(appID, token)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func stripeServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		if seen != nil {
			*seen, _ = url.ParseQuery(string(raw))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGateway_SquareFirst(t *testing.T) {
	g := NewGateway(fixedSquare("app", "tok"), NewStripe("", "", nil), nil)

	intent, err := g.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 120, BookingID: "tb-1"}, false)
	require.NoError(t, err)
	assert.Equal(t, ProcessorSquare, intent.Processor)
	assert.Equal(t, "tb-1-1700000000123", intent.IdempotencyKey)
	assert.Equal(t, "sq_mock_tb-1-1700000000123", intent.ClientSecret)
}

func TestGateway_SquareDefaultBookingKey(t *testing.T) {
	g := NewGateway(fixedSquare("app", "tok"), nil, nil)

	intent, err := g.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 10}, false)
	require.NoError(t, err)
	assert.Equal(t, "booking-1700000000123", intent.IdempotencyKey)
}

func TestGateway_FallsBackToStripe(t *testing.T) {
	var form url.Values
	srv := stripeServer(t, http.StatusOK, `{"id":"pi_1","client_secret":"pi_1_secret"}`, &form)
	g := NewGateway(fixedSquare("", ""), NewStripe("sk_test", srv.URL, srv.Client()), nil)

	intent, err := g.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 99.99, Currency: "usd", BookingID: "tb-9"}, false)
	require.NoError(t, err)
	assert.Equal(t, ProcessorStripe, intent.Processor)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "9999", form.Get("amount"))
	assert.Equal(t, "usd", form.Get("currency"))
	assert.Equal(t, "tb-9", form.Get("metadata[booking_id]"))
	assert.Equal(t, "stripe", form.Get("metadata[processor]"))
}

func TestGateway_UseStripeSkipsSquare(t *testing.T) {
	srv := stripeServer(t, http.StatusOK, `{"id":"pi_2","client_secret":"cs_2"}`, nil)
	g := NewGateway(fixedSquare("app", "tok"), NewStripe("sk_test", srv.URL, srv.Client()), nil)

	intent, err := g.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 5}, true)
	require.NoError(t, err)
	assert.Equal(t, ProcessorStripe, intent.Processor)
}

func TestGateway_BothFail(t *testing.T) {
	srv := stripeServer(t, http.StatusPaymentRequired, `{"error":{"message":"card declined"}}`, nil)
	g := NewGateway(fixedSquare("", ""), NewStripe("sk_test", srv.URL, srv.Client()), nil)

	_, err := g.CreatePaymentIntent(context.Background(), IntentRequest{Amount: 5}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProcessorsFailed))
	assert.Contains(t, err.Error(), "card declined")
}

func TestGateway_RejectsNonPositiveAmount(t *testing.T) {
	g := NewGateway(fixedSquare("app", "tok"), nil, nil)
	for _, amount := range []float64{0, -3} {
		_, err := g.CreatePaymentIntent(context.Background(), IntentRequest{Amount: amount}, false)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestStripe_NotConfigured(t *testing.T) {
	_, err := NewStripe("", "", nil).CreateIntent(context.Background(), IntentRequest{Amount: 1})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
