// Package payments creates payment intents with Square as the primary
// processor and Stripe as the fallback, and verifies Stripe webhooks.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/logger"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrProcessorsFailed = errors.New("both payment processors failed")
	ErrInvalidSignature = errors.New("invalid stripe signature")
	ErrNotConfigured    = errors.New("processor not configured")
)

const (
	ProcessorSquare = "square"
	ProcessorStripe = "stripe"
)

type IntentRequest struct {
	Amount    float64
	Currency  string
	BookingID string
}

// Intent is what the client needs to confirm a payment.
type Intent struct {
	ClientSecret   string `json:"client_secret"`
	Processor      string `json:"processor"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type Processor interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// Gateway tries the primary processor, then the fallback.
type Gateway struct {
	primary  Processor
	fallback Processor
	log      logger.Logger
}

func NewGateway(primary, fallback Processor, log logger.Logger) *Gateway {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gateway{primary: primary, fallback: fallback, log: log}
}

// NewGatewayFromConfig wires the Square mock and the Stripe HTTP client.
func NewGatewayFromConfig(cfg config.PaymentsConfig, httpClient *http.Client, log logger.Logger) *Gateway {
	return NewGateway(
		NewSquare(cfg.SquareApplicationID, cfg.SquareAccessToken),
		NewStripe(cfg.StripeSecretKey, cfg.StripeAPIBase, httpClient),
		log,
	)
}

// CreatePaymentIntent validates the amount and creates an intent. useStripe
// skips the primary processor.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, req IntentRequest, useStripe bool) (*Intent, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	if !useStripe && g.primary != nil {
		intent, err := g.primary.CreateIntent(ctx, req)
		if err == nil {
			return intent, nil
		}
		g.log.Warn("primary payment processor failed, falling back",
			zap.String("processor", g.primary.Name()), zap.Error(err))
	}

	if g.fallback == nil {
		return nil, fmt.Errorf("%w: no fallback processor", ErrProcessorsFailed)
	}
	intent, err := g.fallback.CreateIntent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessorsFailed, err)
	}
	return intent, nil
}

// Square is a placeholder for the Square Payments API: with credentials it
// issues a mock client secret keyed by an idempotency key.
type Square struct {
	appID string
	token string
	now   func() time.Time
}

func NewSquare(appID, token string) *Square {
	return &Square{appID: appID, token: token, now: time.Now}
}

func (s *Square) Name() string { return ProcessorSquare }

func (s *Square) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.appID == "" || s.token == "" {
		return nil, fmt.Errorf("square: %w", ErrNotConfigured)
	}
	booking := req.BookingID
	if booking == "" {
		booking = "booking"
	}
	key := fmt.Sprintf("%s-%d", booking, s.now().UnixMilli())
	return &Intent{
		ClientSecret:   "sq_mock_" + key,
		Processor:      ProcessorSquare,
		IdempotencyKey: key,
	}, nil
}
