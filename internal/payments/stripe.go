package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Stripe creates PaymentIntents through the Stripe REST API.
type Stripe struct {
	secret  string
	apiBase string
	http    *http.Client
}

func NewStripe(secret, apiBase string, httpClient *http.Client) *Stripe {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if apiBase == "" {
		apiBase = "https://api.stripe.com"
	}
	return &Stripe{secret: secret, apiBase: strings.TrimRight(apiBase, "/"), http: httpClient}
}

func (s *Stripe) Name() string { return ProcessorStripe }

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Stripe) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if s.secret == "" {
		return nil, fmt.Errorf("stripe: %w", ErrNotConfigured)
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(math.Round(req.Amount*100)), 10))
	form.Set("currency", req.Currency)
	form.Set("metadata[processor]", ProcessorStripe)
	if req.BookingID != "" {
		form.Set("metadata[booking_id]", req.BookingID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("stripe: building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.secret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("stripe: reading response: %w", err)
	}
	var out stripeIntentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("stripe: decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("stripe: %s", msg)
	}
	return &Intent{ClientSecret: out.ClientSecret, Processor: ProcessorStripe}, nil
}
