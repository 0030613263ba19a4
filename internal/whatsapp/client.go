// Package whatsapp sends WhatsApp messages through Twilio and verifies
// Twilio webhook requests.
package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linapoint/resortagents/internal/config"
)

var (
	ErrNotConfigured    = errors.New("twilio credentials not configured")
	ErrInvalidSignature = errors.New("invalid twilio signature")
)

const addressPrefix = "whatsapp:"

// Client is a minimal Twilio Messages API client.
type Client struct {
	accountSID string
	authToken  string
	from       string
	apiBase    string
	http       *http.Client
}

// NewClient builds a client from config. A nil httpClient gets a 10s timeout client.
func NewClient(cfg config.WhatsAppConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		http:       httpClient,
	}
}

// Configured reports whether credentials and a sender number are present.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.from != ""
}

type messageResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Send delivers body to the given number and returns the Twilio message SID.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	form := url.Values{}
	form.Set("From", Address(c.from))
	form.Set("To", Address(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.apiBase, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading twilio response: %w", err)
	}
	var out messageResponse
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio returned %d: %s", resp.StatusCode, errorMessage(out, raw))
	}
	if out.SID == "" {
		return "", fmt.Errorf("twilio response missing sid")
	}
	return out.SID, nil
}

func errorMessage(out messageResponse, raw []byte) string {
	if out.Message != "" {
		return out.Message
	}
	return strings.TrimSpace(string(raw))
}

// Address returns phone as a whatsapp: address.
func Address(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, addressPrefix) {
		return phone
	}
	return addressPrefix + phone
}

// NormalizePhone strips the whatsapp: prefix and formatting characters and
// ensures a leading +.
func NormalizePhone(input string) string {
	s := strings.TrimPrefix(strings.TrimSpace(input), addressPrefix)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')', '.':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s
}
