package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const succeededPayload = `{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_7","amount":12000,"currency":"usd","metadata":{"booking_id":"tb-7"}}}}`

func signedHeader(payload []byte, ts time.Time, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), ComputeSignature(payload, ts.Unix(), secret))
}

func TestParseEvent_VerifiedSucceeded(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(succeededPayload)

	ev, err := ParseEvent(payload, signedHeader(payload, now, "whsec"), "whsec", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, ev.Type)

	pi, err := ev.PaymentIntent()
	require.NoError(t, err)
	assert.Equal(t, "pi_7", pi.ID)
	assert.Equal(t, "tb-7", pi.Metadata["booking_id"])
}

func TestParseEvent_NoSecretSkipsVerification(t *testing.T) {
	ev, err := ParseEvent([]byte(succeededPayload), "", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
}

func TestVerifySignature_Rejections(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(succeededPayload)

	tests := []struct {
		name   string
		header string
		at     time.Time
	}{
		{"wrong secret", signedHeader(payload, now, "other"), now},
		{"stale", signedHeader(payload, now, "whsec"), now.Add(6 * time.Minute)},
		{"missing v1", fmt.Sprintf("t=%d", now.Unix()), now},
		{"garbage", "nonsense", now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, VerifySignature(payload, tt.header, "whsec", tt.at), ErrInvalidSignature)
		})
	}
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)
	header := signedHeader([]byte(succeededPayload), now, "whsec")
	_, err := ParseEvent([]byte(`{"id":"evt_x","type":"payment_intent.succeeded"}`), header, "whsec", now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
