package v1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBookFlowRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		request   BookFlowRequest
		shouldErr bool
	}{
		{"Valid minimal", BookFlowRequest{RoomType: "suite", CheckInDate: "2026-12-01", CheckOutDate: "2026-12-04"}, false},
		{"Valid activity level", BookFlowRequest{RoomType: "suite", CheckInDate: "2026-12-01", CheckOutDate: "2026-12-04", ActivityLevel: "high"}, false},
		{"Missing check-out", BookFlowRequest{RoomType: "suite", CheckInDate: "2026-12-01"}, true},
		{"Negative group", BookFlowRequest{RoomType: "suite", CheckInDate: "2026-12-01", CheckOutDate: "2026-12-04", GroupSize: -1}, true},
		{"Unknown activity level", BookFlowRequest{RoomType: "suite", CheckInDate: "2026-12-01", CheckOutDate: "2026-12-04", ActivityLevel: "intense"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.shouldErr {
				require.Error(t, err, "expected validation error")
			} else {
				require.NoError(t, err, "expected no validation error")
			}
		})
	}
}

func TestCampaignRequest_Validate(t *testing.T) {
	require.NoError(t, (&CampaignRequest{}).Validate())
	require.NoError(t, (&CampaignRequest{Objective: "email_growth"}).Validate())
	require.Error(t, (&CampaignRequest{Objective: "virality"}).Validate())
}

func TestPaymentIntentRequest_Validate(t *testing.T) {
	require.NoError(t, (&PaymentIntentRequest{Amount: 10}).Validate())
	require.NoError(t, (&PaymentIntentRequest{Amount: 10, Currency: "usd"}).Validate())
	require.Error(t, (&PaymentIntentRequest{Amount: 10, Currency: "dollars"}).Validate())
	require.Error(t, (&PaymentIntentRequest{}).Validate())
}

func TestAdminWhatsAppRequest_Validate(t *testing.T) {
	require.NoError(t, (&AdminWhatsAppRequest{Phone: "+501", Message: "hi"}).Validate())
	require.Error(t, (&AdminWhatsAppRequest{Phone: "+501"}).Validate())
}
