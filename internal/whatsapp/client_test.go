package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linapoint/resortagents/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(base string) config.WhatsAppConfig {
	return config.WhatsAppConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+14155238886",
		APIBase:    base,
	}
}

func TestSend_PostsFormWithBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+14155238886", r.PostForm.Get("From"))
		assert.Equal(t, "whatsapp:+5016001234", r.PostForm.Get("To"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	}))
	defer srv.Close()

	sid, err := NewClient(testConfig(srv.URL), srv.Client()).Send(context.Background(), "+5016001234", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM42", sid)
}

func TestSend_TwilioError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), srv.Client()).Send(context.Background(), "bad", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio returned 400")
	assert.Contains(t, err.Error(), "not a valid phone number")
}

func TestSend_NotConfigured(t *testing.T) {
	c := NewClient(config.WhatsAppConfig{FromNumber: "+1"}, nil)
	assert.False(t, c.Configured())
	_, err := c.Send(context.Background(), "+1", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"whatsapp:+501 600-1234": "+5016001234",
		"(501) 600 1234":         "+5016001234",
		"+15551234567":           "+15551234567",
		"  ":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+1555", Address("+1555"))
	assert.Equal(t, "whatsapp:+1555", Address("whatsapp:+1555"))
}
