package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	v1 "github.com/linapoint/resortagents/internal/api/rest/v1"
	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/ota"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *capturingSender) Send(_ context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+": "+body)
	return "SM-test", nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", AdminEmails: []string{"ops@linapoint.com"}},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "app.db")},
		LLM:      config.LLMSettings{Provider: "grok"},
		Secrets:  config.SecretsConfig{CronSecret: "cron"},
		Agents:   config.AgentsConfig{MaxIterations: 2, MinScore: 0.8, ScanCacheSize: -1},
	}
}

func newTestApp(t *testing.T) (*App, *capturingSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sender := &capturingSender{}
	a, err := New(context.Background(), testConfig(t), logger.NewNop(), Options{
		LLM:     testutil.NewFailingLLM(),
		Sender:  sender,
		Sources: []ota.Source{ota.NewMockSource("airbnb", 400, "https://airbnb.example/lina")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, sender
}

func TestNew_DisabledLLMBuildsDeterministicApp(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, nil, Options{Sources: []ota.Source{ota.NewMockSource("agoda", 455, "https://agoda.example")}})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Booking)
	assert.NotNil(t, a.Payments)
	assert.Equal(t, cfg, a.Config)
}

func TestNew_BadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Path = filepath.Join("/dev/null", "nested", "app.db")
	_, err := New(context.Background(), cfg, nil, Options{})
	assert.Error(t, err)
}

func TestApp_ServesBookFlowEndToEnd(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	guest := testutil.NewTestProfile("Mara Reyes", testutil.WithAccessToken("tok-mara"), testutil.WithInterests("snorkeling"))
	require.NoError(t, repository.NewSQLiteProfileRepo(a.DB).Create(ctx, guest))

	router := v1.NewRouter(a.Config.Server, a.APIServices(), v1.OptionsFromConfig(a.Config), a.Log)

	body := `{"roomType":"Overwater Suite","checkInDate":"2026-12-01","checkOutDate":"2026-12-05","groupSize":2,"tourBudget":350}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/book-flow", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok-mara")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, true, out["success"])
	assert.NotEmpty(t, out["booking_id"])
	assert.Greater(t, out["beat_price"].(float64), 0.0)

	tours, err := a.Booking.DebugTourBookings(ctx, out["booking_id"].(string))
	require.NoError(t, err)
	assert.NotEmpty(t, tours)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/magic", nil)
	req.Header.Set("Authorization", "Bearer tok-mara")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"contents":[],"count":0}`, w.Body.String())
}

func TestApp_AdminEmailsGrantAdmin(t *testing.T) {
	a, sender := newTestApp(t)
	ctx := context.Background()

	staff := testutil.NewTestProfile("Ops", testutil.WithEmail("OPS@linapoint.com"), testutil.WithAccessToken("tok-ops"))
	require.NoError(t, repository.NewSQLiteProfileRepo(a.DB).Create(ctx, staff))

	router := v1.NewRouter(a.Config.Server, a.APIServices(), v1.OptionsFromConfig(a.Config), a.Log)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/whatsapp", strings.NewReader(`{"phone":"+501 555 0100","message":"Boat at 9"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok-ops")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Boat at 9")
}
