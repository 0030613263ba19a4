package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/app"
	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/ota"
	"github.com/linapoint/resortagents/internal/repository"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

type nopSender struct{}

func (nopSender) Send(context.Context, string, string) (string, error) { return "SM-cli", nil }

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// testRuntime builds a Runtime with a preset config and no real network.
func testRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := &Runtime{
		Config: &config.Config{
			Server:   config.ServerConfig{Port: "0"},
			Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "cli.db")},
			Logger:   config.LoggerSettings{LogLevel: config.LogLevelInfo, LogType: config.LogTypeConsole},
			LLM:      config.LLMSettings{Provider: "grok"},
			Agents:   config.AgentsConfig{MaxIterations: 2, MinScore: 0.8, ScanCacheSize: -1},
		},
		Log: logger.NewNop(),
		AppOptions: app.Options{
			LLM:     testutil.NewFailingLLM(),
			Sender:  nopSender{},
			Sources: []ota.Source{ota.NewMockSource("airbnb", 400, "https://airbnb.example/lina")},
		},
		Now: func() time.Time { return fixedNow },
	}
	t.Cleanup(func() { rt.Close() })
	return rt
}

func executeCmd(t *testing.T, rt *Runtime, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(rt)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansiPattern.ReplaceAllString(buf.String(), ""), err
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	root := NewRootCmd(&Runtime{})
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "cron", "scout", "curate", "magic", "campaigns", "improve"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_DBFlagOverridesConfig(t *testing.T) {
	rt := testRuntime(t)
	override := filepath.Join(t.TempDir(), "override.db")

	out, err := executeCmd(t, rt, "--db", override, "migrate")
	require.NoError(t, err)
	assert.Equal(t, override, rt.Config.Database.Path)
	assert.Contains(t, out, override)
	assert.Contains(t, out, "schema version")
}

func TestRootCmd_RejectsBadLogLevel(t *testing.T) {
	rt := testRuntime(t)
	_, err := executeCmd(t, rt, "--log_level", "loud", "migrate")
	require.Error(t, err)
	assert.Nil(t, rt.App)
}

func TestScoutCmd(t *testing.T) {
	rt := testRuntime(t)

	out, err := executeCmd(t, rt, "scout", "--check-in", "2026-07-01")
	require.NoError(t, err)
	assert.Contains(t, out, "airbnb ★")
	assert.Contains(t, out, "Book direct:")
}

func TestScoutCmd_BadCheckIn(t *testing.T) {
	rt := testRuntime(t)
	_, err := executeCmd(t, rt, "scout", "--check-in", "July 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestCurateCmd(t *testing.T) {
	rt := testRuntime(t)

	out, err := executeCmd(t, rt, "curate", "--budget", "300", "--interests", "snorkeling,dining")
	require.NoError(t, err)
	assert.Contains(t, out, "CURATED EXPERIENCE")
	assert.Contains(t, out, "Total:")
	assert.Contains(t, out, "Per guest (2):")

	_, err = executeCmd(t, rt, "curate", "--budget", "-5")
	assert.Error(t, err)

	_, err = executeCmd(t, rt, "curate", "--group", "0")
	assert.Error(t, err)
}

func TestMagicCmd_FallsBackWithoutModel(t *testing.T) {
	rt := testRuntime(t)

	out, err := executeCmd(t, rt, "magic", "--recipient", "Ana", "--occasion", "anniversary", "--memories", "first dive, sunset")
	require.NoError(t, err)
	assert.Contains(t, out, "Anniversary song for Ana")
	assert.Contains(t, out, "LYRICS")
}

func TestMagicCmd_UnknownType(t *testing.T) {
	rt := testRuntime(t)
	_, err := executeCmd(t, rt, "magic", "--recipient", "Ana", "--type", "poem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poem")
}

func TestCronEventsCmd(t *testing.T) {
	rt := testRuntime(t)
	_, err := executeCmd(t, rt, "migrate")
	require.NoError(t, err)

	guest := testutil.NewTestProfile("Ana", testutil.WithBirthday(fixedNow.Format("2006-01-02")))
	require.NoError(t, repository.NewSQLiteProfileRepo(rt.App.DB).Create(context.Background(), guest))

	out, err := executeCmd(t, rt, "cron", "events")
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.OccasionBirthday))
}

func TestCronReEngagementCmd(t *testing.T) {
	rt := testRuntime(t)
	_, err := executeCmd(t, rt, "migrate")
	require.NoError(t, err)

	ctx := context.Background()
	guest := testutil.NewTestProfile("Lena", testutil.WithEmail("lena@example.com"))
	require.NoError(t, repository.NewSQLiteProfileRepo(rt.App.DB).Create(ctx, guest))
	stay := testutil.NewTestReservation(guest.UserID, testutil.WithCheckIn(fixedNow.AddDate(-1, 0, 0), 4))
	require.NoError(t, repository.NewSQLiteReservationRepo(rt.App.DB).Create(ctx, stay))

	out, err := executeCmd(t, rt, "cron", "re-engagement")
	require.NoError(t, err)
	assert.Contains(t, out, "RE-ENGAGEMENT")
	assert.Contains(t, out, "Lapsed guests: 1")
}

func TestCronWhatsAppCmd_NoReservations(t *testing.T) {
	rt := testRuntime(t)
	out, err := executeCmd(t, rt, "cron", "whatsapp")
	require.NoError(t, err)
	assert.Contains(t, out, "Upcoming reminders: 0")
}

func TestCampaignsCmd_Empty(t *testing.T) {
	rt := testRuntime(t)
	out, err := executeCmd(t, rt, "campaigns")
	require.NoError(t, err)
	assert.Contains(t, out, "No campaigns yet.")
}

func TestImproveCmd(t *testing.T) {
	rt := testRuntime(t)
	out, err := executeCmd(t, rt, "improve")
	require.NoError(t, err)
	assert.Contains(t, out, "SELF-IMPROVEMENT")
	assert.Contains(t, out, "Booking patterns")
}

func TestRunServer_ShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
		ReadHeaderTimeout: time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv, time.Second, logger.NewNop()) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	defer client.CloseIdleConnections()
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunServer_ReportsListenError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), ReadHeaderTimeout: time.Second}
	err = runServer(context.Background(), srv, time.Second, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed to start")
}
