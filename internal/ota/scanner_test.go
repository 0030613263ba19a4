package ota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// The expirable LRU starts an expiry goroutine with no way to stop it.
var ignoreCacheJanitor = goleak.IgnoreTopFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, ignoreCacheJanitor)
}

type countingSource struct {
	name  string
	price float64
	err   error
	calls atomic.Int32
}

func (c *countingSource) Name() string { return c.name }

func (c *countingSource) Quote(_ context.Context, _ Query, _ float64) (Quote, error) {
	c.calls.Add(1)
	if c.err != nil {
		return Quote{}, c.err
	}
	return Quote{OTA: c.name, Price: c.price}, nil
}

var query = Query{RoomType: "Overwater Suite", CheckIn: "2026-12-01", CheckOut: "2026-12-05"}

func noCache() ScannerOptions { return ScannerOptions{CacheSize: -1} }

func TestScan_ListPricesPicksCheapest(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCacheJanitor)

	s := NewScanner(Catalogue(), logger.NewNop(), noCache())
	res, err := s.Scan(context.Background(), query, 1)
	require.NoError(t, err)

	require.Len(t, res.Prices, 7)
	assert.Equal(t, "expedia", res.Prices[0].OTA)
	assert.Equal(t, "booking_last", res.Prices[6].OTA)
	assert.Equal(t, "airbnb", res.Best.OTA)
	assert.InDelta(t, 425.0, res.Best.Price, 1e-9)
	assert.Equal(t, "https://www.airbnb.com/rooms/lina-point", res.Best.URL)
}

func TestScan_JitterOnLaterIterations(t *testing.T) {
	src := NewMockSource("airbnb", 425, "u")
	src.Rand = func() float64 { return 0 }
	s := NewScanner([]Source{src}, logger.NewNop(), noCache())

	res, err := s.Scan(context.Background(), query, 2)
	require.NoError(t, err)
	// 425 * (1 + (0-0.5)*0.02)
	assert.InDelta(t, 420.75, res.Best.Price, 1e-9)
}

func TestScan_SkipsFailingSources(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCacheJanitor)

	ok := &countingSource{name: "ok", price: 300}
	bad := &countingSource{name: "bad", err: errors.New("503")}
	s := NewScanner([]Source{bad, ok}, logger.NewNop(), noCache())

	res, err := s.Scan(context.Background(), query, 1)
	require.NoError(t, err)
	assert.Len(t, res.Prices, 1)
	assert.Equal(t, "ok", res.Best.OTA)
}

func TestScan_AllSourcesFail(t *testing.T) {
	bad := &countingSource{name: "bad", err: errors.New("down")}
	s := NewScanner([]Source{bad}, logger.NewNop(), noCache())

	_, err := s.Scan(context.Background(), query, 1)
	assert.ErrorIs(t, err, ErrNoQuotes)
}

func TestScan_CachesFirstIterationOnly(t *testing.T) {
	src := &countingSource{name: "ok", price: 300}
	s := NewScanner([]Source{src}, logger.NewNop(), ScannerOptions{})

	for range 3 {
		_, err := s.Scan(context.Background(), query, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())

	_, err := s.Scan(context.Background(), query, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	other := query
	other.RoomType = "Beachfront Villa"
	_, err = s.Scan(context.Background(), other, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestScan_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCacheJanitor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScanner(Catalogue(), logger.NewNop(), noCache())
	_, err := s.Scan(ctx, query, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// gatedSource blocks every quote until release is closed.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) Name() string { return "gated" }

func (g *gatedSource) Quote(ctx context.Context, _ Query, _ float64) (Quote, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return Quote{OTA: "gated", Price: 410}, nil
	case <-ctx.Done():
		return Quote{}, ctx.Err()
	}
}

func TestScan_CancelledCallerDoesNotFailSharedScan(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCacheJanitor)

	src := newGatedSource()
	s := NewScanner([]Source{src}, logger.NewNop(), noCache())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.Scan(ctxA, query, 1)
		errA <- err
	}()
	<-src.started

	type outcome struct {
		res ScanResult
		err error
	}
	resB := make(chan outcome, 1)
	go func() {
		res, err := s.Scan(context.Background(), query, 1)
		resB <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting on the shared scan")
	}

	close(src.release)
	select {
	case out := <-resB:
		require.NoError(t, out.err)
		assert.Equal(t, "gated", out.res.Best.OTA)
	case <-time.After(2 * time.Second):
		t.Fatal("live caller never got the shared scan result")
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestScan_SharedScanHonoursTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCacheJanitor)

	src := newGatedSource()
	s := NewScanner([]Source{src}, logger.NewNop(), ScannerOptions{CacheSize: -1, ScanTimeout: 50 * time.Millisecond})

	_, err := s.Scan(context.Background(), query, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAffiliateCommission(t *testing.T) {
	assert.Equal(t, 5.0, AffiliateCommission("expedia"))
	assert.Equal(t, 3.0, AffiliateCommission("hotels"))
	assert.Zero(t, AffiliateCommission("airbnb"))
}
