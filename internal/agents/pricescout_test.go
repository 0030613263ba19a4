package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/ota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedScanner returns one best price per iteration.
type scriptedScanner struct {
	best  []float64
	calls []int
	err   error
}

func (s *scriptedScanner) Scan(_ context.Context, _ ota.Query, iteration int) (ota.ScanResult, error) {
	s.calls = append(s.calls, iteration)
	if s.err != nil {
		return ota.ScanResult{}, s.err
	}
	price := s.best[min(iteration, len(s.best))-1]
	q := ota.Quote{OTA: "airbnb", Price: price, URL: "https://www.airbnb.com/rooms/lina-point"}
	return ota.ScanResult{Prices: []ota.Quote{q, {OTA: "expedia", Price: 450}}, Best: q}, nil
}

func TestPriceScout_CatalogueBeatsCheapestByThreePercent(t *testing.T) {
	scanner := ota.NewScanner(ota.Catalogue(), logger.NewNop(), ota.ScannerOptions{CacheSize: -1})
	res, err := NewPriceScout(scanner).Run(context.Background(), "Overwater Suite", "2026-12-01", "2026-12-05", "Belize")
	require.NoError(t, err)

	assert.LessOrEqual(t, res.BestPrice, 425.0)
	assert.InDelta(t, res.BestPrice*0.97, res.BeatPrice, 0.006)
	assert.InDelta(t, res.BestPrice-res.BeatPrice, res.Savings, 0.006)
	assert.Equal(t, 3.0, res.SavingsPercent)
	assert.GreaterOrEqual(t, res.Iterations, 2)
	assert.LessOrEqual(t, res.Iterations, 3)
	assert.Len(t, res.AllPrices, 7)
	assert.Equal(t,
		"https://linapoint.com/book?check_in=2026-12-01&check_out=2026-12-05&guests=2&room_type=Overwater+Suite",
		res.PriceURL)
}

func TestPriceScout_StopsWhenPriceHolds(t *testing.T) {
	scanner := &scriptedScanner{best: []float64{425, 426}}
	res, err := NewPriceScout(scanner).Run(context.Background(), "suite", "a", "b", "")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, []int{1, 2}, scanner.calls)
	assert.InDelta(t, 425.0, res.BestPrice, 1e-9, "keeps the lowest price seen")
	assert.InDelta(t, 412.25, res.BeatPrice, 1e-9)
	assert.InDelta(t, 12.75, res.Savings, 1e-9)
}

func TestPriceScout_KeepsRefiningWhilePriceDrops(t *testing.T) {
	scanner := &scriptedScanner{best: []float64{425, 420, 418}}
	res, err := NewPriceScout(scanner).Run(context.Background(), "suite", "a", "b", "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.InDelta(t, 418.0, res.BestPrice, 1e-9)
}

func TestPriceScout_ScanError(t *testing.T) {
	scanner := &scriptedScanner{err: ota.ErrNoQuotes}
	_, err := NewPriceScout(scanner).Run(context.Background(), "suite", "a", "b", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ota.ErrNoQuotes))
}
