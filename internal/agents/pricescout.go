// Package agents holds the resort's LLM-assisted and deterministic agent
// pipelines. Each agent is a small sequence of steps; the ones that benefit
// from it are wrapped in a bounded generate, evaluate and refine loop.
package agents

import (
	"context"
	"fmt"
	"net/url"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/ota"
	"github.com/linapoint/resortagents/internal/recursion"
)

const (
	// BeatFactor is applied to the cheapest OTA price to get the direct price.
	BeatFactor     = 0.97
	SavingsPercent = 3
	bookingBaseURL = "https://linapoint.com/book"
)

// PriceScanner quotes a stay across OTAs.
type PriceScanner interface {
	Scan(ctx context.Context, q ota.Query, iteration int) (ota.ScanResult, error)
}

type PriceScoutResult struct {
	BestPrice      float64            `json:"bestPrice"`
	BestOTA        string             `json:"bestOTA"`
	BeatPrice      float64            `json:"beatPrice"`
	SavingsPercent float64            `json:"savingsPercent"`
	Savings        float64            `json:"savings"`
	Iterations     int                `json:"iterations"`
	PriceURL       string             `json:"priceUrl"`
	AllPrices      map[string]float64 `json:"allPrices"`
}

type PriceScout struct {
	scanner PriceScanner
}

func NewPriceScout(scanner PriceScanner) *PriceScout {
	return &PriceScout{scanner: scanner}
}

type scoutState struct {
	best    ota.Quote
	prices  []ota.Quote
	lowered bool
}

// Run scans the OTAs, then rescans with jitter until the best price holds
// steady for one pass or three passes have run.
func (p *PriceScout) Run(ctx context.Context, roomType, checkIn, checkOut, location string) (*PriceScoutResult, error) {
	q := ota.Query{RoomType: roomType, CheckIn: checkIn, CheckOut: checkOut, Location: location}

	generate := func(ctx context.Context, iteration int) (scoutState, error) {
		res, err := p.scanner.Scan(ctx, q, iteration)
		if err != nil {
			return scoutState{}, err
		}
		return scoutState{best: res.Best, prices: res.Prices}, nil
	}
	evaluate := func(_ context.Context, st scoutState, iteration int) (recursion.Evaluation[scoutState], error) {
		switch {
		case iteration == 1:
			return recursion.Evaluation[scoutState]{Score: 0.5, Feedback: "first pass", Value: st}, nil
		case st.lowered:
			return recursion.Evaluation[scoutState]{Score: 0.5, Feedback: "price moved", Value: st}, nil
		default:
			return recursion.Evaluation[scoutState]{Score: 1, Feedback: "stable", Value: st}, nil
		}
	}
	refine := func(ctx context.Context, st scoutState, _ string, iteration int) (scoutState, error) {
		res, err := p.scanner.Scan(ctx, q, iteration+1)
		if err != nil {
			return st, err
		}
		next := scoutState{best: st.best, prices: res.Prices}
		if res.Best.Price < st.best.Price {
			next.best = res.Best
			next.lowered = true
		}
		return next, nil
	}

	out, err := recursion.Run(ctx, generate, evaluate, refine, recursion.Options{MaxIterations: 3, MinScore: recursion.Threshold(1)})
	if err != nil {
		return nil, fmt.Errorf("price scout: %w", err)
	}

	best := out.Value.best
	beat := domain.Round2(best.Price * BeatFactor)
	all := make(map[string]float64, len(out.Value.prices))
	for _, quote := range out.Value.prices {
		all[quote.OTA] = quote.Price
	}
	return &PriceScoutResult{
		BestPrice:      best.Price,
		BestOTA:        best.OTA,
		BeatPrice:      beat,
		SavingsPercent: SavingsPercent,
		Savings:        domain.Round2(best.Price - beat),
		Iterations:     out.Iterations,
		PriceURL:       BookingURL(checkIn, checkOut, roomType),
		AllPrices:      all,
	}, nil
}

// BookingURL links to the direct booking page for a stay.
func BookingURL(checkIn, checkOut, roomType string) string {
	v := url.Values{}
	v.Set("check_in", checkIn)
	v.Set("check_out", checkOut)
	v.Set("guests", "2")
	v.Set("room_type", roomType)
	return bookingBaseURL + "?" + v.Encode()
}
