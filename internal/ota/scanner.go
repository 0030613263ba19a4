package ota

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/linapoint/resortagents/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// RefineVariance is the jitter band applied on rescans.
const RefineVariance = 0.02

var ErrNoQuotes = errors.New("no OTA returned a quote")

// ScanResult holds every quote collected plus the cheapest one.
type ScanResult struct {
	Prices []Quote `json:"allPrices"`
	Best   Quote   `json:"best"`
}

type ScannerOptions struct {
	// CacheSize of zero takes the default; negative disables caching.
	CacheSize int
	CacheTTL  time.Duration
	// MaxConcurrency bounds in-flight source calls; zero means unbounded.
	MaxConcurrency int
	// ScanTimeout bounds a shared scan, which outlives any single caller.
	ScanTimeout time.Duration
}

const defaultScanTimeout = 30 * time.Second

// Scanner fans a query out to every source concurrently. Concurrent callers
// asking for the same stay share one scan.
//
// The cache runs a background expiry goroutine that is never stopped, so
// build one Scanner and keep it for the life of the process.
type Scanner struct {
	sources []Source
	log     logger.Logger
	opts    ScannerOptions
	cache   *expirable.LRU[string, ScanResult]
	flight  singleflight.Group
}

func NewScanner(sources []Source, log logger.Logger, opts ScannerOptions) *Scanner {
	if opts.CacheSize == 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = defaultScanTimeout
	}
	s := &Scanner{sources: sources, log: log, opts: opts}
	if opts.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, ScanResult](opts.CacheSize, nil, opts.CacheTTL)
	}
	return s
}

// Scan prices q across all sources. The first iteration uses list prices
// and is cached; later iterations rescan with jitter. Sources that fail are
// skipped; Scan only errors when none succeed. A caller whose ctx ends
// stops waiting, but the shared scan carries on for the other callers.
func (s *Scanner) Scan(ctx context.Context, q Query, iteration int) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}
	cacheable := iteration <= 1 && s.cache != nil
	if cacheable {
		if cached, ok := s.cache.Get(q.key()); ok {
			return cached, nil
		}
	}

	key := q.key() + "#" + strconv.Itoa(iteration)
	ch := s.flight.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ScanTimeout)
		defer cancel()
		return s.scan(sctx, q, iteration)
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return ScanResult{}, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return ScanResult{}, r.Err
	}
	res := r.Val.(ScanResult)
	if cacheable {
		s.cache.Add(q.key(), res)
	}
	return res, nil
}

func (s *Scanner) scan(ctx context.Context, q Query, iteration int) (ScanResult, error) {
	variance := 0.0
	if iteration > 1 {
		variance = RefineVariance
	}

	var (
		mu     sync.Mutex
		quotes = make([]Quote, 0, len(s.sources))
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}
	for _, src := range s.sources {
		g.Go(func() error {
			quote, err := src.Quote(gctx, q, variance)
			if err != nil {
				s.log.Warn("OTA quote failed", zap.String("ota", src.Name()), zap.Error(err))
				return nil
			}
			mu.Lock()
			quotes = append(quotes, quote)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}
	if len(quotes) == 0 {
		return ScanResult{}, fmt.Errorf("scanning %d sources: %w", len(s.sources), ErrNoQuotes)
	}

	// Keep catalogue order stable regardless of completion order.
	order := make(map[string]int, len(s.sources))
	for i, src := range s.sources {
		order[src.Name()] = i
	}
	slices.SortFunc(quotes, func(a, b Quote) int { return order[a.OTA] - order[b.OTA] })

	best := quotes[0]
	for _, quote := range quotes[1:] {
		if quote.Price < best.Price {
			best = quote
		}
	}
	return ScanResult{Prices: quotes, Best: best}, nil
}
