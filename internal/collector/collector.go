package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"TickerWatch/internal/cache"
	"TickerWatch/internal/model"

	"github.com/rs/zerolog"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	Points     int
	Volatility int
	Series     map[string][]float64 // per-symbol overrides
	Errors     map[string]error     // per-symbol failures

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok && err != nil {
		return nil, err
	}
	prices, ok := m.Series[symbol]
	if !ok {
		prices = generateMockPrices(m.Price, m.Points, symbol)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	now := time.Now().Truncate(5 * time.Minute)
	series := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		series[i] = model.PricePoint{
			Time:  now.Add(-time.Duration(len(prices)-1-i) * 5 * time.Minute),
			Price: p,
		}
	}
	series = capSeries(series)
	return &model.Quote{
		Symbol:               symbol,
		DisplayName:          symbol + " (mock)",
		CurrentPrice:         currentPrice(series, m.Price),
		Series:               series,
		VolatilityPercentile: model.ClampPercentile(m.Volatility),
		FetchedAt:            time.Now(),
	}, nil
}

// Calls returns how many times symbol was fetched.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// generateMockPrices produces a gentle wave seeded by the symbol so different tickers differ.
func generateMockPrices(basePrice float64, count int, symbol string) []float64 {
	if basePrice <= 0 {
		basePrice = 100
	}
	if count <= 0 {
		count = 78
	}
	seed := 0
	for _, r := range symbol {
		seed += int(r)
	}
	drift := float64(seed%7-3) * 0.0005
	prices := make([]float64, count)
	for i := range prices {
		wave := math.Sin(float64(i+seed)/6) * 0.004
		prices[i] = basePrice * (1 + drift*float64(i) + wave)
	}
	return prices
}

// CachedProvider serves quotes from a cache for ttl before asking the wrapped provider.
type CachedProvider struct {
	next  Provider
	cache cache.Service
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedProvider wraps next with a quote cache.
func NewCachedProvider(next Provider, c cache.Service, ttl time.Duration, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   log.With().Str("component", "quote_cache").Logger(),
	}
}

func (p *CachedProvider) Name() string { return p.next.Name() + "+cache" }

func (p *CachedProvider) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	key := "quote:" + symbol
	raw, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		var q model.Quote
		if jerr := json.Unmarshal([]byte(raw), &q); jerr == nil {
			p.log.Debug().Str("symbol", symbol).Msg("quote cache hit")
			return &q, nil
		}
		p.log.Warn().Str("symbol", symbol).Msg("dropping undecodable cached quote")
		_ = p.cache.Delete(ctx, key)
	case !errors.Is(err, cache.ErrCacheMiss):
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("quote cache read failed")
	}

	q, err := p.next.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if data, jerr := json.Marshal(q); jerr == nil {
		if serr := p.cache.Set(ctx, key, string(data), p.ttl); serr != nil {
			p.log.Warn().Err(serr).Str("symbol", symbol).Msg("quote cache write failed")
		}
	}
	return q, nil
}
