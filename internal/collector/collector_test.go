package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"TickerWatch/internal/cache"

	"github.com/rs/zerolog"
)

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{
		Price:      50,
		Points:     30,
		Volatility: 30,
		Series:     map[string][]float64{"EMPTY": {}},
		Errors:     map[string]error{"DOWN": errors.New("connection refused")},
	}
	ctx := context.Background()

	q, err := m.FetchQuote(ctx, "ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Series) != 30 || q.VolatilityPercentile != 30 {
		t.Errorf("unexpected quote %d points vol %d", len(q.Series), q.VolatilityPercentile)
	}
	if _, err := m.FetchQuote(ctx, "EMPTY"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := m.FetchQuote(ctx, "DOWN"); err == nil {
		t.Error("expected configured error")
	}
	if m.Calls("ABC") != 1 {
		t.Errorf("expected 1 call, got %d", m.Calls("ABC"))
	}
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	m := &MockFetcher{Price: 10, Points: 25}
	p := NewCachedProvider(m, cache.NewMemoryCache(), time.Minute, zerolog.Nop())

	first, err := p.FetchQuote(ctx, "XYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.FetchQuote(ctx, "XYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Calls("XYZ") != 1 {
		t.Errorf("expected upstream to be called once, got %d", m.Calls("XYZ"))
	}
	if second.CurrentPrice != first.CurrentPrice || len(second.Series) != len(first.Series) {
		t.Errorf("cached quote differs from original")
	}
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	m := &MockFetcher{Errors: map[string]error{"BAD": ErrNoData}}
	p := NewCachedProvider(m, cache.NewMemoryCache(), time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := p.FetchQuote(ctx, "BAD"); !errors.Is(err, ErrNoData) {
			t.Fatalf("expected ErrNoData, got %v", err)
		}
	}
	if m.Calls("BAD") != 2 {
		t.Errorf("expected 2 upstream calls, got %d", m.Calls("BAD"))
	}
}

func TestPlaceholderVolatility(t *testing.T) {
	if got := PlaceholderVolatility([]float64{1, 2, 3}); got != 50 {
		t.Errorf("short series: expected neutral 50, got %d", got)
	}

	// Calm then turbulent: the latest window is the most volatile.
	prices := make([]float64, 0, 80)
	p := 100.0
	for i := 0; i < 60; i++ {
		p += 0.01
		prices = append(prices, p)
	}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			p *= 1.05
		} else {
			p *= 0.95
		}
		prices = append(prices, p)
	}
	if got := PlaceholderVolatility(prices); got != 100 {
		t.Errorf("expected 100 for most volatile latest window, got %d", got)
	}

	// Turbulent then calm: the latest window is the quietest.
	calm := make([]float64, 0, 80)
	p = 100.0
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			p *= 1.05
		} else {
			p *= 0.95
		}
		calm = append(calm, p)
	}
	for i := 0; i < 40; i++ {
		p += 0.01
		calm = append(calm, p)
	}
	if got := PlaceholderVolatility(calm); got > 10 {
		t.Errorf("expected low percentile for calm latest window, got %d", got)
	}
}
