package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"TickerWatch/internal/model"
)

// VsTraderFetcher implements Provider using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape of an intraday bar.
type vsBar struct {
	Timestamp     int64   `json:"timestamp"`
	Close         float64 `json:"close"`
	ExtendedHours bool    `json:"extended_hours"`
}

// vsQuote is the expected JSON shape of the quote endpoint. Volatility is optional.
type vsQuote struct {
	Name                 string  `json:"name"`
	Price                float64 `json:"price"`
	VolatilityPercentile *int    `json:"volatility_percentile"`
}

func (f *VsTraderFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	barsURL := fmt.Sprintf("%s/api/v1/bars/intraday?symbol=%s&interval=5m&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), model.MaxSeriesPoints)
	var bars []vsBar
	if err := f.getJSON(ctx, barsURL, &bars); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	series := make([]model.PricePoint, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		series = append(series, model.PricePoint{
			Time:          time.Unix(b.Timestamp, 0),
			Price:         b.Close,
			ExtendedHours: b.ExtendedHours,
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("vstrader %s: %w", symbol, ErrNoData)
	}
	// Ensure chronological order
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	series = capSeries(series)

	// The quote endpoint only enriches; a failure there leaves the series usable.
	var vq vsQuote
	quoteURL := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	_ = f.getJSON(ctx, quoteURL, &vq)

	q := &model.Quote{
		Symbol:       symbol,
		DisplayName:  displayName(symbol, vq.Name),
		CurrentPrice: currentPrice(series, vq.Price),
		Series:       series,
		FetchedAt:    time.Now(),
	}
	if vq.VolatilityPercentile != nil {
		q.VolatilityPercentile = model.ClampPercentile(*vq.VolatilityPercentile)
	} else {
		q.VolatilityPercentile = PlaceholderVolatility(q.Prices())
	}
	return q, nil
}

func (f *VsTraderFetcher) getJSON(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
