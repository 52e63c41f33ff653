package model

import "time"

// MaxSeriesPoints caps how many recent points a Quote carries.
const MaxSeriesPoints = 500

// PricePoint is a single observation in an intraday price series.
type PricePoint struct {
	Time          time.Time `json:"time"`
	Price         float64   `json:"price"`
	ExtendedHours bool      `json:"extended_hours"`
}

// Quote is the result of one fetch for a symbol. It is replaced wholesale on refresh.
type Quote struct {
	Symbol               string       `json:"symbol"`
	DisplayName          string       `json:"display_name"`
	CurrentPrice         float64      `json:"current_price"`
	Series               []PricePoint `json:"series"`
	VolatilityPercentile int          `json:"volatility_percentile"` // 0 ~ 100
	FetchedAt            time.Time    `json:"fetched_at"`
}

// Prices returns the series prices in chronological order.
func (q *Quote) Prices() []float64 {
	if q == nil {
		return nil
	}
	prices := make([]float64, len(q.Series))
	for i, p := range q.Series {
		prices[i] = p.Price
	}
	return prices
}

// ClampPercentile bounds a volatility percentile to [0,100].
func ClampPercentile(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
