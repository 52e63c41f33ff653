package collector

import (
	"context"
	"errors"

	"TickerWatch/internal/model"
)

// ErrNoData is returned when the upstream responded but the price series was empty.
var ErrNoData = errors.New("no price data returned")

// Provider fetches a quote with its recent intraday series for one symbol.
type Provider interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}

// capSeries keeps the most recent model.MaxSeriesPoints points.
func capSeries(series []model.PricePoint) []model.PricePoint {
	if len(series) > model.MaxSeriesPoints {
		return series[len(series)-model.MaxSeriesPoints:]
	}
	return series
}

// currentPrice falls back from the last series price to the provider's market price, then to 0.
func currentPrice(series []model.PricePoint, marketPrice float64) float64 {
	if n := len(series); n > 0 && series[n-1].Price > 0 {
		return series[n-1].Price
	}
	if marketPrice > 0 {
		return marketPrice
	}
	return 0
}
