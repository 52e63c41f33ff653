package web

import (
	"fmt"
	"strings"
	"time"

	"TickerWatch/internal/calculator"
	"TickerWatch/internal/model"
)

const (
	sparkWidth  = 160
	sparkHeight = 40
)

type viewResponse struct {
	Entries []entryView `json:"entries"`
	Message string      `json:"message,omitempty"`
}

type entryView struct {
	Symbol         string    `json:"symbol"`
	DisplayName    string    `json:"display_name"`
	State          string    `json:"state"`
	Price          float64   `json:"price,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Reasons        []string  `json:"reasons,omitempty"`
	StrategyHint   string    `json:"strategy_hint,omitempty"`
	Volatility     int       `json:"volatility_percentile"`
	Sparkline      string    `json:"sparkline,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	FetchedAt      time.Time `json:"fetched_at,omitempty"`
}

func buildView(entries []model.WatchlistEntry, message string) viewResponse {
	out := viewResponse{Entries: make([]entryView, 0, len(entries)), Message: message}
	for _, e := range entries {
		v := entryView{
			Symbol:      e.Symbol,
			DisplayName: e.Symbol,
			State:       string(e.State),
			LastError:   e.LastError,
		}
		if e.HasData() {
			v.DisplayName = e.Quote.DisplayName
			v.Price = e.Quote.CurrentPrice
			v.Volatility = e.Quote.VolatilityPercentile
			v.FetchedAt = e.Quote.FetchedAt
			v.Sparkline = sparklinePath(e.Quote.Prices(), sparkWidth, sparkHeight)
			v.Classification = e.Signal.Classification.String()
			v.Reasons = e.Signal.Reasons
			v.StrategyHint = e.Signal.StrategyHint
		}
		out.Entries = append(out.Entries, v)
	}
	return out
}

// sparklinePath returns an SVG path scaled to width x height, high prices at the top.
func sparklinePath(prices []float64, width, height float64) string {
	if len(prices) < 2 {
		return ""
	}
	high, low, err := calculator.SeriesRange(prices)
	if err != nil {
		return ""
	}
	step := width / float64(len(prices)-1)
	var b strings.Builder
	for i, p := range prices {
		x := float64(i) * step
		y := height - calculator.RangePosition(p, high, low)*height
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}
	return b.String()
}

func classColor(class string) string {
	switch class {
	case model.Buy.String():
		return "#1a7f37"
	case model.Avoid.String():
		return "#cf222e"
	default:
		return "#9a6700"
	}
}
