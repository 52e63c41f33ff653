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

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Provider using the Yahoo Finance public chart API.
// Two trading days of 5-minute bars, pre/post market included.
type YahooFetcher struct {
	BaseURL  string
	Interval string
	Range    string
	Client   *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL:  yahooBaseURL,
		Interval: "5m",
		Range:    "2d",
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				LongName             string  `json:"longName"`
				ShortName            string  `json:"shortName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				GMTOffset            int64   `json:"gmtoffset"`
				CurrentTradingPeriod struct {
					Regular struct {
						Start int64 `json:"start"`
						End   int64 `json:"end"`
					} `json:"regular"`
				} `json:"currentTradingPeriod"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// FetchQuote fetches the intraday chart for symbol and assembles a Quote.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s&includePrePost=true",
		f.BaseURL, url.PathEscape(symbol), f.Interval, f.Range)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	meta := result.Meta
	var closes []interface{}
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	session := tradingSession{
		offset: meta.GMTOffset,
		start:  meta.CurrentTradingPeriod.Regular.Start,
		end:    meta.CurrentTradingPeriod.Regular.End,
	}
	series := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		c := toFloat(closes[i])
		if c <= 0 {
			continue // skip null bars
		}
		series = append(series, model.PricePoint{
			Time:          time.Unix(ts, 0),
			Price:         c,
			ExtendedHours: session.extended(ts),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	series = capSeries(series)

	q := &model.Quote{
		Symbol:       symbol,
		DisplayName:  displayName(symbol, meta.LongName, meta.ShortName),
		CurrentPrice: currentPrice(series, meta.RegularMarketPrice),
		Series:       series,
		FetchedAt:    time.Now(),
	}
	q.VolatilityPercentile = PlaceholderVolatility(q.Prices())
	return q, nil
}

// tradingSession classifies timestamps against the regular session by exchange-local time of day.
type tradingSession struct {
	offset, start, end int64
}

func (s tradingSession) extended(ts int64) bool {
	if s.start == 0 && s.end == 0 {
		return false
	}
	tod := secondOfDay(ts + s.offset)
	openAt := secondOfDay(s.start + s.offset)
	closeAt := secondOfDay(s.end + s.offset)
	return tod < openAt || tod >= closeAt
}

func secondOfDay(ts int64) int64 {
	const day = 24 * 60 * 60
	r := ts % day
	if r < 0 {
		r += day
	}
	return r
}

func displayName(symbol string, names ...string) string {
	for _, n := range names {
		if n != "" {
			return n
		}
	}
	return symbol
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
