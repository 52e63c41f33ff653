package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TickerWatch/internal/model"
)

const chartFixture = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","longName":"Apple Inc.","shortName":"Apple","regularMarketPrice":190.5,"gmtoffset":-14400,
		"currentTradingPeriod":{"regular":{"start":1704205800,"end":1704229200}}},
	"timestamp":[1704229500,1704204000,1704206100,1704206400],
	"indicators":{"quote":[{"close":[187.5,185.0,186.25,null]}]}
}],"error":null}}`

func newYahooTestServer(t *testing.T, status int, body string) (*YahooFetcher, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, &gotPath
}

func TestYahooFetcher_FetchQuote(t *testing.T) {
	f, gotPath := newYahooTestServer(t, http.StatusOK, chartFixture)

	q, err := f.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(*gotPath, "/v8/finance/chart/AAPL") || !strings.Contains(*gotPath, "interval=5m") ||
		!strings.Contains(*gotPath, "includePrePost=true") {
		t.Errorf("unexpected request path %q", *gotPath)
	}
	if q.DisplayName != "Apple Inc." {
		t.Errorf("expected long name, got %q", q.DisplayName)
	}
	if len(q.Series) != 3 {
		t.Fatalf("expected 3 points (null skipped), got %d", len(q.Series))
	}
	for i := 1; i < len(q.Series); i++ {
		if !q.Series[i-1].Time.Before(q.Series[i].Time) {
			t.Fatalf("series not chronological at %d", i)
		}
	}
	wantExt := []bool{true, false, true}
	for i, p := range q.Series {
		if p.ExtendedHours != wantExt[i] {
			t.Errorf("point %d: expected extended=%v, got %v", i, wantExt[i], p.ExtendedHours)
		}
	}
	if q.CurrentPrice != 187.5 {
		t.Errorf("expected current price from last point 187.5, got %.2f", q.CurrentPrice)
	}
	if q.VolatilityPercentile < 0 || q.VolatilityPercentile > 100 {
		t.Errorf("volatility percentile out of range: %d", q.VolatilityPercentile)
	}
}

func TestYahooFetcher_EmptySeriesIsNoData(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"regularMarketPrice":10},"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`
	f, _ := newYahooTestServer(t, http.StatusOK, body)

	_, err := f.FetchQuote(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestYahooFetcher_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	f, _ := newYahooTestServer(t, http.StatusOK, body)

	_, err := f.FetchQuote(context.Background(), "QQQQQ")
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestYahooFetcher_HTTPStatus(t *testing.T) {
	f, _ := newYahooTestServer(t, http.StatusTooManyRequests, "slow down")

	_, err := f.FetchQuote(context.Background(), "AAPL")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestCurrentPriceFallback(t *testing.T) {
	if got := currentPrice([]model.PricePoint{{Price: 5}}, 7); got != 5 {
		t.Errorf("expected last series price, got %.2f", got)
	}
	if got := currentPrice(nil, 7); got != 7 {
		t.Errorf("expected market price fallback, got %.2f", got)
	}
	if got := currentPrice(nil, 0); got != 0 {
		t.Errorf("expected zero fallback, got %.2f", got)
	}
}

func TestCapSeries(t *testing.T) {
	series := make([]model.PricePoint, model.MaxSeriesPoints+20)
	for i := range series {
		series[i].Price = float64(i + 1)
	}
	got := capSeries(series)
	if len(got) != model.MaxSeriesPoints {
		t.Fatalf("expected %d points, got %d", model.MaxSeriesPoints, len(got))
	}
	if got[len(got)-1].Price != float64(len(series)) {
		t.Errorf("expected most recent point to be kept")
	}
	if got[0].Price != 21 {
		t.Errorf("expected oldest points dropped, first is %.0f", got[0].Price)
	}
}
