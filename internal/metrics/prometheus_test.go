package metrics

import (
	"errors"
	"testing"
	"time"

	"TickerWatch/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveFetch("AAPL", 200*time.Millisecond, nil)
	r.ObserveFetch("AAPL", time.Second, errors.New("timeout"))
	r.ObserveSignal("AAPL", 187.5, model.Avoid)
	r.SetWatchlistSize(3)

	if got := testutil.ToFloat64(r.fetchesTotal.WithLabelValues("AAPL", "error")); got != 1 {
		t.Errorf("error fetches = %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")); got != 187.5 {
		t.Errorf("last price = %v", got)
	}
	if got := testutil.ToFloat64(r.signal.WithLabelValues("AAPL")); got != 2 {
		t.Errorf("signal = %v", got)
	}
	if got := testutil.ToFloat64(r.watchlistSize); got != 3 {
		t.Errorf("size = %v", got)
	}

	r.Forget("AAPL")
	if n := testutil.CollectAndCount(r.lastPrice); n != 0 {
		t.Errorf("last price series after forget = %d", n)
	}
}
