package metrics

import (
	"time"

	"TickerWatch/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements watchlist.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal  *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	watchlistSize prometheus.Gauge
	lastPrice     *prometheus.GaugeVec
	signal        *prometheus.GaugeVec
}

// New registers the watchlist collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickerwatch_quote_fetches_total",
				Help: "Total number of quote fetches by result",
			},
			[]string{"symbol", "result"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tickerwatch_quote_fetch_duration_seconds",
				Help:    "Duration of quote fetches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"result"},
		),
		watchlistSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "tickerwatch_watchlist_symbols",
				Help: "Number of symbols in the watchlist",
			},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tickerwatch_last_price",
				Help: "Last fetched price for a symbol",
			},
			[]string{"symbol"},
		),
		signal: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tickerwatch_signal",
				Help: "Current classification for a symbol: 0 buy, 1 hold, 2 avoid",
			},
			[]string{"symbol"},
		),
	}
}

// ObserveFetch records one provider call.
func (r *Recorder) ObserveFetch(symbol string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.fetchesTotal.WithLabelValues(symbol, result).Inc()
	r.fetchLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveSignal records the latest price and classification.
func (r *Recorder) ObserveSignal(symbol string, price float64, class model.Classification) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
	r.signal.WithLabelValues(symbol).Set(float64(class.Priority()))
}

func (r *Recorder) SetWatchlistSize(n int) {
	r.watchlistSize.Set(float64(n))
}

// Forget drops per-symbol series for a removed symbol.
func (r *Recorder) Forget(symbol string) {
	r.lastPrice.DeleteLabelValues(symbol)
	r.signal.DeleteLabelValues(symbol)
	r.fetchesTotal.DeleteLabelValues(symbol, "ok")
	r.fetchesTotal.DeleteLabelValues(symbol, "error")
}
