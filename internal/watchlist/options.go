package watchlist

import (
	"context"
	"time"

	"TickerWatch/internal/model"

	"github.com/rs/zerolog"
)

// Ticker schedules the periodic refresh. Start while running must be a no-op.
type Ticker interface {
	Start(job func())
	Stop()
}

// Notifier receives user-visible messages raised by background refreshes.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Metrics observes controller activity.
type Metrics interface {
	ObserveFetch(symbol string, elapsed time.Duration, err error)
	ObserveSignal(symbol string, price float64, class model.Classification)
	SetWatchlistSize(n int)
	Forget(symbol string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveFetch(string, time.Duration, error)           {}
func (noopMetrics) ObserveSignal(string, float64, model.Classification) {}
func (noopMetrics) SetWatchlistSize(int)                                {}
func (noopMetrics) Forget(string)                                       {}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log.With().Str("component", "watchlist").Logger()
	}
}

// WithNotifier forwards refresh failures to n.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithMetrics records fetches and signals to m.
func WithMetrics(m Metrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRefetchLoaded makes refresh passes refetch entries that already hold data.
// By default only entries without data are fetched.
func WithRefetchLoaded(enabled bool) Option {
	return func(c *Controller) {
		c.refetchLoaded = enabled
	}
}
