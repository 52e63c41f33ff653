package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// IntervalTicker runs a job on a fixed interval. At most one schedule is active;
// it can be stopped and started again any number of times.
type IntervalTicker struct {
	mu       sync.Mutex
	interval time.Duration
	cron     *cron.Cron
	log      zerolog.Logger
}

// NewIntervalTicker creates a stopped ticker. Intervals below one second are rounded up by cron.
func NewIntervalTicker(interval time.Duration, log zerolog.Logger) *IntervalTicker {
	return &IntervalTicker{
		interval: interval,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules job every interval. Calling Start while running is a no-op.
func (t *IntervalTicker) Start(job func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron != nil {
		return
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(t.interval), cron.FuncJob(job))
	c.Start()
	t.cron = c
	t.log.Info().Dur("interval", t.interval).Msg("refresh timer started")
}

// Stop cancels the schedule. A job already running is left to finish on its own.
func (t *IntervalTicker) Stop() {
	t.mu.Lock()
	c := t.cron
	t.cron = nil
	t.mu.Unlock()

	if c == nil {
		return
	}
	c.Stop()
	t.log.Info().Msg("refresh timer stopped")
}

// Running reports whether a schedule is active.
func (t *IntervalTicker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cron != nil
}
