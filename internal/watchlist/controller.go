package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"TickerWatch/internal/collector"
	"TickerWatch/internal/model"
	"TickerWatch/internal/store"
	"TickerWatch/internal/strategy"

	"github.com/rs/zerolog"
)

// StoreKey is the store key holding the ordered symbol list as a JSON array.
const StoreKey = "watchlist.symbols"

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Attempted []string
	Failed    []string
	Skipped   bool // another pass was already running
}

// Controller owns the watchlist: the ordered symbols, their entries, and the
// refresh timer. All mutation goes through its methods.
type Controller struct {
	provider      collector.Provider
	store         store.Store
	ticker        Ticker
	notifier      Notifier
	metrics       Metrics
	log           zerolog.Logger
	refetchLoaded bool

	mu        sync.Mutex
	order     []string
	entries   map[string]*model.WatchlistEntry
	message   string
	listeners []func()
	timerOn   bool
	closed    bool
	baseCtx   context.Context

	refreshMu sync.Mutex // held for the duration of a refresh pass
	wg        sync.WaitGroup
}

// NewController creates an empty controller. Call Start to rehydrate from the store.
func NewController(provider collector.Provider, st store.Store, ticker Ticker, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		store:    st,
		ticker:   ticker,
		metrics:  noopMetrics{},
		log:      zerolog.Nop(),
		entries:  make(map[string]*model.WatchlistEntry),
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start rehydrates the persisted symbol list. Restored symbols enter as Idle
// entries without data. When the list is non-empty the refresh timer is started
// and a first refresh pass runs in the background. ctx bounds background work.
func (c *Controller) Start(ctx context.Context) {
	symbols := c.loadSymbols(ctx)

	c.mu.Lock()
	c.baseCtx = ctx
	for _, sym := range symbols {
		if _, exists := c.entries[sym]; exists {
			continue
		}
		c.order = append(c.order, sym)
		c.entries[sym] = &model.WatchlistEntry{Symbol: sym, State: model.Idle}
	}
	n := len(c.order)
	if n > 0 {
		c.syncTimerLocked()
		c.refreshInBackgroundLocked()
	}
	c.mu.Unlock()

	c.metrics.SetWatchlistSize(n)
	c.log.Info().Int("symbols", n).Msg("watchlist restored")
	c.changed()
}

// AddSymbol validates raw, fetches its quote and, on success, appends a Ready
// entry and persists the list. A failed fetch never creates an entry.
func (c *Controller) AddSymbol(ctx context.Context, raw string) error {
	symbol, err := NormalizeSymbol(raw)
	if err != nil {
		c.setMessage(fmt.Sprintf("%q is not a valid symbol: use 1-5 letters.", raw))
		return err
	}

	if c.has(symbol) {
		c.setMessage(fmt.Sprintf("%s is already in your watchlist.", symbol))
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, symbol)
	}

	quote, err := c.fetch(ctx, symbol)
	if err != nil {
		c.setMessage(fmt.Sprintf("Could not load %s: %s", symbol, describe(err)))
		return &FetchError{Symbol: symbol, Err: err}
	}
	sig := strategy.Evaluate(quote)

	c.mu.Lock()
	if _, exists := c.entries[symbol]; exists {
		c.message = fmt.Sprintf("%s is already in your watchlist.", symbol)
		c.mu.Unlock()
		c.changed()
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, symbol)
	}
	order := make([]string, len(c.order), len(c.order)+1)
	copy(order, c.order)
	order = append(order, symbol)
	if err := c.persistLocked(ctx, order); err != nil {
		c.message = fmt.Sprintf("Could not save your watchlist; %s was not added.", symbol)
		c.mu.Unlock()
		c.log.Error().Err(err).Str("symbol", symbol).Msg("persist after add failed")
		c.changed()
		return &PersistError{Err: err}
	}
	c.order = order
	c.entries[symbol] = &model.WatchlistEntry{
		Symbol: symbol,
		Quote:  quote,
		Signal: &sig,
		State:  model.Ready,
	}
	c.message = ""
	n := len(c.order)
	if n == 1 {
		c.syncTimerLocked()
		c.refreshInBackgroundLocked()
	}
	c.mu.Unlock()

	c.metrics.SetWatchlistSize(n)
	c.metrics.ObserveSignal(symbol, quote.CurrentPrice, sig.Classification)
	c.log.Info().Str("symbol", symbol).Str("signal", sig.Classification.String()).Msg("symbol added")
	c.changed()
	return nil
}

// RemoveSymbol deletes symbol from the watchlist and persists the list. It is a
// no-op for unknown symbols. Removing the last symbol stops the refresh timer.
func (c *Controller) RemoveSymbol(ctx context.Context, symbol string) {
	symbol = normalizeLoose(symbol)

	c.mu.Lock()
	idx := indexOf(c.order, symbol)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	order := make([]string, 0, len(c.order)-1)
	order = append(order, c.order[:idx]...)
	order = append(order, c.order[idx+1:]...)
	c.order = order
	delete(c.entries, symbol)
	err := c.persistLocked(ctx, order)
	if err != nil {
		c.message = "Could not save your watchlist; the removal may not survive a restart."
	}
	n := len(c.order)
	if n == 0 {
		c.syncTimerLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("persist after remove failed")
	}
	c.metrics.SetWatchlistSize(n)
	c.metrics.Forget(symbol)
	c.log.Info().Str("symbol", symbol).Msg("symbol removed")
	c.changed()
}

// RefreshAll fetches and reclassifies watchlist entries one at a time. Entries
// that already hold data are skipped unless refetching is enabled. A failure
// keeps the entry and its previous data, sets a message naming the symbol, and
// does not stop the pass. Results for symbols removed mid-fetch are discarded.
func (c *Controller) RefreshAll(ctx context.Context) RefreshResult {
	if !c.refreshMu.TryLock() {
		c.log.Debug().Msg("refresh already running, skipping")
		return RefreshResult{Skipped: true}
	}
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	symbols := make([]string, len(c.order))
	copy(symbols, c.order)
	c.mu.Unlock()

	var res RefreshResult
	for _, sym := range symbols {
		if ctx.Err() != nil {
			break
		}

		c.mu.Lock()
		entry, ok := c.entries[sym]
		if !ok || (entry.HasData() && !c.refetchLoaded) {
			c.mu.Unlock()
			continue
		}
		entry.State = model.Loading
		c.mu.Unlock()
		c.changed()

		res.Attempted = append(res.Attempted, sym)
		quote, err := c.fetch(ctx, sym)

		c.mu.Lock()
		if current, ok := c.entries[sym]; !ok || current != entry {
			c.mu.Unlock()
			c.log.Debug().Str("symbol", sym).Msg("discarding result for removed symbol")
			continue
		}
		var msg string
		if err != nil {
			entry.State = model.Failed
			entry.LastError = describe(err)
			msg = fmt.Sprintf("Could not refresh %s: %s", sym, entry.LastError)
			c.message = msg
			res.Failed = append(res.Failed, sym)
		} else {
			sig := strategy.Evaluate(quote)
			entry.Quote = quote
			entry.Signal = &sig
			entry.State = model.Ready
			entry.LastError = ""
			c.metrics.ObserveSignal(sym, quote.CurrentPrice, sig.Classification)
		}
		c.mu.Unlock()

		if msg != "" && c.notifier != nil {
			c.notifier.Notify(ctx, msg)
		}
		c.changed()
	}

	if len(res.Attempted) > 0 {
		c.log.Info().Int("attempted", len(res.Attempted)).Int("failed", len(res.Failed)).Msg("refresh pass done")
	}
	return res
}

// Tick is the periodic timer hook.
func (c *Controller) Tick(ctx context.Context) {
	c.RefreshAll(ctx)
}

// SortedView returns entry copies ordered Buy, Hold, Avoid. Entries without data
// rank as Hold; ties keep insertion order.
func (c *Controller) SortedView() []model.WatchlistEntry {
	c.mu.Lock()
	view := make([]model.WatchlistEntry, 0, len(c.order))
	for _, sym := range c.order {
		view = append(view, *c.entries[sym])
	}
	c.mu.Unlock()

	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Priority() < view[j].Priority()
	})
	return view
}

// Symbols returns the symbols in insertion order.
func (c *Controller) Symbols() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Entry returns a copy of the entry for symbol.
func (c *Controller) Entry(symbol string) (model.WatchlistEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[normalizeLoose(symbol)]
	if !ok {
		return model.WatchlistEntry{}, false
	}
	return *e, true
}

// Message returns the current user-visible message, or "".
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// ClearMessage dismisses the current message.
func (c *Controller) ClearMessage() {
	c.setMessage("")
}

// Subscribe registers fn to be called after every state change.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// TimerRunning reports whether the periodic refresh is scheduled.
func (c *Controller) TimerRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timerOn
}

// Wait blocks until background refresh passes have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops the refresh timer and waits for background passes.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.syncTimerLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

// syncTimerLocked keeps exactly one timer running while the list is non-empty.
func (c *Controller) syncTimerLocked() {
	want := len(c.order) > 0 && !c.closed
	switch {
	case want && !c.timerOn:
		ctx := c.baseCtx
		c.ticker.Start(func() { c.Tick(ctx) })
		c.timerOn = true
	case !want && c.timerOn:
		c.ticker.Stop()
		c.timerOn = false
	}
}

func (c *Controller) refreshInBackgroundLocked() {
	if c.closed {
		return
	}
	ctx := c.baseCtx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.RefreshAll(ctx)
	}()
}

func (c *Controller) fetch(ctx context.Context, symbol string) (*model.Quote, error) {
	start := time.Now()
	q, err := c.provider.FetchQuote(ctx, symbol)
	elapsed := time.Since(start)
	c.metrics.ObserveFetch(symbol, elapsed, err)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("quote fetch failed")
		return nil, err
	}
	if q == nil || len(q.Series) == 0 {
		return nil, collector.ErrNoData
	}
	c.log.Debug().Str("symbol", symbol).Int("points", len(q.Series)).Dur("elapsed", elapsed).Msg("quote fetched")
	return q, nil
}

// persistLocked writes order to the store. Empty lists are written as [].
func (c *Controller) persistLocked(ctx context.Context, order []string) error {
	if order == nil {
		order = []string{}
	}
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.store.Save(ctx, StoreKey, string(data))
}

// loadSymbols reads the persisted list. Unreadable or corrupt data counts as
// an empty watchlist; invalid and duplicate symbols are dropped.
func (c *Controller) loadSymbols(ctx context.Context) []string {
	raw, ok, err := c.store.Load(ctx, StoreKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("load watchlist failed, starting empty")
		return nil
	}
	if !ok {
		return nil
	}
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		c.log.Warn().Err(err).Msg("stored watchlist is corrupt, starting empty")
		return nil
	}
	seen := make(map[string]bool, len(stored))
	symbols := make([]string, 0, len(stored))
	for _, s := range stored {
		sym, err := NormalizeSymbol(s)
		if err != nil || seen[sym] {
			c.log.Warn().Str("symbol", s).Msg("dropping invalid stored symbol")
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	return symbols
}

func (c *Controller) has(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[symbol]
	return ok
}

func (c *Controller) setMessage(msg string) {
	c.mu.Lock()
	c.message = msg
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) changed() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func describe(err error) string {
	if errors.Is(err, collector.ErrNoData) {
		return "no price data available"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the data provider timed out"
	}
	return err.Error()
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
