package model

// LoadState tracks the fetch lifecycle of a watchlist entry.
type LoadState string

const (
	Idle    LoadState = "IDLE"
	Loading LoadState = "LOADING"
	Ready   LoadState = "READY"
	Failed  LoadState = "FAILED"
)

// WatchlistEntry is the per-symbol record owned by the watchlist controller.
// Quote and Signal are either both set or both nil.
type WatchlistEntry struct {
	Symbol    string        `json:"symbol"`
	Quote     *Quote        `json:"quote,omitempty"`
	Signal    *SignalResult `json:"signal,omitempty"`
	State     LoadState     `json:"state"`
	LastError string        `json:"last_error,omitempty"`
}

// HasData reports whether the entry holds a successfully fetched quote.
func (e *WatchlistEntry) HasData() bool {
	return e.Quote != nil && e.Signal != nil
}

// Priority is the display priority of the entry; entries without data rank as Hold.
func (e *WatchlistEntry) Priority() int {
	if e.Signal == nil {
		return Hold.Priority()
	}
	return e.Signal.Classification.Priority()
}
