package model

// Classification is the watchlist signal for a symbol.
type Classification string

const (
	Buy   Classification = "BUY"
	Hold  Classification = "HOLD"
	Avoid Classification = "AVOID"
)

// Priority orders classifications for display: Buy first, Avoid last.
func (c Classification) Priority() int {
	switch c {
	case Buy:
		return 0
	case Avoid:
		return 2
	default:
		return 1
	}
}

func (c Classification) String() string { return string(c) }

// SignalResult is derived from a Quote and never mutated, only recomputed.
type SignalResult struct {
	Classification Classification `json:"classification"`
	Reasons        []string       `json:"reasons"`
	StrategyHint   string         `json:"strategy_hint"`
}
