package strategy

import (
	"fmt"

	"TickerWatch/internal/model"
)

func buySignal(ind indicators) model.SignalResult {
	return model.SignalResult{
		Classification: model.Buy,
		Reasons: []string{
			fmt.Sprintf("Uptrend: price %.2f is above its 20-period SMA of %.2f", ind.CurrentPrice, ind.SMA),
			fmt.Sprintf("Strong momentum: %.0f%% of the last moves were up", ind.Momentum*100),
			fmt.Sprintf("Low volatility: %dth percentile", ind.Volatility),
		},
		StrategyHint: "Favor long exposure: shares or a long call while the trend holds.",
	}
}

func avoidSignal(ind indicators) model.SignalResult {
	hint := "Wait on the sidelines until the downtrend stabilizes."
	if ind.Volatility > HighVolatility {
		hint = "Volatility is elevated: experienced traders may consider premium-selling strategies such as bear call spreads."
	}
	return model.SignalResult{
		Classification: model.Avoid,
		Reasons: []string{
			fmt.Sprintf("Downtrend: price %.2f is below its 20-period SMA of %.2f", ind.CurrentPrice, ind.SMA),
			fmt.Sprintf("Weak momentum: only %.0f%% of the last moves were up", ind.Momentum*100),
		},
		StrategyHint: hint,
	}
}

func holdSignal(ind indicators) model.SignalResult {
	trend := "Price is consolidating: not enough history for a 20-period SMA"
	if ind.SMAAvailable {
		dev := 0.0
		if ind.SMA != 0 {
			dev = (ind.CurrentPrice - ind.SMA) / ind.SMA * 100
		}
		trend = fmt.Sprintf("Mixed signals: price %.2f is near its 20-period SMA of %.2f (%+.1f%%)", ind.CurrentPrice, ind.SMA, dev)
	}
	hint := "Hold existing positions and wait for a clearer trend."
	if ind.Volatility > HighVolatility {
		hint = "Range-bound with high volatility: experienced traders may consider premium-selling strategies such as iron condors."
	}
	return model.SignalResult{
		Classification: model.Hold,
		Reasons: []string{
			trend,
			fmt.Sprintf("Moderate momentum: %.0f%% of the last moves were up", ind.Momentum*100),
		},
		StrategyHint: hint,
	}
}
