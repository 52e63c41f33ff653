package strategy

import (
	"TickerWatch/internal/calculator"
	"TickerWatch/internal/model"
)

// Thresholds for the classification guards.
const (
	BuyMomentum    = 0.6
	AvoidMomentum  = 0.4
	LowVolatility  = 50
	HighVolatility = 70
)

// indicators are the inputs every guard and reason reads.
type indicators struct {
	CurrentPrice float64
	SMA          float64
	SMAAvailable bool
	Momentum     float64
	Volatility   int
}

func (ind indicators) uptrend() bool   { return ind.SMAAvailable && ind.CurrentPrice > ind.SMA }
func (ind indicators) downtrend() bool { return ind.SMAAvailable && ind.CurrentPrice < ind.SMA }

func compute(prices []float64, volatilityPercentile int) indicators {
	ind := indicators{Volatility: model.ClampPercentile(volatilityPercentile)}
	if len(prices) > 0 {
		ind.CurrentPrice = prices[len(prices)-1]
	}
	ind.SMA, ind.SMAAvailable = calculator.MovingAverage(prices)
	ind.Momentum = calculator.MomentumScore(prices, calculator.MomentumPeriod)
	return ind
}

// Classify derives a signal from a chronological price series and a volatility
// percentile. Guards are tested in order Buy, Avoid, Hold. Any input, including
// an empty series, yields a valid result.
func Classify(prices []float64, volatilityPercentile int) model.SignalResult {
	ind := compute(prices, volatilityPercentile)

	switch {
	case ind.uptrend() && ind.Momentum > BuyMomentum && ind.Volatility < LowVolatility:
		return buySignal(ind)
	case ind.downtrend() && ind.Momentum < AvoidMomentum:
		return avoidSignal(ind)
	default:
		return holdSignal(ind)
	}
}

// Evaluate classifies a fetched quote.
func Evaluate(q *model.Quote) model.SignalResult {
	if q == nil {
		return Classify(nil, 0)
	}
	return Classify(q.Prices(), q.VolatilityPercentile)
}
