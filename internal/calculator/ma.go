package calculator

import (
	"errors"
)

// SMAPeriod is the moving-average window used for trend detection.
const SMAPeriod = 20

// ErrInsufficientData is returned when a series is shorter than the requested window.
var ErrInsufficientData = errors.New("not enough data for SMA calculation")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the 20-period SMA and whether it is available.
func MovingAverage(prices []float64) (float64, bool) {
	sma, err := CalculateSMA(prices, SMAPeriod)
	if err != nil {
		return 0, false
	}
	return sma, true
}
