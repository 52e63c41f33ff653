package calculator

import (
	"errors"
	"math"
)

// SeriesRange scans the series and returns its high and low.
func SeriesRange(prices []float64) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low, nil
}

// RangePosition returns where value sits within [low, high] (0.0~1.0).
func RangePosition(value, high, low float64) float64 {
	if high == low {
		return 0.5
	}
	pos := (value - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
