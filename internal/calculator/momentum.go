package calculator

// MomentumPeriod is the number of trailing points inspected by MomentumScore.
const MomentumPeriod = 5

// MomentumScore returns the fraction of strictly rising adjacent pairs among
// the last period points, i.e. upCount / (period - 1). It returns 0 when the
// series is shorter than period.
func MomentumScore(prices []float64, period int) float64 {
	if period < 2 || len(prices) < period {
		return 0
	}
	tail := prices[len(prices)-period:]
	up := 0
	for i := 1; i < len(tail); i++ {
		if tail[i] > tail[i-1] {
			up++
		}
	}
	return float64(up) / float64(period-1)
}
