package collector

import "math"

const volatilityWindow = 20

// PlaceholderVolatility estimates a volatility percentile (0~100) from the series
// itself: the percentile rank of the latest window's realized volatility among all
// rolling windows of the same series.
//
// This is NOT an authoritative implied-volatility percentile. It stands in for
// providers that do not publish one and should be replaced by a real data source.
func PlaceholderVolatility(prices []float64) int {
	returns := make([]float64, 0, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	if len(returns) < volatilityWindow {
		return 50
	}

	vols := make([]float64, 0, len(returns)-volatilityWindow+1)
	for end := volatilityWindow; end <= len(returns); end++ {
		vols = append(vols, stddev(returns[end-volatilityWindow:end]))
	}
	latest := vols[len(vols)-1]
	below := 0
	for _, v := range vols {
		if v < latest {
			below++
		}
	}
	if len(vols) == 1 {
		return 50
	}
	return int(math.Round(float64(below) / float64(len(vols)-1) * 100))
}

func stddev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)))
}
