package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var Z99 = ZVal(99)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	zValue := dist.Quantile(area)
	return zValue
}

// BinomialHalfWidth is the half-width of the normal-approximation confidence
// interval for a proportion p estimated from n trials.
func BinomialHalfWidth(p float64, n int, z float64) float64 {
	if n <= 0 {
		return 0
	}
	return z * math.Sqrt(p*(1-p)/float64(n))
}
