package distributions

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/domino14/fairway"
)

// Synthetic builds a table from a simple normal model of hole scores on a
// hole of the given par: a scratch golfer averages a little over par and
// every handicap stroke adds 1/18 of a stroke per hole, with the spread
// widening as the handicap grows. Each normal is discretised into buckets
// 1..maxScore; the tails are folded into the first and last bucket.
//
// This is a starting point for people without real data, not a default.
func Synthetic(maxHandicap, maxScore, par int) (*ScoreDistributions, error) {
	if maxHandicap < 0 || maxScore < 2 || par < 1 || par >= maxScore {
		return nil, fmt.Errorf("%w: bad synthetic table shape (max handicap %d, max score %d, par %d)",
			fairway.ErrContractViolation, maxHandicap, maxScore, par)
	}
	table := make([][]float64, maxHandicap+1)
	for h := range table {
		n := distuv.Normal{
			Mu:    float64(par) + 0.15 + float64(h)/18,
			Sigma: 0.75 + float64(h)/36,
		}
		row := make([]float64, maxScore)
		prev := 0.0
		for j := range maxScore - 1 {
			cdf := n.CDF(float64(j+1) + 0.5)
			row[j] = cdf - prev
			prev = cdf
		}
		row[maxScore-1] = 1 - prev
		table[h] = row
	}
	return New(table)
}
