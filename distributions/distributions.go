// Package distributions holds the per-handicap probability tables the
// simulator draws hole scores from.
package distributions

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/domino14/fairway"
)

// MaxResidual is the largest row-sum error New is willing to correct. Rows
// further away from 1 are rejected rather than bent into shape.
const MaxResidual = 0.01

// ScoreDistributions maps a handicap to a discrete probability distribution
// over the number of strokes needed to finish a hole.
//
//	                     STROKES
//	             1    2    3    4    5  ...
//	HANDICAP 0 | 0  0.02 0.2  0.55 0.18 ...
//	HANDICAP 1 | ...
//
// Row i is the distribution for handicap i; column j is the probability of
// scoring j+1 on the hole.
type ScoreDistributions struct {
	table  *mat.Dense
	scores []int
}

// New copies table and normalises its rows. A row whose sum is off from 1
// by floating point noise gets the residual added to its last entry with
// positive mass, scanning from the highest score down to the second column.
// The first column is never corrected.
func New(table [][]float64) (*ScoreDistributions, error) {
	if len(table) == 0 || len(table[0]) == 0 {
		return nil, fmt.Errorf("%w: empty score distribution table", fairway.ErrContractViolation)
	}
	nHandicaps, highestScore := len(table), len(table[0])
	d := mat.NewDense(nHandicaps, highestScore, nil)
	for i, row := range table {
		if len(row) != highestScore {
			return nil, fmt.Errorf("%w: distribution row %d has %d columns, expected %d",
				fairway.ErrContractViolation, i, len(row), highestScore)
		}
		for j, p := range row {
			if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return nil, fmt.Errorf("%w: distribution row %d column %d has invalid probability %v",
					fairway.ErrContractViolation, i, j, p)
			}
		}
		d.SetRow(i, row)
	}

	for i := range nHandicaps {
		row := d.RawRowView(i)
		if err := normalizeRow(row); err != nil {
			return nil, fmt.Errorf("distribution row %d: %w", i, err)
		}
	}

	scores := make([]int, highestScore)
	for j := range scores {
		scores[j] = j + 1
	}
	return &ScoreDistributions{table: d, scores: scores}, nil
}

func normalizeRow(row []float64) error {
	diff := 1 - floats.Sum(row)
	if diff == 0 {
		return nil
	}
	if math.Abs(diff) > MaxResidual {
		return fmt.Errorf("%w: probabilities sum to %v", fairway.ErrContractViolation, 1-diff)
	}
	for j := len(row) - 1; j > 0; j-- {
		if row[j] > 0 {
			if row[j]+diff < 0 {
				break
			}
			row[j] += diff
			return nil
		}
	}
	return fmt.Errorf("%w: cannot absorb residual %v", fairway.ErrContractViolation, diff)
}

// Distribution returns the probability vector for a handicap. The returned
// slice is a copy.
func (s *ScoreDistributions) Distribution(handicap int) ([]float64, error) {
	if handicap < 0 || handicap >= s.Handicaps() {
		return nil, fmt.Errorf("%w: no score distribution for handicap %d (table covers 0-%d)",
			fairway.ErrContractViolation, handicap, s.Handicaps()-1)
	}
	return mat.Row(nil, handicap, s.table), nil
}

// Scores returns the hole scores the columns stand for: 1, 2, ... K.
func (s *ScoreDistributions) Scores() []int {
	out := make([]int, len(s.scores))
	copy(out, s.scores)
	return out
}

// Handicaps is the number of rows, i.e. the handicaps 0..Handicaps()-1.
func (s *ScoreDistributions) Handicaps() int {
	r, _ := s.table.Dims()
	return r
}
