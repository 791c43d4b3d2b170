// Package allowance computes handicap stroke allowances. Allowances are
// relative: the lowest handicap in the group plays off scratch and everyone
// else receives the difference, spread evenly over the holes.
package allowance

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/domino14/fairway"
)

// Allowance returns the stroke adjustment granted on the hole with index
// holeIdx to a player whose handicap exceeds the group minimum by diff.
// The result is never positive: it is a deduction from the hole score.
func Allowance(holeIdx, diff, holes int) (int, error) {
	if holes < 1 {
		return 0, fmt.Errorf("%w: number of holes must be positive, got %d",
			fairway.ErrContractViolation, holes)
	}
	if holeIdx < 0 || holeIdx >= holes {
		return 0, fmt.Errorf("%w: hole index %d outside [0, %d)",
			fairway.ErrContractViolation, holeIdx, holes)
	}
	if diff <= 0 {
		return 0, nil
	}
	allowance := diff / holes
	// holes are 1-indexed here: the first diff%holes holes get an extra stroke
	if holeIdx+1 <= diff%holes {
		allowance++
	}
	return -allowance, nil
}

// Allowances returns a players x holes matrix with the allowance of every
// player on every hole. Row i belongs to handicaps[i].
//
// A player only gets an allowance on hole j when j <= handicap*adjustment.
// An adjustment of 0 means "no handicap" and yields all zeros, 1 means full
// handicap.
func Allowances(handicaps []int, holes int, adjustment float64) (*mat.Dense, error) {
	if len(handicaps) == 0 {
		return nil, fmt.Errorf("%w: no players to compute allowances for",
			fairway.ErrContractViolation)
	}
	if holes < 1 {
		return nil, fmt.Errorf("%w: number of holes must be positive, got %d",
			fairway.ErrContractViolation, holes)
	}
	if adjustment < 0 || adjustment > 1 {
		return nil, fmt.Errorf("%w: allowance adjustment %v outside [0, 1]",
			fairway.ErrContractViolation, adjustment)
	}

	allowances := mat.NewDense(len(handicaps), holes, nil)
	if adjustment == 0 {
		return allowances, nil
	}
	minHandicap := slices.Min(handicaps)
	for row, handicap := range handicaps {
		limit := float64(handicap) * adjustment
		for hole := range holes {
			if float64(hole) > limit {
				continue
			}
			a, err := Allowance(hole, handicap-minHandicap, holes)
			if err != nil {
				return nil, err
			}
			allowances.Set(row, hole, float64(a))
		}
	}
	return allowances, nil
}
