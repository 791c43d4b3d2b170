// Package fairness scores how evenly matched a set of teams is.
package fairness

import (
	"fmt"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/tournament"
)

// Evaluator measures unfairness: the lower, the fairer.
type Evaluator interface {
	Fairness(teams []*tournament.Team) float64
	Tolerance() float64
	IsFairEnough(teams []*tournament.Team) bool
}

const DefaultTolerance = 0.1

// MaxDifference is the spread between the best and the worst team's chance
// of winning.
type MaxDifference struct {
	tolerance float64
}

func NewMaxDifference(tolerance float64) (*MaxDifference, error) {
	if !(tolerance > 0 && tolerance < 1) {
		return nil, fmt.Errorf("%w: fairness tolerance %v outside (0, 1)",
			fairway.ErrContractViolation, tolerance)
	}
	return &MaxDifference{tolerance: tolerance}, nil
}

func (m *MaxDifference) Fairness(teams []*tournament.Team) float64 {
	if len(teams) == 0 {
		return 0
	}
	probs := lo.Map(teams, func(t *tournament.Team, _ int) float64 { return t.Metrics().WinProb })
	return floats.Max(probs) - floats.Min(probs)
}

func (m *MaxDifference) Tolerance() float64 {
	return m.tolerance
}

func (m *MaxDifference) IsFairEnough(teams []*tournament.Team) bool {
	return m.Fairness(teams) < m.tolerance
}
