// Package swaps improves a team partition by exchanging players between
// teams until the teams are fair enough or no exchange helps.
package swaps

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/tournament"
)

// Swap exchanges the teams of two players.
type Swap struct {
	A, B *tournament.Player
}

func (s Swap) String() string {
	return fmt.Sprintf("swap(%d, %d)", s.A.ID(), s.B.ID())
}

// Generator proposes swaps for a tournament, best candidates first.
type Generator interface {
	Swaps(t *tournament.Tournament) []Swap
}

const DefaultPercentile = 0.25

// LowWinProbability only moves the players least likely to win on their
// own: those whose individual win probability is at or below the given
// percentile of the field. Players need metrics from an individual game.
//
// Candidates between the two teams furthest apart come first; among those,
// pairs of players closest in strength come first.
type LowWinProbability struct {
	percentile float64
}

func NewLowWinProbability(percentile float64) (*LowWinProbability, error) {
	if !(percentile > 0 && percentile <= 1) {
		return nil, fmt.Errorf("%w: swap percentile %v outside (0, 1]",
			fairway.ErrContractViolation, percentile)
	}
	return &LowWinProbability{percentile: percentile}, nil
}

func (g *LowWinProbability) Percentile() float64 {
	return g.percentile
}

func (g *LowWinProbability) Swaps(t *tournament.Tournament) []Swap {
	players := t.Players()
	if len(players) < 2 {
		return nil
	}
	probs := lo.Map(players, func(p *tournament.Player, _ int) float64 { return p.Metrics().WinProb })
	slices.Sort(probs)
	threshold := stat.Quantile(g.percentile, stat.Empirical, probs, nil)

	eligible := lo.Filter(players, func(p *tournament.Player, _ int) bool {
		_, onTeam := p.TeamID()
		return onTeam && p.Metrics().WinProb <= threshold
	})

	type candidate struct {
		swap    Swap
		teamGap float64
		gap     float64
	}
	var cands []candidate
	for i, a := range eligible {
		ta, _ := a.TeamID()
		for _, b := range eligible[i+1:] {
			tb, _ := b.TeamID()
			if ta == tb {
				continue
			}
			teamA, okA := t.Team(ta)
			teamB, okB := t.Team(tb)
			if !okA || !okB {
				continue
			}
			cands = append(cands, candidate{
				swap:    Swap{A: a, B: b},
				teamGap: math.Abs(teamA.Metrics().WinProb - teamB.Metrics().WinProb),
				gap:     math.Abs(a.Metrics().WinProb - b.Metrics().WinProb),
			})
		}
	}
	slices.SortStableFunc(cands, func(x, y candidate) int {
		if c := cmp.Compare(y.teamGap, x.teamGap); c != 0 {
			return c
		}
		return cmp.Compare(x.gap, y.gap)
	})
	return lo.Map(cands, func(c candidate, _ int) Swap { return c.swap })
}
