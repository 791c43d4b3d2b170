// Package assignment drafts players into teams. A strategy pairs a goodness
// measure for players with a placement order over teams.
package assignment

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/tournament"
)

// Goodness scores a player for drafting. Players are drafted in decreasing
// order of goodness.
type Goodness func(*tournament.Player) float64

func ByHandicap(p *tournament.Player) float64 {
	return float64(p.Handicap())
}

// ByWinProb uses the player's simulated chance of winning; the individual
// game has to have been played first.
func ByWinProb(p *tournament.Player) float64 {
	return p.Metrics().WinProb
}

func ByWinProbOnHole(hole int) Goodness {
	return func(p *tournament.Player) float64 {
		byHole := p.Metrics().WinProbByHole
		if hole < 0 || hole >= len(byHole) {
			return 0
		}
		return byHole[hole]
	}
}

type Strategy struct {
	Name      string
	Goodness  Goodness
	Placement Placement
	// NeedsSimulation is set when Goodness reads simulated metrics.
	NeedsSimulation bool

	// set for strategies that draft on a single hole
	perHole bool
	hole    int
}

func (s Strategy) String() string {
	return s.Name
}

// Assign empties teams and drafts players into them. Teams end up with
// len(players)/len(teams) members, and the first len(players)%len(teams)
// teams to fill up get one more.
func (s Strategy) Assign(players []*tournament.Player, teams []*tournament.Team) error {
	if len(teams) == 0 {
		return fmt.Errorf("%w: no teams to assign players to", fairway.ErrContractViolation)
	}
	if s.perHole {
		for _, p := range players {
			if n := len(p.Metrics().WinProbByHole); s.hole < 0 || s.hole >= n {
				return fmt.Errorf("%w: %s needs hole %d but player %d has results for %d holes",
					fairway.ErrContractViolation, s.Name, s.hole, p.ID(), n)
			}
		}
	}
	for _, t := range teams {
		t.Clear()
		t.ResetMetrics()
	}

	perTeam := len(players) / len(teams)
	larger := len(players) % len(teams)
	open := func(t *tournament.Team) bool {
		return t.Size() < perTeam || (t.Size() == perTeam && larger > 0)
	}

	order := slices.Clone(players)
	slices.SortStableFunc(order, func(a, b *tournament.Player) int {
		return cmp.Compare(s.Goodness(b), s.Goodness(a))
	})

	next := 0
	for t := range s.Placement(teams, s.Goodness, open) {
		if next == len(order) {
			break
		}
		if t.Size() == perTeam {
			larger--
		}
		if err := t.AddPlayer(order[next]); err != nil {
			return err
		}
		next++
	}
	if next < len(order) {
		return fmt.Errorf("%w: only %d of %d players could be placed",
			fairway.ErrContractViolation, next, len(order))
	}
	return nil
}

var (
	ABCDByHandicap               = Strategy{Name: "ABCDByHandicap", Goodness: ByHandicap, Placement: RoundRobin}
	ABCDByWinProbability         = Strategy{Name: "ABCDByWinProbability", Goodness: ByWinProb, Placement: RoundRobin, NeedsSimulation: true}
	ZigZagByHandicap             = Strategy{Name: "ZigZagByHandicap", Goodness: ByHandicap, Placement: Serpentine}
	ZigZagByWinProbability       = Strategy{Name: "ZigZagByWinProbability", Goodness: ByWinProb, Placement: Serpentine, NeedsSimulation: true}
	WeakestFirstByHandicap       = Strategy{Name: "WeakestFirstByHandicap", Goodness: ByHandicap, Placement: WeakestFirst}
	WeakestFirstByWinProbability = Strategy{Name: "WeakestFirstByWinProbability", Goodness: ByWinProb, Placement: WeakestFirst, NeedsSimulation: true}
)

const onHolePrefix = "WeakestFirstByWinProbabilityOnHole-"

// WeakestFirstByWinProbabilityOnHole drafts by the chance of winning one
// particular hole. It is not part of Strategies.
func WeakestFirstByWinProbabilityOnHole(hole int) Strategy {
	return Strategy{
		Name:            onHolePrefix + strconv.Itoa(hole),
		Goodness:        ByWinProbOnHole(hole),
		Placement:       WeakestFirst,
		NeedsSimulation: true,
		perHole:         true,
		hole:            hole,
	}
}

// Strategies is the list tried, in order, when creating teams.
func Strategies() []Strategy {
	return []Strategy{
		ABCDByHandicap,
		ABCDByWinProbability,
		ZigZagByHandicap,
		ZigZagByWinProbability,
		WeakestFirstByHandicap,
		WeakestFirstByWinProbability,
	}
}

// ByName finds a strategy by its name. Besides the names in Strategies it
// understands WeakestFirstByWinProbabilityOnHole-<hole index>, where the
// index has to be a hole of a game with the given number of holes.
func ByName(name string, holes int) (Strategy, error) {
	for _, s := range Strategies() {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	if len(name) >= len(onHolePrefix) && strings.EqualFold(name[:len(onHolePrefix)], onHolePrefix) {
		hole, err := strconv.Atoi(name[len(onHolePrefix):])
		if err != nil {
			return Strategy{}, fmt.Errorf("%w: bad hole in strategy %q", fairway.ErrConfiguration, name)
		}
		if hole < 0 || hole >= holes {
			return Strategy{}, fmt.Errorf("%w: strategy %q drafts on hole %d, the game has holes 0 to %d",
				fairway.ErrContractViolation, name, hole, holes-1)
		}
		return WeakestFirstByWinProbabilityOnHole(hole), nil
	}
	return Strategy{}, fmt.Errorf("%w: unknown assignment strategy %q", fairway.ErrConfiguration, name)
}

// ByNames looks up every name with ByName. No names gives nil.
func ByNames(names []string, holes int) ([]Strategy, error) {
	var out []Strategy
	for _, n := range names {
		s, err := ByName(strings.TrimSpace(n), holes)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
