package planner

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/assignment"
	"github.com/domino14/fairway/config"
	"github.com/domino14/fairway/distributions"
	"github.com/domino14/fairway/montecarlo"
	"github.com/domino14/fairway/roster"
	"github.com/domino14/fairway/tournament"
)

func settings() config.Settings {
	return config.Settings{
		Iterations:        300,
		BestBalls:         1,
		Holes:             18,
		Allowance:         1,
		Teams:             2,
		FairnessTolerance: 0.1,
		SwapPercentile:    0.25,
		Seed:              31,
		Threads:           1,
		CacheSize:         64,
	}
}

func dataset(t *testing.T) distributions.Dataset {
	t.Helper()
	d, err := distributions.Synthetic(36, 10, 4)
	require.NoError(t, err)
	return distributions.NewStaticDataset(d)
}

func records(team string, hcps ...int) []roster.Record {
	out := make([]roster.Record, len(hcps))
	for i, h := range hcps {
		out[i] = roster.Record{Name: "P", LastName: string(rune('A' + i)), Handicap: h, Team: team}
	}
	return out
}

// stacked fills the first team before moving on to the next.
var stacked = assignment.Strategy{
	Name:     "Stacked",
	Goodness: assignment.ByHandicap,
	Placement: func(teams []*tournament.Team, _ assignment.Goodness, open func(*tournament.Team) bool) iter.Seq[*tournament.Team] {
		return func(yield func(*tournament.Team) bool) {
			for _, t := range teams {
				for open(t) {
					if !yield(t) {
						return
					}
				}
			}
		}
	},
}

func TestEstimate(t *testing.T) {
	is := is.New(t)
	s := settings()
	s.Allowance = 0
	p, err := New(s, dataset(t))
	is.NoErr(err)

	recs := append(records("red", 0, 36), records("blue", 30, 33)...)
	est, err := p.Estimate(context.Background(), recs)
	is.NoErr(err)

	teams := est.Tournament.Teams()
	is.Equal(len(teams), 2)
	is.Equal(teams[0].Name, "Team red")
	is.Equal(teams[0].Handicaps(), []int{0, 36})
	assert.InDelta(t, 1.0, teams[0].Metrics().WinProb+teams[1].Metrics().WinProb, 1e-9)
	is.Equal(est.Fairness, p.Evaluator().Fairness(teams))
	// without allowances the scratch golfer carries red
	is.True(teams[0].Metrics().WinProb > teams[1].Metrics().WinProb)
	is.Equal(est.Tournament.Players()[1].Name, "P B")
}

func TestEstimateNeedsTeams(t *testing.T) {
	p, err := New(settings(), dataset(t))
	require.NoError(t, err)
	_, err = p.Estimate(context.Background(), records("", 3, 5))
	assert.ErrorIs(t, err, fairway.ErrContractViolation)
}

func TestCreateTeamsPicksFairest(t *testing.T) {
	is := is.New(t)
	p, err := New(settings(), dataset(t), WithStrategies(stacked, assignment.ABCDByHandicap))
	is.NoErr(err)

	a, err := p.CreateTeams(context.Background(), records("", 36, 0, 36, 0))
	is.NoErr(err)
	is.Equal(a.Strategy, "ABCDByHandicap")
	is.Equal(a.Swaps, nil)
	for _, tm := range a.Tournament.Teams() {
		is.Equal(tm.Handicaps(), []int{0, 36})
	}
	is.Equal(a.Fairness, p.Evaluator().Fairness(a.Tournament.Teams()))
	// neither strategy reads simulated results, so nobody was rated
	for _, pl := range a.Tournament.Players() {
		is.Equal(len(pl.Metrics().WinProbByHole), 0)
	}
}

// evenRound has every player make a four on every hole.
func evenRound(players, holes int) [][]float64 {
	sc := make([][]float64, players)
	for i := range sc {
		sc[i] = make([]float64, holes)
		for h := range sc[i] {
			sc[i][h] = 4
		}
	}
	return sc
}

func TestCreateTeamsWithNamedStrategies(t *testing.T) {
	type tc struct {
		strategy string
		optimize bool
		draws    int
		rated    bool
	}
	// draws: individual game (if any), one run per strategy, the replay of
	// the winner
	cases := []tc{
		{"ZigZagByHandicap", false, 2 * 5, false},
		{"WeakestFirstByWinProbabilityOnHole-3", false, 3 * 5, true},
		{"ABCDByHandicap", true, 3 * 5, true},
	}
	for _, c := range cases {
		t.Run(c.strategy, func(t *testing.T) {
			is := is.New(t)
			s := settings()
			s.Iterations = 5
			s.Allowance = 0
			s.Optimize = c.optimize
			ss, err := assignment.ByNames([]string{c.strategy}, s.Holes)
			is.NoErr(err)
			sampler := montecarlo.NewScriptedSampler(evenRound(4, s.Holes))
			p, err := New(s, dataset(t), WithSampler(sampler), WithStrategies(ss...))
			is.NoErr(err)

			a, err := p.CreateTeams(context.Background(), records("", 3, 9, 14, 22))
			is.NoErr(err)
			is.Equal(a.Strategy, c.strategy)
			is.Equal(sampler.Draws(), c.draws)
			for _, pl := range a.Tournament.Players() {
				is.Equal(len(pl.Metrics().WinProbByHole) == s.Holes, c.rated)
			}
		})
	}
}

func TestCreateTeamsDefaultStrategies(t *testing.T) {
	s := settings()
	s.Teams = 3
	s.Optimize = true
	s.FairnessTolerance = 0.01
	p, err := New(s, dataset(t))
	require.NoError(t, err)

	a, err := p.CreateTeams(context.Background(), records("", 0, 4, 8, 12, 16, 20, 24, 28, 32))
	require.NoError(t, err)
	require.NotNil(t, a.Swaps)
	assert.LessOrEqual(t, a.Swaps.FinalFairness, a.Swaps.InitialFairness)
	assert.Equal(t, a.Swaps.FinalFairness, a.Fairness)
	assert.Contains(t, names(assignment.Strategies()), a.Strategy)

	total := 0
	for _, tm := range a.Tournament.Teams() {
		assert.Equal(t, 3, tm.Size())
		total += tm.Size()
	}
	assert.Equal(t, 9, total)
}

func names(ss []assignment.Strategy) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Name
	}
	return out
}

func TestCreateTeamsContract(t *testing.T) {
	is := is.New(t)
	p, err := New(settings(), dataset(t))
	is.NoErr(err)

	_, err = p.CreateTeams(context.Background(), records("red", 1, 2))
	is.True(errors.Is(err, fairway.ErrContractViolation))

	_, err = p.CreateTeams(context.Background(), records("", 1))
	is.True(errors.Is(err, fairway.ErrContractViolation)) // 2 teams, 1 player

	_, err = p.CreateTeams(context.Background(), records("", 1, 40))
	is.True(errors.Is(err, fairway.ErrContractViolation)) // handicap out of range

	_, err = p.CreateTeams(context.Background(), nil)
	is.True(errors.Is(err, fairway.ErrContractViolation))
}

func TestNewErrors(t *testing.T) {
	is := is.New(t)
	_, err := New(settings(), nil)
	is.True(errors.Is(err, fairway.ErrConfiguration))
	_, err = New(settings(), distributions.NewStaticDataset(nil))
	is.True(errors.Is(err, fairway.ErrConfiguration))

	s := settings()
	s.Iterations = 0
	_, err = New(s, dataset(t))
	is.True(errors.Is(err, fairway.ErrContractViolation))
}
