package assignment

import (
	"errors"
	"slices"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/tournament"
)

func setup(t *testing.T, nTeams int, hcps ...int) ([]*tournament.Player, []*tournament.Team) {
	t.Helper()
	ids, tids := tournament.NewIDAllocator(), tournament.NewIDAllocator()
	var ps []*tournament.Player
	for _, h := range hcps {
		p, err := tournament.NewPlayer(ids, h)
		if err != nil {
			t.Fatal(err)
		}
		ps = append(ps, p)
	}
	teams, err := tournament.EmptyTeams(tids, nTeams)
	if err != nil {
		t.Fatal(err)
	}
	return ps, teams
}

func TestPlacements(t *testing.T) {
	type tc struct {
		strategy Strategy
		expected [][]int
	}
	cases := []tc{
		{ABCDByHandicap, [][]int{{1, 4, 7}, {3, 6}, {2, 5}}},
		{ZigZagByHandicap, [][]int{{1, 2, 7}, {3, 6}, {4, 5}}},
		{WeakestFirstByHandicap, [][]int{{1, 2, 7}, {3, 6}, {4, 5}}},
	}
	for _, c := range cases {
		t.Run(c.strategy.Name, func(t *testing.T) {
			is := is.New(t)
			ps, teams := setup(t, 3, 3, 7, 1, 5, 2, 6, 4)
			is.NoErr(c.strategy.Assign(ps, teams))
			for i, tm := range teams {
				is.Equal(tm.Handicaps(), c.expected[i])
			}
		})
	}
}

func TestWeakestFirstRekeys(t *testing.T) {
	is := is.New(t)
	ps, teams := setup(t, 2, 10, 9, 1, 1)
	// 10 -> A, 9 -> B. B is now weaker and takes a 1, which ties the teams
	// at 10; the tie goes to A.
	is.NoErr(WeakestFirstByHandicap.Assign(ps, teams))
	is.Equal(teams[0].Handicaps(), []int{1, 10})
	is.Equal(teams[1].Handicaps(), []int{1, 9})
}

func TestAssignByWinProbability(t *testing.T) {
	is := is.New(t)
	ps, teams := setup(t, 2, 0, 0, 0, 0)
	for i, wp := range []float64{0.1, 0.4, 0.3, 0.2} {
		ps[i].SetMetrics(tournament.Metrics{WinProb: wp, WinProbByHole: []float64{wp, 1 - wp}})
	}
	is.NoErr(ABCDByWinProbability.Assign(ps, teams))
	is.Equal(teams[0].Members(), []*tournament.Player{ps[1], ps[3]})
	is.Equal(teams[1].Members(), []*tournament.Player{ps[2], ps[0]})

	// on hole 1 the order flips
	is.NoErr(WeakestFirstByWinProbabilityOnHole(1).Assign(ps, teams))
	is.Equal(teams[0].Members(), []*tournament.Player{ps[0], ps[1]})
	is.Equal(teams[1].Members(), []*tournament.Player{ps[3], ps[2]})
}

func TestTeamSizes(t *testing.T) {
	for _, s := range Strategies() {
		t.Run(s.Name, func(t *testing.T) {
			is := is.New(t)
			ps, teams := setup(t, 4, 0, 3, 6, 9, 12, 15, 18, 21, 24, 27)
			for i, p := range ps {
				p.SetMetrics(tournament.Metrics{WinProb: float64(i) / 100})
			}
			// assigning twice reuses the same teams
			is.NoErr(s.Assign(ps, teams))
			is.NoErr(s.Assign(ps, teams))

			sizes := make([]int, len(teams))
			total := 0
			for i, tm := range teams {
				sizes[i] = tm.Size()
				total += tm.Size()
				is.Equal(tm.Metrics().WinProbByHole, nil)
			}
			slices.Sort(sizes)
			is.Equal(sizes, []int{2, 2, 3, 3})
			is.Equal(total, len(ps))
			for _, p := range ps {
				_, ok := p.TeamID()
				is.True(ok)
			}
		})
	}
}

func TestMoreTeamsThanPlayers(t *testing.T) {
	is := is.New(t)
	ps, teams := setup(t, 3, 5, 8)
	is.NoErr(ZigZagByHandicap.Assign(ps, teams))
	is.Equal(teams[0].Handicaps(), []int{8})
	is.Equal(teams[1].Handicaps(), []int{5})
	is.Equal(teams[2].Size(), 0)
}

func TestAssignContract(t *testing.T) {
	is := is.New(t)
	ps, _ := setup(t, 1, 5, 8)
	err := ABCDByHandicap.Assign(ps, nil)
	is.True(errors.Is(err, fairway.ErrContractViolation))
}

func TestByName(t *testing.T) {
	is := is.New(t)
	s, err := ByName("zigzagbyhandicap", 18)
	is.NoErr(err)
	is.Equal(s.Name, "ZigZagByHandicap")

	s, err = ByName("WeakestFirstByWinProbabilityOnHole-4", 18)
	is.NoErr(err)
	is.Equal(s.Name, "WeakestFirstByWinProbabilityOnHole-4")
	is.True(s.NeedsSimulation)

	_, err = ByName("Random", 18)
	is.True(errors.Is(err, fairway.ErrConfiguration))
	_, err = ByName("WeakestFirstByWinProbabilityOnHole-x", 18)
	is.True(errors.Is(err, fairway.ErrConfiguration))

	is.Equal(len(Strategies()), 6)
}

func TestByNameHoleOutOfRange(t *testing.T) {
	type tc struct {
		name  string
		holes int
	}
	for _, c := range []tc{
		{"WeakestFirstByWinProbabilityOnHole-99", 2},
		{"WeakestFirstByWinProbabilityOnHole-18", 18},
		{"WeakestFirstByWinProbabilityOnHole--1", 18},
	} {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			_, err := ByName(c.name, c.holes)
			is.True(errors.Is(err, fairway.ErrContractViolation))
		})
	}
	is := is.New(t)
	s, err := ByName("WeakestFirstByWinProbabilityOnHole-17", 18)
	is.NoErr(err)
	is.Equal(s.Name, "WeakestFirstByWinProbabilityOnHole-17")
}

func TestAssignOnHoleNeedsResults(t *testing.T) {
	is := is.New(t)
	ps, teams := setup(t, 2, 3, 5, 8, 12)
	for _, p := range ps {
		p.SetMetrics(tournament.Metrics{WinProbByHole: []float64{0.25, 0.25}})
	}
	err := WeakestFirstByWinProbabilityOnHole(99).Assign(ps, teams)
	is.True(errors.Is(err, fairway.ErrContractViolation))
	for _, tm := range teams {
		is.Equal(tm.Size(), 0)
	}

	ps[2].ResetMetrics()
	err = WeakestFirstByWinProbabilityOnHole(1).Assign(ps, teams)
	is.True(errors.Is(err, fairway.ErrContractViolation)) // no individual game played

	ps[2].SetMetrics(tournament.Metrics{WinProbByHole: []float64{0.25, 0.25}})
	is.NoErr(WeakestFirstByWinProbabilityOnHole(1).Assign(ps, teams))
}

func TestByNames(t *testing.T) {
	is := is.New(t)
	ss, err := ByNames([]string{"ABCDByHandicap", " WeakestFirstByWinProbabilityOnHole-2"}, 9)
	is.NoErr(err)
	is.Equal(len(ss), 2)
	is.Equal(ss[1].Name, "WeakestFirstByWinProbabilityOnHole-2")

	ss, err = ByNames(nil, 9)
	is.NoErr(err)
	is.Equal(len(ss), 0)

	_, err = ByNames([]string{"ABCDByHandicap", "Coinflip"}, 9)
	is.True(errors.Is(err, fairway.ErrConfiguration))
}
