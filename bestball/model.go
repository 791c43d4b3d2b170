package bestball

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/tournament"
)

// Model is an index-oriented snapshot of a field of players and, for team
// games, their partition into teams. Row i of every matrix the engine works
// with belongs to Players()[i]. In a team game rows are sorted by team id,
// so every team occupies a contiguous block of rows.
//
// A Model is never patched: build a new one after membership changes.
type Model struct {
	players     []*tournament.Player
	playerIndex map[int]int
	handicaps   []int
	allowances  *mat.Dense

	teamIDs   []int
	teamIndex map[int]int
	groups    [][]int
}

// NewModel builds the projection. With no teams, rows follow the order of
// players. With teams, every player must belong to one of them and every
// team must have at least one member.
func NewModel(players []*tournament.Player, teams []*tournament.Team, holes int) (*Model, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players to model", fairway.ErrContractViolation)
	}
	if holes < 1 {
		return nil, fmt.Errorf("%w: number of holes must be positive, got %d",
			fairway.ErrContractViolation, holes)
	}
	m := &Model{
		players:     slices.Clone(players),
		playerIndex: make(map[int]int, len(players)),
	}

	if len(teams) > 0 {
		known := make(map[int]bool, len(teams))
		for _, t := range teams {
			known[t.ID()] = true
		}
		for _, p := range players {
			id, ok := p.TeamID()
			if !ok || !known[id] {
				return nil, fmt.Errorf("%w: player %d is not on any of the teams",
					fairway.ErrContractViolation, p.ID())
			}
		}
		slices.SortStableFunc(m.players, func(a, b *tournament.Player) int {
			ta, _ := a.TeamID()
			tb, _ := b.TeamID()
			return cmp.Compare(ta, tb)
		})
	}

	m.handicaps = make([]int, len(m.players))
	m.allowances = mat.NewDense(len(m.players), holes, nil)
	for i, p := range m.players {
		if _, dup := m.playerIndex[p.ID()]; dup {
			return nil, fmt.Errorf("%w: player %d appears more than once",
				fairway.ErrContractViolation, p.ID())
		}
		m.playerIndex[p.ID()] = i
		m.handicaps[i] = p.Handicap()
		a := p.AllowancesByHole()
		if len(a) != holes {
			return nil, fmt.Errorf("%w: player %d has allowances for %d holes, game has %d",
				fairway.ErrContractViolation, p.ID(), len(a), holes)
		}
		m.allowances.SetRow(i, a)
	}

	if len(teams) > 0 {
		if err := m.groupTeams(teams); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) groupTeams(teams []*tournament.Team) error {
	m.teamIndex = make(map[int]int, len(teams))
	for i, p := range m.players {
		id, _ := p.TeamID()
		g, ok := m.teamIndex[id]
		if !ok {
			g = len(m.teamIDs)
			m.teamIndex[id] = g
			m.teamIDs = append(m.teamIDs, id)
			m.groups = append(m.groups, nil)
		}
		if n := len(m.groups[g]); n > 0 && m.groups[g][n-1] != i-1 {
			return fmt.Errorf("%w: rows of team %d are not contiguous",
				fairway.ErrContractViolation, id)
		}
		m.groups[g] = append(m.groups[g], i)
	}
	for _, t := range teams {
		if _, ok := m.teamIndex[t.ID()]; !ok {
			return fmt.Errorf("%w: team %d has no players", fairway.ErrContractViolation, t.ID())
		}
	}
	return nil
}

// Players returns the players in row order.
func (m *Model) Players() []*tournament.Player {
	return m.players
}

func (m *Model) PlayerIndex(id int) (int, bool) {
	i, ok := m.playerIndex[id]
	return i, ok
}

func (m *Model) Handicaps() []int {
	return m.handicaps
}

// Allowances is the players x holes allowance matrix in row order.
func (m *Model) Allowances() *mat.Dense {
	return m.allowances
}

// HasTeams reports whether the model was built for a team game.
func (m *Model) HasTeams() bool {
	return len(m.groups) > 0
}

// TeamIDs returns team ids in group order.
func (m *Model) TeamIDs() []int {
	return m.teamIDs
}

func (m *Model) TeamIndex(id int) (int, bool) {
	g, ok := m.teamIndex[id]
	return g, ok
}

// Teams returns, per group, the sorted row indexes of its members.
func (m *Model) Teams() [][]int {
	return m.groups
}

func (m *Model) holes() int {
	_, c := m.allowances.Dims()
	return c
}
