// Package tournament holds the domain objects of a best-ball event: players,
// teams, the game being played and the Tournament that binds them together.
package tournament

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/allowance"
)

// Tournament owns its players and teams. Building one (re)computes every
// player's allowances, since allowances are relative to the lowest handicap
// in the field.
type Tournament struct {
	game       Game
	adjustment float64
	players    []*Player
	teams      []*Team
}

// New validates the field and computes allowances. teams may be nil for an
// individual game.
func New(game Game, players []*Player, adjustment float64, teams []*Team) (*Tournament, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: a tournament needs at least one player", fairway.ErrContractViolation)
	}
	if adjustment < 0 || adjustment > 1 {
		return nil, fmt.Errorf("%w: allowance adjustment %v outside [0, 1]",
			fairway.ErrContractViolation, adjustment)
	}
	if teams != nil && (len(teams) < 1 || len(teams) > len(players)) {
		return nil, fmt.Errorf("%w: %d teams for %d players",
			fairway.ErrContractViolation, len(teams), len(players))
	}
	if dups := lo.FindDuplicatesBy(players, func(p *Player) int { return p.id }); len(dups) > 0 {
		return nil, fmt.Errorf("%w: player %d appears more than once",
			fairway.ErrContractViolation, dups[0].id)
	}

	hcps := lo.Map(players, func(p *Player, _ int) int { return p.handicap })
	allowances, err := allowance.Allowances(hcps, game.Holes(), adjustment)
	if err != nil {
		return nil, err
	}
	for i, p := range players {
		p.setAllowances(mat.Row(nil, i, allowances))
	}
	return &Tournament{
		game:       game,
		adjustment: adjustment,
		players:    slices.Clone(players),
		teams:      slices.Clone(teams),
	}, nil
}

func (t *Tournament) Game() Game {
	return t.game
}

func (t *Tournament) AllowanceAdjustment() float64 {
	return t.adjustment
}

func (t *Tournament) Players() []*Player {
	return t.players
}

func (t *Tournament) Teams() []*Team {
	return t.teams
}

func (t *Tournament) HasTeams() bool {
	return len(t.teams) > 0
}

// Team looks a team up by id.
func (t *Tournament) Team(id int) (*Team, bool) {
	return lo.Find(t.teams, func(tm *Team) bool { return tm.id == id })
}

// Swap exchanges the teams of a and b.
func (t *Tournament) Swap(a, b *Player) error {
	ta, ok := t.teamOf(a)
	if !ok {
		return fmt.Errorf("%w: player %d has no team", fairway.ErrContractViolation, a.id)
	}
	tb, ok := t.teamOf(b)
	if !ok {
		return fmt.Errorf("%w: player %d has no team", fairway.ErrContractViolation, b.id)
	}
	if ta == tb {
		return fmt.Errorf("%w: players %d and %d are both on team %d",
			fairway.ErrContractViolation, a.id, b.id, ta.id)
	}
	if err := ta.RemovePlayer(a); err != nil {
		return err
	}
	if err := tb.RemovePlayer(b); err != nil {
		return err
	}
	if err := ta.AddPlayer(b); err != nil {
		return err
	}
	return tb.AddPlayer(a)
}

func (t *Tournament) teamOf(p *Player) (*Team, bool) {
	id, ok := p.TeamID()
	if !ok {
		return nil, false
	}
	return t.Team(id)
}

// Assignment returns the current partition as player id -> team id.
// Unassigned players are left out.
func (t *Tournament) Assignment() map[int]int {
	a := make(map[int]int, len(t.players))
	for _, p := range t.players {
		if id, ok := p.TeamID(); ok {
			a[p.id] = id
		}
	}
	return a
}

// ApplyAssignment rebuilds the teams from a partition previously returned
// by Assignment. Team metrics are left alone; callers re-run the game.
func (t *Tournament) ApplyAssignment(a map[int]int) error {
	for pid, tid := range a {
		if _, ok := t.Team(tid); !ok {
			return fmt.Errorf("%w: unknown team %d for player %d",
				fairway.ErrContractViolation, tid, pid)
		}
	}
	for _, tm := range t.teams {
		tm.Clear()
	}
	for _, p := range t.players {
		tid, ok := a[p.id]
		if !ok {
			continue
		}
		tm, _ := t.Team(tid)
		if err := tm.AddPlayer(p); err != nil {
			return err
		}
	}
	return nil
}

// EmptyTeams makes n teams with no members.
func EmptyTeams(ids *IDAllocator, n int) ([]*Team, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: number of teams must be at least 1, got %d",
			fairway.ErrContractViolation, n)
	}
	teams := make([]*Team, n)
	for i := range teams {
		teams[i] = NewTeam(ids)
	}
	return teams, nil
}

// TeamsFromRoster groups players by the team label they came with. labels
// is parallel to players; teams are created in order of first appearance
// and named after their label.
func TeamsFromRoster(ids *IDAllocator, players []*Player, labels []string) ([]*Team, error) {
	if len(labels) != len(players) {
		return nil, fmt.Errorf("%w: %d team labels for %d players",
			fairway.ErrContractViolation, len(labels), len(players))
	}
	byLabel := map[string]*Team{}
	var teams []*Team
	for i, p := range players {
		label := labels[i]
		if label == "" {
			return nil, fmt.Errorf("%w: player %d (%s) has no team",
				fairway.ErrContractViolation, p.id, p.Name)
		}
		tm, ok := byLabel[label]
		if !ok {
			tm = NewTeam(ids)
			tm.Name = label
			byLabel[label] = tm
			teams = append(teams, tm)
		}
		if err := tm.AddPlayer(p); err != nil {
			return nil, err
		}
	}
	return teams, nil
}
