package tournament

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/fairway"
)

// Team is a group of players. Membership is exclusive: a player belongs to
// at most one team, and the player's team reference always agrees with the
// team's member list.
type Team struct {
	id      int
	members []*Player

	Name string

	metrics Metrics
}

func NewTeam(ids *IDAllocator) *Team {
	return &Team{id: ids.Next()}
}

func (t *Team) ID() int {
	return t.id
}

// Members returns a copy of the member list, in joining order.
func (t *Team) Members() []*Player {
	return slices.Clone(t.members)
}

func (t *Team) Size() int {
	return len(t.members)
}

func (t *Team) Has(p *Player) bool {
	return p.teamID == t.id && slices.Contains(t.members, p)
}

// AddPlayer puts p on the team. A player already on another team has to be
// removed from it first.
func (t *Team) AddPlayer(p *Player) error {
	if id, ok := p.TeamID(); ok {
		if id == t.id {
			return fmt.Errorf("%w: player %d is already on team %d",
				fairway.ErrContractViolation, p.id, t.id)
		}
		return fmt.Errorf("%w: player %d is on team %d, cannot join team %d",
			fairway.ErrContractViolation, p.id, id, t.id)
	}
	p.teamID = t.id
	t.members = append(t.members, p)
	return nil
}

func (t *Team) AddPlayers(ps []*Player) error {
	for _, p := range ps {
		if err := t.AddPlayer(p); err != nil {
			return err
		}
	}
	return nil
}

// RemovePlayer takes p off the team.
func (t *Team) RemovePlayer(p *Player) error {
	if !t.Has(p) {
		return fmt.Errorf("%w: player %d is not on team %d",
			fairway.ErrContractViolation, p.id, t.id)
	}
	t.members = slices.DeleteFunc(t.members, func(m *Player) bool { return m == p })
	p.teamID = NoTeam
	return nil
}

// Clear releases every member.
func (t *Team) Clear() {
	for _, p := range t.members {
		p.teamID = NoTeam
	}
	t.members = nil
}

func (t *Team) Metrics() Metrics {
	return t.metrics
}

func (t *Team) SetMetrics(m Metrics) {
	t.metrics = m
}

func (t *Team) ResetMetrics() {
	t.metrics = Metrics{}
}

// Handicaps returns the members' handicaps, sorted.
func (t *Team) Handicaps() []int {
	hcps := lo.Map(t.members, func(p *Player, _ int) int { return p.handicap })
	slices.Sort(hcps)
	return hcps
}

func (t *Team) String() string {
	hcps := lo.Map(t.Handicaps(), func(h int, _ int) string { return fmt.Sprint(h) })
	return fmt.Sprintf("Team %d - Win Prob: %.4f. Expected score: %.2f. Handicaps: %s",
		t.id, t.metrics.WinProb, t.metrics.AvgScore, strings.Join(hcps, ","))
}
