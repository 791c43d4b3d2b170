package tournament

import (
	"fmt"
	"slices"

	"github.com/domino14/fairway"
)

const (
	MinHandicap = 0
	MaxHandicap = 36

	// NoTeam is the team id of a player that has not been assigned.
	NoTeam = -1
)

// Player is a golfer with a fixed handicap. Its team reference, allowances
// and metrics change over the course of a run.
type Player struct {
	id       int
	handicap int
	teamID   int

	Name string

	allowances []float64
	metrics    Metrics
}

// NewPlayer creates a player with the next id from ids.
func NewPlayer(ids *IDAllocator, handicap int) (*Player, error) {
	if handicap < MinHandicap || handicap > MaxHandicap {
		return nil, fmt.Errorf("%w: handicap %d outside [%d, %d]",
			fairway.ErrContractViolation, handicap, MinHandicap, MaxHandicap)
	}
	return &Player{id: ids.Next(), handicap: handicap, teamID: NoTeam}, nil
}

func (p *Player) ID() int {
	return p.id
}

func (p *Player) Handicap() int {
	return p.handicap
}

// TeamID returns the id of the player's team and whether the player is on
// one.
func (p *Player) TeamID() (int, bool) {
	return p.teamID, p.teamID != NoTeam
}

// AllowancesByHole returns the per-hole stroke deductions last computed for
// the player. nil until the player joins a Tournament.
func (p *Player) AllowancesByHole() []float64 {
	return p.allowances
}

func (p *Player) setAllowances(a []float64) {
	p.allowances = slices.Clone(a)
}

func (p *Player) Metrics() Metrics {
	return p.metrics
}

func (p *Player) SetMetrics(m Metrics) {
	p.metrics = m
}

func (p *Player) ResetMetrics() {
	p.metrics = Metrics{}
}

func (p *Player) String() string {
	team := "-"
	if id, ok := p.TeamID(); ok {
		team = fmt.Sprint(id)
	}
	return fmt.Sprintf("<Player: id=%d (team %s), handicap: %d, win prob: %.4f, expected score: %.2f>",
		p.id, team, p.handicap, p.metrics.WinProb, p.metrics.AvgScore)
}
