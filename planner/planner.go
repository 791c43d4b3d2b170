// Package planner holds the two things fairway is used for: estimating how
// fair a set of pre-made teams is, and making fair teams from a list of
// players.
package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/assignment"
	"github.com/domino14/fairway/bestball"
	"github.com/domino14/fairway/config"
	"github.com/domino14/fairway/distributions"
	"github.com/domino14/fairway/fairness"
	"github.com/domino14/fairway/montecarlo"
	"github.com/domino14/fairway/roster"
	"github.com/domino14/fairway/swaps"
	"github.com/domino14/fairway/tournament"
)

type Planner struct {
	settings   config.Settings
	game       tournament.Game
	engine     *bestball.Engine
	evaluator  fairness.Evaluator
	generator  swaps.Generator
	strategies []assignment.Strategy
	clock      clockwork.Clock

	sampler montecarlo.ScenarioSampler
}

type Option func(*Planner)

// WithSampler replaces the Monte Carlo sampler built from the dataset.
func WithSampler(s montecarlo.ScenarioSampler) Option {
	return func(p *Planner) {
		p.sampler = s
	}
}

func WithEvaluator(e fairness.Evaluator) Option {
	return func(p *Planner) {
		p.evaluator = e
	}
}

func WithGenerator(g swaps.Generator) Option {
	return func(p *Planner) {
		p.generator = g
	}
}

// WithStrategies sets the strategies CreateTeams tries, in order.
func WithStrategies(s ...assignment.Strategy) Option {
	return func(p *Planner) {
		p.strategies = s
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(p *Planner) {
		p.clock = c
	}
}

// New wires a planner. Settings are taken as given; validate them first.
func New(settings config.Settings, dataset distributions.Dataset, opts ...Option) (*Planner, error) {
	if dataset == nil || dataset.ScoreDistributions() == nil {
		return nil, fmt.Errorf("%w: no score distributions", fairway.ErrConfiguration)
	}
	p := &Planner{settings: settings, clock: clockwork.NewRealClock()}
	for _, o := range opts {
		o(p)
	}

	var err error
	if p.game, err = tournament.NewGame(settings.Holes, settings.BestBalls); err != nil {
		return nil, err
	}
	if p.sampler == nil {
		if p.sampler, err = montecarlo.NewMonteCarloSampler(dataset.ScoreDistributions(), settings.Seed); err != nil {
			return nil, err
		}
	}
	if p.evaluator == nil {
		if p.evaluator, err = fairness.NewMaxDifference(settings.FairnessTolerance); err != nil {
			return nil, err
		}
	}
	if p.generator == nil {
		if p.generator, err = swaps.NewLowWinProbability(settings.SwapPercentile); err != nil {
			return nil, err
		}
	}
	if p.strategies == nil {
		p.strategies = assignment.Strategies()
	}
	p.engine, err = bestball.NewEngine(p.game, p.sampler, settings.Iterations,
		bestball.WithThreads(settings.Threads), bestball.WithGameScores(settings.Histogram),
		bestball.WithClock(p.clock))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Planner) Evaluator() fairness.Evaluator {
	return p.evaluator
}

// Estimate is the outcome of playing pre-made teams against each other.
type Estimate struct {
	Tournament *tournament.Tournament
	Fairness   float64
	FairEnough bool
}

// Estimate simulates the teams given in the roster. Every record needs a
// team.
func (p *Planner) Estimate(ctx context.Context, records []roster.Record) (*Estimate, error) {
	logger := zerolog.Ctx(ctx)
	players, err := newPlayers(records)
	if err != nil {
		return nil, err
	}
	labels := lo.Map(records, func(r roster.Record, _ int) string { return r.Team })
	teams, err := tournament.TeamsFromRoster(tournament.NewIDAllocator(), players, labels)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		t.Name = "Team " + t.Name
	}
	t, err := tournament.New(p.game, players, p.settings.Allowance, teams)
	if err != nil {
		return nil, err
	}
	if err := p.engine.PlayTeamGame(ctx, players, teams); err != nil {
		return nil, err
	}
	est := &Estimate{
		Tournament: t,
		Fairness:   p.evaluator.Fairness(teams),
		FairEnough: p.evaluator.IsFairEnough(teams),
	}
	logger.Info().Int("teams", len(teams)).Float64("fairness", est.Fairness).
		Bool("fair-enough", est.FairEnough).Msg("estimate-done")
	return est, nil
}

// Assignment is the outcome of making teams.
type Assignment struct {
	Tournament *tournament.Tournament
	Strategy   string
	Fairness   float64
	FairEnough bool
	// Swaps is nil unless the swap optimizer ran.
	Swaps *swaps.Report
}

// CreateTeams rates the players with an individual game when it needs to,
// tries every assignment strategy, keeps the fairest partition (the first
// one on ties) and optionally improves it by swapping players. No record
// may carry a team.
func (p *Planner) CreateTeams(ctx context.Context, records []roster.Record) (*Assignment, error) {
	logger := zerolog.Ctx(ctx)
	if r, ok := lo.Find(records, func(r roster.Record) bool { return r.Team != "" }); ok {
		return nil, fmt.Errorf("%w: %s is already on team %s",
			fairway.ErrContractViolation, r.FullName(), r.Team)
	}
	if len(p.strategies) == 0 {
		return nil, fmt.Errorf("%w: no assignment strategies", fairway.ErrConfiguration)
	}
	players, err := newPlayers(records)
	if err != nil {
		return nil, err
	}
	teams, err := tournament.EmptyTeams(tournament.NewIDAllocator(), p.settings.Teams)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		t.Name = fmt.Sprintf("Team %d", t.ID()+1)
	}
	t, err := tournament.New(p.game, players, p.settings.Allowance, teams)
	if err != nil {
		return nil, err
	}
	// Players are rated only when a strategy drafts on simulated results or
	// the swap generator will look at them.
	if p.settings.Optimize || lo.SomeBy(p.strategies, func(s assignment.Strategy) bool { return s.NeedsSimulation }) {
		if err := p.engine.PlayIndividualGame(ctx, players); err != nil {
			return nil, err
		}
	} else {
		logger.Debug().Msg("individual-game-skipped")
	}

	best := math.Inf(1)
	var bestStrategy string
	var bestPartition map[int]int
	for _, s := range p.strategies {
		if err := s.Assign(players, teams); err != nil {
			return nil, err
		}
		if err := p.engine.PlayTeamGame(ctx, players, teams); err != nil {
			return nil, err
		}
		f := p.evaluator.Fairness(teams)
		logger.Info().Str("strategy", s.Name).Float64("fairness", f).Msg("strategy-evaluated")
		if f < best {
			best, bestStrategy, bestPartition = f, s.Name, t.Assignment()
		}
	}

	if err := t.ApplyAssignment(bestPartition); err != nil {
		return nil, err
	}
	if err := p.engine.PlayTeamGame(ctx, players, teams); err != nil {
		return nil, err
	}
	a := &Assignment{Tournament: t, Strategy: bestStrategy}
	logger.Info().Str("strategy", bestStrategy).Float64("fairness", best).Msg("fairest-strategy")

	if p.settings.Optimize {
		o, err := swaps.NewOptimizer(p.generator, p.evaluator, p.engine.Play,
			swaps.WithMaxPasses(p.settings.MaxPasses),
			swaps.WithCacheSize(p.settings.CacheSize),
			swaps.WithClock(p.clock))
		if err != nil {
			return nil, err
		}
		r, err := o.Adjust(ctx, t)
		if err != nil {
			return nil, err
		}
		a.Swaps = &r
	}
	a.Fairness = p.evaluator.Fairness(teams)
	a.FairEnough = p.evaluator.IsFairEnough(teams)
	return a, nil
}

func newPlayers(records []roster.Record) ([]*tournament.Player, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no players", fairway.ErrContractViolation)
	}
	ids := tournament.NewIDAllocator()
	players := make([]*tournament.Player, len(records))
	for i, r := range records {
		pl, err := tournament.NewPlayer(ids, r.Handicap)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.FullName(), err)
		}
		pl.Name = r.FullName()
		players[i] = pl
	}
	return players, nil
}
