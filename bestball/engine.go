// Package bestball simulates best-ball golf. It runs many sampled rounds
// through the allowance model and estimates every player's or team's
// expected score and chance of winning each hole.
package bestball

import (
	"context"
	"fmt"
	"slices"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/montecarlo"
	"github.com/domino14/fairway/stats"
	"github.com/domino14/fairway/tournament"
)

// Engine plays a fixed number of simulated rounds of a game.
type Engine struct {
	game        tournament.Game
	sampler     montecarlo.ScenarioSampler
	iterations  int
	threads     int
	recordGames bool
	clock       clockwork.Clock
}

type Option func(*Engine)

// WithThreads spreads iterations over n workers. It only takes effect when
// the sampler can be split into independent streams.
func WithThreads(n int) Option {
	return func(e *Engine) {
		e.threads = max(n, 1)
	}
}

// WithClock sets the clock runs are timed with.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithGameScores keeps the total of every simulated game in the metrics.
func WithGameScores(b bool) Option {
	return func(e *Engine) {
		e.recordGames = b
	}
}

func NewEngine(game tournament.Game, sampler montecarlo.ScenarioSampler, iterations int, opts ...Option) (*Engine, error) {
	if sampler == nil {
		return nil, fmt.Errorf("%w: engine needs a scenario sampler", fairway.ErrConfiguration)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be at least 1, got %d",
			fairway.ErrContractViolation, iterations)
	}
	e := &Engine{game: game, sampler: sampler, iterations: iterations, threads: 1,
		clock: clockwork.NewRealClock()}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Game() tournament.Game {
	return e.game
}

func (e *Engine) Iterations() int {
	return e.iterations
}

// PlayIndividualGame has every player play for themselves and stores the
// results on the players.
func (e *Engine) PlayIndividualGame(ctx context.Context, players []*tournament.Player) error {
	m, err := NewModel(players, nil, e.game.Holes())
	if err != nil {
		return err
	}
	metrics, err := e.Run(ctx, m)
	if err != nil {
		return err
	}
	for i, p := range m.Players() {
		p.SetMetrics(metrics[i])
	}
	return nil
}

// PlayTeamGame plays the teams against each other and stores the results on
// the teams. Player metrics are left alone.
func (e *Engine) PlayTeamGame(ctx context.Context, players []*tournament.Player, teams []*tournament.Team) error {
	if len(teams) == 0 {
		return fmt.Errorf("%w: team game without teams", fairway.ErrContractViolation)
	}
	m, err := NewModel(players, teams, e.game.Holes())
	if err != nil {
		return err
	}
	metrics, err := e.Run(ctx, m)
	if err != nil {
		return err
	}
	for _, t := range teams {
		g, _ := m.TeamIndex(t.ID())
		t.SetMetrics(metrics[g])
	}
	return nil
}

// Play runs the team game when t has teams and the individual game
// otherwise.
func (e *Engine) Play(ctx context.Context, t *tournament.Tournament) error {
	if t.HasTeams() {
		return e.PlayTeamGame(ctx, t.Players(), t.Teams())
	}
	return e.PlayIndividualGame(ctx, t.Players())
}

// Run simulates the game for the model and returns one set of metrics per
// entity: per row for an individual game, per team group for a team game.
// The sampler is reset first, so repeated runs see the same rounds.
func (e *Engine) Run(ctx context.Context, m *Model) ([]tournament.Metrics, error) {
	logger := zerolog.Ctx(ctx)
	if m.holes() != e.game.Holes() {
		return nil, fmt.Errorf("%w: model has %d holes, game has %d",
			fairway.ErrContractViolation, m.holes(), e.game.Holes())
	}
	start := e.clock.Now()
	e.sampler.Reset()

	entities := len(m.Players())
	if m.HasTeams() {
		entities = len(m.Teams())
	}

	var acc *accumulator
	var err error
	splitter, canSplit := e.sampler.(montecarlo.Splitter)
	if e.threads > 1 && canSplit && e.iterations >= e.threads {
		acc, err = e.runParallel(ctx, m, splitter, entities)
	} else {
		acc = newAccumulator(entities, e.game.Holes(), e.recordGames)
		err = e.simulate(ctx, m, e.sampler, e.iterations, acc)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("iterations", e.iterations).Int("entities", entities).
		Bool("teams", m.HasTeams()).Int("threads", e.threads).
		Dur("elapsed", e.clock.Since(start)).Msg("sim-ended")
	return acc.metrics(e.iterations), nil
}

func (e *Engine) runParallel(ctx context.Context, m *Model, splitter montecarlo.Splitter, entities int) (*accumulator, error) {
	logger := zerolog.Ctx(ctx)
	streams, err := splitter.Split(e.threads)
	if err != nil {
		return nil, err
	}
	parts := make([]*accumulator, e.threads)
	per, extra := e.iterations/e.threads, e.iterations%e.threads

	g, gctx := errgroup.WithContext(ctx)
	for t := range e.threads {
		n := per
		if t < extra {
			n++
		}
		parts[t] = newAccumulator(entities, e.game.Holes(), e.recordGames)
		g.Go(func() error {
			logger.Debug().Int("thread", t).Int("iterations", n).Msg("sim-thread-starting")
			return e.simulate(gctx, m, streams[t], n, parts[t])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, p := range parts[1:] {
		parts[0].merge(p)
	}
	return parts[0], nil
}

func (e *Engine) simulate(ctx context.Context, m *Model, sampler montecarlo.ScenarioSampler,
	iterations int, acc *accumulator) error {

	k := e.game.BestBalls()
	for range iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		scores, err := sampler.SampleGameScenario(m.Handicaps(), e.game.Holes())
		if err != nil {
			return err
		}
		scores.Add(scores, m.Allowances())
		if m.HasTeams() {
			scores = teamScores(scores, m.Teams(), k)
		}
		acc.add(scores)
	}
	return nil
}

// teamScores sums, per team and hole, the k lowest member scores. Teams with
// k members or fewer count every score.
func teamScores(scores *mat.Dense, groups [][]int, k int) *mat.Dense {
	_, holes := scores.Dims()
	out := mat.NewDense(len(groups), holes, nil)
	for g, rows := range groups {
		block := scores.Slice(rows[0], rows[len(rows)-1]+1, 0, holes)
		col := make([]float64, len(rows))
		best := min(k, len(rows))
		for h := range holes {
			mat.Col(col, h, block)
			if len(col) > k {
				slices.Sort(col)
			}
			out.Set(g, h, floats.Sum(col[:best]))
		}
	}
	return out
}

// accumulator holds running sums over simulated games.
type accumulator struct {
	scores *mat.Dense
	wins   *mat.Dense
	totals []stats.Statistic
	games  [][]float64
	record bool
}

func newAccumulator(entities, holes int, record bool) *accumulator {
	a := &accumulator{
		scores: mat.NewDense(entities, holes, nil),
		wins:   mat.NewDense(entities, holes, nil),
		totals: make([]stats.Statistic, entities),
		record: record,
	}
	if record {
		a.games = make([][]float64, entities)
	}
	return a
}

// add accumulates one game. On every hole the lowest score wins; tied
// entities split the credit evenly.
func (a *accumulator) add(scores *mat.Dense) {
	entities, holes := scores.Dims()
	a.scores.Add(a.scores, scores)
	for h := range holes {
		best := mat.Col(nil, h, scores)
		low := floats.Min(best)
		tied := 0
		for _, s := range best {
			if s == low {
				tied++
			}
		}
		credit := 1 / float64(tied)
		for i, s := range best {
			if s == low {
				a.wins.Set(i, h, a.wins.At(i, h)+credit)
			}
		}
	}
	for i := range entities {
		total := floats.Sum(scores.RawRowView(i))
		a.totals[i].Push(total)
		if a.record {
			a.games[i] = append(a.games[i], total)
		}
	}
}

func (a *accumulator) merge(o *accumulator) {
	a.scores.Add(a.scores, o.scores)
	a.wins.Add(a.wins, o.wins)
	for i := range a.totals {
		a.totals[i].Merge(o.totals[i])
		if a.record {
			a.games[i] = append(a.games[i], o.games[i]...)
		}
	}
}

func (a *accumulator) metrics(iterations int) []tournament.Metrics {
	entities, _ := a.scores.Dims()
	n := float64(iterations)
	out := make([]tournament.Metrics, entities)
	for i := range out {
		byHole := mat.Row(nil, i, a.scores)
		floats.Scale(1/n, byHole)
		winByHole := mat.Row(nil, i, a.wins)
		floats.Scale(1/n, winByHole)
		out[i] = tournament.Metrics{
			ScoreByHole:   byHole,
			AvgScore:      floats.Sum(byHole),
			WinProbByHole: winByHole,
			WinProb:       stat.Mean(winByHole, nil),
			ScoreStdev:    a.totals[i].Stdev(),
			ScoreStdErr:   a.totals[i].StandardError(),
			Iterations:    iterations,
		}
		if a.record {
			out[i].GameScores = a.games[i]
		}
	}
	return out
}
