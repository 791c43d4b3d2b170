package swaps

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/fairness"
	"github.com/domino14/fairway/tournament"
)

// StopReason tells why Adjust stopped.
type StopReason int

const (
	StopFairEnough StopReason = iota
	StopNoImprovingSwap
	StopMaxPasses
)

func (s StopReason) String() string {
	switch s {
	case StopFairEnough:
		return "fair-enough"
	case StopNoImprovingSwap:
		return "no-improving-swap"
	case StopMaxPasses:
		return "max-passes"
	}
	return fmt.Sprintf("StopReason(%d)", int(s))
}

func (s StopReason) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EvaluateFunc re-plays the team game and stores fresh metrics on the
// tournament's teams.
type EvaluateFunc func(ctx context.Context, t *tournament.Tournament) error

// Report summarises a call to Adjust.
type Report struct {
	Passes          int           `yaml:"passes"`
	Accepted        int           `yaml:"accepted"`
	Evaluations     int           `yaml:"evaluations"`
	CacheHits       int           `yaml:"cache-hits"`
	InitialFairness float64       `yaml:"initial-fairness"`
	FinalFairness   float64       `yaml:"final-fairness"`
	FairEnough      bool          `yaml:"fair-enough"`
	Stop            StopReason    `yaml:"stop"`
	Elapsed         time.Duration `yaml:"elapsed"`
}

const DefaultCacheSize = 256

// Optimizer is a local search over team partitions. A swap is kept only if
// it strictly lowers the unfairness, so the search always terminates.
type Optimizer struct {
	generator Generator
	evaluator fairness.Evaluator
	evaluate  EvaluateFunc

	maxPasses int
	cacheSize int
	clock     clockwork.Clock
	cache     *lru.Cache[uint64, []tournament.Metrics]
}

type OptimizerOption func(*Optimizer)

// WithMaxPasses stops the search after n passes. 0 means no limit.
func WithMaxPasses(n int) OptimizerOption {
	return func(o *Optimizer) {
		o.maxPasses = n
	}
}

// WithCacheSize sets how many evaluated partitions are remembered. 0 turns
// the cache off.
func WithCacheSize(n int) OptimizerOption {
	return func(o *Optimizer) {
		o.cacheSize = n
	}
}

func WithClock(c clockwork.Clock) OptimizerOption {
	return func(o *Optimizer) {
		o.clock = c
	}
}

func NewOptimizer(generator Generator, evaluator fairness.Evaluator, evaluate EvaluateFunc,
	opts ...OptimizerOption) (*Optimizer, error) {

	if generator == nil || evaluator == nil || evaluate == nil {
		return nil, fmt.Errorf("%w: optimizer needs a swap generator, a fairness evaluator and a game to play",
			fairway.ErrConfiguration)
	}
	o := &Optimizer{
		generator: generator,
		evaluator: evaluator,
		evaluate:  evaluate,
		cacheSize: DefaultCacheSize,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxPasses < 0 {
		return nil, fmt.Errorf("%w: max passes cannot be negative", fairway.ErrContractViolation)
	}
	if o.cacheSize > 0 {
		c, err := lru.New[uint64, []tournament.Metrics](o.cacheSize)
		if err != nil {
			return nil, err
		}
		o.cache = c
	}
	return o, nil
}

// Adjust swaps players in t until the teams are fair enough, no candidate
// swap improves fairness or the pass limit is hit. Team metrics must be
// current when Adjust is called; they are current again when it returns.
func (o *Optimizer) Adjust(ctx context.Context, t *tournament.Tournament) (Report, error) {
	logger := zerolog.Ctx(ctx)
	if !t.HasTeams() {
		return Report{}, fmt.Errorf("%w: cannot swap players in a game without teams",
			fairway.ErrContractViolation)
	}
	start := o.clock.Now()
	teams := t.Teams()
	current := o.evaluator.Fairness(teams)
	r := Report{InitialFairness: current}
	o.remember(t)

	for {
		if o.evaluator.IsFairEnough(teams) {
			r.Stop = StopFairEnough
			break
		}
		if o.maxPasses > 0 && r.Passes >= o.maxPasses {
			r.Stop = StopMaxPasses
			break
		}
		r.Passes++
		improved := false
		for _, s := range o.generator.Swaps(t) {
			saved := snapshot(teams)
			if err := t.Swap(s.A, s.B); err != nil {
				return r, err
			}
			if err := o.evaluateCached(ctx, t, &r); err != nil {
				return r, err
			}
			if f := o.evaluator.Fairness(teams); f < current {
				logger.Debug().Stringer("swap", s).Float64("from", current).Float64("to", f).
					Msg("swap-accepted")
				current = f
				r.Accepted++
				improved = true
				break
			}
			if err := t.Swap(s.A, s.B); err != nil {
				return r, err
			}
			restore(teams, saved)
		}
		if !improved {
			r.Stop = StopNoImprovingSwap
			break
		}
	}

	r.FinalFairness = current
	r.FairEnough = o.evaluator.IsFairEnough(teams)
	r.Elapsed = o.clock.Since(start)
	logger.Info().Int("passes", r.Passes).Int("accepted", r.Accepted).
		Int("evaluations", r.Evaluations).Int("cache-hits", r.CacheHits).
		Float64("fairness", r.FinalFairness).Stringer("stop", r.Stop).Msg("swaps-done")
	return r, nil
}

func (o *Optimizer) evaluateCached(ctx context.Context, t *tournament.Tournament, r *Report) error {
	if o.cache != nil {
		if m, ok := o.cache.Get(Fingerprint(t)); ok {
			restore(t.Teams(), m)
			r.CacheHits++
			return nil
		}
	}
	if err := o.evaluate(ctx, t); err != nil {
		return err
	}
	r.Evaluations++
	o.remember(t)
	return nil
}

func (o *Optimizer) remember(t *tournament.Tournament) {
	if o.cache != nil {
		o.cache.Add(Fingerprint(t), snapshot(t.Teams()))
	}
}

// Fingerprint hashes the team partition of t. Two tournaments with the same
// players on the same teams have the same fingerprint, whatever the member
// order.
func Fingerprint(t *tournament.Tournament) uint64 {
	teams := slices.Clone(t.Teams())
	slices.SortFunc(teams, func(a, b *tournament.Team) int { return a.ID() - b.ID() })
	d := xxhash.New()
	var buf [8]byte
	write := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		d.Write(buf[:])
	}
	for _, tm := range teams {
		write(tm.ID())
		ids := lo.Map(tm.Members(), func(p *tournament.Player, _ int) int { return p.ID() })
		slices.Sort(ids)
		write(len(ids))
		for _, id := range ids {
			write(id)
		}
	}
	return d.Sum64()
}

func snapshot(teams []*tournament.Team) []tournament.Metrics {
	return lo.Map(teams, func(t *tournament.Team, _ int) tournament.Metrics { return t.Metrics().Clone() })
}

func restore(teams []*tournament.Team, m []tournament.Metrics) {
	for i, t := range teams {
		t.SetMetrics(m[i].Clone())
	}
}
