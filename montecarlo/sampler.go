// Package montecarlo draws simulated rounds of golf. A round, or scenario,
// is a players x holes matrix of raw hole scores; the best-ball engine adds
// allowances and aggregates many of them.
package montecarlo

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"

	"github.com/domino14/fairway"
	"github.com/domino14/fairway/distributions"
)

// ScenarioSampler produces simulated rounds. After Reset, a sampler must
// produce the same sequence of scenarios for the same sequence of calls.
// Samplers are not safe for concurrent use.
type ScenarioSampler interface {
	Reset()
	SampleGameScenario(handicaps []int, holes int) (*mat.Dense, error)
}

// Splitter is implemented by samplers that can hand out independent streams
// for parallel simulation.
type Splitter interface {
	Split(n int) ([]ScenarioSampler, error)
}

// MonteCarloSampler draws every hole score independently from the score
// distribution of the player's handicap.
type MonteCarloSampler struct {
	dists      *distributions.ScoreDistributions
	seed       uint64
	src        *chachaSource
	byHandicap []distuv.Categorical
	scores     []float64
}

// NewMonteCarloSampler returns a sampler over dists. A seed of 0 picks a
// random one; call Seed to find out which.
func NewMonteCarloSampler(dists *distributions.ScoreDistributions, seed uint64) (*MonteCarloSampler, error) {
	if dists == nil {
		return nil, fmt.Errorf("%w: sampler needs a score distribution table", fairway.ErrConfiguration)
	}
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64) + 1
		log.Info().Uint64("seed", seed).Msg("generated-random-seed")
	}
	return newSampler(dists, seed)
}

func newSampler(dists *distributions.ScoreDistributions, seed uint64) (*MonteCarloSampler, error) {
	s := &MonteCarloSampler{
		dists: dists,
		seed:  seed,
		src:   &chachaSource{},
	}
	s.Reset()

	s.byHandicap = make([]distuv.Categorical, dists.Handicaps())
	for h := range s.byHandicap {
		w, err := dists.Distribution(h)
		if err != nil {
			return nil, err
		}
		s.byHandicap[h] = distuv.NewCategorical(w, s.src)
	}
	for _, sc := range dists.Scores() {
		s.scores = append(s.scores, float64(sc))
	}
	return s, nil
}

// Seed returns the seed the stream restarts from on Reset.
func (s *MonteCarloSampler) Seed() uint64 {
	return s.seed
}

// Reset rewinds the random stream to the start.
func (s *MonteCarloSampler) Reset() {
	s.src.rng = frand.NewCustom(expandSeed(s.seed), 1024, 12)
}

// SampleGameScenario draws holes scores for every handicap. Row i of the
// result belongs to handicaps[i].
func (s *MonteCarloSampler) SampleGameScenario(handicaps []int, holes int) (*mat.Dense, error) {
	if holes < 1 {
		return nil, fmt.Errorf("%w: number of holes must be positive, got %d",
			fairway.ErrContractViolation, holes)
	}
	if len(handicaps) == 0 {
		return nil, fmt.Errorf("%w: no players to sample", fairway.ErrContractViolation)
	}
	for _, h := range handicaps {
		if h < 0 || h >= len(s.byHandicap) {
			return nil, fmt.Errorf("%w: no score distribution for handicap %d",
				fairway.ErrContractViolation, h)
		}
	}
	scenario := mat.NewDense(len(handicaps), holes, nil)
	for i, h := range handicaps {
		row := scenario.RawRowView(i)
		for j := range row {
			row[j] = s.scores[int(s.byHandicap[h].Rand())]
		}
	}
	return scenario, nil
}

// Split returns n samplers over the same table, each with its own stream
// derived from this sampler's seed. The same seed always yields the same
// streams.
func (s *MonteCarloSampler) Split(n int) ([]ScenarioSampler, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot split into %d streams", fairway.ErrContractViolation, n)
	}
	out := make([]ScenarioSampler, n)
	for i := range out {
		child, err := newSampler(s.dists, mix(s.seed, uint64(i)+1))
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

// mix derives a new 64-bit value from a seed and a stream index.
func mix(seed, stream uint64) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], seed)
	binary.LittleEndian.PutUint64(b[8:], stream)
	return xxhash.Sum64(b[:])
}

// expandSeed stretches a 64-bit seed into the 32 bytes ChaCha wants.
func expandSeed(seed uint64) []byte {
	b := make([]byte, 32)
	for i := range 4 {
		binary.LittleEndian.PutUint64(b[i*8:], mix(seed, math.MaxUint64-uint64(i)))
	}
	return b
}

// chachaSource adapts a frand stream to the rand.Source the gonum
// distributions draw from.
type chachaSource struct {
	rng *frand.RNG
	buf [8]byte
}

func (c *chachaSource) Uint64() uint64 {
	c.rng.Read(c.buf[:])
	return binary.LittleEndian.Uint64(c.buf[:])
}
