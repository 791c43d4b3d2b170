package montecarlo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/domino14/fairway"
)

// ScriptedSampler replays a fixed list of scenarios in order, starting over
// when it runs out. It is meant for tests.
type ScriptedSampler struct {
	scenarios []*mat.Dense
	next      int
	draws     int
}

func NewScriptedSampler(scenarios ...[][]float64) *ScriptedSampler {
	s := &ScriptedSampler{}
	for _, sc := range scenarios {
		d := mat.NewDense(len(sc), len(sc[0]), nil)
		for i, row := range sc {
			d.SetRow(i, row)
		}
		s.scenarios = append(s.scenarios, d)
	}
	return s
}

func (s *ScriptedSampler) Reset() {
	s.next = 0
}

// SampleGameScenario returns a copy of the next scripted scenario. Its shape
// must match the request.
func (s *ScriptedSampler) SampleGameScenario(handicaps []int, holes int) (*mat.Dense, error) {
	if len(s.scenarios) == 0 {
		return nil, fmt.Errorf("%w: scripted sampler has no scenarios", fairway.ErrConfiguration)
	}
	sc := s.scenarios[s.next]
	r, c := sc.Dims()
	if r != len(handicaps) || c != holes {
		return nil, fmt.Errorf("%w: scripted scenario is %dx%d, asked for %dx%d",
			fairway.ErrContractViolation, r, c, len(handicaps), holes)
	}
	s.next = (s.next + 1) % len(s.scenarios)
	s.draws++
	return mat.DenseCopyOf(sc), nil
}

// Draws is the total number of scenarios handed out, across resets.
func (s *ScriptedSampler) Draws() int {
	return s.draws
}
