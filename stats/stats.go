package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean/variance accumulator (Welford). It is used for
// per-entity game totals during a simulation.
type Statistic struct {
	totalIterations int

	mean float64
	m2   float64
}

func (s *Statistic) Push(val float64) {
	s.totalIterations++
	delta := val - s.mean
	s.mean += delta / float64(s.totalIterations)
	s.m2 += delta * (val - s.mean)
}

// Merge folds o into s, as if every value pushed into o had been pushed
// into s. Parallel simulation workers each keep their own Statistic and
// merge them when they are done.
func (s *Statistic) Merge(o Statistic) {
	if o.totalIterations == 0 {
		return
	}
	if s.totalIterations == 0 {
		*s = o
		return
	}
	n := s.totalIterations + o.totalIterations
	delta := o.mean - s.mean
	s.m2 += o.m2 + delta*delta*float64(s.totalIterations)*float64(o.totalIterations)/float64(n)
	s.mean += delta * float64(o.totalIterations) / float64(n)
	s.totalIterations = n
}

func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.mean
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.totalIterations-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.totalIterations == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.totalIterations))
}

func (s *Statistic) Iterations() int {
	return s.totalIterations
}
