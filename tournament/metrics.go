package tournament

import "slices"

// Metrics are the simulated results for a player or a team. Lower scores
// are better.
type Metrics struct {
	ScoreByHole   []float64
	AvgScore      float64
	WinProbByHole []float64
	// WinProb is the mean of WinProbByHole: every hole is its own contest.
	WinProb float64

	ScoreStdev  float64
	ScoreStdErr float64
	Iterations  int
	// GameScores holds the total of every simulated game. Only filled in
	// when the engine is asked to record them.
	GameScores []float64
}

// Clone returns a deep copy.
func (m Metrics) Clone() Metrics {
	m.ScoreByHole = slices.Clone(m.ScoreByHole)
	m.WinProbByHole = slices.Clone(m.WinProbByHole)
	m.GameScores = slices.Clone(m.GameScores)
	return m
}
