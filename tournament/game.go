package tournament

import (
	"fmt"

	"github.com/domino14/fairway"
)

const DefaultHoles = 18

// Game describes the best-ball format being played.
type Game struct {
	holes     int
	bestBalls int
}

// NewGame returns a best-ball game over holes holes where the bestBalls
// lowest scores of each team count on every hole.
func NewGame(holes, bestBalls int) (Game, error) {
	if holes < 1 {
		return Game{}, fmt.Errorf("%w: number of holes must be at least 1, got %d",
			fairway.ErrContractViolation, holes)
	}
	if bestBalls < 1 {
		return Game{}, fmt.Errorf("%w: number of best balls must be at least 1, got %d",
			fairway.ErrContractViolation, bestBalls)
	}
	return Game{holes: holes, bestBalls: bestBalls}, nil
}

func (g Game) Holes() int {
	return g.holes
}

func (g Game) BestBalls() int {
	return g.bestBalls
}

func (g Game) String() string {
	return fmt.Sprintf("best-ball(%d) over %d holes", g.bestBalls, g.holes)
}
