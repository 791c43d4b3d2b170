// Package fairway builds fair best-ball golf teams. It simulates many rounds
// of handicap-adjusted golf, estimates every player's and team's chance of
// winning, assigns players to teams with a handful of draft heuristics and
// then swaps players around until the teams are close enough in strength.
//
// The subpackages do the work; this package only holds the error kinds they
// share.
package fairway

import "errors"

var (
	// ErrContractViolation marks bad input or a broken invariant: a handicap
	// out of range, an allowance adjustment outside [0,1], a hole index out
	// of range, a team count larger than the player count and so on. These
	// are never recovered from internally.
	ErrContractViolation = errors.New("contract violation")

	// ErrConfiguration marks a missing or unusable collaborator, such as a
	// simulation set up without a score distribution table.
	ErrConfiguration = errors.New("configuration error")
)
