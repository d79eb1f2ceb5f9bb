package formation

import "errors"

// Sentinel kinds for formation errors.
var (
	// ErrInvalidInput marks malformed input rejected before any search runs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInfeasible marks rosters whose structural constraints cannot be met
	// by any partition. Reported once, synchronously, before any search.
	ErrInfeasible = errors.New("infeasible formation")
)
