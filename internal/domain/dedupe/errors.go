package dedupe

import "errors"

// Sentinel kinds for claim failures.
var (
	ErrInFlight = errors.New("game already in flight")
	ErrFull     = errors.New("too many games in flight")
)
