package lineup

import "errors"

// Sentinel kinds for lineup errors.
var (
	// ErrLineupUnavailable means the minutes source failed or had no data.
	ErrLineupUnavailable = errors.New("lineup data unavailable")
	// ErrInvalidLineup means the source answered but not with two full fives.
	ErrInvalidLineup = errors.New("invalid starting lineup")
)
