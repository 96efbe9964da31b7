package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadRow        = errors.New("malformed play-by-play row")
	ErrBadBody       = errors.New("malformed events body")
	ErrTooManyEvents = errors.New("too many events")
)
