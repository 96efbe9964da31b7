package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not running")
	ErrMisconfigured = errors.New("service needs a store and a minutes source")
	ErrInvalidGameID = errors.New("invalid game id")
	ErrDuplicate     = errors.New("game already in flight")
	ErrBackpressure  = errors.New("too many games in flight")
	ErrJobNotFound   = errors.New("job not found")
	ErrStopped       = errors.New("service stopped before the game ran")
)
