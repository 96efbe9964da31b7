package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrBadClock = errors.New("malformed game clock")
)
