package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound  = errors.New("game not found")
	ErrNilResult = errors.New("nil game result")
)
