package batch

import "errors"

// Sentinel kinds for batch errors.
var (
	ErrTooManyFailures = errors.New("too many consecutive failed games")
	ErrNoInput         = errors.New("no input file and no game ids")
	ErrNoFetcher       = errors.New("game ids without an input file need a play-by-play fetcher")
)
