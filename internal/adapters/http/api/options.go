package api

// Option applies a configuration option to the GamesHandler.
type Option func(*GamesHandler)

// WithMaxBodyBytes caps the size of a submitted events body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *GamesHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithMaxEvents caps the number of events in one submission.
func WithMaxEvents(n int) Option {
	return func(h *GamesHandler) {
		if n > 0 {
			h.maxEvents = n
		}
	}
}
