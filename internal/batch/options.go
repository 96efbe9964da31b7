package batch

import "github.com/okian/possessions/pkg/logger"

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
