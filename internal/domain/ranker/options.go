package ranker

import "github.com/pictodeck/ranker/pkg/logger"

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithLogger sets a custom logger for the ranker.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}
