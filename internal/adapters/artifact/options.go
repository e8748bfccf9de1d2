package artifact

import "github.com/pictodeck/ranker/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
