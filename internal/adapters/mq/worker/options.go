package worker

import (
	"github.com/pictodeck/ranker/pkg/logger"
)

// Option applies a configuration option to the LedgerWorker.
type Option func(*LedgerWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *LedgerWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *LedgerWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
