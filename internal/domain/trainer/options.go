package trainer

import (
	"github.com/pictodeck/ranker/internal/domain/forest"
	"github.com/pictodeck/ranker/pkg/logger"
)

// Option applies a configuration option to the Trainer.
type Option func(*Trainer)

// WithForestOptions forwards options to the forest fit of each run.
func WithForestOptions(opts ...forest.Option) Option {
	return func(t *Trainer) {
		t.forestOpts = opts
	}
}

// WithTestFraction sets the held-out fraction of aggregated rows.
func WithTestFraction(fraction float64) Option {
	return func(t *Trainer) {
		if fraction >= 0 && fraction < 1 {
			t.testFraction = fraction
		}
	}
}

// WithSplitSeed sets the seed of the train/held-out shuffle.
func WithSplitSeed(seed int64) Option {
	return func(t *Trainer) {
		t.splitSeed = seed
	}
}

// WithLogger sets a custom logger for the trainer.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}
