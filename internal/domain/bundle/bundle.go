// Package bundle defines the deployable training artifact: one regressor
// plus the identity encoders that built its features.
package bundle

import (
	"time"

	"github.com/pictodeck/ranker/internal/domain/encoder"
	"github.com/pictodeck/ranker/internal/domain/forest"
)

// Bundle is the immutable snapshot produced by one training run. A bundle is
// never mutated after construction and may be shared across concurrent
// inference calls without synchronization. Its encoders match its model;
// codes from one bundle are meaningless against another bundle's model.
type Bundle struct {
	Model       *forest.Forest   `json:"model"`
	UserEncoder *encoder.Encoder `json:"user_encoder"`
	CardEncoder *encoder.Encoder `json:"card_encoder"`
	TrainedAt   time.Time        `json:"trained_at"`
}
