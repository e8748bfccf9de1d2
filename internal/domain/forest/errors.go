package forest

import "errors"

// Sentinel kinds for forest errors.
var (
	ErrNoSamples = errors.New("no training samples")
	ErrNotFitted = errors.New("forest not fitted")
)
