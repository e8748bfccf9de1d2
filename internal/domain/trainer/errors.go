package trainer

import "errors"

// Sentinel kinds for trainer errors.
var (
	ErrEmptyDataset = errors.New("no interaction history to train on")
)
