package ranker

import "errors"

// Sentinel kinds for ranker errors.
var (
	ErrPrediction = errors.New("prediction failed")
)
