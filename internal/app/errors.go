package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidEvent       = errors.New("invalid click event")
	ErrBackpressure       = errors.New("event queue is full")
	ErrNotStarted         = errors.New("service not started")
	ErrTrainingInProgress = errors.New("training already in progress")
)
