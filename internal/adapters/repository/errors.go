package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrValidation = errors.New("invalid click event")
)
