package encoder

import "errors"

// Sentinel kinds for encoder errors.
var (
	ErrUnknownIdentity = errors.New("identity not present at fit time")
)
