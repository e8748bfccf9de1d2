package artifact

import "errors"

// Sentinel kinds for artifact errors.
var (
	ErrNoArtifact    = errors.New("no bundle artifact available")
	ErrInvalidBundle = errors.New("invalid bundle artifact")
)
