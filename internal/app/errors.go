package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingCollaborator = errors.New("missing collaborator")
	ErrNotStarted          = errors.New("service not started")
	ErrDebugDisabled       = errors.New("debug view disabled")
	ErrNoFrame             = errors.New("no frame captured yet")
)
