package inference

import "errors"

// Sentinel kinds for inference errors.
var (
	ErrUnknownEngine = errors.New("unknown inference engine")
	ErrClosed        = errors.New("inference engine closed")
	ErrInjected      = errors.New("injected inference failure")
)
