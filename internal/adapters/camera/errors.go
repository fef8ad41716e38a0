package camera

import "errors"

// Sentinel kinds for camera errors.
var (
	ErrUnknownSource = errors.New("unknown camera source")
	ErrClosed        = errors.New("camera source closed")
)
