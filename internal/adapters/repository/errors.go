package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrOpenStore = errors.New("open episode store failed")
	ErrQuery     = errors.New("episode query failed")
)
