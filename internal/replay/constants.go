package replay

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Runner configuration constants.
const (
	ProgressInterval     = 1 * time.Second
	PercentageMultiplier = 100
	MaxOverlayAlpha      = 255
	EpisodeFetchLimit    = 50
)
