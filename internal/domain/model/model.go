// Package model contains domain models passed between layers.
package model

import "time"

// Frame is one RGB camera frame. The source applies any configured rotation
// correction before a frame reaches the core, so consumers may assume the
// orientation is already fixed.
type Frame struct {
	Pixels []uint8 // row-major RGB, 3 bytes per pixel
	Width  int
	Height int
}

// KeypointSample is a single trusted keypoint reading for one tick, with the
// vertical position already scaled into display pixel space. Samples below the
// confidence threshold never leave the extractor.
type KeypointSample struct {
	Position   float64 // pixels from the top of the display
	Confidence float64
}

// PostureReport is the per-tick output of the posture monitor.
// Delta and Baseline are display-only: Baseline carries no meaning until
// HasBaseline is true, Delta none until HasDelta is true (a tick with no
// trusted sample has a baseline but no delta).
type PostureReport struct {
	Alert       bool
	Counter     int
	Delta       float64
	HasDelta    bool
	Baseline    float64
	HasBaseline bool
}

// OverlayFrame is the per-tick output of the overlay animator: the new
// opacity plus at most one surface signal. Show fires when a fade-in starts
// from fully transparent; Hide fires while the overlay sits converged at zero
// so the compositor can stop painting it.
type OverlayFrame struct {
	Alpha uint32
	Show  bool
	Hide  bool
}

// Episode records one sustained bad-posture alert, from the tick the debounce
// threshold was crossed until the first good tick after it.
type Episode struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Ended     bool
	PeakDelta float64
	Ticks     int
}

// Status is a point-in-time snapshot of the frame loop, published once per
// tick for the HTTP layer.
type Status struct {
	Report    PostureReport
	Alpha     uint32
	EpisodeID string // empty when no alert episode is active
	Frames    uint64
	DebugView bool
}
