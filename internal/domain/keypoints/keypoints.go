// Package keypoints provides a typed accessor over the flat pose-estimation
// output vector.
//
// MoveNet-style models emit a single []float32 of (y, x, score) triples, one
// per keypoint, with y/x normalized to [0,1]. Indexing mistakes on that
// stride are easy to make and hard to spot, so bounds checking, confidence
// gating and pixel-space scaling all happen here, once.
package keypoints

import (
	"github.com/keido/slouchd/internal/domain/model"
)

// Keypoint indexes for the 17-point MoveNet skeleton.
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// Stride is the number of values per keypoint in the output vector.
const Stride = 3

// Count is the number of keypoints in the skeleton.
const Count = 17

// Default extractor configuration constants.
const (
	defaultDisplayHeight       = 480.0
	defaultConfidenceThreshold = 0.3
)

// Extractor converts raw model output into trusted keypoint samples.
type Extractor struct {
	displayHeight       float64
	confidenceThreshold float64
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithDisplayHeight sets the display height used to scale normalized
// positions into pixel space.
func WithDisplayHeight(height float64) Option {
	return func(e *Extractor) {
		if height > 0 {
			e.displayHeight = height
		}
	}
}

// WithConfidenceThreshold sets the minimum score for a reading to be trusted.
func WithConfidenceThreshold(threshold float64) Option {
	return func(e *Extractor) {
		if threshold >= 0 {
			e.confidenceThreshold = threshold
		}
	}
}

// NewExtractor creates an extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		displayHeight:       defaultDisplayHeight,
		confidenceThreshold: defaultConfidenceThreshold,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// At returns the sample for the keypoint at index, or ok=false when the
// vector is too short to hold it or the score does not clear the confidence
// threshold. A malformed or truncated vector is therefore indistinguishable
// from a low-confidence reading, which is exactly the fallback the frame loop
// wants.
func (e *Extractor) At(output []float32, index int) (model.KeypointSample, bool) {
	if index < 0 {
		return model.KeypointSample{}, false
	}
	base := index * Stride
	if len(output) < base+Stride {
		return model.KeypointSample{}, false
	}

	score := float64(output[base+2])
	if score <= e.confidenceThreshold {
		return model.KeypointSample{}, false
	}

	return model.KeypointSample{
		Position:   float64(output[base]) * e.displayHeight,
		Confidence: score,
	}, true
}
