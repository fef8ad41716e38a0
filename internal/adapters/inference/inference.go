// Package inference defines the pose-estimation engine contract and the
// built-in scripted engine used for development and replay.
//
// A real engine wraps an ONNX (or similar) session fed with a square RGB
// tensor of the configured model input size; that binding is a platform
// collaborator outside this module. The contract is the flat output vector:
// (normalized_y, normalized_x, score) triples per keypoint in [0,1].
package inference

import (
	"context"
	"fmt"

	"github.com/keido/slouchd/internal/domain/keypoints"
	"github.com/keido/slouchd/internal/domain/model"
)

// Engine maps one RGB frame to the flat keypoint output vector.
type Engine interface {
	Infer(ctx context.Context, frame model.Frame) ([]float32, error)
	Close() error
}

// New constructs an engine by name. Only the scripted engine is built in.
func New(name string, opts ...Option) (Engine, error) {
	switch name {
	case "scripted":
		return NewScriptedEngine(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Vector builds a full skeleton output with every slot zeroed except the
// keypoint at index, which is set to the given triple. Handy for scripting
// traces and tests.
func Vector(index int, y, x, score float32) []float32 {
	out := make([]float32, keypoints.Count*keypoints.Stride)
	if index < 0 || index >= keypoints.Count {
		return out
	}
	base := index * keypoints.Stride
	out[base] = y
	out[base+1] = x
	out[base+2] = score
	return out
}
