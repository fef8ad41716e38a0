// Package camera defines the frame source contract and the built-in
// synthetic source used for development and replay.
//
// Real capture backends (V4L2, AVFoundation, media foundation) are platform
// collaborators and live outside this module; they only need to satisfy
// Source.
package camera

import (
	"context"
	"fmt"

	"github.com/keido/slouchd/internal/domain/model"
)

// Source produces one rotation-corrected RGB frame per request. NextFrame
// blocks until the next frame is available, bounded by the upstream frame
// rate.
type Source interface {
	NextFrame(ctx context.Context) (model.Frame, error)
	Close() error
}

// New constructs a source by name. Only the synthetic source is built in.
func New(name string, opts ...Option) (Source, error) {
	switch name {
	case "synthetic":
		return NewSyntheticSource(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// Rotate returns the frame rotated clockwise by the given correction angle.
// Only 90, 180 and 270 produce a rotation; anything else returns the frame
// unchanged, matching the configured-correction contract.
func Rotate(f model.Frame, degrees int) model.Frame {
	switch degrees {
	case 90, 180, 270:
	default:
		return f
	}

	w, h := f.Width, f.Height
	out := model.Frame{Pixels: make([]uint8, len(f.Pixels))}

	switch degrees {
	case 180:
		out.Width, out.Height = w, h
	case 90, 270:
		out.Width, out.Height = h, w
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch degrees {
			case 90:
				dx, dy = h-1-y, x
			case 180:
				dx, dy = w-1-x, h-1-y
			case 270:
				dx, dy = y, w-1-x
			}
			src := (y*w + x) * 3
			dst := (dy*out.Width + dx) * 3
			copy(out.Pixels[dst:dst+3], f.Pixels[src:src+3])
		}
	}
	return out
}
