package camera

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/keido/slouchd/internal/domain/model"
)

// Default synthetic source configuration constants.
const (
	defaultWidth  = 640
	defaultHeight = 480

	backgroundGray = 0xc8
	subjectGray    = 0x30
	bandHalfHeight = 6 // pixels above and below the subject line

	// Default drift pattern when no trace is configured: a slow sway
	// around mid-frame.
	defaultSwayCenter    = 0.45
	defaultSwayAmplitude = 0.05
	defaultSwayPeriod    = 240 // ticks
)

// SyntheticSource renders a deterministic test subject: a dark horizontal
// band on a light background whose vertical position follows a configured
// trace (fraction of frame height per tick). Frames are freshly allocated per
// call so callers may retain them.
type SyntheticSource struct {
	mu       sync.Mutex
	width    int
	height   int
	rotation int
	trace    []float64
	tick     int
	closed   bool
}

// Option applies a configuration option to the SyntheticSource.
type Option func(*SyntheticSource)

// WithSize sets the frame dimensions.
func WithSize(width, height int) Option {
	return func(s *SyntheticSource) {
		if width > 0 && height > 0 {
			s.width = width
			s.height = height
		}
	}
}

// WithRotation sets the rotation correction applied to every frame.
func WithRotation(degrees int) Option {
	return func(s *SyntheticSource) {
		s.rotation = degrees
	}
}

// WithTrace sets the subject's vertical position per tick as fractions of the
// frame height. The trace loops once exhausted.
func WithTrace(trace []float64) Option {
	return func(s *SyntheticSource) {
		if len(trace) > 0 {
			s.trace = trace
		}
	}
}

// NewSyntheticSource creates a synthetic source with configuration options.
func NewSyntheticSource(opts ...Option) *SyntheticSource {
	s := &SyntheticSource{
		width:  defaultWidth,
		height: defaultHeight,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NextFrame renders the next frame in the trace.
func (s *SyntheticSource) NextFrame(ctx context.Context) (model.Frame, error) {
	if err := ctx.Err(); err != nil {
		return model.Frame{}, fmt.Errorf("next frame: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Frame{}, ErrClosed
	}

	frame := model.Frame{
		Pixels: make([]uint8, s.width*s.height*3),
		Width:  s.width,
		Height: s.height,
	}
	for i := range frame.Pixels {
		frame.Pixels[i] = backgroundGray
	}

	subjectY := int(s.position(s.tick) * float64(s.height))
	for y := subjectY - bandHalfHeight; y <= subjectY+bandHalfHeight; y++ {
		if y < 0 || y >= s.height {
			continue
		}
		row := y * s.width * 3
		for x := 0; x < s.width*3; x++ {
			frame.Pixels[row+x] = subjectGray
		}
	}

	s.tick++
	return Rotate(frame, s.rotation), nil
}

// position returns the subject's vertical position for a tick as a fraction
// of the frame height.
func (s *SyntheticSource) position(tick int) float64 {
	if len(s.trace) > 0 {
		return clamp01(s.trace[tick%len(s.trace)])
	}
	phase := 2 * math.Pi * float64(tick) / defaultSwayPeriod
	return defaultSwayCenter + defaultSwayAmplitude*math.Sin(phase)
}

// Close stops the source. Subsequent NextFrame calls fail with ErrClosed.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
