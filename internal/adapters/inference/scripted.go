package inference

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/keido/slouchd/internal/domain/keypoints"
	"github.com/keido/slouchd/internal/domain/model"
)

// Default scripted engine configuration constants.
const (
	defaultScore = 0.85

	// Procedural demo trace: the subject holds a baseline, periodically
	// slouches long enough to trip the default debounce, then recovers.
	demoBaselineY  = 0.42
	demoSlouchY    = 0.52
	demoCycleTicks = 300
	demoSlouchLen  = 60
)

// Generator produces the output vector for a tick. Returning a nil slice
// models a tick where the model saw nothing.
type Generator func(tick int) []float32

// ScriptedEngine replays a fixed sequence of output vectors, or runs a
// generator when no sequence is set. Error injection per tick lets tests
// exercise the loop's transient-failure path.
type ScriptedEngine struct {
	mu      sync.Mutex
	script  [][]float32
	gen     Generator
	errAt   map[int]error
	tick    int
	closed  bool
	tracked int
}

// Option applies a configuration option to the ScriptedEngine.
type Option func(*ScriptedEngine)

// WithScript sets the exact sequence of output vectors to replay. The script
// loops once exhausted.
func WithScript(script [][]float32) Option {
	return func(e *ScriptedEngine) {
		if len(script) > 0 {
			e.script = script
		}
	}
}

// WithGenerator sets a procedural generator used when no script is set.
func WithGenerator(gen Generator) Option {
	return func(e *ScriptedEngine) {
		if gen != nil {
			e.gen = gen
		}
	}
}

// WithErrorAt injects an error at the given tick (zero-based).
func WithErrorAt(tick int, err error) Option {
	return func(e *ScriptedEngine) {
		if err == nil {
			err = ErrInjected
		}
		e.errAt[tick] = err
	}
}

// WithTrackedKeypoint sets the keypoint the demo generator animates.
func WithTrackedKeypoint(index int) Option {
	return func(e *ScriptedEngine) {
		if index >= 0 && index < keypoints.Count {
			e.tracked = index
		}
	}
}

// NewScriptedEngine creates a scripted engine with configuration options.
func NewScriptedEngine(opts ...Option) *ScriptedEngine {
	e := &ScriptedEngine{
		errAt:   make(map[int]error),
		tracked: keypoints.RightEye,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.gen == nil {
		e.gen = e.demoTrace
	}

	return e
}

// Infer returns the scripted vector for the current tick. The frame content
// is ignored; scripts drive positions directly.
func (e *ScriptedEngine) Infer(ctx context.Context, _ model.Frame) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	tick := e.tick
	e.tick++

	if err, ok := e.errAt[tick]; ok {
		return nil, fmt.Errorf("tick %d: %w", tick, err)
	}

	if len(e.script) > 0 {
		return e.script[tick%len(e.script)], nil
	}
	return e.gen(tick), nil
}

// demoTrace is the default generator: hold baseline, slouch for a stretch of
// every cycle, recover.
func (e *ScriptedEngine) demoTrace(tick int) []float32 {
	phase := tick % demoCycleTicks
	y := demoBaselineY
	if phase >= demoCycleTicks-demoSlouchLen {
		y = demoSlouchY
	}
	// Small deterministic jitter so the debug view looks alive.
	y += 0.004 * math.Sin(float64(tick)/7)
	return Vector(e.tracked, float32(y), 0.5, defaultScore)
}

// Close stops the engine. Subsequent Infer calls fail with ErrClosed.
func (e *ScriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
