// Package posture holds the posture state machine: baseline capture,
// deviation scoring and debounce counting.
package posture

import (
	"github.com/keido/slouchd/internal/domain/model"
)

// Default monitor configuration constants.
const (
	defaultDeviation      = 10.0 // pixels of downward drift tolerated
	defaultDebounceFrames = 15   // consecutive bad frames before alerting
)

// Monitor converts noisy per-tick keypoint readings into a stable alert
// signal. It is not safe for concurrent use; the frame loop owns it.
type Monitor struct {
	deviation float64
	debounce  int

	baseline float64
	latched  bool
	counter  int
}

// Option applies a configuration option to the Monitor.
type Option func(*Monitor)

// WithDeviation sets the downward drift threshold in pixels.
func WithDeviation(deviation float64) Option {
	return func(m *Monitor) {
		if deviation > 0 {
			m.deviation = deviation
		}
	}
}

// WithDebounceFrames sets how many consecutive bad frames must accumulate
// before the alert fires. The alert fires on the frame that makes the counter
// strictly exceed this value.
func WithDebounceFrames(frames int) Option {
	return func(m *Monitor) {
		if frames >= 0 {
			m.debounce = frames
		}
	}
}

// NewMonitor creates a posture monitor with configuration options.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		deviation: defaultDeviation,
		debounce:  defaultDebounceFrames,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Update consumes the tick's keypoint reading (nil when no trusted sample was
// available) and returns the derived report.
//
// The first trusted sample latches the baseline and is classified against it.
// After that, a tick is instantaneously bad iff the position drifted more
// than the deviation threshold BELOW the baseline (positive delta in screen
// coordinates). Upward drift never counts: the trigger punishes slouching,
// not correcting posture. An absent sample is never penalized and clears the
// counter outright.
func (m *Monitor) Update(sample *model.KeypointSample) model.PostureReport {
	bad := false
	if sample != nil {
		if !m.latched {
			m.baseline = sample.Position
			m.latched = true
		}
		if sample.Position-m.baseline > m.deviation {
			bad = true
		}
	}

	if bad {
		m.counter++
	} else {
		m.counter = 0
	}

	report := model.PostureReport{
		Alert:   m.counter > m.debounce,
		Counter: m.counter,
	}
	if m.latched {
		report.Baseline = m.baseline
		report.HasBaseline = true
		if sample != nil {
			report.Delta = sample.Position - m.baseline
			report.HasDelta = true
		}
	}
	return report
}

// Reset clears the baseline and the counter. The next trusted sample
// re-latches the baseline. Safe to call at any time.
func (m *Monitor) Reset() {
	m.baseline = 0
	m.latched = false
	m.counter = 0
}

// Baseline returns the latched baseline, if any.
func (m *Monitor) Baseline() (float64, bool) {
	return m.baseline, m.latched
}

// Count returns the current debounce counter.
func (m *Monitor) Count() int {
	return m.counter
}
