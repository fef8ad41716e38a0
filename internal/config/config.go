// Package config defines daemon configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment overrides in Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the control/status HTTP listen address.
	Addr string `koanf:"addr"`

	// CameraSource names the frame source implementation.
	CameraSource string `koanf:"camera_source"`

	// InferenceEngine names the pose-estimation engine implementation.
	InferenceEngine string `koanf:"inference_engine"`

	// ModelInputSize is the side length of the square RGB tensor the
	// model expects.
	ModelInputSize int `koanf:"model_input_size"`

	// DisplayWidth and DisplayHeight define the pixel space keypoint
	// positions are scaled into.
	DisplayWidth  int `koanf:"display_width"`
	DisplayHeight int `koanf:"display_height"`

	// DeviationThreshold is the tolerated downward drift in pixels.
	DeviationThreshold float64 `koanf:"deviation_threshold"`

	// ConfidenceThreshold gates keypoint readings.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// CameraRotation is the rotation correction in degrees: 0, 90, 180
	// or 270. Fixes upside-down cameras.
	CameraRotation int `koanf:"camera_rotation"`

	// TrackedKeypoint is the skeleton index followed by the monitor.
	TrackedKeypoint int `koanf:"tracked_keypoint"`

	// DebounceFrames is how many consecutive bad frames arm the alert.
	DebounceFrames int `koanf:"debounce_frames"`

	// MaxAlpha is the fully-visible overlay opacity (0-255 scale).
	MaxAlpha int `koanf:"max_alpha"`

	// FadeSpeed is the overlay fade step per tick.
	FadeSpeed int `koanf:"fade_speed"`

	// FrameIntervalMS is the tick period in milliseconds.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	// EpisodeDB is the SQLite path for alert episode history. Empty
	// disables persistence.
	EpisodeDB string `koanf:"episode_db"`

	// DebugView enables the annotated debug frame endpoint at startup.
	DebugView bool `koanf:"debug_view"`
}

// New creates a Config with the recognized defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9180",
		CameraSource:        "synthetic",
		InferenceEngine:     "scripted",
		ModelInputSize:      256,
		DisplayWidth:        640,
		DisplayHeight:       480,
		DeviationThreshold:  10.0,
		ConfidenceThreshold: 0.3,
		CameraRotation:      180,
		TrackedKeypoint:     2, // right eye
		DebounceFrames:      15,
		MaxAlpha:            180,
		FadeSpeed:           15,
		FrameIntervalMS:     33,
		EpisodeDB:           "",
		DebugView:           true,
	}
}
