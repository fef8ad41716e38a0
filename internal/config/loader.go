package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SLOUCHD_CONFIG is set
//  3. env (prefix SLOUCHD_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SLOUCHD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SLOUCHD_ADDR, SLOUCHD_DEBOUNCE_FRAMES, ...
	// Map env keys like SLOUCHD_FADE_SPEED -> fade_speed (flat keys);
	// underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SLOUCHD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "slouchd_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the frame loop cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DisplayWidth <= 0 || c.DisplayHeight <= 0:
		return fmt.Errorf("%w: display dimensions must be positive", ErrInvalidConfig)
	case c.ModelInputSize <= 0:
		return fmt.Errorf("%w: model_input_size must be positive", ErrInvalidConfig)
	case c.DeviationThreshold <= 0:
		return fmt.Errorf("%w: deviation_threshold must be positive", ErrInvalidConfig)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1:
		return fmt.Errorf("%w: confidence_threshold must be in [0,1)", ErrInvalidConfig)
	case c.DebounceFrames < 0:
		return fmt.Errorf("%w: debounce_frames must not be negative", ErrInvalidConfig)
	case c.MaxAlpha <= 0 || c.MaxAlpha > 255:
		return fmt.Errorf("%w: max_alpha must be in (0,255]", ErrInvalidConfig)
	case c.FadeSpeed <= 0:
		return fmt.Errorf("%w: fade_speed must be positive", ErrInvalidConfig)
	case c.FrameIntervalMS <= 0:
		return fmt.Errorf("%w: frame_interval_ms must be positive", ErrInvalidConfig)
	case c.TrackedKeypoint < 0:
		return fmt.Errorf("%w: tracked_keypoint must not be negative", ErrInvalidConfig)
	}

	switch c.CameraRotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: camera_rotation must be one of 0, 90, 180, 270", ErrInvalidConfig)
	}

	return nil
}
