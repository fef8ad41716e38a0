package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/keido/slouchd/pkg/logger"
)

// verifyRun checks the posture invariants that must hold in any sampled view
// of the loop, regardless of polling rate.
func verifyRun(ctx context.Context, config *Config, samples []StatusSample, episodes []EpisodeRecord, stats *Stats) error {
	logger.Get().Info(ctx, "verifying observed behavior")

	if len(samples) == 0 {
		return fmt.Errorf("no samples to verify")
	}

	if err := verifySamples(samples); err != nil {
		return err
	}

	if len(episodes) > 0 {
		if err := verifyEpisodes(episodes); err != nil {
			logger.Get().Warn(ctx, "episode consistency warning", logger.Error(err))
		} else {
			logger.Get().Info(ctx, "episode history verified",
				logger.Int("episodes", len(episodes)))
		}
	}

	if config.Verbose {
		displaySampleSummary(ctx, samples)
	}

	logger.Get().Info(ctx, "verification completed")
	return nil
}

// verifySamples checks per-sample and cross-sample invariants.
func verifySamples(samples []StatusSample) error {
	var lastFrames uint64

	for i, s := range samples {
		if s.Counter < 0 {
			return fmt.Errorf("sample %d: negative debounce counter %d", i, s.Counter)
		}
		if s.Alpha > MaxOverlayAlpha {
			return fmt.Errorf("sample %d: overlay alpha %d out of range", i, s.Alpha)
		}
		if s.Alert && s.Counter == 0 {
			return fmt.Errorf("sample %d: alert active with zero counter", i)
		}
		if s.Alert && s.EpisodeID == "" {
			return fmt.Errorf("sample %d: alert active without an episode", i)
		}
		if s.Delta != nil && s.Baseline == nil {
			return fmt.Errorf("sample %d: delta reported without a baseline", i)
		}
		if s.Frames < lastFrames {
			return fmt.Errorf("sample %d: frame counter went backwards (%d < %d)", i, s.Frames, lastFrames)
		}
		lastFrames = s.Frames
	}
	return nil
}

// verifyEpisodes checks that the episode history is newest first and that
// closed episodes have sane bounds.
func verifyEpisodes(episodes []EpisodeRecord) error {
	var prev time.Time

	for i, ep := range episodes {
		startedAt, err := time.Parse(time.RFC3339, ep.StartedAt)
		if err != nil {
			return fmt.Errorf("episode %d: unparseable started_at %q", i, ep.StartedAt)
		}
		if i > 0 && startedAt.After(prev) {
			return fmt.Errorf("episode %d started after episode %d; history not newest first", i, i-1)
		}
		prev = startedAt

		if ep.EndedAt != nil {
			endedAt, err := time.Parse(time.RFC3339, *ep.EndedAt)
			if err != nil {
				return fmt.Errorf("episode %d: unparseable ended_at %q", i, *ep.EndedAt)
			}
			if endedAt.Before(startedAt) {
				return fmt.Errorf("episode %d ended before it started", i)
			}
			if ep.Ticks <= 0 {
				return fmt.Errorf("episode %d closed with no ticks", i)
			}
		}
	}
	return nil
}

// displaySampleSummary logs aggregate statistics over the run.
func displaySampleSummary(ctx context.Context, samples []StatusSample) {
	var (
		maxCounter int
		maxAlpha   uint32
		maxDelta   float64
		haveDelta  bool
	)

	for _, s := range samples {
		if s.Counter > maxCounter {
			maxCounter = s.Counter
		}
		if s.Alpha > maxAlpha {
			maxAlpha = s.Alpha
		}
		if s.Delta != nil {
			if !haveDelta || *s.Delta > maxDelta {
				maxDelta = *s.Delta
				haveDelta = true
			}
		}
	}

	logger.Get().Info(ctx, "sample summary",
		logger.Int("samples", len(samples)),
		logger.Int("maxCounter", maxCounter),
		logger.Int("maxAlpha", int(maxAlpha)),
		logger.Any("maxDelta", maxDelta),
		logger.Any("sawDelta", haveDelta))
}
