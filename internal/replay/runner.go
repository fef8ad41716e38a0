package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keido/slouchd/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run observes a running daemon for the configured duration and verifies the
// posture invariants hold in what it saw.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting monitor exercise run",
		logger.String("baseURL", config.BaseURL),
		logger.String("duration", config.Duration.String()),
		logger.String("pollInterval", config.PollInterval.String()),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check daemon health
	if err := checkDaemonHealth(ctx, client, config); err != nil {
		return fmt.Errorf("daemon health check failed: %w", err)
	}

	// Step 2: Observe the loop
	samples, err := collectSamples(ctx, client, config, stats)
	if err != nil {
		return fmt.Errorf("status collection failed: %w", err)
	}

	// Step 3: List recorded episodes
	episodes, err := fetchEpisodes(ctx, client, config.BaseURL, EpisodeFetchLimit)
	if err != nil {
		logger.Get().Warn(ctx, "episode listing failed", logger.Error(err))
	}
	stats.EpisodesListed = len(episodes)

	// Step 4: Verify invariants over what was observed
	if err := verifyRun(ctx, config, samples, episodes, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	// Step 5: Save samples to file
	if err := saveSamplesToFile(ctx, config, samples); err != nil {
		logger.Get().Warn(ctx, "failed to save samples to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "exercise run completed successfully")
	return nil
}

// checkDaemonHealth verifies the daemon is up.
func checkDaemonHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking daemon health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("daemon health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "daemon is healthy")
	return nil
}

// collectSamples polls /status until the configured duration elapses,
// optionally issuing a baseline reset partway through.
func collectSamples(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) ([]StatusSample, error) {
	logger.Get().Info(ctx, "observing frame loop",
		logger.String("duration", config.Duration.String()))

	runCtx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	var samples []StatusSample
	var lastReport time.Time
	var resetTimer <-chan time.Time
	if config.ResetAt > 0 {
		resetTimer = time.After(config.ResetAt)
	}

	for {
		select {
		case <-runCtx.Done():
			stats.SamplesCollected = len(samples)
			logger.Get().Info(ctx, "observation window closed",
				logger.Int("samples", len(samples)),
				logger.Int("pollFailures", stats.PollFailures))
			return samples, nil

		case <-resetTimer:
			resetTimer = nil
			if err := postCommand(runCtx, client, config.BaseURL, "/reset"); err != nil {
				logger.Get().Warn(ctx, "baseline reset failed", logger.Error(err))
				continue
			}
			stats.ResetIssued = true
			logger.Get().Info(ctx, "baseline reset issued")

		case <-ticker.C:
			sample, err := pollStatus(runCtx, client, config.BaseURL)
			if err != nil {
				if runCtx.Err() != nil {
					continue
				}
				stats.PollFailures++
				if config.Verbose {
					logger.Get().Warn(ctx, "status poll failed", logger.Error(err))
				}
				continue
			}

			if sample.Alert {
				stats.AlertSamples++
			}
			if len(samples) > 0 && samples[len(samples)-1].Alert != sample.Alert {
				stats.AlertTransitions++
			}
			samples = append(samples, sample)

			if time.Since(lastReport) >= ProgressInterval {
				lastReport = time.Now()
				if config.Verbose {
					logger.Get().Info(ctx, "progress",
						logger.Int("samples", len(samples)),
						logger.Any("alert", sample.Alert),
						logger.Int("counter", sample.Counter),
						logger.Int("alpha", int(sample.Alpha)))
				}
			}
		}
	}
}

// saveSamplesToFile saves the collected samples to a JSON file.
func saveSamplesToFile(ctx context.Context, config *Config, samples []StatusSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "posture_samples_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}

	logger.Get().Info(ctx, "samples saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var alertRate float64
	if stats.SamplesCollected > 0 {
		alertRate = float64(stats.AlertSamples) / float64(stats.SamplesCollected) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("samplesCollected", stats.SamplesCollected),
		logger.Int("pollFailures", stats.PollFailures),
		logger.Int("alertSamples", stats.AlertSamples),
		logger.Int("alertTransitions", stats.AlertTransitions),
		logger.Int("episodesListed", stats.EpisodesListed),
		logger.Any("resetIssued", stats.ResetIssued),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("alertRatePercent", alertRate))
}
