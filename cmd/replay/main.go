package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/keido/slouchd/internal/replay"
)

// Default configuration constants.
const (
	defaultDuration     = 30 * time.Second
	defaultPollInterval = 100 * time.Millisecond
	defaultTimeout      = 10 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9180", "Base URL of the daemon")
		duration   = flag.Duration("duration", defaultDuration, "How long to observe the loop")
		poll       = flag.Duration("poll", defaultPollInterval, "Status polling interval")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		resetAt    = flag.Duration("reset-at", 0, "Issue a baseline reset this long into the run (0 disables)")
		outputFile = flag.String("output", "", "Output file for collected samples (default: posture_samples_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: exercise_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := replay.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &replay.Config{
		BaseURL:      *baseURL,
		Duration:     *duration,
		PollInterval: *poll,
		Timeout:      *timeout,
		ResetAt:      *resetAt,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	if err := replay.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Exercise run failed: " + err.Error() + "\n")
		return
	}
}
