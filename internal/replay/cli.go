package replay

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/keido/slouchd/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "exercise_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the exercise tool.
func ShowHelp() {
	os.Stdout.WriteString(`Slouchd Monitor Exercise Tool
=============================

Observes a running slouchd daemon over its control API and verifies the
posture invariants hold in the sampled behavior.

Usage:
  go run cmd/replay/main.go [options]

Options:
  -url string
        Base URL of the daemon (default "http://localhost:9180")
  -duration duration
        How long to observe the loop (default 30s)
  -poll duration
        Status polling interval (default 100ms)
  -timeout duration
        HTTP request timeout (default 10s)
  -reset-at duration
        Issue a baseline reset this long into the run (default: never)
  -output string
        Output file for collected samples (default: posture_samples_TIMESTAMP.json)
  -log string
        Log file for run output (default: exercise_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Observe with default settings
  go run cmd/replay/main.go

  # Longer run against a custom address
  go run cmd/replay/main.go -duration 2m -url http://localhost:8080

  # Exercise the reset path partway through
  go run cmd/replay/main.go -duration 1m -reset-at 30s -verbose
`)
}
