package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/keido/slouchd/internal/adapters/camera"
	"github.com/keido/slouchd/internal/adapters/http/api"
	"github.com/keido/slouchd/internal/adapters/inference"
	"github.com/keido/slouchd/internal/adapters/repository"
	"github.com/keido/slouchd/internal/adapters/surface"
	app "github.com/keido/slouchd/internal/app"
	"github.com/keido/slouchd/internal/config"
	"github.com/keido/slouchd/pkg/logger"
	"github.com/keido/slouchd/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	source, err := camera.New(cfg.CameraSource,
		camera.WithSize(cfg.DisplayWidth, cfg.DisplayHeight),
		camera.WithRotation(cfg.CameraRotation),
	)
	if err != nil {
		log.Error(ctx, "failed to open camera source", logger.Error(err))
		return
	}

	engine, err := inference.New(cfg.InferenceEngine,
		inference.WithTrackedKeypoint(cfg.TrackedKeypoint),
	)
	if err != nil {
		log.Error(ctx, "failed to open inference engine", logger.Error(err))
		return
	}

	var store repository.Store = repository.Disabled{}
	if cfg.EpisodeDB != "" {
		sqlStore, err := repository.Open(cfg.EpisodeDB)
		if err != nil {
			log.Error(ctx, "failed to open episode store", logger.Error(err))
			return
		}
		store = sqlStore
	}

	// Create and start the frame loop with configuration options
	svc := app.New(
		app.WithLogger(log.Named("loop")),
		app.WithSource(source),
		app.WithEngine(engine),
		app.WithSurface(surface.NewLogSurface()),
		app.WithStore(store),
		app.WithTrackedKeypoint(cfg.TrackedKeypoint),
		app.WithDisplayHeight(float64(cfg.DisplayHeight)),
		app.WithConfidenceThreshold(cfg.ConfidenceThreshold),
		app.WithDeviationThreshold(cfg.DeviationThreshold),
		app.WithDebounceFrames(cfg.DebounceFrames),
		app.WithMaxAlpha(uint32(cfg.MaxAlpha)),
		app.WithFadeSpeed(uint32(cfg.FadeSpeed)),
		app.WithTickInterval(time.Duration(cfg.FrameIntervalMS)*time.Millisecond),
		app.WithDebugView(cfg.DebugView),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start posture monitor", logger.Error(err))
		return
	}
	defer svc.Stop()

	// The frame loop. A quit command ends Run, which cancels the root
	// context and takes the HTTP server down with it.
	go func() {
		if err := svc.Run(ctx); err != nil {
			log.Error(ctx, "frame loop failed", logger.Error(err))
		}
		stop()
	}()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal or quit command
	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
