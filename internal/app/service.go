// Package service provides the frame loop that ties the camera, the
// pose-estimation engine, the posture state machine and the overlay together,
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keido/slouchd/internal/adapters/camera"
	"github.com/keido/slouchd/internal/adapters/command"
	"github.com/keido/slouchd/internal/adapters/debugview"
	"github.com/keido/slouchd/internal/adapters/inference"
	"github.com/keido/slouchd/internal/adapters/repository"
	"github.com/keido/slouchd/internal/adapters/surface"
	"github.com/keido/slouchd/internal/domain/keypoints"
	"github.com/keido/slouchd/internal/domain/model"
	"github.com/keido/slouchd/internal/domain/overlay"
	"github.com/keido/slouchd/internal/domain/posture"
	"github.com/keido/slouchd/pkg/logger"
	"github.com/keido/slouchd/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultTrackedKeypoint = keypoints.RightEye
	defaultDisplayHeight   = 480
	defaultTickInterval    = 33 * time.Millisecond
)

// episodeState tracks the currently open alert episode.
type episodeState struct {
	id        string
	startedAt time.Time
	peakDelta float64
	ticks     int
}

// Service owns the tick-driven frame loop. One iteration = one camera frame =
// one inference call = one state update = one surface write. All posture and
// overlay state is mutated exclusively by the loop goroutine; the HTTP layer
// reads a per-tick snapshot under a lock.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	source  camera.Source
	engine  inference.Engine
	surface surface.Surface
	store   repository.Store

	// Core components, built in Start
	extractor *keypoints.Extractor
	monitor   *posture.Monitor
	animator  *overlay.Animator
	renderer  *debugview.Renderer
	commands  command.Queue

	// Configuration
	trackedKeypoint     int
	displayHeight       float64
	confidenceThreshold float64
	deviationThreshold  float64
	debounceFrames      int
	maxAlpha            uint32
	fadeSpeed           uint32
	tickInterval        time.Duration
	debugView           bool

	// State
	started   bool
	frames    uint64
	lastAlpha uint32
	episode   *episodeState
	status    model.Status
	lastFrame model.Frame

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the camera source. Required.
func WithSource(source camera.Source) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithEngine sets the pose-estimation engine. Required.
func WithEngine(engine inference.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithSurface sets the overlay surface. Defaults to the logging surface.
func WithSurface(sf surface.Surface) Option {
	return func(s *Service) {
		if sf != nil {
			s.surface = sf
		}
	}
}

// WithStore sets the episode store. Defaults to the disabled store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithTrackedKeypoint sets the skeleton index the monitor follows.
func WithTrackedKeypoint(index int) Option {
	return func(s *Service) {
		if index >= 0 {
			s.trackedKeypoint = index
		}
	}
}

// WithDisplayHeight sets the pixel space height for keypoint scaling.
func WithDisplayHeight(height float64) Option {
	return func(s *Service) {
		if height > 0 {
			s.displayHeight = height
		}
	}
}

// WithConfidenceThreshold sets the keypoint confidence gate.
func WithConfidenceThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.confidenceThreshold = threshold
		}
	}
}

// WithDeviationThreshold sets the tolerated downward drift in pixels.
func WithDeviationThreshold(deviation float64) Option {
	return func(s *Service) {
		if deviation > 0 {
			s.deviationThreshold = deviation
		}
	}
}

// WithDebounceFrames sets the consecutive-bad-frame count that arms the alert.
func WithDebounceFrames(frames int) Option {
	return func(s *Service) {
		if frames >= 0 {
			s.debounceFrames = frames
		}
	}
}

// WithMaxAlpha sets the fully-visible overlay opacity.
func WithMaxAlpha(alpha uint32) Option {
	return func(s *Service) {
		if alpha > 0 && alpha <= 255 {
			s.maxAlpha = alpha
		}
	}
}

// WithFadeSpeed sets the overlay fade step per tick.
func WithFadeSpeed(speed uint32) Option {
	return func(s *Service) {
		if speed > 0 {
			s.fadeSpeed = speed
		}
	}
}

// WithTickInterval sets the frame loop period.
func WithTickInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.tickInterval = interval
		}
	}
}

// WithDebugView enables the debug frame endpoint at startup.
func WithDebugView(enabled bool) Option {
	return func(s *Service) {
		s.debugView = enabled
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		trackedKeypoint:     defaultTrackedKeypoint,
		displayHeight:       defaultDisplayHeight,
		confidenceThreshold: 0.3,
		deviationThreshold:  10.0,
		debounceFrames:      15,
		maxAlpha:            180,
		fadeSpeed:           15,
		tickInterval:        defaultTickInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the core components. Missing required collaborators are a
// startup failure: the tool has no function without a camera and an engine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.source == nil {
		return fmt.Errorf("%w: camera source", ErrMissingCollaborator)
	}
	if s.engine == nil {
		return fmt.Errorf("%w: inference engine", ErrMissingCollaborator)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("loop")
	}
	if s.surface == nil {
		s.surface = surface.NewLogSurface()
	}
	if s.store == nil {
		s.store = repository.Disabled{}
	}
	if s.commands == nil {
		s.commands = command.NewInMemoryQueue()
	}

	s.extractor = keypoints.NewExtractor(
		keypoints.WithDisplayHeight(s.displayHeight),
		keypoints.WithConfidenceThreshold(s.confidenceThreshold),
	)
	s.monitor = posture.NewMonitor(
		posture.WithDeviation(s.deviationThreshold),
		posture.WithDebounceFrames(s.debounceFrames),
	)
	s.animator = overlay.NewAnimator(
		overlay.WithMaxAlpha(s.maxAlpha),
		overlay.WithFadeSpeed(s.fadeSpeed),
	)
	s.renderer = debugview.NewRenderer(
		debugview.WithDeviation(s.deviationThreshold),
	)

	s.started = true
	s.logger.Info(ctx, "posture monitor started",
		logger.Int("trackedKeypoint", s.trackedKeypoint),
		logger.Float64("deviation", s.deviationThreshold),
		logger.Int("debounceFrames", s.debounceFrames),
		logger.Int("maxAlpha", int(s.maxAlpha)),
		logger.Int("fadeSpeed", int(s.fadeSpeed)),
	)
	return nil
}

// Run drives the frame loop until ctx is canceled or a quit command arrives.
func (s *Service) Run(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeEpisode(context.Background())
			return nil
		case <-ticker.C:
			if quit := s.drainCommands(ctx); quit {
				s.closeEpisode(ctx)
				s.logger.Info(ctx, "quit command received")
				return nil
			}
			s.tick(ctx)
		}
	}
}

// drainCommands applies all pending commands. Returns true on quit.
func (s *Service) drainCommands(ctx context.Context) bool {
	for {
		select {
		case c, ok := <-s.commands.Dequeue():
			if !ok {
				return true
			}
			if s.handleCommand(ctx, c) {
				return true
			}
		default:
			return false
		}
	}
}

func (s *Service) handleCommand(ctx context.Context, c command.Command) bool {
	switch c {
	case command.Quit:
		return true
	case command.Reset:
		s.mu.Lock()
		s.monitor.Reset()
		s.mu.Unlock()
		s.closeEpisode(ctx)
		s.logger.Info(ctx, "posture baseline reset")
	case command.ToggleDebug:
		s.mu.Lock()
		s.debugView = !s.debugView
		enabled := s.debugView
		s.mu.Unlock()
		s.logger.Info(ctx, "debug view toggled", logger.Bool("enabled", enabled))
	default:
		s.logger.Warn(ctx, "unknown command", logger.Int("command", int(c)))
	}
	return false
}

// tick runs one iteration: acquire, infer, classify, animate, compose.
// Transient acquisition or inference failures degrade to "no trusted sample"
// for this tick; the next tick retries by construction of the loop.
func (s *Service) tick(ctx context.Context) {
	var sample *model.KeypointSample
	var frame model.Frame
	var haveFrame bool

	frame, err := s.source.NextFrame(ctx)
	if err != nil {
		metrics.RecordFrameFailure()
		s.logger.Warn(ctx, "frame acquisition failed", logger.Error(err))
	} else {
		haveFrame = true
		start := time.Now()
		output, err := s.engine.Infer(ctx, frame)
		metrics.RecordInferenceLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordInferenceFailure()
			s.logger.Warn(ctx, "inference failed", logger.Error(err))
		} else if kp, ok := s.extractor.At(output, s.trackedKeypoint); ok {
			sample = &kp
		} else {
			metrics.RecordSampleRejected()
		}
	}

	s.mu.Lock()
	report := s.monitor.Update(sample)
	s.animator.SetTarget(report.Alert)
	overlayFrame := s.animator.Advance()
	s.mu.Unlock()

	s.compose(overlayFrame)
	s.trackEpisode(ctx, report)

	// The snapshot is assembled in full and published with one assignment so
	// readers never see an alert without its episode id.
	status := model.Status{
		Report: report,
		Alpha:  overlayFrame.Alpha,
	}
	if s.episode != nil {
		status.EpisodeID = s.episode.id
	}

	s.mu.Lock()
	s.frames++
	status.Frames = s.frames
	status.DebugView = s.debugView
	s.status = status
	if haveFrame {
		s.lastFrame = frame
	}
	s.mu.Unlock()

	metrics.RecordFrameProcessed()
	metrics.UpdateDebounceCount(report.Counter)
	metrics.UpdateAlertState(report.Alert)
	if report.HasDelta {
		metrics.UpdatePostureDelta(report.Delta)
	}
}

// compose forwards the animator's decision to the surface. The opacity is
// only written when it actually moved; a converged animator produces no
// compositing work.
func (s *Service) compose(frame model.OverlayFrame) {
	if frame.Show {
		s.surface.Show()
	}
	if frame.Hide {
		s.surface.Hide()
	}
	if frame.Alpha != s.lastAlpha {
		if err := s.surface.SetOpacity(frame.Alpha); err != nil {
			s.logger.Warn(context.Background(), "set overlay opacity failed", logger.Error(err))
		}
		s.lastAlpha = frame.Alpha
	}
}

// trackEpisode opens, extends and closes alert episodes around the report's
// alert signal.
func (s *Service) trackEpisode(ctx context.Context, report model.PostureReport) {
	if report.Alert {
		if s.episode == nil {
			s.episode = &episodeState{
				id:        uuid.NewString(),
				startedAt: time.Now(),
			}
			metrics.RecordAlertEpisode()
			s.logger.Warn(ctx, "sustained bad posture",
				logger.String("episodeID", s.episode.id),
				logger.Float64("delta", report.Delta),
				logger.Int("counter", report.Counter),
			)
			if err := s.store.Begin(ctx, model.Episode{ID: s.episode.id, StartedAt: s.episode.startedAt}); err != nil {
				metrics.RecordStoreError()
				s.logger.Error(ctx, "episode store begin failed", logger.Error(err))
			}
		}
		s.episode.ticks++
		if report.Delta > s.episode.peakDelta {
			s.episode.peakDelta = report.Delta
		}
		return
	}

	if s.episode != nil {
		s.closeEpisode(ctx)
	}
}

// closeEpisode finishes the open episode, if any.
func (s *Service) closeEpisode(ctx context.Context) {
	if s.episode == nil {
		return
	}
	ep := s.episode
	s.episode = nil

	if err := s.store.Finish(ctx, ep.id, time.Now(), ep.peakDelta, ep.ticks); err != nil {
		metrics.RecordStoreError()
		s.logger.Error(ctx, "episode store finish failed", logger.Error(err))
		return
	}
	s.logger.Info(ctx, "posture recovered",
		logger.String("episodeID", ep.id),
		logger.Float64("peakDelta", ep.peakDelta),
		logger.Int("ticks", ep.ticks),
	)
}

// Stop releases the collaborators.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping posture monitor...")

	if s.commands != nil {
		_ = s.commands.Close()
	}
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			s.logger.Warn(ctx, "close camera source failed", logger.Error(err))
		}
	}
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.logger.Warn(ctx, "close inference engine failed", logger.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "close episode store failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "posture monitor stopped")
}

// Command enqueues a user command for the loop. Returns false on
// backpressure or when the service has not been started.
func (s *Service) Command(ctx context.Context, c command.Command) bool {
	s.mu.RLock()
	queue := s.commands
	s.mu.RUnlock()

	if queue == nil {
		return false
	}
	return queue.Enqueue(ctx, c)
}

// Status returns the latest per-tick snapshot.
func (s *Service) Status(_ context.Context) model.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Episodes returns up to limit recent alert episodes, newest first.
func (s *Service) Episodes(ctx context.Context, limit int) ([]model.Episode, error) {
	episodes, err := s.store.Recent(ctx, limit)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("recent episodes: %w", err)
	}
	return episodes, nil
}

// DebugFrame renders the latest frame with posture annotations as PNG.
func (s *Service) DebugFrame(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	enabled := s.debugView
	frame := s.lastFrame
	report := s.status.Report
	s.mu.RUnlock()

	if !enabled {
		return nil, ErrDebugDisabled
	}
	if frame.Width == 0 || frame.Height == 0 {
		return nil, ErrNoFrame
	}
	return s.renderer.PNG(frame, report)
}
