// Package api declares HTTP contracts and route registration helpers for the
// daemon's local control endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/keido/slouchd/internal/adapters/command"
	"github.com/keido/slouchd/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the frame loop.
type Dependencies interface {
	// Status returns the latest per-tick snapshot.
	Status(ctx context.Context) model.Status

	// Episodes returns up to limit recent alert episodes, newest first.
	Episodes(ctx context.Context, limit int) ([]model.Episode, error)

	// DebugFrame renders the latest annotated frame as PNG.
	DebugFrame(ctx context.Context) ([]byte, error)

	// Command pushes a command to the frame loop. Returns false on
	// backpressure.
	Command(ctx context.Context, c command.Command) bool
}

// Server wires HTTP routes for the control API.
type Server struct {
	healthHandler   *HealthHandler
	statusHandler   *StatusHandler
	episodesHandler *EpisodesHandler
	controlHandler  *ControlHandler
	debugHandler    *DebugHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statusHandler:   NewStatusHandler(deps),
		episodesHandler: NewEpisodesHandler(deps),
		controlHandler:  NewControlHandler(deps),
		debugHandler:    NewDebugHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/episodes", MetricsMiddleware(s.episodesHandler.HandleEpisodes, "episodes"))
	mux.HandleFunc("/reset", MetricsMiddleware(s.controlHandler.HandleReset, "reset"))
	mux.HandleFunc("/quit", MetricsMiddleware(s.controlHandler.HandleQuit, "quit"))
	mux.HandleFunc("/debugview", MetricsMiddleware(s.controlHandler.HandleToggleDebug, "debugview"))
	mux.HandleFunc("/debug/frame", MetricsMiddleware(s.debugHandler.HandleFrame, "debug_frame"))
}

type ackResponse struct {
	Status  string `json:"status"`
	Command string `json:"command"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
