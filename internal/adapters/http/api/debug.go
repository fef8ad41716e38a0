// Package api declares HTTP contracts and route registration helpers for the
// daemon's local control endpoint.
package api

import (
	"errors"
	"net/http"

	service "github.com/keido/slouchd/internal/app"
)

// DebugHandler serves the annotated debug frame.
type DebugHandler struct {
	deps Dependencies
}

// NewDebugHandler creates a new debug handler.
func NewDebugHandler(deps Dependencies) *DebugHandler {
	return &DebugHandler{deps: deps}
}

// HandleFrame handles GET /debug/frame requests with a PNG of the latest
// camera frame plus posture annotations.
func (h *DebugHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	png, err := h.deps.DebugFrame(r.Context())
	switch {
	case errors.Is(err, service.ErrDebugDisabled):
		writeError(w, http.StatusNotFound, "debug_disabled", err)
		return
	case errors.Is(err, service.ErrNoFrame):
		writeError(w, http.StatusServiceUnavailable, "no_frame", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
