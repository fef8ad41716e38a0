// Package api declares HTTP contracts and route registration helpers for the
// daemon's local control endpoint.
package api

import (
	"net/http"

	"github.com/keido/slouchd/internal/adapters/command"
)

// ControlHandler handles the POST endpoints that drive the frame loop.
type ControlHandler struct {
	deps Dependencies
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps Dependencies) *ControlHandler {
	return &ControlHandler{deps: deps}
}

// HandleReset handles POST /reset requests. The baseline relatches on the
// next trusted sample.
func (h *ControlHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, "api.post_reset", command.Reset)
}

// HandleQuit handles POST /quit requests.
func (h *ControlHandler) HandleQuit(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, "api.post_quit", command.Quit)
}

// HandleToggleDebug handles POST /debugview requests.
func (h *ControlHandler) HandleToggleDebug(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, "api.post_debugview", command.ToggleDebug)
}

func (h *ControlHandler) enqueue(w http.ResponseWriter, r *http.Request, op string, c command.Command) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if ok := h.deps.Command(r.Context(), c); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Command: c.String()})
}
