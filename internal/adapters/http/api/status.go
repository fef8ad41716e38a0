// Package api declares HTTP contracts and route registration helpers for the
// daemon's local control endpoint.
package api

import (
	"net/http"
)

// statusResponse mirrors the per-tick snapshot. Baseline and delta are
// pointers so an unlatched baseline or a sample-less tick serializes as null
// instead of a misleading zero.
type statusResponse struct {
	Alert     bool     `json:"alert"`
	Counter   int      `json:"counter"`
	Delta     *float64 `json:"delta"`
	Baseline  *float64 `json:"baseline"`
	Alpha     uint32   `json:"alpha"`
	EpisodeID string   `json:"episode_id,omitempty"`
	Frames    uint64   `json:"frames"`
	DebugView bool     `json:"debug_view"`
}

// StatusHandler handles posture status requests.
type StatusHandler struct {
	deps Dependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps Dependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	status := h.deps.Status(r.Context())
	resp := statusResponse{
		Alert:     status.Report.Alert,
		Counter:   status.Report.Counter,
		Alpha:     status.Alpha,
		EpisodeID: status.EpisodeID,
		Frames:    status.Frames,
		DebugView: status.DebugView,
	}
	if status.Report.HasBaseline {
		baseline := status.Report.Baseline
		resp.Baseline = &baseline
	}
	if status.Report.HasDelta {
		delta := status.Report.Delta
		resp.Delta = &delta
	}
	writeJSON(w, http.StatusOK, resp)
}
