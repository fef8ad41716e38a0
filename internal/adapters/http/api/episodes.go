// Package api declares HTTP contracts and route registration helpers for the
// daemon's local control endpoint.
package api

import (
	"net/http"
	"strconv"
	"time"
)

// Episode listing limits.
const (
	defaultEpisodeLimit = 20
	maxEpisodeLimit     = 100
)

// episodeResponse is the wire shape of one alert episode.
type episodeResponse struct {
	ID        string  `json:"id"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at"`
	PeakDelta float64 `json:"peak_delta"`
	Ticks     int     `json:"ticks"`
}

// EpisodesHandler handles episode history requests.
type EpisodesHandler struct {
	deps Dependencies
}

// NewEpisodesHandler creates a new episodes handler.
func NewEpisodesHandler(deps Dependencies) *EpisodesHandler {
	return &EpisodesHandler{deps: deps}
}

// HandleEpisodes handles GET /episodes requests. The optional limit query
// parameter caps the result size.
func (h *EpisodesHandler) HandleEpisodes(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_episodes"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultEpisodeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if parsed <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if parsed > maxEpisodeLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = parsed
	}

	episodes, err := h.deps.Episodes(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]episodeResponse, 0, len(episodes))
	for _, ep := range episodes {
		item := episodeResponse{
			ID:        ep.ID,
			StartedAt: ep.StartedAt.Format(time.RFC3339),
			PeakDelta: ep.PeakDelta,
			Ticks:     ep.Ticks,
		}
		if ep.Ended {
			ended := ep.EndedAt.Format(time.RFC3339)
			item.EndedAt = &ended
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}
