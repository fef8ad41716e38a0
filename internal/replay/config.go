package replay

import "time"

// Config holds configuration for a monitor exercise run.
type Config struct {
	BaseURL      string        // Base URL of the daemon
	Duration     time.Duration // How long to observe the loop
	PollInterval time.Duration // Status polling period
	Timeout      time.Duration // HTTP request timeout
	ResetAt      time.Duration // When to issue a baseline reset; zero disables
	OutputFile   string        // Output file for collected samples
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
}

// StatusSample mirrors the daemon's /status response, plus the client-side
// observation time.
type StatusSample struct {
	ObservedAt time.Time `json:"observed_at"`
	Alert      bool      `json:"alert"`
	Counter    int       `json:"counter"`
	Delta      *float64  `json:"delta"`
	Baseline   *float64  `json:"baseline"`
	Alpha      uint32    `json:"alpha"`
	EpisodeID  string    `json:"episode_id,omitempty"`
	Frames     uint64    `json:"frames"`
	DebugView  bool      `json:"debug_view"`
}

// EpisodeRecord mirrors one entry of the daemon's /episodes response.
type EpisodeRecord struct {
	ID        string  `json:"id"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at"`
	PeakDelta float64 `json:"peak_delta"`
	Ticks     int     `json:"ticks"`
}

// AckResponse represents the response from a control endpoint.
type AckResponse struct {
	Status  string `json:"status"`
	Command string `json:"command"`
}

// Stats holds run statistics.
type Stats struct {
	SamplesCollected int
	PollFailures     int
	AlertSamples     int
	AlertTransitions int
	EpisodesListed   int
	ResetIssued      bool
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
