// Package repository persists alert episodes.
//
// The default backing store is SQLite through the pure-Go modernc driver so
// the daemon stays cgo-free. Episode history is observability data; the
// posture baseline itself is deliberately never persisted.
package repository

import (
	"context"
	"time"

	"github.com/keido/slouchd/internal/domain/model"
)

// Store records alert episodes as they open and close.
type Store interface {
	// Begin inserts a newly opened episode (EndedAt unset).
	Begin(ctx context.Context, ep model.Episode) error

	// Finish closes an episode with its final stats.
	Finish(ctx context.Context, id string, endedAt time.Time, peakDelta float64, ticks int) error

	// Recent returns up to limit episodes, newest first.
	Recent(ctx context.Context, limit int) ([]model.Episode, error)

	// Close releases the store.
	Close() error
}

// Disabled is the no-op store used when no episode database is configured.
type Disabled struct{}

// Begin is a no-op.
func (Disabled) Begin(context.Context, model.Episode) error { return nil }

// Finish is a no-op.
func (Disabled) Finish(context.Context, string, time.Time, float64, int) error { return nil }

// Recent returns no episodes.
func (Disabled) Recent(context.Context, int) ([]model.Episode, error) { return nil, nil }

// Close is a no-op.
func (Disabled) Close() error { return nil }
