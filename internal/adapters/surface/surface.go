// Package surface defines the overlay surface capability: a full-screen,
// click-through, always-on-top translucent layer the feedback loop paints
// into.
//
// The OS compositing binding (layered windows, acrylic blur and friends) is a
// platform collaborator outside this module; the core only needs these three
// calls. Failure to construct a real surface at startup is fatal to the
// process, so constructors of real implementations return errors.
package surface

import (
	"context"

	"github.com/keido/slouchd/pkg/logger"
	"github.com/keido/slouchd/pkg/metrics"
)

// Surface is the capability interface the overlay animator drives.
type Surface interface {
	// Show attaches the surface to the compositor. Must be called before
	// the first visibly nonzero opacity.
	Show()

	// Hide detaches the surface so the compositor stops painting it.
	Hide()

	// SetOpacity paints the layer at the given opacity (0-255 scale).
	SetOpacity(alpha uint32) error
}

// LogSurface is the default surface on platforms without a compositor
// binding: it tracks visibility, records transition metrics and logs state
// changes. Redundant Show/Hide calls (the animator re-signals Hide every
// converged-at-zero tick) are absorbed silently.
type LogSurface struct {
	log     logger.Logger
	visible bool
}

// NewLogSurface creates a logging surface.
func NewLogSurface() *LogSurface {
	return &LogSurface{
		log: logger.Get().Named("surface"),
	}
}

// Show marks the surface visible.
func (s *LogSurface) Show() {
	if s.visible {
		return
	}
	s.visible = true
	metrics.RecordSurfaceShow()
	s.log.Info(context.Background(), "overlay surface shown")
}

// Hide marks the surface hidden.
func (s *LogSurface) Hide() {
	if !s.visible {
		return
	}
	s.visible = false
	metrics.RecordSurfaceHide()
	s.log.Info(context.Background(), "overlay surface hidden")
}

// SetOpacity records the opacity.
func (s *LogSurface) SetOpacity(alpha uint32) error {
	metrics.UpdateOverlayAlpha(alpha)
	s.log.Debug(context.Background(), "overlay opacity", logger.Int("alpha", int(alpha)))
	return nil
}

// Visible reports whether the surface is currently attached.
func (s *LogSurface) Visible() bool {
	return s.visible
}
