// Package overlay holds the overlay fade controller: target-seeking alpha
// animation plus the show/hide decisions for the compositing surface.
package overlay

import (
	"github.com/keido/slouchd/internal/domain/model"
)

// Default animator configuration constants.
const (
	defaultMaxAlpha  = 180 // out of 255
	defaultFadeSpeed = 15  // alpha units per tick
)

// Animator owns the overlay opacity. Current converges toward the target by
// at most fadeSpeed per Advance call and never overshoots. The implicit
// states are Hidden (current=0), FadingIn, Visible (current=maxAlpha) and
// FadingOut; there is no terminal state. Not safe for concurrent use.
type Animator struct {
	maxAlpha  uint32
	fadeSpeed uint32

	current uint32
	target  uint32
}

// Option applies a configuration option to the Animator.
type Option func(*Animator)

// WithMaxAlpha sets the fully-visible opacity (0-255 scale).
func WithMaxAlpha(alpha uint32) Option {
	return func(a *Animator) {
		if alpha > 0 && alpha <= 255 {
			a.maxAlpha = alpha
		}
	}
}

// WithFadeSpeed sets the per-tick alpha step.
func WithFadeSpeed(speed uint32) Option {
	return func(a *Animator) {
		if speed > 0 {
			a.fadeSpeed = speed
		}
	}
}

// NewAnimator creates an animator with configuration options, starting fully
// transparent with a transparent target.
func NewAnimator(opts ...Option) *Animator {
	a := &Animator{
		maxAlpha:  defaultMaxAlpha,
		fadeSpeed: defaultFadeSpeed,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// SetTarget points the animation at fully visible or fully transparent.
// Pure state write; nothing moves until Advance.
func (a *Animator) SetTarget(visible bool) {
	if visible {
		a.target = a.maxAlpha
	} else {
		a.target = 0
	}
}

// Advance steps the current opacity one tick toward the target and returns
// the resulting frame.
//
// When already converged it is a no-op on the opacity; converged at zero it
// keeps signalling Hide so the surface can stay out of the compositor. A
// fade-in leaving zero signals Show before the opacity is visibly nonzero,
// otherwise a flash of stale surface content would appear. Decreasing uses
// saturating arithmetic so a low current can never wrap below zero.
func (a *Animator) Advance() model.OverlayFrame {
	if a.current == a.target {
		return model.OverlayFrame{
			Alpha: a.current,
			Hide:  a.current == 0,
		}
	}

	frame := model.OverlayFrame{}
	if a.current == 0 && a.target > 0 {
		frame.Show = true
	}

	if a.current < a.target {
		a.current += a.fadeSpeed
		if a.current > a.target {
			a.current = a.target
		}
	} else {
		if a.current < a.fadeSpeed {
			a.current = 0
		} else {
			a.current -= a.fadeSpeed
		}
		if a.current < a.target {
			a.current = a.target
		}
	}

	frame.Alpha = a.current
	return frame
}

// Current returns the current opacity.
func (a *Animator) Current() uint32 {
	return a.current
}

// Target returns the opacity the animation is converging toward.
func (a *Animator) Target() uint32 {
	return a.target
}
