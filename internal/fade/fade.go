// Package fade drives the full-screen fade overlay. Alpha is derived from
// the clock, so rewinding replays a fade without any history.
package fade

import (
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/vec"
)

// Color is the overlay tint.
type Color uint8

const (
	Black Color = iota
	White
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// State is what a renderer needs to draw the overlay.
type State struct {
	Active bool    `json:"active"`
	Color  string  `json:"color"`
	Alpha  float64 `json:"alpha"`
}

// Overlay is the fade controller. A fade is cancelled as soon as the clock
// returns to or before its start time.
type Overlay struct {
	clock  *clock.Clock
	active bool
	fadeIn bool
	color  Color
	start  float64
	end    float64
}

// New creates an idle overlay.
func New(c *clock.Clock) *Overlay {
	return &Overlay{clock: c}
}

// Start begins a fade lasting duration simulation seconds from now. A fade
// in goes from opaque to clear; a fade out from clear to opaque.
func (o *Overlay) Start(color Color, duration float64, fadeIn bool) {
	o.color = color
	o.fadeIn = fadeIn
	o.start = o.clock.CurrentTime()
	o.end = o.start + duration
	o.active = true
}

// Stop hides the overlay.
func (o *Overlay) Stop() { o.active = false }

// Update cancels the fade once time has moved back to its start.
func (o *Overlay) Update() {
	if o.active && o.clock.CurrentTime() <= o.start && o.clock.DeltaTime() < 0 {
		o.active = false
	}
}

// Alpha returns the overlay opacity at the current time.
func (o *Overlay) Alpha() float64 {
	if !o.active {
		return 0
	}
	return Alpha(o.start, o.end, o.fadeIn, o.clock.CurrentTime())
}

// State returns the overlay for publishing.
func (o *Overlay) State() State {
	return State{Active: o.active, Color: o.color.String(), Alpha: o.Alpha()}
}

// Alpha is the pure fade curve.
func Alpha(start, end float64, fadeIn bool, t float64) float64 {
	var p float64
	if end <= start {
		p = 1
		if t < start {
			p = 0
		}
	} else {
		p = vec.Clamp01(vec.InverseLerp(start, end, t))
	}
	if fadeIn {
		return 1 - p
	}
	return p
}
