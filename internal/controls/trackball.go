package controls

import (
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/history"
	"github.com/talgya/timeloop/internal/vec"
)

// Trackball accumulates 2D drag input. The travel panel reads it as a
// heading.
type Trackball struct {
	Name   string
	Locked bool

	// RotationScale converts the accumulated value into degrees.
	RotationScale vec.Vec2

	PressSound   Sound
	ReleaseSound Sound

	clock   *clock.Clock
	value   vec.Vec2
	history *history.History[vec.Vec2]
}

// NewTrackball creates a trackball at initial.
func NewTrackball(name string, c *clock.Clock, initial vec.Vec2, rotationScale vec.Vec2) *Trackball {
	return &Trackball{
		Name:          name,
		RotationScale: rotationScale,
		clock:         c,
		value:         initial,
		history:       history.New(initial, history.Vec2(DefaultDebounce)),
	}
}

// Update reconciles the value history with the clock.
func (t *Trackball) Update() {
	t.history.Reconcile(t.clock.CurrentTime(), t.clock.Mode())
	t.value = t.history.Value()
}

// Value returns the accumulated drag.
func (t *Trackball) Value() vec.Vec2 { return t.value }

// Rotation returns the value scaled into pitch/yaw degrees.
func (t *Trackball) Rotation() vec.Vec2 { return t.value.Mul(t.RotationScale) }

// Nudge adds delta to the value and records it.
func (t *Trackball) Nudge(delta vec.Vec2) {
	t.value = t.value.Add(delta)
	t.history.Record(t.clock.CurrentTime(), t.value)
}

func (t *Trackball) AllowInteraction() bool         { return t.clock.IsPlaying() && !t.Locked }
func (t *Trackball) LocksCamera() bool              { return true }
func (t *Trackball) CameraSpeedMultiplier() float64 { return 0.5 }

func (t *Trackball) StartInteraction(Pointer)    { play(t.PressSound) }
func (t *Trackball) UpdateInteraction(p Pointer) { t.Nudge(p.Delta) }
func (t *Trackball) EndInteraction(Pointer)      { play(t.ReleaseSound) }
