package controls

import (
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/history"
	"github.com/talgya/timeloop/internal/vec"
)

// DefaultDebounce is the minimum time between appended snapshots of a
// continuously dragged control.
const DefaultDebounce = 0.1

// Slider is a linear control holding a value in [min, max].
type Slider struct {
	Name   string
	Locked bool

	PressSound   Sound
	ReleaseSound Sound

	clock       *clock.Clock
	min, max    float64
	value       float64
	history     *history.History[float64]
	interacting bool
}

// NewSlider creates a slider at initial, clamped into [min, max].
func NewSlider(name string, c *clock.Clock, min, max, initial float64) *Slider {
	if max < min {
		min, max = max, min
	}
	initial = vec.Clamp(initial, min, max)
	return &Slider{
		Name:    name,
		clock:   c,
		min:     min,
		max:     max,
		value:   initial,
		history: history.New(initial, history.Float(DefaultDebounce)),
	}
}

// Update reconciles the value history with the clock.
func (s *Slider) Update() {
	s.history.Reconcile(s.clock.CurrentTime(), s.clock.Mode())
	s.value = s.history.Value()
}

// Value returns the slider's current value.
func (s *Slider) Value() float64 { return s.value }

// Min returns the lower bound.
func (s *Slider) Min() float64 { return s.min }

// Max returns the upper bound.
func (s *Slider) Max() float64 { return s.max }

// Normalized returns the handle position along the track.
func (s *Slider) Normalized() float64 { return vec.InverseLerp(s.min, s.max, s.value) }

// IsInteracting reports whether the player is holding the handle.
func (s *Slider) IsInteracting() bool { return s.interacting }

// SetValue clamps v and records it at the current time.
func (s *Slider) SetValue(v float64) {
	s.value = vec.Clamp(v, s.min, s.max)
	s.history.Record(s.clock.CurrentTime(), s.value)
}

// Drag moves the handle to a normalized position along the track.
func (s *Slider) Drag(along float64) {
	s.SetValue(vec.Lerp(s.min, s.max, vec.Clamp01(along)))
}

// SetMinMax changes the bounds and re-clamps. A snapshot is recorded only if
// clamping changed the value.
func (s *Slider) SetMinMax(min, max float64) {
	if max < min {
		min, max = max, min
	}
	s.min, s.max = min, max
	if clamped := vec.Clamp(s.value, min, max); clamped != s.value {
		s.SetValue(clamped)
	}
}

// History exposes the value log for inspection.
func (s *Slider) History() []history.Snapshot[float64] { return s.history.Snapshots() }

func (s *Slider) AllowInteraction() bool         { return s.clock.IsPlaying() && !s.Locked }
func (s *Slider) LocksCamera() bool              { return false }
func (s *Slider) CameraSpeedMultiplier() float64 { return 0.1 }

func (s *Slider) StartInteraction(Pointer) {
	s.interacting = true
	play(s.PressSound)
}

func (s *Slider) UpdateInteraction(p Pointer) { s.Drag(p.Along) }

func (s *Slider) EndInteraction(Pointer) {
	if !s.interacting {
		return
	}
	s.interacting = false
	play(s.ReleaseSound)
}
