// Package controls implements the in-world inputs the player operates:
// momentary buttons, sliders and a trackball. Each control keeps its state
// in a history so scrubbing the clock replays what the player did.
package controls

import "github.com/talgya/timeloop/internal/vec"

// Pointer describes one frame of an ongoing interaction. Along is the
// pointer projected onto a linear control's track, normalized to [0, 1];
// Delta is the raw look movement since the previous frame.
type Pointer struct {
	Along float64
	Delta vec.Vec2
}

// Interactable is anything the player can grab and operate.
type Interactable interface {
	AllowInteraction() bool
	LocksCamera() bool
	CameraSpeedMultiplier() float64
	StartInteraction(p Pointer)
	UpdateInteraction(p Pointer)
	EndInteraction(p Pointer)
}

// Sound is a one-shot cue a control plays on press and release.
type Sound interface {
	Play()
}

func play(s Sound) {
	if s != nil {
		s.Play()
	}
}
