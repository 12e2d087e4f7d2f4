package controls

import (
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/history"
)

// Button is a momentary control. Its pressed state is a step function of
// time: pressing records true, releasing records false.
type Button struct {
	Name string

	// Locked blocks new interactions. A locked button still reports the
	// pressed state its history holds unless ForceReleasedWhenLocked is set.
	Locked                  bool
	ForceReleasedWhenLocked bool

	PressSound   Sound
	ReleaseSound Sound

	clock   *clock.Clock
	pressed *history.History[bool]

	visible      bool
	prevVisible  bool
	justPressed  bool
	justReleased bool
	holding      bool
	tapped       bool
	tapShown     bool
	tapTime      float64
	lastMode     clock.Mode
}

// NewButton creates a released button.
func NewButton(name string, c *clock.Clock) *Button {
	return &Button{
		Name:    name,
		clock:   c,
		pressed: history.NewDiscrete(false),
	}
}

// Update reconciles the pressed history with the clock and computes this
// tick's edges. Edges only fire when both this update and the previous one
// saw Playing, so the update on which a seek lands never reports one.
func (b *Button) Update() {
	mode, now := b.clock.Mode(), b.clock.CurrentTime()
	if b.tapped {
		switch {
		case now < b.tapTime:
			b.tapped, b.holding = false, false
		case b.tapShown && now > b.tapTime && mode == clock.Playing:
			b.tapped = false
			b.EndInteraction(Pointer{})
		}
	}
	b.pressed.Reconcile(now, mode)

	b.prevVisible = b.visible
	b.visible = b.pressed.Value()
	if b.Locked && b.ForceReleasedWhenLocked {
		b.visible = false
	}

	playing := mode == clock.Playing && b.lastMode == clock.Playing
	b.justPressed = playing && b.visible && !b.prevVisible
	b.justReleased = playing && !b.visible && b.prevVisible
	b.tapShown = b.tapped
	b.lastMode = mode
}

// Pressed reports the button's state at the current time.
func (b *Button) Pressed() bool { return b.visible }

// JustPressed reports a released→pressed edge during forward play.
func (b *Button) JustPressed() bool { return b.justPressed }

// JustReleased reports a pressed→released edge during forward play.
func (b *Button) JustReleased() bool { return b.justReleased }

// History exposes the pressed log for inspection.
func (b *Button) History() []history.Snapshot[bool] { return b.pressed.Snapshots() }

func (b *Button) AllowInteraction() bool         { return b.clock.IsPlaying() && !b.Locked }
func (b *Button) LocksCamera() bool              { return false }
func (b *Button) CameraSpeedMultiplier() float64 { return 0.5 }

func (b *Button) StartInteraction(Pointer) {
	b.holding = true
	b.pressed.Record(b.clock.CurrentTime(), true)
	play(b.PressSound)
}

func (b *Button) UpdateInteraction(Pointer) {}

func (b *Button) EndInteraction(Pointer) {
	if !b.holding {
		return
	}
	b.holding = false
	b.pressed.Record(b.clock.CurrentTime(), false)
	play(b.ReleaseSound)
}

// Tap presses the button now and releases it once an Update has reported
// the press and time has moved on. Used for scripted input.
func (b *Button) Tap() {
	if !b.AllowInteraction() || b.holding {
		return
	}
	b.StartInteraction(Pointer{})
	b.tapped, b.tapShown = true, false
	b.tapTime = b.clock.CurrentTime()
}
