// Package injector implements the engine injector: the station where
// harvested cargo is fed either into the ship's shield or, as a complete
// combination, into the engine to end the loop.
package injector

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/fade"
	"github.com/talgya/timeloop/internal/history"
)

// Mode selects what an injection feeds.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeShield
	ModeEngine
)

func (m Mode) String() string {
	switch m {
	case ModeShield:
		return "shield"
	case ModeEngine:
		return "engine"
	default:
		return "none"
	}
}

// Delays of the engine injection sequence, in real time.
const (
	SettleDelay = time.Second
	FinishDelay = 2 * time.Second
)

// Sound is a one-shot cue.
type Sound interface{ Play() }

// Fader starts a screen fade.
type Fader interface {
	Start(color fade.Color, duration float64, fadeIn bool)
}

type contentChange struct {
	Type  cargo.Type
	Index int
	Added bool
}

// Injector holds loaded cargo, the active shield and the mode. Contents are
// an undo log; shield and mode are step histories.
type Injector struct {
	InjectSound    Sound
	CorrectSound   Sound
	IncorrectSound Sound
	Fader          Fader

	// OnComplete runs when a correct engine injection finishes.
	OnComplete func()

	clock       *clock.Clock
	combination []cargo.Type
	contents    []cargo.Type
	log         history.Log[contentChange]
	shield      *history.History[cargo.Type]
	mode        *history.History[Mode]
	injecting   bool
}

// New creates an empty injector expecting combination for the engine.
func New(c *clock.Clock, combination []cargo.Type, mode Mode) *Injector {
	return &Injector{
		clock:       c,
		combination: slices.Clone(combination),
		shield:      history.NewDiscrete(cargo.None),
		mode:        history.NewDiscrete(mode),
	}
}

// Update undoes content changes newer than the current time and resolves
// shield and mode.
func (in *Injector) Update() {
	now, mode := in.clock.CurrentTime(), in.clock.Mode()
	in.rollback(now)
	in.shield.Reconcile(now, mode)
	in.mode.Reconcile(now, mode)
}

func (in *Injector) rollback(t float64) {
	in.log.Rollback(t, func(e history.Entry[contentChange]) {
		c := e.Data
		if c.Added {
			if c.Index < len(in.contents) {
				in.contents = slices.Delete(in.contents, c.Index, c.Index+1)
			}
			return
		}
		in.contents = slices.Insert(in.contents, min(c.Index, len(in.contents)), c.Type)
	})
}

// Mode returns the active mode.
func (in *Injector) Mode() Mode { return in.mode.Value() }

// SetMode switches modes.
func (in *Injector) SetMode(m Mode) {
	in.mode.Record(in.clock.CurrentTime(), m)
}

// Shield returns the material currently in the shield.
func (in *Injector) Shield() cargo.Type { return in.shield.Value() }

// Contents returns a copy of the loaded cargo.
func (in *Injector) Contents() []cargo.Type { return slices.Clone(in.contents) }

// Capacity is the size of the engine combination.
func (in *Injector) Capacity() int { return len(in.combination) }

// Combination returns the combination the engine expects.
func (in *Injector) Combination() []cargo.Type { return slices.Clone(in.combination) }

// IsInjecting reports whether an engine sequence is in flight.
func (in *Injector) IsInjecting() bool { return in.injecting }

// AddCargo loads ct. It fails for None or when the injector is full.
func (in *Injector) AddCargo(ct cargo.Type) bool {
	if ct == cargo.None || len(in.contents) >= len(in.combination) {
		return false
	}
	now := in.clock.CurrentTime()
	in.rollback(now)
	in.contents = append(in.contents, ct)
	in.log.Push(now, contentChange{Type: ct, Index: len(in.contents) - 1, Added: true})
	return true
}

// CanInject reports whether TryInject would succeed.
func (in *Injector) CanInject() bool {
	if !in.clock.IsPlaying() || in.injecting {
		return false
	}
	switch in.Mode() {
	case ModeShield:
		return len(in.contents) > 0
	case ModeEngine:
		return len(in.contents) == len(in.combination)
	default:
		return false
	}
}

// TryInject injects the loaded cargo according to the mode.
func (in *Injector) TryInject() bool {
	if !in.CanInject() {
		return false
	}
	now := in.clock.CurrentTime()
	play(in.InjectSound)

	if in.Mode() == ModeShield {
		ct := in.remove(now, 0)
		in.shield.Record(now, ct)
		slog.Info("shield injected", "cargo", ct, "time", now)
		return true
	}

	correct := in.matches()
	for len(in.contents) > 0 {
		in.remove(now, 0)
	}
	in.injecting = true
	slog.Info("engine injected", "correct", correct, "time", now)
	in.runSequence(correct)
	return true
}

func (in *Injector) remove(now float64, i int) cargo.Type {
	ct := in.contents[i]
	in.contents = slices.Delete(in.contents, i, i+1)
	in.log.Push(now, contentChange{Type: ct, Index: i})
	return ct
}

// matches compares contents and combination as multisets.
func (in *Injector) matches() bool {
	if len(in.contents) != len(in.combination) {
		return false
	}
	a, b := slices.Clone(in.contents), slices.Clone(in.combination)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func (in *Injector) runSequence(correct bool) {
	timers := in.clock.Timers()
	timers.After("inject-settle", SettleDelay, func() {
		in.clock.SetBaseTimeScale(1)
		if correct {
			play(in.CorrectSound)
			in.fade(fade.Black, 2)
		} else {
			play(in.IncorrectSound)
			in.fade(fade.White, 0.2)
		}
		timers.After("inject-finish", FinishDelay, func() {
			in.injecting = false
			if correct {
				slog.Info("engine sequence complete")
				if in.OnComplete != nil {
					in.OnComplete()
				}
				return
			}
			slog.Info("engine rejected the combination, rewinding")
			in.clock.EmergencyRewindToStart()
		})
	})
}

func (in *Injector) fade(color fade.Color, d float64) {
	if in.Fader != nil {
		in.Fader.Start(color, d, false)
	}
}

// HUDText renders the injector panel.
func (in *Injector) HUDText() string {
	var modeText string
	switch in.Mode() {
	case ModeShield:
		modeText = ">Shield<  Engine "
	case ModeEngine:
		modeText = " Shield  >Engine<"
	default:
		modeText = " Shield   Engine "
	}

	var status string
	switch {
	case in.injecting:
		status = "Injecting..."
	case in.CanInject():
		status = "Ready"
	case in.Mode() == ModeEngine:
		status = fmt.Sprintf("Insert Materials (%d/%d)", len(in.contents), len(in.combination))
	case in.Mode() == ModeShield:
		status = fmt.Sprintf("Insert Material (%d/1)", len(in.contents))
	}

	shield := "Awaiting Injection"
	if s := in.Shield(); s != cargo.None {
		shield = s.DisplayName()
	}

	contents := "Empty"
	if len(in.contents) > 0 {
		names := make([]string, len(in.contents))
		for i, ct := range in.contents {
			names[i] = ct.DisplayName()
		}
		contents = strings.Join(names, "\n")
	}

	return fmt.Sprintf("Current Shield:\n%s\n\nInjector Mode:\n%s\n\n%s\n\nInjector Contents:\n%s",
		shield, modeText, status, contents)
}

func play(s Sound) {
	if s != nil {
		s.Play()
	}
}
