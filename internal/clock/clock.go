// Package clock provides the authoritative simulation clock: elapsed time
// within a bounded loop, a base time scale with an independent multiplier,
// and the Playing/Stopped/Resetting/Rewinding/FastForwarding state machine.
//
// Every accessor is safe on a nil *Clock and returns a conservative default,
// so entities may be built before the clock exists.
package clock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Mode is the clock's single active state.
type Mode uint8

const (
	Playing Mode = iota
	Stopped
	Resetting
	Rewinding
	FastForwarding
)

var modeNames = [...]string{
	Playing:        "Playing",
	Stopped:        "Stopped",
	Resetting:      "Resetting",
	Rewinding:      "Rewinding",
	FastForwarding: "FastForwarding",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Seeking reports whether the mode is a seek toward a target time.
func (m Mode) Seeking() bool { return m == Rewinding || m == FastForwarding }

// Config holds the clock's fixed parameters.
type Config struct {
	TotalDuration    float64       // loop length in simulation seconds
	TimeScale        float64       // default base scale restored when a seek completes
	RewindSpeed      float64       // simulation seconds per real second while rewinding
	FastForwardSpeed float64       // simulation seconds per real second while fast-forwarding
	ResetDelay       time.Duration // real time between Resetting and Reset
	StopDelay        time.Duration // real time between Stopped and the end-of-run action
}

// DefaultConfig mirrors the shipped loop: two minutes, 20x seeks.
func DefaultConfig() Config {
	return Config{
		TotalDuration:    120,
		TimeScale:        1,
		RewindSpeed:      20,
		FastForwardSpeed: 20,
		ResetDelay:       time.Second,
		StopDelay:        5 * time.Second,
	}
}

// Clock owns elapsed time and mode. It is mutated only through its own
// methods and is driven by one Tick per frame.
type Clock struct {
	cfg Config

	elapsed    float64
	baseScale  float64
	multiplier float64
	target     float64
	mode       Mode
	lastDelta  float64

	timers  *Timers
	pending []Event

	// OnStopEnding runs once per Stopped entry after StopDelay.
	OnStopEnding func()
}

// New creates a clock in Playing at time 0. Deferred endings are scheduled
// on timers, which the engine processes each tick.
func New(cfg Config, timers *Timers) *Clock {
	if cfg.TotalDuration <= 0 {
		cfg.TotalDuration = DefaultConfig().TotalDuration
	}
	if cfg.RewindSpeed <= 0 {
		cfg.RewindSpeed = DefaultConfig().RewindSpeed
	}
	if cfg.FastForwardSpeed <= 0 {
		cfg.FastForwardSpeed = DefaultConfig().FastForwardSpeed
	}
	if cfg.TimeScale < 0 {
		cfg.TimeScale = 0
	}
	if timers == nil {
		timers = NewTimers(nil)
	}
	return &Clock{
		cfg:        cfg,
		baseScale:  cfg.TimeScale,
		multiplier: 1,
		mode:       Playing,
		timers:     timers,
	}
}

// Config returns the clock's parameters.
func (c *Clock) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Timers returns the deferred task set the clock schedules on.
func (c *Clock) Timers() *Timers {
	if c == nil {
		return nil
	}
	return c.timers
}

// CurrentTime returns elapsed simulation time.
func (c *Clock) CurrentTime() float64 {
	if c == nil {
		return 0
	}
	return c.elapsed
}

// TotalDuration returns the loop length.
func (c *Clock) TotalDuration() float64 {
	if c == nil {
		return 0
	}
	return c.cfg.TotalDuration
}

// Progress returns elapsed time normalized to [0, 1].
func (c *Clock) Progress() float64 {
	if c == nil {
		return 0
	}
	return clamp(c.elapsed/c.cfg.TotalDuration, 0, 1)
}

// TimeScale returns the effective rate of simulation time per real second.
func (c *Clock) TimeScale() float64 {
	if c == nil {
		return 1
	}
	switch c.mode {
	case Playing:
		return c.baseScale * c.multiplier
	case Rewinding:
		return -c.cfg.RewindSpeed
	case FastForwarding:
		return c.cfg.FastForwardSpeed
	default:
		return 0
	}
}

// RawTimeScale returns the base scale without multiplier or seek override.
func (c *Clock) RawTimeScale() float64 {
	if c == nil {
		return 1
	}
	return c.baseScale
}

// Multiplier returns the local slow-motion factor.
func (c *Clock) Multiplier() float64 {
	if c == nil {
		return 1
	}
	return c.multiplier
}

// DeltaTime returns the signed simulation time applied by the last tick.
func (c *Clock) DeltaTime() float64 {
	if c == nil {
		return 0
	}
	return c.lastDelta
}

// TargetTime returns the seek target. Meaningful only while seeking.
func (c *Clock) TargetTime() float64 {
	if c == nil {
		return 0
	}
	return c.target
}

// Mode returns the active mode. A nil clock reports Stopped so that
// IsPlaying-gated input stays closed.
func (c *Clock) Mode() Mode {
	if c == nil {
		return Stopped
	}
	return c.mode
}

func (c *Clock) IsPlaying() bool        { return c != nil && c.mode == Playing }
func (c *Clock) IsStopped() bool        { return c != nil && c.mode == Stopped }
func (c *Clock) IsResetting() bool      { return c != nil && c.mode == Resetting }
func (c *Clock) IsRewinding() bool      { return c != nil && c.mode == Rewinding }
func (c *Clock) IsFastForwarding() bool { return c != nil && c.mode == FastForwarding }

// SeekTo starts a rewind or fast-forward toward t, clamped to the loop.
// Seeking to the current time, or while a seek is already in flight, does
// nothing.
func (c *Clock) SeekTo(t float64) {
	if c == nil {
		return
	}
	t = clamp(t, 0, c.cfg.TotalDuration)
	switch {
	case t < c.elapsed:
		c.beginSeek(Rewinding, t)
	case t > c.elapsed:
		c.beginSeek(FastForwarding, t)
	}
}

// EmergencyRewindToStart rewinds to time 0. Repeated calls while any seek is
// in flight are dropped.
func (c *Clock) EmergencyRewindToStart() {
	if c == nil {
		return
	}
	if c.mode.Seeking() {
		slog.Debug("emergency rewind dropped, seek in flight", "mode", c.mode, "target", c.target)
		return
	}
	if c.elapsed == 0 {
		return
	}
	c.beginSeek(Rewinding, 0)
}

// SetBaseTimeScale sets the base rate. Negative values clamp to 0, which
// stops the loop on the next tick.
func (c *Clock) SetBaseTimeScale(v float64) {
	if c == nil {
		return
	}
	if v < 0 {
		v = 0
	}
	if v == c.baseScale {
		return
	}
	c.baseScale = v
	c.emit(EventTimeScaleChanged, v)
}

// SetTimeScaleMultiplier sets the local slow-motion factor. It never affects
// seek speeds.
func (c *Clock) SetTimeScaleMultiplier(v float64) {
	if c == nil {
		return
	}
	if v < 0 {
		v = 0
	}
	c.multiplier = v
}

// Tick advances the clock by dt seconds of real time and resolves at most
// one transition, checked in the order seek-completion, end-of-duration,
// zero-scale.
func (c *Clock) Tick(dt float64) {
	if c == nil || dt < 0 {
		return
	}
	before := c.elapsed
	switch c.mode {
	case Playing:
		c.elapsed = clamp(c.elapsed+dt*c.baseScale*c.multiplier, 0, c.cfg.TotalDuration)
	case Rewinding:
		c.elapsed = max(c.elapsed-dt*c.cfg.RewindSpeed, c.target)
	case FastForwarding:
		c.elapsed = min(c.elapsed+dt*c.cfg.FastForwardSpeed, c.target)
	}
	c.lastDelta = c.elapsed - before

	switch {
	case c.mode.Seeking() && c.reachedTarget():
		c.finishSeek()
	case c.mode == Playing && c.baseScale > 0 && c.elapsed >= c.cfg.TotalDuration:
		c.beginReset()
	case c.mode == Playing && c.baseScale == 0:
		c.beginStop()
	}
}

// DrainEvents returns and clears the notifications raised since the last
// drain.
func (c *Clock) DrainEvents() []Event {
	if c == nil || len(c.pending) == 0 {
		return nil
	}
	out := c.pending
	c.pending = nil
	return out
}

// String renders the clock for debug overlays and logs.
func (c *Clock) String() string {
	if c == nil {
		return "Time: 0 / 0 (Scale: 1) Missing"
	}
	return fmt.Sprintf("Time: %s / %s (Scale: %s) %s",
		humanize.FtoaWithDigits(c.elapsed, 2),
		humanize.FtoaWithDigits(c.cfg.TotalDuration, 2),
		humanize.FtoaWithDigits(c.TimeScale(), 2),
		c.mode)
}

func (c *Clock) reachedTarget() bool {
	if c.mode == Rewinding {
		return c.elapsed <= c.target
	}
	return c.elapsed >= c.target
}

func (c *Clock) beginSeek(mode Mode, target float64) {
	if c.mode.Seeking() {
		slog.Debug("seek dropped, seek in flight", "requested", mode, "target", target, "mode", c.mode)
		return
	}
	c.mode = mode
	c.target = target
	if mode == Rewinding {
		c.emit(EventRewinding, 0)
	} else {
		c.emit(EventFastForwarding, 0)
	}
	slog.Info("clock seeking", "mode", mode, "from", c.elapsed, "to", target)
}

func (c *Clock) finishSeek() {
	c.elapsed = c.target
	done := EventFastForwarded
	if c.mode == Rewinding {
		done = EventRewound
	}
	c.mode = Playing
	c.emit(done, 0)
	c.SetBaseTimeScale(c.cfg.TimeScale)
	c.emit(EventResumed, 0)
	slog.Info("clock resumed", "time", c.elapsed)
}

func (c *Clock) beginReset() {
	c.mode = Resetting
	c.emit(EventResetting, 0)
	slog.Info("clock resetting", "time", c.elapsed)
	c.timers.After("reset", c.cfg.ResetDelay, func() {
		c.emit(EventReset, 0)
		slog.Info("clock reset, rewinding to start")
		c.beginSeek(Rewinding, 0)
	})
}

func (c *Clock) beginStop() {
	c.mode = Stopped
	c.emit(EventStopped, 0)
	slog.Info("clock stopped", "time", c.elapsed)
	c.timers.After("stop-ending", c.cfg.StopDelay, func() {
		slog.Info("stop ending reached")
		if c.OnStopEnding != nil {
			c.OnStopEnding()
		}
	})
}

func (c *Clock) emit(kind EventKind, value float64) {
	c.pending = append(c.pending, Event{Kind: kind, Time: c.elapsed, Value: value})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
