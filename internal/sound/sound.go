// Package sound records when cues play so that rewinding can replay them.
// Actual audio is an Output; the headless runner logs cues instead.
package sound

import (
	"log/slog"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
	"github.com/talgya/timeloop/internal/history"
)

// Output plays cues. Implementations must not block.
type Output interface {
	Play(cue string, volume, pitch float64)
	Stop(cue string)
}

// LogOutput reports cues through slog.
type LogOutput struct{}

func (LogOutput) Play(cue string, volume, pitch float64) {
	slog.Debug("sound", "cue", cue, "volume", volume, "pitch", pitch)
}

func (LogOutput) Stop(cue string) { slog.Debug("sound stopped", "cue", cue) }

type trigger struct {
	Duration float64
	Volume   float64
}

// Cue is one sound source. Every Play is logged with its start time and
// length; a rewind that passes back over a trigger replays it.
type Cue struct {
	Name              string
	Length            float64
	Volume            float64
	IsMusic           bool
	MuteOnRewind      bool
	MuteOnFastForward bool

	clock *clock.Clock
	prefs *config.Preferences
	out   Output

	log   history.Log[trigger]
	muted bool
	pitch float64
}

// NewCue creates a cue of the given clip length in seconds. prefs and out
// may be nil.
func NewCue(name string, length float64, c *clock.Clock, prefs *config.Preferences, out Output) *Cue {
	if out == nil {
		out = LogOutput{}
	}
	return &Cue{Name: name, Length: length, Volume: 1, clock: c, prefs: prefs, out: out, pitch: 1}
}

// Update applies mute rules and pitch, and replays triggers the rewind is
// passing back through.
func (s *Cue) Update() {
	s.muted = s.computeMuted()
	s.pitch = s.clock.TimeScale()
	if !s.clock.IsRewinding() {
		return
	}
	now := s.clock.CurrentTime()
	s.log.Unwind(func(e history.Entry[trigger]) bool {
		return e.Time+e.Data.Duration > now
	}, func(e history.Entry[trigger]) {
		if now >= e.Time && !s.MuteOnRewind {
			s.emit(e.Data.Volume)
		}
	})
}

func (s *Cue) computeMuted() bool {
	switch {
	case s.MuteOnRewind && s.clock.IsRewinding():
		return true
	case s.MuteOnFastForward && s.clock.IsFastForwarding():
		return true
	case s.prefs == nil:
		return false
	case s.IsMusic:
		return s.prefs.MusicVolume <= 0
	default:
		return s.prefs.SFXVolume <= 0
	}
}

// Play starts the cue at full volume.
func (s *Cue) Play() { s.PlayAt(1) }

// PlayAt starts the cue at volume in [0, 1] and logs the trigger.
func (s *Cue) PlayAt(volume float64) {
	s.log.Push(s.clock.CurrentTime(), trigger{Duration: s.Length, Volume: volume})
	s.emit(volume)
}

// Stop ends the cue now and shortens its trigger to what actually played.
func (s *Cue) Stop() {
	s.out.Stop(s.Name)
	if top, ok := s.log.Top(); ok && s.IsPlaying() {
		top.Data.Duration = s.clock.CurrentTime() - top.Time
		s.log.ReplaceTop(top.Data)
	}
}

// SetPlaying starts or stops a looping cue to match playing.
func (s *Cue) SetPlaying(playing bool, volume float64) {
	switch {
	case playing && !s.IsPlaying():
		s.PlayAt(volume)
	case !playing && s.IsPlaying():
		s.Stop()
	}
}

// IsPlaying reports whether the newest trigger covers the current time.
func (s *Cue) IsPlaying() bool {
	top, ok := s.log.Top()
	if !ok {
		return false
	}
	now := s.clock.CurrentTime()
	return now >= top.Time && now < top.Time+top.Data.Duration
}

// Muted reports the mute state computed by the last Update.
func (s *Cue) Muted() bool { return s.muted }

// Pitch follows the effective time scale.
func (s *Cue) Pitch() float64 { return s.pitch }

// Triggers returns the number of logged triggers.
func (s *Cue) Triggers() int { return s.log.Len() }

func (s *Cue) emit(volume float64) {
	if s.muted {
		return
	}
	v := volume * s.Volume
	if s.prefs != nil {
		v *= s.prefs.MasterVolume
		if s.IsMusic {
			v *= s.prefs.MusicVolume
		} else {
			v *= s.prefs.SFXVolume
		}
	}
	s.out.Play(s.Name, v, s.pitch)
}
