package sound

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
)

type recorder struct {
	plays []float64
	stops int
}

func (r *recorder) Play(_ string, volume, _ float64) { r.plays = append(r.plays, volume) }
func (r *recorder) Stop(string)                      { r.stops++ }

func setup() (*clock.Clock, *recorder) {
	return clock.New(clock.DefaultConfig(), clock.NewTimers(clockwork.NewFakeClock())), &recorder{}
}

func advance(c *clock.Clock, cues []*Cue, seconds int) {
	for i := 0; i < seconds; i++ {
		c.Tick(1)
		c.DrainEvents()
		for _, s := range cues {
			s.Update()
		}
	}
}

func rewind(c *clock.Clock, cues []*Cue, to float64) {
	c.SeekTo(to)
	for c.IsRewinding() {
		c.Tick(0.05)
		c.DrainEvents()
		for _, s := range cues {
			s.Update()
		}
	}
}

func TestRewindReplaysTriggers(t *testing.T) {
	c, out := setup()
	prefs := config.DefaultPreferences()
	prefs.SFXVolume = 0.5
	s := NewCue("press", 2, c, &prefs, out)
	cues := []*Cue{s}

	advance(c, cues, 5)
	s.Play()
	assert.True(t, s.IsPlaying())
	advance(c, cues, 5)
	assert.False(t, s.IsPlaying())

	rewind(c, cues, 0)
	assert.Equal(t, []float64{0.5, 0.5}, out.plays)
	assert.Zero(t, s.Triggers())
}

func TestMuteOnRewindSkipsReplay(t *testing.T) {
	c, out := setup()
	s := NewCue("engine", 2, c, nil, out)
	s.MuteOnRewind = true
	cues := []*Cue{s}

	advance(c, cues, 5)
	s.Play()
	advance(c, cues, 5)
	c.SeekTo(0)
	c.Tick(0.05)
	s.Update()
	assert.True(t, s.Muted())
	assert.Equal(t, -20.0, s.Pitch())

	rewind(c, cues, 0)
	assert.Len(t, out.plays, 1)
}

func TestZeroVolumePreferenceMutes(t *testing.T) {
	c, out := setup()
	prefs := config.DefaultPreferences()
	prefs.MusicVolume = 0
	s := NewCue("theme", 60, c, &prefs, out)
	s.IsMusic = true
	s.Update()
	s.SetPlaying(true, 1)
	assert.True(t, s.Muted())
	assert.Empty(t, out.plays)
	assert.Equal(t, 1, s.Triggers(), "the trigger is still logged")
}

func TestStopShortensTrigger(t *testing.T) {
	c, out := setup()
	s := NewCue("hum", 10, c, nil, out)
	cues := []*Cue{s}
	advance(c, cues, 5)
	s.SetPlaying(true, 1)
	advance(c, cues, 2)
	s.SetPlaying(false, 1)
	assert.Equal(t, 1, out.stops)
	assert.False(t, s.IsPlaying())

	// The shortened trigger ended at 7, so rewinding to 8 replays nothing.
	advance(c, cues, 3)
	rewind(c, cues, 8)
	assert.Len(t, out.plays, 1)
	assert.Equal(t, 1, s.Triggers())
}
