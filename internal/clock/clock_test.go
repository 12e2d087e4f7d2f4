package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClock(t *testing.T) (*Clock, *clockwork.FakeClock, *Timers) {
	t.Helper()
	fake := clockwork.NewFakeClock()
	timers := NewTimers(fake)
	return New(DefaultConfig(), timers), fake, timers
}

// run ticks the clock n times with dt, processing timers first the way the
// engine does.
func run(c *Clock, timers *Timers, n int, dt float64) []Event {
	var out []Event
	for i := 0; i < n; i++ {
		timers.Process()
		c.Tick(dt)
		out = append(out, c.DrainEvents()...)
	}
	return out
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestNilClockDefaults(t *testing.T) {
	var c *Clock
	assert.Equal(t, 0.0, c.CurrentTime())
	assert.Equal(t, 1.0, c.TimeScale())
	assert.Equal(t, 1.0, c.RawTimeScale())
	assert.False(t, c.IsPlaying())
	assert.False(t, c.IsRewinding())
	assert.Equal(t, 0.0, c.Progress())
	assert.Nil(t, c.DrainEvents())

	assert.NotPanics(t, func() {
		c.SeekTo(10)
		c.EmergencyRewindToStart()
		c.SetBaseTimeScale(2)
		c.SetTimeScaleMultiplier(0.5)
		c.Tick(1)
	})
}

func TestPlayingAdvancesWithScaleAndMultiplier(t *testing.T) {
	c, _, timers := newTestClock(t)
	c.SetBaseTimeScale(2)
	c.SetTimeScaleMultiplier(0.5)
	run(c, timers, 10, 0.5)
	assert.InDelta(t, 5.0, c.CurrentTime(), 1e-9)
	assert.InDelta(t, 1.0, c.TimeScale(), 1e-9)
	assert.InDelta(t, 2.0, c.RawTimeScale(), 1e-9)
	assert.InDelta(t, 0.5, c.DeltaTime(), 1e-9)
}

func TestSeekDirection(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		want   Mode
		event  []EventKind
	}{
		{"earlier rewinds", 10, Rewinding, []EventKind{EventRewinding}},
		{"later fast-forwards", 80, FastForwarding, []EventKind{EventFastForwarding}},
		{"same time is a no-op", 50, Playing, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, timers := newTestClock(t)
			run(c, timers, 50, 1)
			require.InDelta(t, 50.0, c.CurrentTime(), 1e-9)

			c.SeekTo(tt.target)
			assert.Equal(t, tt.want, c.Mode())
			ev := c.DrainEvents()
			if tt.event == nil {
				assert.Empty(t, ev)
			} else {
				assert.Equal(t, tt.event, kinds(ev))
			}
		})
	}
}

func TestSeekCompletesExactlyOnTarget(t *testing.T) {
	c, _, timers := newTestClock(t)
	run(c, timers, 50, 1)
	c.SeekTo(13)
	c.DrainEvents()

	// 20 s/s rewind: 50 -> 30 -> 13 (clamped, never overshooting).
	events := run(c, timers, 1, 1)
	assert.InDelta(t, 30.0, c.CurrentTime(), 1e-9)
	assert.Empty(t, events)
	assert.Equal(t, -20.0, c.TimeScale())

	events = run(c, timers, 1, 1)
	assert.Equal(t, 13.0, c.CurrentTime())
	assert.Equal(t, Playing, c.Mode())
	assert.Equal(t, []EventKind{EventRewound, EventResumed}, kinds(events))

	c.SeekTo(100)
	run(c, timers, 5, 1)
	assert.Equal(t, 100.0, c.CurrentTime())
	assert.True(t, c.IsPlaying())
}

func TestSeekClampsIntoLoop(t *testing.T) {
	c, _, timers := newTestClock(t)
	c.SeekTo(500)
	assert.Equal(t, 120.0, c.TargetTime())
	run(c, timers, 10, 1)
	assert.Equal(t, 120.0, c.CurrentTime())

	c2, _, _ := newTestClock(t)
	c2.SeekTo(-3)
	assert.Equal(t, Playing, c2.Mode(), "seek to 0 from 0 is a no-op")
}

func TestSeekSpeedIgnoresMultiplier(t *testing.T) {
	c, _, timers := newTestClock(t)
	run(c, timers, 60, 1)
	c.SetTimeScaleMultiplier(0.1)
	c.SeekTo(0)
	run(c, timers, 1, 1)
	assert.InDelta(t, 40.0, c.CurrentTime(), 1e-9)
}

func TestEmergencyRewindIsIdempotent(t *testing.T) {
	c, _, timers := newTestClock(t)
	run(c, timers, 60, 1)

	c.EmergencyRewindToStart()
	c.EmergencyRewindToStart()
	c.SeekTo(30)
	events := c.DrainEvents()
	assert.Equal(t, []EventKind{EventRewinding}, kinds(events))
	assert.Equal(t, 0.0, c.TargetTime())

	events = run(c, timers, 3, 1)
	assert.Equal(t, 0.0, c.CurrentTime())
	assert.Equal(t, []EventKind{EventRewound, EventResumed}, kinds(events))
}

func TestEndOfDurationFiresResetOnce(t *testing.T) {
	c, fake, timers := newTestClock(t)

	events := run(c, timers, 120, 1)
	assert.Equal(t, []EventKind{EventResetting}, kinds(events))
	assert.True(t, c.IsResetting())
	assert.Equal(t, 0.0, c.TimeScale())

	// Extra ticks during the pending delay change nothing.
	events = run(c, timers, 30, 1)
	assert.Empty(t, events)
	assert.Equal(t, 120.0, c.CurrentTime())
	assert.Equal(t, 1, timers.Len())

	fake.Advance(time.Second)
	events = run(c, timers, 1, 1)
	assert.Equal(t, []EventKind{EventReset, EventRewinding}, kinds(events))
	assert.InDelta(t, 100.0, c.CurrentTime(), 1e-9)

	events = run(c, timers, 5, 1)
	assert.Equal(t, []EventKind{EventRewound, EventResumed}, kinds(events))
	assert.Equal(t, 0.0, c.CurrentTime())
	assert.True(t, c.IsPlaying())
	assert.Equal(t, 0, timers.Len())
}

func TestZeroScaleStopsAndEndsOnce(t *testing.T) {
	c, fake, timers := newTestClock(t)
	endings := 0
	c.OnStopEnding = func() { endings++ }

	run(c, timers, 10, 1)
	c.SetBaseTimeScale(0)
	events := run(c, timers, 1, 1)
	assert.Equal(t, []EventKind{EventTimeScaleChanged, EventStopped}, kinds(events))
	assert.True(t, c.IsStopped())

	run(c, timers, 5, 1)
	fake.Advance(5 * time.Second)
	run(c, timers, 5, 1)
	fake.Advance(10 * time.Second)
	run(c, timers, 5, 1)
	assert.Equal(t, 1, endings)
	assert.Equal(t, 10.0, c.CurrentTime())
}

func TestSeekLeavesStoppedAndRestoresScale(t *testing.T) {
	c, _, timers := newTestClock(t)
	run(c, timers, 10, 1)
	c.SetBaseTimeScale(-4)
	assert.Equal(t, 0.0, c.RawTimeScale())
	run(c, timers, 1, 1)
	require.True(t, c.IsStopped())

	c.SeekTo(2)
	run(c, timers, 5, 1)
	assert.True(t, c.IsPlaying())
	assert.Equal(t, 1.0, c.RawTimeScale())
}

func TestOnlyOneTransitionPerTick(t *testing.T) {
	c, _, timers := newTestClock(t)
	run(c, timers, 100, 1)
	c.SeekTo(120)
	// Arrives at 120 this tick: seek completion wins, reset waits a tick.
	events := run(c, timers, 1, 1)
	assert.Equal(t, []EventKind{EventFastForwarded, EventResumed}, kinds(events))
	events = run(c, timers, 1, 1)
	assert.Equal(t, []EventKind{EventResetting}, kinds(events))
}

func TestStringIncludesMode(t *testing.T) {
	c, _, _ := newTestClock(t)
	assert.Contains(t, c.String(), "Playing")
	var missing *Clock
	assert.Contains(t, missing.String(), "Missing")
}
