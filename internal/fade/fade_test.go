package fade

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/talgya/timeloop/internal/clock"
)

func TestAlphaCurve(t *testing.T) {
	assert.Equal(t, 0.0, Alpha(10, 12, false, 9))
	assert.Equal(t, 0.5, Alpha(10, 12, false, 11))
	assert.Equal(t, 1.0, Alpha(10, 12, false, 20))
	assert.Equal(t, 0.25, Alpha(10, 14, true, 13))
	assert.Equal(t, 1.0, Alpha(10, 10, false, 10), "zero-length fade snaps")
}

func TestOverlayCancelledByRewindPastStart(t *testing.T) {
	c := clock.New(clock.DefaultConfig(), clock.NewTimers(clockwork.NewFakeClock()))
	o := New(c)
	for i := 0; i < 10; i++ {
		c.Tick(1)
	}
	o.Start(White, 2, false)
	o.Update()
	assert.True(t, o.State().Active, "starting at the current time does not cancel")

	c.Tick(1)
	o.Update()
	assert.Equal(t, State{Active: true, Color: "white", Alpha: 0.5}, o.State())

	c.SeekTo(0)
	for c.IsRewinding() {
		c.Tick(0.05)
		o.Update()
		if c.CurrentTime() > 10 {
			assert.True(t, o.State().Active)
		}
	}
	assert.False(t, o.State().Active)
	assert.Zero(t, o.Alpha())
}
