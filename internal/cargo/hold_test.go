package cargo

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timeloop/internal/clock"
)

func newClock() *clock.Clock {
	cfg := clock.DefaultConfig()
	cfg.TotalDuration = 120
	return clock.New(cfg, clock.NewTimers(clockwork.NewFakeClock()))
}

func play(c *clock.Clock, h *Hold, seconds int) {
	for i := 0; i < seconds; i++ {
		c.Tick(1)
		c.DrainEvents()
		h.Update()
	}
}

func rewindTo(c *clock.Clock, h *Hold, t float64) {
	c.SeekTo(t)
	for c.IsRewinding() {
		c.Tick(0.1)
		c.DrainEvents()
		h.Update()
	}
}

func TestHoldRewindScenario(t *testing.T) {
	tests := []struct {
		name   string
		rewind float64
		want   int
	}{
		{"rewind before the add empties the hold", 5, 0},
		{"rewind after the add keeps one unit", 20, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClock()
			h := NewHold(c)
			require.True(t, h.IsEmpty())

			play(c, h, 10)
			require.Equal(t, 0, h.Add(HeavyMetals))

			play(c, h, 40)
			require.Equal(t, 50.0, c.CurrentTime())

			rewindTo(c, h, tt.rewind)
			assert.Equal(t, tt.rewind, c.CurrentTime())
			assert.Equal(t, tt.want, h.Count())
			if tt.want == 1 {
				assert.Equal(t, HeavyMetals, h.At(0))
			}
		})
	}
}

func TestHoldRemoveIsUndoneByRewind(t *testing.T) {
	c := newClock()
	h := NewHold(c)
	play(c, h, 1)
	h.Add(Helium3)
	h.Add(HydrogenGas)
	play(c, h, 4)
	assert.Equal(t, Helium3, h.RemoveAt(0))
	assert.Equal(t, 0, h.FirstEmpty())

	play(c, h, 5)
	rewindTo(c, h, 3)
	assert.Equal(t, [Slots]Type{Helium3, HydrogenGas}, h.Contents())
}

func TestHoldBounds(t *testing.T) {
	c := newClock()
	h := NewHold(c)
	assert.False(t, h.SetAt(Slots, Helium3))
	assert.Equal(t, None, h.RemoveAt(-1))
	assert.Equal(t, -1, h.Add(None))
	for i := 0; i < Slots; i++ {
		require.Equal(t, i, h.Add(NeutroniumDust))
	}
	assert.True(t, h.IsFull())
	assert.Equal(t, -1, h.Add(NeutroniumDust))
}

func TestHoldHUDText(t *testing.T) {
	c := newClock()
	h := NewHold(c)
	assert.Equal(t, "Collection Target:\nNot Found\n\nCurrent Cargo:\nEmpty", h.HUDText("Not Found"))
	h.SetAt(2, RareEarthMetals)
	assert.Contains(t, h.HUDText("Not Found"), "3. Rare Earth Metals")
}

func TestParseType(t *testing.T) {
	ct, err := Parse("helium-3")
	require.NoError(t, err)
	assert.Equal(t, Helium3, ct)
	_, err = Parse("unobtainium")
	assert.Error(t, err)
	assert.Len(t, All(), 9)
}
