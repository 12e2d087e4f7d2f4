package player

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/vec"
)

func newPlayer(t *testing.T) (*clock.Clock, *Player) {
	t.Helper()
	c := clock.New(clock.DefaultConfig(), clock.NewTimers(clockwork.NewFakeClock()))
	prefs := config.DefaultPreferences()
	return c, New(DefaultConfig(), c, &prefs, vec.Vec3{}, 0)
}

func step(c *clock.Clock, p *Player, dt float64, in Input) {
	c.Tick(dt)
	c.DrainEvents()
	p.Update(in)
}

func TestWalkForward(t *testing.T) {
	c, p := newPlayer(t)
	for i := 0; i < 10; i++ {
		step(c, p, 0.1, Input{Move: vec.Vec2{Y: 1}})
	}
	assert.InDelta(t, 3, p.Position().Z, 1e-9)
	assert.InDelta(t, 0, p.Position().X, 1e-9)
	assert.Zero(t, p.Position().Y)
}

func TestMovementFollowsTimeScale(t *testing.T) {
	c, p := newPlayer(t)
	c.SetBaseTimeScale(2)
	step(c, p, 0.1, Input{Move: vec.Vec2{Y: 1}})
	assert.InDelta(t, 0.6, p.Position().Z, 1e-9)
}

func TestNoMovementWhileStopped(t *testing.T) {
	c, p := newPlayer(t)
	step(c, p, 0.1, Input{Move: vec.Vec2{Y: 1}})
	before := p.Position()
	c.SetBaseTimeScale(0)
	step(c, p, 0.1, Input{})
	require.True(t, c.IsStopped())
	step(c, p, 0.1, Input{Move: vec.Vec2{Y: 1}, Look: vec.Vec2{X: 1}})
	assert.Equal(t, before, p.Position())
	assert.Zero(t, p.Yaw())
}

func TestPitchIsClamped(t *testing.T) {
	c, p := newPlayer(t)
	for i := 0; i < 20; i++ {
		step(c, p, 0.1, Input{Look: vec.Vec2{Y: -10}})
	}
	assert.Equal(t, float64(MaxPitch), p.Pitch())
	for i := 0; i < 40; i++ {
		step(c, p, 0.1, Input{Look: vec.Vec2{Y: 10}})
	}
	assert.Equal(t, float64(-MaxPitch), p.Pitch())
}

func TestRewindWalksBack(t *testing.T) {
	c, p := newPlayer(t)
	for i := 0; i < 40; i++ {
		step(c, p, 0.1, Input{Move: vec.Vec2{Y: 1}, Look: vec.Vec2{X: 0.5}})
	}
	c.SeekTo(2)
	for c.IsRewinding() {
		step(c, p, 0.01, Input{Move: vec.Vec2{Y: 1}})
	}
	require.True(t, c.IsPlaying())
	p.Update(Input{})

	// Replaying the first two seconds reaches the same point.
	_, fresh := newPlayer(t)
	c2 := fresh.clock
	for i := 0; i < 20; i++ {
		step(c2, fresh, 0.1, Input{Move: vec.Vec2{Y: 1}, Look: vec.Vec2{X: 0.5}})
	}
	tolerance := DefaultConfig().MoveSpeed*Debounce + 0.3
	assert.InDelta(t, fresh.Position().X, p.Position().X, tolerance)
	assert.InDelta(t, fresh.Position().Z, p.Position().Z, tolerance)
}

func TestFallingOutOfTheWorldRewinds(t *testing.T) {
	c, p := newPlayer(t)
	p.Floor = func(vec.Vec3) (float64, bool) { return 0, false }
	for i := 0; i < 1000 && !c.IsRewinding(); i++ {
		step(c, p, 0.1, Input{})
	}
	require.True(t, c.IsRewinding())
	assert.Equal(t, 0.0, c.TargetTime())
	for c.IsRewinding() {
		step(c, p, 0.1, Input{})
	}
	assert.Zero(t, p.Position().Y)
}

func TestInteractionRouting(t *testing.T) {
	c, p := newPlayer(t)
	b := controls.NewButton("activate", c)

	step(c, p, 0.1, Input{Hover: b, Pressed: true, Held: true})
	b.Update()
	assert.Same(t, b, p.Target())
	assert.True(t, b.Pressed())

	step(c, p, 0.1, Input{Hover: b, Released: true})
	b.Update()
	assert.Nil(t, p.Target())
	assert.False(t, b.Pressed())
}

func TestInteractionEndsWhenClockLeavesPlaying(t *testing.T) {
	c, p := newPlayer(t)
	s := controls.NewSlider("speed", c, 0, 2, 1)
	for i := 0; i < 10; i++ {
		step(c, p, 0.1, Input{})
	}
	step(c, p, 0.1, Input{Hover: s, Along: 0.75, Pressed: true, Held: true})
	require.True(t, s.IsInteracting())

	c.SeekTo(0.5)
	step(c, p, 0.01, Input{Hover: s, Held: true})
	assert.Nil(t, p.Target())
	assert.False(t, s.IsInteracting())
}

func TestLockedTargetIsDropped(t *testing.T) {
	c, p := newPlayer(t)
	b := controls.NewButton("engage", c)
	step(c, p, 0.1, Input{Hover: b, Pressed: true, Held: true})
	require.Same(t, b, p.Target())
	b.Locked = true
	step(c, p, 0.1, Input{Hover: b, Held: true})
	assert.Nil(t, p.Target())
}

func TestRewindingEventReleasesTargetAndPinsPose(t *testing.T) {
	c, p := newPlayer(t)
	bus := clock.NewBus()
	p.Subscribe(bus)
	s := controls.NewSlider("speed", c, 0, 2, 1)
	for i := 0; i < 10; i++ {
		step(c, p, 0.1, Input{Move: vec.Vec2{Y: 1}})
	}
	step(c, p, 0.1, Input{Hover: s, Along: 0.75, Pressed: true, Held: true})
	require.Same(t, s, p.Target())
	stood := p.Position()

	c.SeekTo(0.5)
	c.Tick(0.01)
	events := c.DrainEvents()
	require.NotEmpty(t, events)
	require.Equal(t, clock.EventRewinding, events[0].Kind)
	bus.Publish(events...)

	assert.Nil(t, p.Target(), "released before the next update")
	assert.False(t, s.IsInteracting())
	assert.Equal(t, stood, p.position.At(events[0].Time))
}

func TestStoppedEventDropsTarget(t *testing.T) {
	c, p := newPlayer(t)
	bus := clock.NewBus()
	p.Subscribe(bus)
	b := controls.NewButton("activate", c)
	step(c, p, 0.1, Input{Hover: b, Pressed: true, Held: true})
	require.Same(t, b, p.Target())

	c.SetBaseTimeScale(0)
	c.Tick(0.1)
	require.True(t, c.IsStopped())
	bus.Publish(c.DrainEvents()...)
	assert.Nil(t, p.Target())
}
