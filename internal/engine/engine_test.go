package engine

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/config"
	"github.com/talgya/timeloop/internal/controls"
	"github.com/talgya/timeloop/internal/level"
	"github.com/talgya/timeloop/internal/player"
	"github.com/talgya/timeloop/internal/starmap"
)

func newEngine(t *testing.T) (*Engine, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	c := clock.New(clock.DefaultConfig(), clock.NewTimers(fc))
	prefs := config.DefaultPreferences()
	cfg := level.DefaultConfig(7, 0, c.TotalDuration())
	cfg.Map = starmap.SmallTestConfig()
	l := level.New(cfg, c, &prefs, nil)
	return New(l, clock.NewBus(), fc, 50*time.Millisecond), fc
}

func TestFramePublishedBeforeFirstStep(t *testing.T) {
	e, _ := newEngine(t)
	f := e.Frame()
	require.NotNil(t, f)
	assert.Zero(t, f.Tick)
	assert.Zero(t, f.Time)
}

func TestStepAppliesCommandsBeforeTicking(t *testing.T) {
	e, _ := newEngine(t)
	require.True(t, e.Submit(Seek(5)))
	e.Step(0.1)

	f := e.Frame()
	assert.Equal(t, uint64(1), f.Tick)
	assert.Equal(t, "FastForwarding", f.Mode)
	assert.InDelta(t, 2, f.Time, 1e-9, "the seek moved at fast-forward speed in the same step")
}

func TestEventsReachSubscribers(t *testing.T) {
	e, _ := newEngine(t)
	var kinds []clock.EventKind
	e.Bus.SubscribeAll(func(ev clock.Event) { kinds = append(kinds, ev.Kind) })

	e.Submit(SetSpeed(0))
	e.Step(0.1)
	assert.Equal(t, []clock.EventKind{clock.EventTimeScaleChanged, clock.EventStopped}, kinds)

	kinds = nil
	e.Submit(Rewind())
	e.Step(0.1)
	assert.Empty(t, kinds, "nothing to rewind at time zero")
}

func TestSubmitDropsWhenFull(t *testing.T) {
	e, _ := newEngine(t)
	for i := 0; i < QueueSize; i++ {
		require.True(t, e.Submit(SetSpeed(1)))
	}
	assert.False(t, e.Submit(SetSpeed(2)))
	e.Step(0.1)
	assert.True(t, e.Submit(SetSpeed(2)), "draining frees the queue")
}

func TestPressTapsButton(t *testing.T) {
	e, _ := newEngine(t)
	e.Step(0.1)
	e.Submit(Press("injector-engine-mode"))
	e.Submit(Press("no-such-button"))
	e.Step(0.1)

	b, ok := e.Level.Control("injector-engine-mode").(*controls.Button)
	require.True(t, ok)
	assert.True(t, b.Pressed())
	assert.Equal(t, "engine", e.Frame().Injector.Mode)
}

func TestOnTickSeesEveryStep(t *testing.T) {
	e, _ := newEngine(t)
	var seen []uint64
	e.OnTick = func(tick uint64) { seen = append(seen, tick) }
	e.Step(0.1)
	e.Step(0.1)
	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestRunStepsOnTheTicker(t *testing.T) {
	e, fc := newEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go e.Run(ctx)
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(e.Interval)
	require.Eventually(t, func() bool { return e.CurrentTick() >= 1 }, 2*time.Second, time.Millisecond)

	e.Stop()
	e.Stop()
	require.Eventually(t, func() bool { return !e.Running() }, 2*time.Second, time.Millisecond)
	assert.InDelta(t, 0.05, e.Frame().Time, 1e-9)
}

func TestStepDeliversTransitionsToThePlayer(t *testing.T) {
	e, _ := newEngine(t)
	b := e.Level.Control("travel-distance")
	require.NotNil(t, b)
	for i := 0; i < 20; i++ {
		e.Step(0.1)
	}
	e.Level.SetInput(player.Input{Hover: b, Pressed: true, Held: true})
	e.Step(0.1)
	require.Same(t, b, e.Level.Player.Target())
	e.Level.SetInput(player.Input{Hover: b, Held: true})

	var seen []clock.EventKind
	e.Bus.Subscribe(clock.EventRewinding, func(ev clock.Event) {
		seen = append(seen, ev.Kind)
		assert.Nil(t, e.Level.Player.Target(), "the player handled the event first")
	})
	e.Submit(Seek(0.5))
	e.Step(0.1)
	assert.Equal(t, []clock.EventKind{clock.EventRewinding}, seen)
}
