package ship

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/fade"
	"github.com/talgya/timeloop/internal/starmap"
	"github.com/talgya/timeloop/internal/vec"
)

type rig struct {
	clock     *clock.Clock
	stars     *starmap.Map
	ship      *Ship
	hold      *cargo.Hold
	scanner   *Scanner
	collector *Collector
}

func newRig(stars ...*starmap.Star) *rig {
	c := clock.New(clock.DefaultConfig(), clock.NewTimers(clockwork.NewFakeClock()))
	m := starmap.NewMap(10)
	for _, s := range stars {
		m.AddStar(s)
	}
	s := New(DefaultConfig(), c, m, vec.Vec3{})
	h := cargo.NewHold(c)
	return &rig{
		clock:     c,
		stars:     m,
		ship:      s,
		hold:      h,
		scanner:   NewScanner(c, s, m, 2),
		collector: NewCollector(c, s, m, h, 3),
	}
}

func (r *rig) tick(dt float64) {
	r.clock.Timers().Process()
	r.clock.Tick(dt)
	r.clock.DrainEvents()
	r.stars.Update()
	r.hold.Update()
	r.ship.Update()
	r.scanner.Update()
	r.collector.Update()
}

func (r *rig) play(seconds int) {
	for i := 0; i < seconds*10; i++ {
		r.tick(0.1)
	}
}

func (r *rig) rewindTo(t float64) {
	r.clock.SeekTo(t)
	for r.clock.IsRewinding() {
		r.tick(0.01)
	}
}

func TestTravelBiasCurve(t *testing.T) {
	leg := Travel{StartTime: 10, EndTime: 20, Bias: 0.5, End: vec.Vec3{X: 10}}
	assert.Equal(t, vec.Vec3{}, leg.PositionAt(5))
	assert.InDelta(t, 5, leg.PositionAt(15).X, 1e-9)
	assert.Equal(t, vec.Vec3{X: 10}, leg.PositionAt(25))

	eased := leg
	eased.Bias = 0.8
	assert.Greater(t, eased.ProgressAt(15), 0.5, "bias above one half front-loads the leg")
	assert.True(t, leg.ActiveAt(20))
	assert.True(t, leg.FutureAt(9))
}

func TestTravelReplaysOnRewind(t *testing.T) {
	r := newRig()
	r.play(1)
	require.True(t, r.ship.TravelTo(vec.Vec3{X: 10}, 5, 0.5, nil))
	r.play(1)
	assert.True(t, r.ship.IsTraveling())
	assert.InDelta(t, 5, r.ship.Position().X, 1e-6)
	r.play(2)
	assert.False(t, r.ship.IsTraveling())
	assert.Equal(t, vec.Vec3{X: 10}, r.ship.Position())

	r.rewindTo(2)
	assert.InDelta(t, 5, r.ship.Position().X, 1e-6)
	r.rewindTo(0.5)
	assert.Equal(t, vec.Vec3{}, r.ship.Position())
	assert.Empty(t, r.ship.Timeline())
}

func TestInterruptTruncatesLeg(t *testing.T) {
	r := newRig()
	r.ship.TravelTo(vec.Vec3{X: 10}, 5, 0.5, nil)
	r.play(1)
	require.True(t, r.ship.Interrupt(false))
	legs := r.ship.Timeline()
	require.Len(t, legs, 1)
	assert.InDelta(t, 1, legs[0].EndTime, 1e-9)
	assert.InDelta(t, 5, legs[0].End.X, 1e-6)

	r.play(3)
	assert.InDelta(t, 5, r.ship.Position().X, 1e-6, "the truncated leg stays truncated")
}

func TestNaturalTravelResistsPiloting(t *testing.T) {
	star := starmap.NewStar(nil, 1, starmap.Body{}, vec.Vec3{X: 4}, 0.2, starmap.Lifecycle{}, nil)
	r := newRig()
	r.ship.TravelTo(vec.Vec3{X: 4}, 1, 0.8, star)
	r.play(1)
	assert.False(t, r.ship.Pilot(vec.Vec3{Z: 1}, 3))
	assert.True(t, r.ship.IsTravelingTo(star))
}

func blackHole(c *clock.Clock) *starmap.Star {
	s := starmap.NewStar(c, 1, starmap.Body{ScanName: "Theta-001"}, vec.Vec3{X: 2}, 0.2,
		starmap.Lifecycle{DecayStart: 0.5, Death: 1, RemnantDuration: 200}, nil)
	s.AttachRemnant(starmap.BlackHole, starmap.Body{}, 60, []cargo.Type{cargo.HeavyMetals})
	return s
}

func TestBlackHolePullSlowsTimeAndRewinds(t *testing.T) {
	r := newRig()
	bh := blackHole(r.clock)
	r.stars.AddStar(bh)

	r.play(2)
	leg, ok := r.ship.ActiveTravel()
	require.True(t, ok, "inside the event horizon the ship is pulled")
	assert.Same(t, bh, leg.Source)
	assert.Less(t, r.clock.Multiplier(), 1.0)

	for i := 0; i < 10000 && !r.clock.IsRewinding(); i++ {
		r.tick(0.1)
	}
	require.True(t, r.clock.IsRewinding(), "arriving at the hazard rewinds the loop")
	assert.Equal(t, 0.0, r.clock.TargetTime())
}

func TestShieldBlocksPull(t *testing.T) {
	r := newRig()
	r.stars.AddStar(blackHole(r.clock))
	r.ship.Shields = func() []cargo.Type { return []cargo.Type{cargo.HeavyMetals} }
	r.play(3)
	assert.False(t, r.ship.IsTraveling())
	assert.Equal(t, 1.0, r.clock.Multiplier())
}

type fadeSpy struct{ colors []fade.Color }

func (f *fadeSpy) Start(c fade.Color, _ float64, _ bool) { f.colors = append(f.colors, c) }

func TestSupernovaPullFadesWhite(t *testing.T) {
	r := newRig()
	sn := starmap.NewStar(r.clock, 1, starmap.Body{}, vec.Vec3{X: 1}, 0.2,
		starmap.Lifecycle{DecayStart: 0.5, Death: 1, RemnantDuration: 200}, nil)
	sn.AttachRemnant(starmap.Supernova, starmap.Body{}, 400, []cargo.Type{cargo.Helium3})
	r.stars.AddStar(sn)
	spy := &fadeSpy{}
	r.ship.Fader = spy

	r.play(5)
	assert.True(t, r.ship.IsTravelingTo(sn))
	assert.Equal(t, []fade.Color{fade.White}, spy.colors)
}

func scannableStar(c *clock.Clock) *starmap.Star {
	return starmap.NewStar(c, 1, starmap.Body{ScanRadius: 2, ScanName: "Alpha-001", ScanMessage: "Stable.", Cargo: cargo.Helium3},
		vec.Vec3{X: 1}, 0.2, starmap.Lifecycle{DecayStart: 100, Death: 110, RemnantDuration: 10}, nil)
}

func TestScanThenCollect(t *testing.T) {
	r := newRig()
	star := scannableStar(r.clock)
	r.stars.AddStar(star)
	r.tick(0.1)

	assert.Contains(t, r.scanner.HUDText(), "Unidentified")
	assert.Equal(t, "Not Scanned", r.collector.TargetText())
	require.True(t, r.scanner.TryStartScan())
	assert.False(t, r.scanner.TryStartScan(), "one scan at a time")
	r.play(1)
	assert.Contains(t, r.scanner.HUDText(), "Scan Progress")
	r.play(2)
	assert.True(t, star.Scanned())
	assert.Contains(t, r.scanner.HUDText(), "Alpha-001\nStable.")

	require.True(t, r.collector.CanCollect())
	require.True(t, r.collector.TryStartCollecting())
	r.play(4)
	assert.Equal(t, cargo.Helium3, r.hold.At(0))
	assert.Contains(t, r.collector.HUDText(), "1. Helium-3")

	r.rewindTo(2.5)
	assert.True(t, r.hold.IsEmpty())
	assert.True(t, star.Scanned())
	assert.False(t, r.collector.IsCollecting())
}

func TestCollectingAbandonedWhenShipMoves(t *testing.T) {
	r := newRig()
	star := scannableStar(r.clock)
	r.stars.AddStar(star)
	r.tick(0.1)
	star.Scan()
	r.tick(0.1)
	require.True(t, r.collector.TryStartCollecting())

	require.True(t, r.ship.Pilot(vec.Vec3{X: 1}, 2))
	r.tick(0.1)
	assert.False(t, r.collector.IsCollecting())
	assert.Equal(t, "Cannot Collect While In Motion", r.collector.TargetText())
}

func TestScanAbandonedWhenTimeMovesBeforeStart(t *testing.T) {
	r := newRig()
	r.stars.AddStar(scannableStar(r.clock))
	r.play(2)
	require.True(t, r.scanner.TryStartScan())
	r.play(1)
	r.rewindTo(1)
	assert.False(t, r.scanner.IsScanning())
	assert.Zero(t, r.scanner.Progress())
}
