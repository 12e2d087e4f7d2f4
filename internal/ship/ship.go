// Package ship moves the player's ship across the star map. Movement is a
// timeline of travel legs: the position at any time is derived from the leg
// in effect, so rewinding needs no position history.
package ship

import (
	"log/slog"
	"math"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/fade"
	"github.com/talgya/timeloop/internal/history"
	"github.com/talgya/timeloop/internal/starmap"
	"github.com/talgya/timeloop/internal/vec"
)

// Fader starts a screen fade.
type Fader interface {
	Start(color fade.Color, duration float64, fadeIn bool)
}

// Config holds the ship's movement parameters.
type Config struct {
	TravelSpeed      float64 // map units per second of piloted travel
	BlackHoleSpeed   float64 // speed of a black hole's pull
	BlackHoleBias    float64 // easing of a black hole's pull
	SupernovaKill    float64 // seconds a supernova takes to reach the ship
	MinSlowMotion    float64 // clock multiplier at the end of a black hole pull
	SupernovaBias    float64 // easing of a supernova's pull
	HazardsEnabled   bool
	PilotedTravelMin float64 // shortest leg worth recording
}

// DefaultConfig returns the shipped ship tuning.
func DefaultConfig() Config {
	return Config{
		TravelSpeed:      5,
		BlackHoleSpeed:   2,
		BlackHoleBias:    0.8,
		SupernovaKill:    10,
		MinSlowMotion:    0.1,
		SupernovaBias:    0.5,
		HazardsEnabled:   true,
		PilotedTravelMin: 1e-3,
	}
}

// Ship is the player's vessel.
type Ship struct {
	cfg   Config
	clock *clock.Clock
	stars *starmap.Map
	home  vec.Vec3

	// Shields reports the materials currently protecting the ship.
	Shields func() []cargo.Type
	Fader   Fader

	timeline history.Log[Travel]
	nextID   int
	position vec.Vec3
	heading  vec.Vec3
}

// New creates a ship resting at home.
func New(cfg Config, c *clock.Clock, stars *starmap.Map, home vec.Vec3) *Ship {
	return &Ship{
		cfg:      cfg,
		clock:    c,
		stars:    stars,
		home:     home,
		nextID:   1,
		position: home,
		heading:  vec.Vec3{Z: 1},
	}
}

// Update derives the position from the timeline, applies hazard slow
// motion and, outside of rewinds, checks for hazards.
func (s *Ship) Update() {
	now := s.clock.CurrentTime()
	s.timeline.Unwind(func(e history.Entry[Travel]) bool { return e.Data.FutureAt(now) }, nil)

	s.position = s.home
	if top, ok := s.timeline.Top(); ok {
		leg := top.Data
		s.position = leg.PositionAt(now)
		if leg.ActiveAt(now) {
			if d := leg.Direction(); d != (vec.Vec3{}) {
				s.heading = d
			}
		} else if leg.Natural() && now > leg.EndTime {
			slog.Info("ship consumed by hazard", "star", leg.Source.ScanName, "time", now)
			s.clock.EmergencyRewindToStart()
		}
	}

	multiplier := 1.0
	if leg, ok := s.ActiveTravel(); ok && leg.Source != nil && leg.Source.IsBlackHole() {
		multiplier = SlowMotion(leg.ProgressAt(now), s.cfg.MinSlowMotion)
	}
	if multiplier != s.clock.Multiplier() {
		s.clock.SetTimeScaleMultiplier(multiplier)
	}

	if s.cfg.HazardsEnabled && !s.clock.IsRewinding() {
		s.checkHazards()
	}
}

// SlowMotion is the clock multiplier while being pulled into a black hole:
// time runs slower the deeper the ship falls.
func SlowMotion(progress, floor float64) float64 {
	p := vec.Clamp01(progress)
	return math.Max(floor, 1-p*p)
}

func (s *Ship) checkHazards() {
	var shields []cargo.Type
	if s.Shields != nil {
		shields = s.Shields()
	}
	for _, star := range s.stars.Stars {
		r := star.Remnant
		if r == nil || !r.Kind.Dangerous() || !r.IsActive() || r.HasShields(shields...) {
			continue
		}
		dist := vec.Distance(s.position, star.Position)
		if dist >= r.CurrentRadius() {
			continue
		}
		if s.IsTravelingTo(star) {
			break
		}
		switch r.Kind {
		case starmap.BlackHole:
			slog.Info("black hole pull", "star", star.ScanName, "distance", dist)
			s.TravelTo(star.Position, s.cfg.BlackHoleSpeed, s.cfg.BlackHoleBias, star)
		case starmap.Supernova:
			slog.Info("supernova pull", "star", star.ScanName, "distance", dist)
			s.TravelTo(star.Position, dist/s.cfg.SupernovaKill, s.cfg.SupernovaBias, star)
			if s.Fader != nil {
				s.Fader.Start(fade.White, s.cfg.SupernovaKill, false)
			}
		}
		break
	}
}

// Position returns where the ship is now.
func (s *Ship) Position() vec.Vec3 { return s.position }

// Heading returns the direction of the most recent travel.
func (s *Ship) Heading() vec.Vec3 { return s.heading }

// Speed returns piloted travel speed.
func (s *Ship) Speed() float64 { return s.cfg.TravelSpeed }

// IsTraveling reports whether a leg is underway.
func (s *Ship) IsTraveling() bool {
	_, ok := s.ActiveTravel()
	return ok
}

// ActiveTravel returns the leg underway, if any.
func (s *Ship) ActiveTravel() (Travel, bool) {
	top, ok := s.timeline.Top()
	if !ok || !top.Data.ActiveAt(s.clock.CurrentTime()) {
		return Travel{}, false
	}
	return top.Data, true
}

// IsTravelingTo reports whether star is pulling the ship right now.
func (s *Ship) IsTravelingTo(star *starmap.Star) bool {
	leg, ok := s.ActiveTravel()
	return ok && leg.Source == star
}

// Timeline returns every recorded leg, oldest first.
func (s *Ship) Timeline() []Travel {
	entries := s.timeline.Entries()
	out := make([]Travel, len(entries))
	for i, e := range entries {
		out[i] = e.Data
	}
	return out
}

// Interrupt cuts the leg underway short at the ship's current position. A
// hazard pull can only be cut by another hazard.
func (s *Ship) Interrupt(overrideNatural bool) bool {
	now := s.clock.CurrentTime()
	top, ok := s.timeline.Top()
	if !ok || now >= top.Data.EndTime {
		return true
	}
	if top.Data.Natural() && !overrideNatural {
		return false
	}
	leg := top.Data
	leg.End = leg.PositionAt(now)
	leg.EndTime = now
	s.timeline.ReplaceTop(leg)
	s.position = leg.End
	return true
}

// TravelTo starts a leg from the current position to dest. source marks a
// hazard pull.
func (s *Ship) TravelTo(dest vec.Vec3, speed, bias float64, source *starmap.Star) bool {
	if speed <= 0 {
		return false
	}
	if !s.Interrupt(source != nil) {
		return false
	}
	now := s.clock.CurrentTime()
	dist := vec.Distance(s.position, dest)
	if dist < s.cfg.PilotedTravelMin {
		return false
	}
	leg := Travel{
		ID:        s.nextID,
		StartTime: now,
		EndTime:   now + dist/speed,
		Bias:      bias,
		Start:     s.position,
		End:       dest,
		Source:    source,
	}
	s.nextID++
	s.timeline.Push(now, leg)
	slog.Debug("travel started", "id", leg.ID, "from", leg.Start, "to", dest, "arrive", leg.EndTime)
	return true
}

// Pilot travels distance units along heading at piloted speed.
func (s *Ship) Pilot(heading vec.Vec3, distance float64) bool {
	dir := heading.Normalized()
	if dir == (vec.Vec3{}) || distance <= 0 {
		return false
	}
	return s.TravelTo(s.position.Add(dir.Scale(distance)), s.cfg.TravelSpeed, 0.5, nil)
}
