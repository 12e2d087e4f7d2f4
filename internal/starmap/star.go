// Package starmap models the star field the ship travels through. Star
// lifecycles are pure functions of clock time; only scan and harvest flags
// carry history.
package starmap

import (
	"slices"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/clock"
	"github.com/talgya/timeloop/internal/history"
	"github.com/talgya/timeloop/internal/vec"
)

// Phase is a star's lifecycle stage at some time.
type Phase uint8

const (
	Alive Phase = iota
	Decaying
	Remnant
	Dead
)

var phaseNames = [...]string{"alive", "decaying", "remnant", "dead"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// RemnantKind is what a star leaves behind.
type RemnantKind uint8

const (
	NoRemnant RemnantKind = iota
	Nebula
	BlackHole
	Supernova
)

var remnantNames = [...]string{"none", "nebula", "black_hole", "supernova"}

func (k RemnantKind) String() string {
	if int(k) < len(remnantNames) {
		return remnantNames[k]
	}
	return "unknown"
}

// Dangerous reports whether the remnant pulls ships in.
func (k RemnantKind) Dangerous() bool { return k == BlackHole || k == Supernova }

// HarvestStatus describes whether a target can be collected from.
type HarvestStatus uint8

const (
	Missing HarvestStatus = iota
	NotScanned
	Depleted
	Ready
)

// Lifecycle holds the fixed timestamps of a star's life.
type Lifecycle struct {
	DecayStart      float64 `json:"decay_start"`
	Death           float64 `json:"death"`
	RemnantDuration float64 `json:"remnant_duration"`
}

// PhaseAt returns the stage at t.
func (l Lifecycle) PhaseAt(t float64) Phase {
	switch {
	case t < l.DecayStart:
		return Alive
	case t < l.Death:
		return Decaying
	case t < l.Death+l.RemnantDuration:
		return Remnant
	default:
		return Dead
	}
}

// LifeProgress is how far through its healthy life the star is at t.
func (l Lifecycle) LifeProgress(t float64) float64 {
	return vec.Clamp01(vec.InverseLerp(0, l.DecayStart, t))
}

// DecayProgress is how far through its decay the star is at t.
func (l Lifecycle) DecayProgress(t float64) float64 {
	return vec.Clamp01(vec.InverseLerp(l.DecayStart, l.Death, t))
}

// RemnantProgress is how far through the remnant phase the star is at t.
func (l Lifecycle) RemnantProgress(t float64) float64 {
	return vec.Clamp01(vec.InverseLerp(l.Death, l.Death+l.RemnantDuration, t))
}

// RemnantActive reports whether the remnant exists at t.
func (l Lifecycle) RemnantActive(t float64) bool {
	return t >= l.Death && t < l.Death+l.RemnantDuration
}

// Body is the scan metadata shared by stars, remnants and beacons.
type Body struct {
	ScanRadius  float64    `json:"scan_radius"`
	ScanName    string     `json:"scan_name"`
	ScanMessage string     `json:"scan_message"`
	Cargo       cargo.Type `json:"cargo"`
}

// StarRemnant is the phase after a star's death.
type StarRemnant struct {
	Body
	Kind         RemnantKind  `json:"kind"`
	Radius       float64      `json:"radius"`
	ValidShields []cargo.Type `json:"valid_shields,omitempty"`

	star    *Star
	scanned *history.History[bool]
}

// Star is one star and, optionally, its remnant.
type Star struct {
	Body
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Position vec.Vec3  `json:"position"`
	Radius   float64   `json:"radius"`
	Life     Lifecycle `json:"life"`

	Remnant *StarRemnant `json:"remnant,omitempty"`

	clock   *clock.Clock
	noise   opensimplex.Noise
	scanned *history.History[bool]
}

// NewStar creates a star bound to c. noise drives its flicker and may be
// nil.
func NewStar(c *clock.Clock, id int, body Body, pos vec.Vec3, radius float64, life Lifecycle, noise opensimplex.Noise) *Star {
	return &Star{
		Body:     body,
		ID:       id,
		Position: pos,
		Radius:   radius,
		Life:     life,
		clock:    c,
		noise:    noise,
		scanned:  history.NewDiscrete(false),
	}
}

// AttachRemnant gives the star a remnant of kind.
func (s *Star) AttachRemnant(kind RemnantKind, body Body, radius float64, shields []cargo.Type) *StarRemnant {
	s.Remnant = &StarRemnant{
		Body:         body,
		Kind:         kind,
		Radius:       radius,
		ValidShields: slices.Clone(shields),
		star:         s,
		scanned:      history.NewDiscrete(false),
	}
	return s.Remnant
}

// Update resolves the scan flags at the current time.
func (s *Star) Update() {
	now, mode := s.clock.CurrentTime(), s.clock.Mode()
	s.scanned.Reconcile(now, mode)
	if s.Remnant != nil {
		s.Remnant.scanned.Reconcile(now, mode)
	}
}

func (s *Star) now() float64 { return s.clock.CurrentTime() }

// Phase returns the current lifecycle stage.
func (s *Star) Phase() Phase { return s.Life.PhaseAt(s.now()) }

// Shining reports whether the star body itself is visible.
func (s *Star) Shining() bool {
	p := s.Phase()
	return p == Alive || p == Decaying
}

// CurrentRadius is the star body's radius at the current time.
func (s *Star) CurrentRadius() float64 { return StarRadius(s.Radius, s.Life, s.now()) }

// StarRadius swells the star slightly through its life and collapses it to
// nothing through its decay.
func StarRadius(base float64, l Lifecycle, t float64) float64 {
	switch l.PhaseAt(t) {
	case Alive:
		return base * (1 + 0.25*l.LifeProgress(t))
	case Decaying:
		p := l.DecayProgress(t)
		return base * 1.25 * (1 - p*p)
	default:
		return 0
	}
}

// Brightness is the star's flicker in [0, 1] at t. It is a pure function of
// t, so replaying time replays the same flicker.
func (s *Star) Brightness(t float64) float64 {
	if s.Life.PhaseAt(t) > Decaying {
		return 0
	}
	base := 1 - 0.5*s.Life.DecayProgress(t)
	if s.noise == nil {
		return base
	}
	return base * (0.8 + 0.2*s.noise.Eval2(float64(s.ID)*7.31, t*2))
}

// Extent is the larger of the star's and its remnant's current radius.
func (s *Star) Extent() float64 {
	r := s.CurrentRadius()
	if s.Remnant != nil {
		r = max(r, s.Remnant.CurrentRadius())
	}
	return r
}

// IsBlackHole reports whether the star's remnant is an active black hole.
func (s *Star) IsBlackHole() bool {
	return s.Remnant != nil && s.Remnant.Kind == BlackHole && s.Remnant.IsActive()
}

// IsSupernova reports whether the star's remnant is an active supernova.
func (s *Star) IsSupernova() bool {
	return s.Remnant != nil && s.Remnant.Kind == Supernova && s.Remnant.IsActive()
}

func (s *Star) Pos() vec.Vec3         { return s.Position }
func (s *Star) Scanned() bool         { return s.scanned.Value() }
func (s *Star) CanScan() bool         { return s.Shining() && !s.Scanned() }
func (s *Star) ScanRange() float64    { return s.ScanRadius }
func (s *Star) DisplayName() string   { return s.ScanName }
func (s *Star) Message() string       { return s.ScanMessage }
func (s *Star) HarvestRange() float64 { return s.ScanRadius }
func (s *Star) CargoType() cargo.Type { return s.Cargo }
func (s *Star) Harvest() cargo.Type   { return s.Cargo }
func (s *Star) Scan()                 { s.scanned.Record(s.now(), true) }

func (s *Star) HarvestStatus() HarvestStatus {
	switch {
	case !s.Shining():
		return Missing
	case !s.Scanned():
		return NotScanned
	case s.Cargo == cargo.None:
		return Depleted
	default:
		return Ready
	}
}

// IsActive reports whether the remnant exists now.
func (r *StarRemnant) IsActive() bool { return r.star.Life.RemnantActive(r.star.now()) }

// Progress is how far through the remnant phase the star is now.
func (r *StarRemnant) Progress() float64 { return r.star.Life.RemnantProgress(r.star.now()) }

// CurrentRadius is the remnant's radius now.
func (r *StarRemnant) CurrentRadius() float64 {
	return RemnantRadius(r.Kind, r.Radius, r.star.Life, r.star.now())
}

// RemnantRadius grows a remnant from nothing after the star's death. Black
// holes form almost at once; nebulae and supernovae expand.
func RemnantRadius(kind RemnantKind, base float64, l Lifecycle, t float64) float64 {
	if !l.RemnantActive(t) {
		return 0
	}
	p := l.RemnantProgress(t)
	switch kind {
	case BlackHole:
		return base * vec.Clamp01(p*10)
	case Supernova:
		return base * vec.Bias(p, 0.2)
	case Nebula:
		return base * vec.Bias(p, 0.35)
	default:
		return 0
	}
}

// NeedsShield reports whether entering the remnant requires a shield.
func (r *StarRemnant) NeedsShield() bool { return len(r.ValidShields) > 0 }

// HasShields reports whether any of shields protects against the remnant.
func (r *StarRemnant) HasShields(shields ...cargo.Type) bool {
	if len(r.ValidShields) == 0 {
		return true
	}
	for _, s := range shields {
		if s != cargo.None && slices.Contains(r.ValidShields, s) {
			return true
		}
	}
	return false
}

func (r *StarRemnant) Pos() vec.Vec3         { return r.star.Position }
func (r *StarRemnant) Scanned() bool         { return r.scanned.Value() }
func (r *StarRemnant) CanScan() bool         { return r.IsActive() && !r.Scanned() }
func (r *StarRemnant) ScanRange() float64    { return r.ScanRadius }
func (r *StarRemnant) DisplayName() string   { return r.ScanName }
func (r *StarRemnant) Message() string       { return r.ScanMessage }
func (r *StarRemnant) HarvestRange() float64 { return r.ScanRadius }
func (r *StarRemnant) CargoType() cargo.Type { return r.Cargo }
func (r *StarRemnant) Harvest() cargo.Type   { return r.Cargo }
func (r *StarRemnant) Scan()                 { r.scanned.Record(r.star.now(), true) }
func (r *StarRemnant) HarvestStatus() HarvestStatus {
	switch {
	case !r.IsActive():
		return Missing
	case !r.Scanned():
		return NotScanned
	case r.Cargo == cargo.None:
		return Depleted
	default:
		return Ready
	}
}
