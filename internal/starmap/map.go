package starmap

import (
	"github.com/talgya/timeloop/internal/cargo"
	"github.com/talgya/timeloop/internal/vec"
)

// Scannable is anything the ship's scanner can identify.
type Scannable interface {
	Pos() vec.Vec3
	Scanned() bool
	CanScan() bool
	ScanRange() float64
	DisplayName() string
	Message() string
	Scan()
}

// Harvestable is anything the ship can collect cargo from.
type Harvestable interface {
	Pos() vec.Vec3
	HarvestRange() float64
	HarvestStatus() HarvestStatus
	CargoType() cargo.Type
	Harvest() cargo.Type
}

// Map holds every body in the star field.
type Map struct {
	Radius  float64   `json:"radius"`
	Stars   []*Star   `json:"stars"`
	Beacons []*Beacon `json:"beacons"`
}

// NewMap creates an empty map of the given radius.
func NewMap(radius float64) *Map {
	return &Map{Radius: radius}
}

// AddStar registers a star.
func (m *Map) AddStar(s *Star) { m.Stars = append(m.Stars, s) }

// AddBeacon registers a beacon.
func (m *Map) AddBeacon(b *Beacon) { m.Beacons = append(m.Beacons, b) }

// Update resolves every body's flags at the current time.
func (m *Map) Update() {
	for _, s := range m.Stars {
		s.Update()
	}
	for _, b := range m.Beacons {
		b.Update()
	}
}

// Scannables lists shining stars, active remnants and beacons.
func (m *Map) Scannables() []Scannable {
	out := make([]Scannable, 0, len(m.Stars)*2+len(m.Beacons))
	for _, s := range m.Stars {
		if s.Shining() {
			out = append(out, s)
		}
		if s.Remnant != nil && s.Remnant.IsActive() {
			out = append(out, s.Remnant)
		}
	}
	for _, b := range m.Beacons {
		out = append(out, b)
	}
	return out
}

// Harvestables lists shining stars, active remnants and beacons.
func (m *Map) Harvestables() []Harvestable {
	out := make([]Harvestable, 0, len(m.Stars)*2+len(m.Beacons))
	for _, s := range m.Stars {
		if s.Shining() {
			out = append(out, s)
		}
		if s.Remnant != nil && s.Remnant.IsActive() {
			out = append(out, s.Remnant)
		}
	}
	for _, b := range m.Beacons {
		out = append(out, b)
	}
	return out
}

// NearestScannable returns the closest scannable within its own scan range
// of pos, or nil.
func (m *Map) NearestScannable(pos vec.Vec3) Scannable {
	return nearest(m.Scannables(), pos, func(s Scannable) (vec.Vec3, float64) {
		return s.Pos(), s.ScanRange()
	})
}

// NearestHarvestable returns the closest harvestable within its own range of
// pos, or nil.
func (m *Map) NearestHarvestable(pos vec.Vec3) Harvestable {
	return nearest(m.Harvestables(), pos, func(h Harvestable) (vec.Vec3, float64) {
		return h.Pos(), h.HarvestRange()
	})
}

// nearest picks the closest candidate; ties keep registration order. The
// winner is discarded when pos is outside its range.
func nearest[T any](items []T, pos vec.Vec3, at func(T) (vec.Vec3, float64)) T {
	var (
		best     T
		bestDist = -1.0
		bestRng  float64
	)
	for _, it := range items {
		p, rng := at(it)
		if d := vec.Distance(p, pos); bestDist < 0 || d < bestDist {
			best, bestDist, bestRng = it, d, rng
		}
	}
	if bestDist < 0 || bestDist > bestRng {
		var zero T
		return zero
	}
	return best
}

// CargoTypes lists the distinct materials available on the map, in
// registration order.
func (m *Map) CargoTypes() []cargo.Type {
	seen := map[cargo.Type]bool{}
	var out []cargo.Type
	add := func(ct cargo.Type) {
		if ct != cargo.None && !seen[ct] {
			seen[ct] = true
			out = append(out, ct)
		}
	}
	for _, s := range m.Stars {
		add(s.Cargo)
		if s.Remnant != nil {
			add(s.Remnant.Cargo)
		}
	}
	for _, b := range m.Beacons {
		add(b.Cargo)
	}
	return out
}
