package ship

import (
	"github.com/talgya/timeloop/internal/starmap"
	"github.com/talgya/timeloop/internal/vec"
)

// Travel is one leg of movement. Position along it is a pure function of
// time, eased by Bias.
type Travel struct {
	ID        int      `json:"id"`
	StartTime float64  `json:"start_time"`
	EndTime   float64  `json:"end_time"`
	Bias      float64  `json:"bias"`
	Start     vec.Vec3 `json:"start"`
	End       vec.Vec3 `json:"end"`

	// Source is the hazard pulling the ship, nil for piloted travel.
	Source *starmap.Star `json:"-"`
}

// Natural reports whether the travel is a hazard pull.
func (t Travel) Natural() bool { return t.Source != nil }

// ActiveAt reports whether the leg is underway at now, ends included.
func (t Travel) ActiveAt(now float64) bool { return now >= t.StartTime && now <= t.EndTime }

// FutureAt reports whether the leg has not started at now.
func (t Travel) FutureAt(now float64) bool { return now < t.StartTime }

// ProgressAt returns the eased progress in [0, 1].
func (t Travel) ProgressAt(now float64) float64 {
	switch {
	case now <= t.StartTime:
		return 0
	case now >= t.EndTime:
		return 1
	}
	return vec.Bias(vec.Clamp01(vec.InverseLerp(t.StartTime, t.EndTime, now)), t.Bias)
}

// PositionAt returns the ship's position on this leg at now.
func (t Travel) PositionAt(now float64) vec.Vec3 {
	return vec.LerpVec3(t.Start, t.End, t.ProgressAt(now))
}

// Direction is the unit vector of the leg.
func (t Travel) Direction() vec.Vec3 { return t.End.Sub(t.Start).Normalized() }
