package history

import "github.com/talgya/timeloop/internal/vec"

// Decision is what a policy wants done with a newly recorded value.
type Decision uint8

const (
	// Skip leaves the history unchanged.
	Skip Decision = iota
	// Append pushes a new snapshot.
	Append
	// Coalesce overwrites the top snapshot's value.
	Coalesce
)

// Policy decides how values are recorded and how the current value is
// reconstructed from the snapshots around a query time.
type Policy[T any] interface {
	// Accept decides what to do with v recorded at t given the top snapshot.
	Accept(top Snapshot[T], t float64, v T) Decision
	// Resolve returns the value at t. settled is the newest snapshot at or
	// before t; lead, when non-nil, is the snapshot most recently popped by
	// an active rewind.
	Resolve(settled Snapshot[T], lead *Snapshot[T], t float64) T
}

// Discrete is a step function: the active value is the newest snapshot at or
// before the query time. It never interpolates.
type Discrete[T comparable] struct{}

func (Discrete[T]) Accept(top Snapshot[T], _ float64, v T) Decision {
	if top.Value == v {
		return Skip
	}
	return Append
}

func (Discrete[T]) Resolve(settled Snapshot[T], _ *Snapshot[T], _ float64) T {
	return settled.Value
}

// LerpFunc blends a toward b by t in [0, 1].
type LerpFunc[T any] func(a, b T, t float64) T

// Continuous interpolates between bracketing snapshots while rewinding and
// bounds growth by coalescing changes closer together than Debounce.
type Continuous[T any] struct {
	Lerp     LerpFunc[T]
	Equal    func(a, b T) bool
	Debounce float64
}

func (p Continuous[T]) Accept(top Snapshot[T], t float64, v T) Decision {
	if p.Equal != nil && p.Equal(top.Value, v) {
		return Skip
	}
	if t-top.Time < p.Debounce {
		return Coalesce
	}
	return Append
}

func (p Continuous[T]) Resolve(settled Snapshot[T], lead *Snapshot[T], t float64) T {
	if lead == nil || lead.Time <= settled.Time || p.Lerp == nil {
		return settled.Value
	}
	return p.Lerp(settled.Value, lead.Value, vec.InverseLerp(settled.Time, lead.Time, t))
}

// Float is the Continuous policy for scalar values.
func Float(debounce float64) Continuous[float64] {
	return Continuous[float64]{
		Lerp:     vec.Lerp[float64],
		Equal:    vec.Approximately,
		Debounce: debounce,
	}
}

// Angle is the Continuous policy for angles in degrees, blended along the
// shortest arc.
func Angle(debounce float64) Continuous[float64] {
	return Continuous[float64]{
		Lerp:     vec.LerpAngle,
		Equal:    vec.Approximately,
		Debounce: debounce,
	}
}

// Vec2 is the Continuous policy for 2D values.
func Vec2(debounce float64) Continuous[vec.Vec2] {
	return Continuous[vec.Vec2]{
		Lerp:     vec.LerpVec2,
		Equal:    func(a, b vec.Vec2) bool { return a == b },
		Debounce: debounce,
	}
}

// Vec3 is the Continuous policy for positions.
func Vec3(debounce float64) Continuous[vec.Vec3] {
	return Continuous[vec.Vec3]{
		Lerp:     vec.LerpVec3,
		Equal:    func(a, b vec.Vec3) bool { return a == b },
		Debounce: debounce,
	}
}
