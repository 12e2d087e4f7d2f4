// Package vec provides the small vector and interpolation helpers used by
// time-derived properties: lerps, inverse lerps, biased easing and angle
// blending.
package vec

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Epsilon is the tolerance used by Approximately.
const Epsilon = 1e-6

// Clamp limits v to [lo, hi].
func Clamp[F constraints.Float](v, lo, hi F) F {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01[F constraints.Float](v F) F {
	return Clamp(v, 0, 1)
}

// Lerp blends a toward b by t. t is not clamped.
func Lerp[F constraints.Float](a, b, t F) F {
	return a + (b-a)*t
}

// InverseLerp returns where v sits between a and b, clamped to [0, 1].
// A degenerate range returns 0.
func InverseLerp[F constraints.Float](a, b, v F) F {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// Approximately reports whether a and b differ by less than Epsilon.
func Approximately(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Bias remaps t in [0, 1] with an asymmetric ease. b = 0.5 is linear,
// b > 0.5 front-loads progress and b < 0.5 back-loads it.
func Bias(t, b float64) float64 {
	if b <= 0 || b >= 1 {
		return t
	}
	return t / ((1/b-2)*(1-t) + 1)
}

// LerpAngle blends two angles in degrees along the shortest arc.
func LerpAngle(a, b, t float64) float64 {
	delta := math.Mod(b-a, 360)
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return a + delta*t
}

// Vec2 is a 2D vector (look deltas, trackball values).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul returns the component-wise product.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Len returns the magnitude.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// ClampLen shortens v to at most max length.
func (v Vec2) ClampLen(max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// LerpVec2 blends a toward b by t.
func LerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Vec3 is a 3D vector (positions).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Len returns the magnitude.
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Normalized returns the unit vector, or zero for a zero vector.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance returns |a - b|.
func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// LerpVec3 blends a toward b by t.
func LerpVec3(a, b Vec3, t float64) Vec3 {
	return Vec3{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t), Lerp(a.Z, b.Z, t)}
}

// Heading returns the unit vector on the XZ plane for a yaw in degrees,
// with yaw 0 facing +Z.
func Heading(yawDeg float64) Vec3 {
	r := yawDeg * math.Pi / 180
	return Vec3{X: math.Sin(r), Z: math.Cos(r)}
}
