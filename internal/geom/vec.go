package geom

import "math"

// Vec2 is a point in the galactic plane, as produced by star placement.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a float64 3D vector. The galactic plane is XZ; Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// Plane lifts a 2D placement point onto the galactic plane.
func Plane(p Vec2) Vec3 {
	return Vec3{X: p.X, Y: 0, Z: p.Y}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

func (v Vec3) DistanceSquared(o Vec3) float64 {
	return v.Sub(o).LengthSquared()
}

// NormalizeOrZero returns the unit vector, or the zero vector for zero-length input.
func (v Vec3) NormalizeOrZero() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	inv := 1.0 / l
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// Lerp interpolates between v and o; t is not clamped.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// StepToward moves v toward target by at most maxStep.
// The second result reports whether the step started within maxStep of target.
func (v Vec3) StepToward(target Vec3, maxStep float64) (Vec3, bool) {
	dist := v.Distance(target)
	step := math.Min(maxStep, dist)
	next := v.Add(target.Sub(v).NormalizeOrZero().Scale(step))
	return next, dist <= maxStep
}
