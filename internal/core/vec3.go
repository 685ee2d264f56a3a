// Package core provides the vector, color, frame and ray primitives
// shared by every layer of the renderer.
package core

import (
	"fmt"
	"math"
)

// Vec3 is a point, direction, or surface normal in R3.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a 2D point, typically a (u,v) surface coordinate or a film offset.
type Vec2 struct {
	X, Y float64
}

func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }
func NewVec2(x, y float64) Vec2    { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2           { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Subtract(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Multiply(s float64) Vec2   { return Vec2{v.X * s, v.Y * s} }

func (v Vec3) String() string { return fmt.Sprintf("{%.4g, %.4g, %.4g}", v.X, v.Y, v.Z) }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Subtract(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Multiply(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Length() float64        { return math.Sqrt(v.LengthSquared()) }
func (v Vec3) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

func (v Vec3) Dot(o Vec3) float64    { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) AbsDot(o Vec3) float64 { return math.Abs(v.Dot(o)) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) MultiplyVec(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Multiply(1 / l)
}

func (v Vec3) Clamp(lo, hi float64) Vec3 {
	clamp := func(x float64) float64 { return math.Max(lo, math.Min(hi, x)) }
	return Vec3{clamp(v.X), clamp(v.Y), clamp(v.Z)}
}

func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func (v Vec3) HasNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

func (v Vec3) HasInf() bool {
	return math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0)
}

// Reflect returns v reflected about the normal n (n need not be the
// surface normal orientation of v; callers flip as needed).
func Reflect(v, n Vec3) Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends uv (pointing toward the surface) through a normal n
// using the standard eta-over-etaT ratio; ok is false on total internal
// reflection.
func Refract(uv, n Vec3, etaRatio float64) (Vec3, bool) {
	cosTheta := math.Min(n.Dot(uv.Negate()), 1)
	sin2Theta := math.Max(0, 1-cosTheta*cosTheta)
	sin2ThetaT := etaRatio * etaRatio * sin2Theta
	if sin2ThetaT >= 1 {
		return Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	rPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaRatio)
	rParallel := n.Multiply(-cosThetaT)
	return rPerp.Add(rParallel), true
}

// FaceForward flips v so it lies in the hemisphere of n2.
func FaceForward(v, n2 Vec3) Vec3 {
	if v.Dot(n2) < 0 {
		return v.Negate()
	}
	return v
}

// Ray is an origin, a unit direction, and the medium it currently
// propagates through (nil means vacuum).
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Medium    interface{} // a medium.Medium such as *medium.Homogeneous; interface{} avoids an import cycle
}

// RayEpsilon offsets ray origins to avoid self-intersection.
const RayEpsilon = 1e-4

func NewRay(origin, direction Vec3) Ray { return Ray{Origin: origin, Direction: direction} }

func NewRayTo(origin, target Vec3) Ray {
	return NewRay(origin, target.Subtract(origin).Normalize())
}

func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Direction.Multiply(t)) }

// SpawnRay offsets origin along n (toward the side containing d) by
// RayEpsilon so the new ray does not re-intersect the surface it left.
func SpawnRay(origin, n, d Vec3) Ray {
	offsetN := n
	if d.Dot(n) < 0 {
		offsetN = n.Negate()
	}
	return NewRay(origin.Add(offsetN.Multiply(RayEpsilon)), d)
}
