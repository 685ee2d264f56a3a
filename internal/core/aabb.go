package core

import "math"

// AABB is an axis-aligned bounding box, grounded on the teacher's
// pkg/core/aabb.go (slab test, union, longest axis).
type AABB struct {
	Min, Max Vec3
}

func NewAABB(min, max Vec3) AABB { return AABB{Min: min, Max: max} }

func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = Vec3{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Vec3{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	return AABB{Min: min, Max: max}
}

// Hit implements the slab method; tMin/tMax bound the ray parameter.
func (b AABB) Hit(ray Ray, tMin, tMax float64) bool {
	origin := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	dir := [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}
	bmin := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	bmax := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		invD := 1 / dir[axis]
		t0 := (bmin[axis] - origin[axis]) * invD
		t1 := (bmax[axis] - origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return true
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

func (b AABB) Center() Vec3 { return b.Min.Add(b.Max).Multiply(0.5) }
func (b AABB) Size() Vec3   { return b.Max.Subtract(b.Min) }

func (b AABB) SurfaceArea() float64 {
	s := b.Size()
	return 2 * (s.X*s.Y + s.Y*s.Z + s.Z*s.X)
}

func (b AABB) LongestAxis() int {
	s := b.Size()
	if s.X > s.Y && s.X > s.Z {
		return 0
	}
	if s.Y > s.Z {
		return 1
	}
	return 2
}

func (b AABB) Expand(amount float64) AABB {
	e := Vec3{amount, amount, amount}
	return AABB{Min: b.Min.Subtract(e), Max: b.Max.Add(e)}
}

// BoundingSphere returns a center and radius that contains the box,
// used by infinite lights' Preprocess(worldCenter, worldRadius).
func (b AABB) BoundingSphere() (Vec3, float64) {
	center := b.Center()
	radius := center.Subtract(b.Max).Length()
	return center, radius
}
