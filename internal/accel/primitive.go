// Package accel implements the ray-scene intersection trait and the
// BVH accelerator of spec.md §4.10 (intersect, intersect_any, world
// bounds), generalized from a median-split BVH over a closed shape set
// (sphere, triangle).
package accel

import (
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/medium"
)

// HitRecord carries everything an integrator needs at an intersection.
type HitRecord struct {
	T               float64
	Point           core.Vec3
	GeometricNormal core.Vec3
	ShadingNormal   core.Vec3
	Tangent         core.Vec3
	UV              core.Vec2
	FrontFace       bool
	Material        material.Material
	Light           interface{} // *light.DiffuseAreaLight, kept as interface{} to avoid an accel<->light import cycle
	MediumInterface *medium.Interface
}

// Primitive is any intersectable scene object: a shape bound to a
// material, optional area light, and optional medium interface.
type Primitive interface {
	Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool)
	Bounds() core.AABB
	Area() float64
}

// Intersectable is the ray-scene trait, spec.md §4.10.
type Intersectable interface {
	Intersect(ray core.Ray, tMin, tMax float64) (HitRecord, bool)
	IntersectAny(ray core.Ray, tMin, tMax float64) bool
	WorldBounds() core.AABB
}
