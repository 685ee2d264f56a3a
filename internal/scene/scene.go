// Package scene implements the Scene container of spec.md §3
// "Lifetimes": all primitives, materials, textures, lights, and
// mediums live for the duration of a render and are owned here.
package scene

import (
	"github.com/lumetrace/lumetrace/internal/accel"
	"github.com/lumetrace/lumetrace/internal/camera"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/medium"
)

// Scene bundles the accelerator, light list and sampler, the camera,
// and the camera medium for a single render.
type Scene struct {
	Accel        accel.Intersectable
	Lights       []light.Light
	LightSampler light.LightSampler
	Camera       camera.Camera
	CameraMedium medium.Medium

	WorldCenter core.Vec3
	WorldRadius float64
}

// New builds a Scene from already-constructed primitives and lights,
// computes the world bounding sphere from the accelerator's bounds,
// and runs Preprocess on every light so infinite lights can convert
// their constant radiance into finite power.
func New(prims []accel.Primitive, lights []light.Light, sampler light.LightSampler, cam camera.Camera, cameraMedium medium.Medium) *Scene {
	bvh := accel.NewBVH(prims)
	center, radius := bvh.WorldBounds().BoundingSphere()

	for _, l := range lights {
		l.Preprocess(center, radius)
	}

	return &Scene{
		Accel:        bvh,
		Lights:       lights,
		LightSampler: sampler,
		Camera:       cam,
		CameraMedium: cameraMedium,
		WorldCenter:  center,
		WorldRadius:  radius,
	}
}

// Intersect delegates to the accelerator; a thin pass-through kept as
// a method so integrators depend on *Scene rather than accel directly.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (accel.HitRecord, bool) {
	return s.Accel.Intersect(ray, tMin, tMax)
}

// IntersectAny is the shadow-ray fast path: stops at the first hit.
func (s *Scene) IntersectAny(ray core.Ray, tMin, tMax float64) bool {
	return s.Accel.IntersectAny(ray, tMin, tMax)
}

// InfiniteLights returns the subset of lights with no finite position,
// which must be queried even when a ray escapes the scene entirely.
func (s *Scene) InfiniteLights() []light.Light {
	var out []light.Light
	for _, l := range s.Lights {
		if l.IsInfinite() {
			out = append(out, l)
		}
	}
	return out
}
