package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// AOIntegrator shoots one cosine-weighted shadow ray within a
// configured occlusion range, spec.md §4.7.5: white where unoccluded,
// black where blocked, no lighting whatsoever.
type AOIntegrator struct {
	// Range is the maximum occlusion-test distance; 0 means unbounded
	// (effectively +Inf, treating any hit as occlusion).
	Range float64
}

func (a AOIntegrator) Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, _ int, _ *arena.VertexArena) core.Spectrum {
	hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
	if !found {
		return core.SpectrumWhite
	}
	if hit.Material == nil {
		return core.SpectrumWhite
	}

	si := material.SurfaceInteraction{
		Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
		Tangent: hit.Tangent, Wo: ray.Direction.Negate(), UV: hit.UV,
	}
	if _, ok := hit.Material.Sample(si, samp.Next1D()); !ok {
		return core.SpectrumWhite
	}

	frame := core.FrameFromZ(hit.ShadingNormal)
	local := core.SampleCosineHemisphere(samp.Next2D())
	if hit.ShadingNormal.Dot(hit.GeometricNormal) < 0 {
		local.Z *= -1
	}
	dir := frame.FromLocal(local)

	occlusionRange := a.Range
	if occlusionRange <= 0 {
		occlusionRange = math.Inf(1)
	}
	shadowRay := core.SpawnRay(hit.Point, hit.GeometricNormal, dir)
	if sc.IntersectAny(shadowRay, rayEpsilon, occlusionRange) {
		return core.SpectrumBlack
	}
	return core.SpectrumWhite
}
