package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// albedoSamples is the "small quasi-random set" spec.md §4.7.5 asks
// for; this module has no dedicated low-discrepancy sequence wired in
// (see DESIGN.md), so the active pixel sampler's own stream stands in.
const albedoSamples = 16

// AlbedoIntegrator returns the hemispherical reflectance of the first
// surface hit, approximated by a small quasi-random set, spec.md
// §4.7.5 -- a visualization aid, not a lighting simulation.
type AlbedoIntegrator struct{}

func (AlbedoIntegrator) Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, _ int, _ *arena.VertexArena) core.Spectrum {
	hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
	if !found || hit.Material == nil {
		return core.SpectrumBlack
	}

	si := material.SurfaceInteraction{
		Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
		Tangent: hit.Tangent, Wo: ray.Direction.Negate(), UV: hit.UV,
	}
	b, ok := hit.Material.Sample(si, samp.Next1D())
	if !ok {
		return core.SpectrumBlack
	}

	uc := make([]float64, albedoSamples)
	u2 := make([]core.Vec2, albedoSamples)
	for i := range uc {
		uc[i] = samp.Next1D()
		u2[i] = samp.Next2D()
	}
	return b.Rho(ray.Direction.Negate(), uc, u2)
}
