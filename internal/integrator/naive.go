package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// NaivePathIntegrator is BSDF-sampling-only path tracing: no next-event
// estimation, no MIS, emitted light is only ever picked up by directly
// hitting a light, spec.md §4.7.5's reference integrator used to
// validate the flagship PathIntegrator converges to the same image.
type NaivePathIntegrator struct{}

func (NaivePathIntegrator) Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxDepth int, _ *arena.VertexArena) core.Spectrum {
	L := core.SpectrumBlack
	beta := core.SpectrumWhite
	depth := 0

	for depth < maxDepth {
		hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
		if !found {
			for _, l := range sc.InfiniteLights() {
				if leSrc, ok := l.(light.InfiniteLe); ok {
					L = L.Add(beta.Mul(leSrc.Le(ray.Direction)))
				}
			}
			break
		}

		if al, ok := hit.Light.(*light.DiffuseAreaLight); ok {
			L = L.Add(beta.Mul(al.Le(hit.GeometricNormal, ray.Direction.Negate(), hit.UV)))
		}

		if hit.Material == nil {
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, rayMedium(ray.Medium))
			continue
		}

		si := material.SurfaceInteraction{
			Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
			Tangent: hit.Tangent, Wo: ray.Direction.Negate(), UV: hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, rayMedium(ray.Medium))
			continue
		}

		wo := ray.Direction.Negate()
		bs, ok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToLight, bxdf.SampleAll)
		if !ok {
			break
		}
		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		if beta.IsBlack() {
			break
		}

		ray = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, rayMedium(ray.Medium))
		depth++
	}
	return L
}
