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

// RandomWalkIntegrator is a recursive BSDF-sampling walk that, like
// NaivePathIntegrator, never applies Russian roulette: every path runs
// to exactly maxDepth bounces (or until it
// escapes or the BSDF sample fails), spec.md §4.7.5's unbiased
// ground-truth reference for verifying RR doesn't introduce bias.
type RandomWalkIntegrator struct{}

func (RandomWalkIntegrator) Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxDepth int, _ *arena.VertexArena) core.Spectrum {
	return randomWalk(ray, sc, samp, maxDepth, 0)
}

func randomWalk(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxDepth, depth int) core.Spectrum {
	hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
	if !found {
		L := core.SpectrumBlack
		for _, l := range sc.InfiniteLights() {
			if leSrc, ok := l.(light.InfiniteLe); ok {
				L = L.Add(leSrc.Le(ray.Direction))
			}
		}
		return L
	}

	L := core.SpectrumBlack
	if al, ok := hit.Light.(*light.DiffuseAreaLight); ok {
		L = L.Add(al.Le(hit.GeometricNormal, ray.Direction.Negate(), hit.UV))
	}

	if depth >= maxDepth {
		return L
	}

	if hit.Material == nil {
		next := spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, rayMedium(ray.Medium))
		return L.Add(randomWalk(next, sc, samp, maxDepth, depth))
	}

	si := material.SurfaceInteraction{
		Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
		Tangent: hit.Tangent, Wo: ray.Direction.Negate(), UV: hit.UV,
	}
	b, ok := hit.Material.Sample(si, samp.Next1D())
	if !ok {
		next := spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, rayMedium(ray.Medium))
		return L.Add(randomWalk(next, sc, samp, maxDepth, depth))
	}

	wo := ray.Direction.Negate()
	bs, ok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToLight, bxdf.SampleAll)
	if !ok {
		return L
	}
	cosTheta := absDot(bs.Wi, hit.ShadingNormal)
	indirect := bs.F.Scale(cosTheta / bs.PDF)
	next := spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, rayMedium(ray.Medium))
	return L.Add(indirect.Mul(randomWalk(next, sc, samp, maxDepth, depth+1)))
}
