package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/camera"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/medium"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// LightTracingIntegrator traces from sampled light vertices and
// connects each non-specular vertex to the camera, the symmetric t=1
// BDPT strategy of spec.md §4.7.4. It never produces a per-camera-ray
// color (there is no camera subpath at all here), so Li always
// returns black; the renderer drives photon emission through
// TracePhoton instead, once per photon in a single pass, splatting
// directly into the film.
type LightTracingIntegrator struct {
	Camera camera.Camera
}

func (LightTracingIntegrator) Li(core.Ray, *scene.Scene, sampler.Sampler, int, *arena.VertexArena) core.Spectrum {
	return core.SpectrumBlack
}

// TracePhoton samples one light-subpath and splats every camera
// connection it can form into film.
func (lt LightTracingIntegrator) TracePhoton(sc *scene.Scene, samp sampler.Sampler, maxDepth int, film Film) {
	sampled, ok := sc.LightSampler.Sample(samp.Next1D())
	if !ok {
		return
	}
	le, ok := sampled.Light.SampleLe(samp.Next2D(), samp.Next2D())
	if !ok || le.PDFPos <= 0 || le.PDFDir <= 0 {
		return
	}
	cosLight := absDot(le.Normal, le.Ray.Direction)
	if cosLight == 0 {
		return
	}
	beta := le.L.Scale(cosLight / (le.PDFPos * le.PDFDir * sampled.PMF))
	ray := le.Ray
	currentMedium := rayMedium(ray.Medium)

	depth := 0
	for depth < maxDepth {
		hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
		tMax := math.Inf(1)
		if found {
			tMax = hit.T
		}

		if currentMedium != nil {
			discardedL := core.SpectrumBlack
			event, mi := sampleMediumSegment(currentMedium, ray, tMax, &beta, &discardedL, samp)
			if beta.IsBlack() || event == mediumEventAbsorbed {
				return
			}
			if event == mediumEventScattered {
				lt.connectMediumToCamera(sc, mi.Point, mi.Wo, mi.Phase, beta, currentMedium, samp, film)
				ps, ok := mi.Phase.SampleP(mi.Wo, samp.Next2D())
				if !ok || ps.PDF <= 0 {
					return
				}
				beta = beta.Scale(ps.P / ps.PDF)
				depth++
				if depth > rrMinBounces && !russianRoulette(&beta, 1, samp) {
					return
				}
				ray = spawnRay(mi.Point, mi.Wo, ps.Wi, currentMedium)
				continue
			}
		}

		if !found {
			return
		}

		if hit.Material == nil {
			nextMedium := currentMedium
			if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
				nextMedium = hit.MediumInterface.Resolve(ray.Direction, hit.GeometricNormal, hit.FrontFace)
			}
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, nextMedium)
			currentMedium = nextMedium
			continue
		}

		si := material.SurfaceInteraction{
			Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
			Tangent: hit.Tangent, Wo: ray.Direction.Negate(), UV: hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, currentMedium)
			continue
		}
		wo := ray.Direction.Negate()

		if b.Flags().IsNonSpecular() {
			lt.connectSurfaceToCamera(sc, hit.Point, hit.ShadingNormal, wo, b, beta, currentMedium, samp, film)
		}

		depth++
		if depth >= maxDepth {
			return
		}

		bs, ok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToCamera, bxdf.SampleAll)
		if !ok {
			return
		}
		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		if beta.IsBlack() {
			return
		}

		nextMedium := currentMedium
		if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
			nextMedium = hit.MediumInterface.Resolve(bs.Wi, hit.GeometricNormal, hit.FrontFace)
		}
		ray = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, nextMedium)
		currentMedium = nextMedium

		if depth > rrMinBounces && !russianRoulette(&beta, 1, samp) {
			return
		}
	}
}

// connectSurfaceToCamera forms the t=1 connection at a surface vertex:
// sample the camera's importance, evaluate the BSDF toward the lens,
// and splat beta*f*Tr*We*|cosTheta|/pdf at the returned raster coordinate.
func (lt LightTracingIntegrator) connectSurfaceToCamera(sc *scene.Scene, point, shadingNormal, wo core.Vec3, b bsdf.BSDF, beta core.Spectrum, currentMedium medium.Medium, samp sampler.Sampler, film Film) {
	wi, ok := lt.Camera.SampleWi(point, samp.Next2D())
	if !ok || wi.PDF <= 0 || wi.We == 0 {
		return
	}
	f := b.F(wo, wi.Wi, bxdf.ToCamera)
	if f.IsBlack() {
		return
	}
	cosTheta := absDot(wi.Wi, shadingNormal)
	if cosTheta == 0 {
		return
	}
	tr, visible := unoccludedTransmittance(sc, point, wi.Wi, wi.Distance, currentMedium, samp)
	if !visible {
		return
	}
	contribution := beta.Mul(f).Mul(tr).Scale(wi.We * cosTheta / wi.PDF)
	if contribution.IsBlack() {
		return
	}
	film.AddSplat(wi.RasterX, wi.RasterY, contribution)
}

// connectMediumToCamera mirrors connectSurfaceToCamera for a
// phase-function scattering vertex: no cosine term, the phase value
// itself replaces f.
func (lt LightTracingIntegrator) connectMediumToCamera(sc *scene.Scene, point, wo core.Vec3, phase medium.PhaseFunction, beta core.Spectrum, currentMedium medium.Medium, samp sampler.Sampler, film Film) {
	wi, ok := lt.Camera.SampleWi(point, samp.Next2D())
	if !ok || wi.PDF <= 0 || wi.We == 0 {
		return
	}
	p := phase.P(wo, wi.Wi)
	if p == 0 {
		return
	}
	tr, visible := unoccludedTransmittance(sc, point, wi.Wi, wi.Distance, currentMedium, samp)
	if !visible {
		return
	}
	contribution := beta.Mul(tr).Scale(p * wi.We / wi.PDF)
	if contribution.IsBlack() {
		return
	}
	film.AddSplat(wi.RasterX, wi.RasterY, contribution)
}
