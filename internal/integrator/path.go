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

// PathIntegrator is the flagship unidirectional path tracer, spec.md
// §4.7.1: next-event estimation with balance-heuristic MIS against
// BSDF sampling, null-scattering transmittance and in-medium
// phase-function NEE, eta-scale-aware Russian roulette, and BSSRDF
// probe-and-reproject.
type PathIntegrator struct{}

func (PathIntegrator) Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxDepth int, _ *arena.VertexArena) core.Spectrum {
	L := core.SpectrumBlack
	beta := core.SpectrumWhite
	etaScale := 1.0
	specularBounce := true
	prevPDF := 1.0
	currentMedium := rayMedium(ray.Medium)
	depth := 0

	for {
		hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
		tMax := math.Inf(1)
		if found {
			tMax = hit.T
		}

		if currentMedium != nil {
			event, mi := sampleMediumSegment(currentMedium, ray, tMax, &beta, &L, samp)
			if beta.IsBlack() {
				return L
			}
			switch event {
			case mediumEventAbsorbed:
				return L
			case mediumEventScattered:
				L = L.Add(beta.Mul(sampleDirectLightingMedium(sc, mi.Point, mi.Phase, mi.Wo, currentMedium, samp)))
				ps, ok := mi.Phase.SampleP(mi.Wo, samp.Next2D())
				if !ok || ps.PDF <= 0 {
					return L
				}
				beta = beta.Scale(ps.P / ps.PDF)
				specularBounce = false
				prevPDF = ps.PDF
				depth++
				if depth >= maxDepth {
					return L
				}
				if depth > rrMinBounces && !russianRoulette(&beta, etaScale, samp) {
					return L
				}
				ray = spawnRay(mi.Point, mi.Wo, ps.Wi, currentMedium)
				continue
			}
			// mediumEventNone: the segment ended at tMax, fall through to
			// the surface hit (or escape) below with beta already scaled
			// by the accumulated null-collision weight.
		}

		if !found {
			L = L.Add(beta.Mul(escapedRadiance(sc, ray, prevPDF, specularBounce)))
			return L
		}

		if hit.Light != nil {
			if al, ok := hit.Light.(*light.DiffuseAreaLight); ok {
				le := al.Le(hit.GeometricNormal, ray.Direction.Negate(), hit.UV)
				if !le.IsBlack() {
					if specularBounce {
						L = L.Add(beta.Mul(le))
					} else {
						lightPDF := al.PDFLi(ray.Origin, ray.Direction) * sc.LightSampler.PMF(al)
						w := balanceHeuristic(prevPDF, lightPDF)
						L = L.Add(beta.Mul(le).Scale(w))
					}
				}
			}
		}

		depth++
		if depth >= maxDepth {
			return L
		}

		if hit.Material == nil {
			nextMedium := currentMedium
			if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
				nextMedium = hit.MediumInterface.Resolve(ray.Direction, hit.GeometricNormal, hit.FrontFace)
			}
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, nextMedium)
			currentMedium = nextMedium
			depth--
			continue
		}

		si := material.SurfaceInteraction{
			Point:           hit.Point,
			GeometricNormal: hit.GeometricNormal,
			ShadingNormal:   hit.ShadingNormal,
			Tangent:         hit.Tangent,
			Wo:              ray.Direction.Negate(),
			UV:              hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, currentMedium)
			depth--
			continue
		}

		wo := ray.Direction.Negate()
		if b.Flags().IsNonSpecular() {
			L = L.Add(beta.Mul(sampleDirectLightingSurface(sc, hit.Point, hit.ShadingNormal, b, wo, currentMedium, samp)))
		}

		bs, ok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToLight, bxdf.SampleAll)
		if !ok {
			return L
		}

		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		specularBounce = bs.Flags.IsSpecular()
		prevPDF = bs.PDF
		if bs.Eta != 0 {
			etaScale *= bs.Eta * bs.Eta
		}

		nextMedium := currentMedium
		if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
			nextMedium = hit.MediumInterface.Resolve(bs.Wi, hit.GeometricNormal, hit.FrontFace)
		}

		if bssrdf := hit.Material.BSSRDF(); bssrdf != nil && bs.Flags.IsTransmissive() {
			exitBSDF, exitWo, weight, exitPoint, probeOK := subsurfaceProbe(sc, *bssrdf, hit.Point, hit.GeometricNormal, samp)
			if !probeOK || weight.IsBlack() {
				return L
			}
			beta = beta.Mul(weight)

			L = L.Add(beta.Mul(sampleDirectLightingSurface(sc, exitPoint, exitWo, exitBSDF, exitWo, nextMedium, samp)))

			depth++
			if depth >= maxDepth {
				return L
			}
			exitSample, exitOK := exitBSDF.SampleF(exitWo, samp.Next1D(), samp.Next2D(), bxdf.ToLight, bxdf.SampleAll)
			if !exitOK {
				return L
			}
			cosExit := absDot(exitSample.Wi, exitWo)
			beta = beta.Mul(exitSample.F).Scale(cosExit / exitSample.PDF)
			specularBounce = exitSample.Flags.IsSpecular()
			prevPDF = exitSample.PDF

			if depth > rrMinBounces && !russianRoulette(&beta, etaScale, samp) {
				return L
			}
			if beta.IsBlack() {
				return L
			}
			ray = spawnRay(exitPoint, exitWo, exitSample.Wi, nextMedium)
			currentMedium = nextMedium
			continue
		}

		ray = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, nextMedium)
		currentMedium = nextMedium

		if depth > rrMinBounces {
			if !russianRoulette(&beta, etaScale, samp) {
				return L
			}
		}
		if beta.IsBlack() {
			return L
		}
	}
}
