package integrator

import (
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/medium"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// unoccludedTransmittance casts a shadow ray toward a light sample and
// returns the spectral transmittance, or ok=false if blocked by an
// opaque surface. Only the medium active at `from` is accounted for
// (spec.md §9's documented simplification: a shadow ray that crosses
// several nested media along its length is not chained through each
// boundary in turn, see DESIGN.md).
func unoccludedTransmittance(sc *scene.Scene, from, wi core.Vec3, dist float64, currentMedium medium.Medium, samp sampler.Sampler) (core.Spectrum, bool) {
	shadowRay := core.Ray{Origin: from, Direction: wi}
	if sc.IntersectAny(shadowRay, rayEpsilon, dist*(1-1e-3)) {
		return core.SpectrumBlack, false
	}
	if currentMedium == nil {
		return core.SpectrumWhite, true
	}
	return medium.Tr(currentMedium, dist, samp.Next1D), true
}

// sampleDirectLightingSurface performs one NEE estimate at a surface
// vertex: sample the light sampler, sample that light, evaluate the
// BSDF, and MIS-weight against the BSDF's own PDF for that direction
// (balance heuristic), spec.md §4.7.1 step 3.
func sampleDirectLightingSurface(sc *scene.Scene, point, shadingNormal core.Vec3, b bsdf.BSDF, wo core.Vec3, currentMedium medium.Medium, samp sampler.Sampler) core.Spectrum {
	sampled, ok := sc.LightSampler.Sample(samp.Next1D())
	if !ok {
		return core.SpectrumBlack
	}
	li, ok := sampled.Light.SampleLi(point, samp.Next2D())
	if !ok || li.PDF <= 0 || li.L.IsBlack() {
		return core.SpectrumBlack
	}
	cosTheta := absDot(shadingNormal, li.Wi)
	if cosTheta == 0 {
		return core.SpectrumBlack
	}

	f := b.F(wo, li.Wi, bxdf.ToLight).Scale(cosTheta)
	if f.IsBlack() {
		return core.SpectrumBlack
	}

	tr, visible := unoccludedTransmittance(sc, point, li.Wi, li.Distance, currentMedium, samp)
	if !visible {
		return core.SpectrumBlack
	}

	lightPDF := li.PDF * sampled.PMF
	if sampled.Light.IsDelta() {
		return f.Mul(tr).Mul(li.L).Scale(1 / lightPDF)
	}
	bsdfPDF := b.PDF(wo, li.Wi, bxdf.ToLight, bxdf.SampleAll)
	w := balanceHeuristic(lightPDF, bsdfPDF)
	return f.Mul(tr).Mul(li.L).Scale(w / lightPDF)
}

// sampleDirectLightingMedium mirrors sampleDirectLightingSurface for a
// phase-function scattering event: there's no cosine term and no
// light-leak check, spec.md §4.7.1 step 1's "replace surface handling
// with a phase-function NEE + phase sample."
func sampleDirectLightingMedium(sc *scene.Scene, point core.Vec3, phase medium.PhaseFunction, wo core.Vec3, currentMedium medium.Medium, samp sampler.Sampler) core.Spectrum {
	sampled, ok := sc.LightSampler.Sample(samp.Next1D())
	if !ok {
		return core.SpectrumBlack
	}
	li, ok := sampled.Light.SampleLi(point, samp.Next2D())
	if !ok || li.PDF <= 0 || li.L.IsBlack() {
		return core.SpectrumBlack
	}
	p := phase.P(wo, li.Wi)
	if p == 0 {
		return core.SpectrumBlack
	}
	tr, visible := unoccludedTransmittance(sc, point, li.Wi, li.Distance, currentMedium, samp)
	if !visible {
		return core.SpectrumBlack
	}
	lightPDF := li.PDF * sampled.PMF
	if sampled.Light.IsDelta() {
		return li.L.Mul(tr).Scale(p / lightPDF)
	}
	phasePDF := phase.PDF(wo, li.Wi)
	w := balanceHeuristic(lightPDF, phasePDF)
	return li.L.Mul(tr).Scale(p * w / lightPDF)
}

func absDot(a, b core.Vec3) float64 {
	d := a.Dot(b)
	if d < 0 {
		return -d
	}
	return d
}
