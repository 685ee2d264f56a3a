package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// NormalizedFresnel is the exit-interface term of the separable BSSRDF
// (spec.md §4.2): f = c*(1 - Fr(cosThetaI, 1/eta)) with a
// normalization constant from the Fresnel moment so the lobe integrates
// to a physically plausible exitance for the chosen eta.
type NormalizedFresnel struct {
	Eta float64
}

func (n NormalizedFresnel) Flags() Flags { return DiffuseReflection }

func (n NormalizedFresnel) c() float64 {
	return 1 / (math.Pi * (1 - 2*core.FresnelMoment1(1/n.Eta)))
}

func (n NormalizedFresnel) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return core.SpectrumBlack
	}
	val := n.c() * (1 - FresnelDielectric(core.AbsCosTheta(wi), 1/n.Eta))
	if mode == ToLight {
		val *= n.Eta * n.Eta
	}
	return core.Splat(val)
}

func (n NormalizedFresnel) PDF(wo, wi core.Vec3, _ TransportMode, sampleFlags SamplingFlags) float64 {
	if !sampleFlags.Allows(true) || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (n NormalizedFresnel) SampleF(wo core.Vec3, _ float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if !sampleFlags.Allows(true) {
		return Sample{}, false
	}
	wi := core.SampleCosineHemisphere(u12)
	if wo.Z < 0 {
		wi.Z *= -1
	}
	pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi))
	if pdf == 0 {
		return Sample{}, false
	}
	return Sample{F: n.F(wo, wi, mode), Wi: wi, PDF: pdf, Flags: DiffuseReflection, Eta: 1}, true
}

func (n NormalizedFresnel) Regularize() BxDF { return n }
