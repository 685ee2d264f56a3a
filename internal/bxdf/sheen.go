package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Sheen is the Charlie-distribution retroreflective lobe used by
// fabric-like materials, spec.md §4.2: a base-color multi-scatter
// compensation term plus the Charlie specular peak.
type Sheen struct {
	Dist  Charlie
	Color core.Spectrum
	Base  core.Spectrum // base/underlying albedo for the (1-E(wo))*base/pi term
}

func (s Sheen) Flags() Flags {
	if s.Color.IsBlack() && s.Base.IsBlack() {
		return Unset
	}
	return GlossyReflection
}

func (s Sheen) sheenE(w core.Vec3) float64 {
	// tabulate-free closed-form approximation of the Charlie
	// directional albedo (Estevez & Kulla): grows with roughness and
	// grazing angle.
	cosTheta := core.AbsCosTheta(w)
	return core.Clamp(s.Dist.Alpha*(1-cosTheta)+0.5*s.Dist.Alpha, 0, 1)
}

func (s Sheen) F(wo, wi core.Vec3, _ TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return core.SpectrumBlack
	}
	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	if cosThetaO == 0 || cosThetaI == 0 {
		return core.SpectrumBlack
	}
	wm := wi.Add(wo)
	compensation := s.Base.Scale((1 - s.sheenE(wo)) / math.Pi)
	if wm.LengthSquared() == 0 {
		return compensation
	}
	wm = wm.Normalize()
	d := s.Dist.D(wm)
	g := s.Dist.G(wo, wi)
	specular := s.Color.Scale(d * g / (4 * cosThetaO * cosThetaI) * cosThetaO * cosThetaI)
	return compensation.Add(specular)
}

func (s Sheen) PDF(wo, wi core.Vec3, _ TransportMode, sampleFlags SamplingFlags) float64 {
	if !sampleFlags.Allows(true) || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (s Sheen) SampleF(wo core.Vec3, _ float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if !sampleFlags.Allows(true) {
		return Sample{}, false
	}
	wi := core.SampleCosineHemisphere(u12)
	if wo.Z < 0 {
		wi.Z *= -1
	}
	pdf := s.PDF(wo, wi, mode, sampleFlags)
	if pdf == 0 {
		return Sample{}, false
	}
	return Sample{F: s.F(wo, wi, mode), Wi: wi, PDF: pdf, Flags: GlossyReflection, Eta: 1}, true
}

func (s Sheen) Regularize() BxDF { return s }
