package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Lambertian is the perfectly-diffuse lobe f = R/pi, grounded on
// spec.md §4.2 and the teacher's pkg/material/lambertian.go.
type Lambertian struct {
	R core.Spectrum
}

func NewLambertian(r core.Spectrum) Lambertian { return Lambertian{R: r} }

func (l Lambertian) Flags() Flags {
	if l.R.IsBlack() {
		return Unset
	}
	return DiffuseReflection
}

func (l Lambertian) F(wo, wi core.Vec3, _ TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return core.SpectrumBlack
	}
	return l.R.Scale(1 / math.Pi)
}

func (l Lambertian) SampleF(wo core.Vec3, _ float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if !sampleFlags.Allows(true) || l.R.IsBlack() {
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
	return Sample{F: l.F(wo, wi, mode), Wi: wi, PDF: pdf, Flags: DiffuseReflection, Eta: 1}, true
}

func (l Lambertian) PDF(wo, wi core.Vec3, _ TransportMode, sampleFlags SamplingFlags) float64 {
	if !sampleFlags.Allows(true) || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (l Lambertian) Regularize() BxDF { return l }
