package bxdf

import "github.com/lumetrace/lumetrace/internal/core"

// SpecularReflectionDelta is a perfect mirror delta lobe: f and PDF
// are zero everywhere except the sampled direction, per spec.md §4.2.
type SpecularReflectionDelta struct {
	R core.Spectrum
}

func (s SpecularReflectionDelta) Flags() Flags {
	if s.R.IsBlack() {
		return Unset
	}
	return SpecularReflection
}

func (s SpecularReflectionDelta) F(wo, wi core.Vec3, _ TransportMode) core.Spectrum {
	return core.SpectrumBlack
}

func (s SpecularReflectionDelta) PDF(wo, wi core.Vec3, _ TransportMode, _ SamplingFlags) float64 {
	return 0
}

func (s SpecularReflectionDelta) SampleF(wo core.Vec3, _ float64, _ core.Vec2, _ TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if !sampleFlags.Allows(true) || s.R.IsBlack() {
		return Sample{}, false
	}
	wi := core.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z}
	if wi.Z == 0 {
		return Sample{}, false
	}
	return Sample{
		F:     s.R.Scale(1 / core.AbsCosTheta(wi)),
		Wi:    wi,
		PDF:   1,
		Flags: SpecularReflection,
		Eta:   1,
	}, true
}

func (s SpecularReflectionDelta) Regularize() BxDF {
	return Lambertian{R: s.R}
}
