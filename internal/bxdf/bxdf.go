package bxdf

import "github.com/lumetrace/lumetrace/internal/core"

// Sample is the result of BxDF.SampleF: a direction, its contribution
// and PDF, and the lobe flags it came from. Delta lobes set PDF=1 and
// divide F by |cos(wi)| so that F*|cos(wi)|/PDF equals the lobe's
// contribution, per spec.md §3's BxDF contract.
type Sample struct {
	F                  core.Spectrum
	Wi                 core.Vec3
	PDF                float64
	Flags              Flags
	Eta                float64
	PDFIsProportional bool
}

// BxDF is a single scattering lobe evaluated entirely in local shading
// space (z = shading normal). All directions point away from the
// surface.
type BxDF interface {
	Flags() Flags
	F(wo, wi core.Vec3, mode TransportMode) core.Spectrum
	SampleF(wo core.Vec3, u0 float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool)
	PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags SamplingFlags) float64
	// Regularize returns a lobe with roughness floored/widened to
	// suppress fireflies on deep recursive paths (spec.md §4.1).
	Regularize() BxDF
}

// Rho estimates the hemispherical-directional reflectance of a BxDF at
// a fixed wo by Monte Carlo over BSDF samples (original_source's
// bxdf.h::rho), used by the Albedo integrator.
func Rho(b BxDF, wo core.Vec3, uc []float64, u2 []core.Vec2) core.Spectrum {
	if wo.Z == 0 {
		return core.SpectrumBlack
	}
	sum := core.SpectrumBlack
	n := len(uc)
	if n == 0 || n != len(u2) {
		return core.SpectrumBlack
	}
	for i := 0; i < n; i++ {
		s, ok := b.SampleF(wo, uc[i], u2[i], ToLight, SampleAll)
		if !ok || s.PDF == 0 {
			continue
		}
		sum = sum.Add(s.F.Scale(core.AbsCosTheta(s.Wi) / s.PDF))
	}
	return sum.Scale(1 / float64(n))
}

// RhoHH estimates the hemispherical-hemispherical reflectance,
// integrating over both incident and outgoing cosine-weighted
// directions.
func RhoHH(b BxDF, u1 []core.Vec2, uc []float64, u2 []core.Vec2) core.Spectrum {
	sum := core.SpectrumBlack
	n := len(u1)
	if n == 0 || n != len(uc) || n != len(u2) {
		return core.SpectrumBlack
	}
	for i := 0; i < n; i++ {
		wo := core.SampleUniformHemisphere(u1[i])
		pdfo := core.UniformHemispherePDF()
		if pdfo == 0 {
			continue
		}
		s, ok := b.SampleF(wo, uc[i], u2[i], ToLight, SampleAll)
		if !ok || s.PDF == 0 {
			continue
		}
		sum = sum.Add(s.F.Scale(core.AbsCosTheta(s.Wi) * core.AbsCosTheta(wo) / (pdfo * s.PDF)))
	}
	return sum.Scale(1 / (float64(n) * 3.14159265358979))
}
