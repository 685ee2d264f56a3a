package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// MetallicRoughness is the glTF metallic-roughness lobe, spec.md §4.2:
// a Schlick-Fresnel interpolation between a dielectric F0 (~0.04) and
// the basecolor by Metallic, combining a Trowbridge-Reitz specular
// lobe with a Lambertian diffuse term whose magnitude is
// (1-Metallic)*(1-F)*basecolor. Sampling picks the specular lobe with
// probability R/(R+(1-Metallic)*(1-R)), where R is the scalar Schlick
// Fresnel of F0's luminance at wo's angle to the shading normal; the
// sampled half vector does not enter this weight.
type MetallicRoughness struct {
	BaseColor core.Spectrum
	Metallic  float64
	Dist      TrowbridgeReitz
}

var dielectricF0 = core.Splat(0.04)

func (m MetallicRoughness) Flags() Flags {
	f := DiffuseReflection
	if m.Dist.EffectivelySmooth() {
		f |= SpecularReflection
	} else {
		f |= GlossyReflection
	}
	return f
}

func (m MetallicRoughness) f0() core.Spectrum {
	return dielectricF0.Lerp(m.BaseColor, m.Metallic)
}

func (m MetallicRoughness) F(wo, wi core.Vec3, _ TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) || m.Dist.EffectivelySmooth() {
		return core.SpectrumBlack
	}
	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	if cosThetaO == 0 || cosThetaI == 0 {
		return core.SpectrumBlack
	}
	wm := wi.Add(wo)
	if wm.LengthSquared() == 0 {
		return core.SpectrumBlack
	}
	wm = wm.Normalize()
	fr := FresnelSchlick(m.f0(), math.Abs(wo.Dot(wm)))
	spec := fr.Scale(m.Dist.D(wm) * m.Dist.G(wo, wi) / (4 * cosThetaO * cosThetaI))

	diffuseWeight := core.Splat(1).Sub(fr).Scale(1 - m.Metallic)
	diffuse := m.BaseColor.Mul(diffuseWeight).Scale(1 / math.Pi)
	return spec.Add(diffuse)
}

func (m MetallicRoughness) pSpecular(wo core.Vec3) float64 {
	r := FresnelSchlickScalar(m.f0().Luminance(), core.AbsCosTheta(wo))
	t := (1 - m.Metallic) * (1 - r)
	if r+t == 0 {
		return 1
	}
	return r / (r + t)
}

func (m MetallicRoughness) PDF(wo, wi core.Vec3, _ TransportMode, sampleFlags SamplingFlags) float64 {
	if !sampleFlags.Allows(true) || !core.SameHemisphere(wo, wi) {
		return 0
	}
	ps := m.pSpecular(wo)
	diffusePDF := core.CosineHemispherePDF(core.AbsCosTheta(wi))
	if m.Dist.EffectivelySmooth() {
		return diffusePDF
	}
	wm := wi.Add(wo)
	specPDF := 0.0
	if wm.LengthSquared() > 0 {
		wm = core.FaceForward(wm.Normalize(), core.Vec3{X: 0, Y: 0, Z: 1})
		specPDF = m.Dist.PDF(wo, wm) / (4 * math.Abs(wo.Dot(wm)))
	}
	return ps*specPDF + (1-ps)*diffusePDF
}

func (m MetallicRoughness) SampleF(wo core.Vec3, u0 float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if !sampleFlags.Allows(true) {
		return Sample{}, false
	}
	ps := m.pSpecular(wo)
	if m.Dist.EffectivelySmooth() || u0 < ps {
		var wi core.Vec3
		if m.Dist.EffectivelySmooth() {
			wi = core.Reflect(wo.Negate(), core.Vec3{X: 0, Y: 0, Z: 1})
			if !core.SameHemisphere(wo, wi) {
				return Sample{}, false
			}
			fr := FresnelSchlick(m.f0(), core.AbsCosTheta(wo))
			return Sample{F: fr.Scale(1 / core.AbsCosTheta(wi)), Wi: wi, PDF: ps, Flags: SpecularReflection, Eta: 1}, true
		}
		wm := m.Dist.SampleWm(wo, u12)
		wi = core.Reflect(wo.Negate(), wm)
		if !core.SameHemisphere(wo, wi) {
			return Sample{}, false
		}
	} else {
		wi := core.SampleCosineHemisphere(u12)
		if wo.Z < 0 {
			wi.Z *= -1
		}
		pdf := m.PDF(wo, wi, mode, sampleFlags)
		if pdf == 0 {
			return Sample{}, false
		}
		return Sample{F: m.F(wo, wi, mode), Wi: wi, PDF: pdf, Flags: DiffuseReflection, Eta: 1}, true
	}
	wi := core.Reflect(wo.Negate(), m.Dist.SampleWm(wo, u12))
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	pdf := m.PDF(wo, wi, mode, sampleFlags)
	if pdf == 0 {
		return Sample{}, false
	}
	return Sample{F: m.F(wo, wi, mode), Wi: wi, PDF: pdf, Flags: GlossyReflection, Eta: 1}, true
}

func (m MetallicRoughness) Regularize() BxDF {
	m.Dist = m.Dist.Regularize()
	return m
}
