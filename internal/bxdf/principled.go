package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Principled is the superset lobe, spec.md §4.2: metallic-roughness
// specular/diffuse plus rough dielectric transmission, an optional
// clearcoat (a second, usually smoother, Trowbridge-Reitz layer) and
// sheen. Sampling first chooses metallic-vs-non by Metallic, then among
// {specular, transmission, diffuse} weighted by Fresnel/transmission.
type Principled struct {
	BaseColor    core.Spectrum
	Metallic     float64
	Dist         TrowbridgeReitz // base specular/transmission distribution
	Transmission float64         // 0..1 fraction routed to dielectric transmission
	Eta          float64         // dielectric IOR, used when Transmission > 0
	Clearcoat    float64         // 0..1 weight of the second coat layer
	ClearcoatDist TrowbridgeReitz
	Sheen        Sheen
}

func (p Principled) Flags() Flags {
	f := DiffuseReflection | GlossyReflection
	if p.Transmission > 0 {
		f |= GlossyTransmission
	}
	if p.Dist.EffectivelySmooth() {
		f |= SpecularReflection
	}
	return f
}

func (p Principled) metallicSpecular() MetallicRoughness {
	return MetallicRoughness{BaseColor: p.BaseColor, Metallic: p.Metallic, Dist: p.Dist}
}

func (p Principled) dielectricTransmission() Dielectric {
	return Dielectric{Dist: p.Dist, Eta: p.Eta}
}

func (p Principled) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		if p.Transmission == 0 {
			return core.SpectrumBlack
		}
		return p.dielectricTransmission().F(wo, wi, mode).Scale(p.Transmission * (1 - p.Metallic))
	}

	out := p.metallicSpecular().F(wo, wi, mode).Scale(1 - p.Transmission*(1-p.Metallic))

	if p.Clearcoat > 0 {
		cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
		if cosThetaO > 0 && cosThetaI > 0 {
			wm := wi.Add(wo)
			if wm.LengthSquared() > 0 {
				wm = wm.Normalize()
				frC := FresnelSchlickScalar(0.04, math.Abs(wo.Dot(wm)))
				coat := p.ClearcoatDist.D(wm) * p.ClearcoatDist.G(wo, wi) * frC / (4 * cosThetaO * cosThetaI)
				out = out.Scale(1 - p.Clearcoat).Add(core.Splat(coat * p.Clearcoat))
			}
		}
	}

	if !p.Sheen.Color.IsBlack() || !p.Sheen.Base.IsBlack() {
		out = out.Add(p.Sheen.F(wo, wi, mode).Scale(0.25))
	}
	return out
}

func (p Principled) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags SamplingFlags) float64 {
	if !core.SameHemisphere(wo, wi) {
		if p.Transmission == 0 {
			return 0
		}
		return p.dielectricTransmission().PDF(wo, wi, mode, SampleTransmission)
	}
	pdf := p.metallicSpecular().PDF(wo, wi, mode, sampleFlags)
	if p.Transmission > 0 {
		pdf = pdf*(1-p.Transmission) + p.Transmission*p.dielectricTransmission().PDF(wo, wi, mode, SampleReflection)
	}
	return pdf
}

func (p Principled) SampleF(wo core.Vec3, u0 float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if p.Transmission > 0 && u0 < p.Transmission*(1-p.Metallic) {
		remapped := u0 / (p.Transmission * (1 - p.Metallic))
		s, ok := p.dielectricTransmission().SampleF(wo, remapped, u12, mode, sampleFlags)
		if !ok {
			return Sample{}, false
		}
		s.F = s.F.Scale(p.Transmission * (1 - p.Metallic))
		s.PDF *= p.Transmission * (1 - p.Metallic)
		return s, true
	}
	remapped := u0
	if p.Transmission > 0 {
		remapped = (u0 - p.Transmission*(1-p.Metallic)) / (1 - p.Transmission*(1-p.Metallic))
	}
	s, ok := p.metallicSpecular().SampleF(wo, remapped, u12, mode, sampleFlags)
	if !ok {
		return Sample{}, false
	}
	if p.Transmission > 0 {
		s.F = s.F.Scale(1 - p.Transmission*(1-p.Metallic))
		s.PDF *= 1 - p.Transmission*(1-p.Metallic)
	}
	return s, true
}

func (p Principled) Regularize() BxDF {
	p.Dist = p.Dist.Regularize()
	p.ClearcoatDist = p.ClearcoatDist.Regularize()
	return p
}
