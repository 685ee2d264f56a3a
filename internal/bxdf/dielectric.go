package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Dielectric is the rough/smooth refractive lobe (glass), spec.md
// §4.2. Eta is the relative index of refraction (interior / exterior);
// wo.Z > 0 means the ray arrives from outside.
type Dielectric struct {
	Dist         TrowbridgeReitz
	Eta          float64
	MultiScatter bool
}

func (d Dielectric) Flags() Flags {
	if d.Eta == 1 {
		return Transmission
	}
	if d.Dist.EffectivelySmooth() {
		return SpecularReflection | SpecularTransmission
	}
	return GlossyReflection | GlossyTransmission
}

func (d Dielectric) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if d.Eta == 1 || d.Dist.EffectivelySmooth() {
		return core.SpectrumBlack
	}
	cosThetaO, cosThetaI := core.CosTheta(wo), core.CosTheta(wi)
	reflect := cosThetaI*cosThetaO > 0
	etaP := 1.0
	if !reflect {
		if cosThetaO > 0 {
			etaP = d.Eta
		} else {
			etaP = 1 / d.Eta
		}
	}
	wm := wi.Multiply(etaP).Add(wo)
	if cosThetaI == 0 || cosThetaO == 0 || wm.LengthSquared() == 0 {
		return core.SpectrumBlack
	}
	wm = core.FaceForward(wm.Normalize(), core.Vec3{X: 0, Y: 0, Z: 1})
	if wm.Dot(wi)*cosThetaI < 0 || wm.Dot(wo)*cosThetaO < 0 {
		return core.SpectrumBlack
	}

	fr := FresnelDielectric(wo.Dot(wm), d.Eta)
	single := core.SpectrumBlack
	if reflect {
		single = core.Splat(d.Dist.D(wm) * d.Dist.G(wo, wi) * fr / math.Abs(4*cosThetaI*cosThetaO))
	} else {
		denom := core.Sqr(wi.Dot(wm)+wo.Dot(wm)/etaP) * cosThetaI * cosThetaO
		if denom == 0 {
			return core.SpectrumBlack
		}
		ft := d.Dist.D(wm) * (1 - fr) * d.Dist.G(wo, wi) *
			math.Abs(wi.Dot(wm)*wo.Dot(wm)/denom)
		if mode == ToLight {
			ft /= etaP * etaP
		}
		single = core.Splat(ft)
	}
	if !d.MultiScatter {
		return single
	}
	return single.Add(d.compensation(cosThetaO, cosThetaI, reflect))
}

func (d Dielectric) compensation(cosThetaO, cosThetaI float64, reflect bool) core.Spectrum {
	alpha := math.Sqrt(d.Dist.AlphaX * d.Dist.AlphaY)
	entering := cosThetaO > 0
	eo := DielectricMultiScatterE(math.Abs(cosThetaO), alpha, entering)
	ei := DielectricMultiScatterE(math.Abs(cosThetaI), alpha, entering)
	eAvg := DielectricMultiScatterEAvg(alpha, entering)
	if eAvg >= 0.999 || !reflect {
		return core.SpectrumBlack
	}
	missing := math.Max(0, (1-eo)*(1-ei)) / math.Max(1e-4, 1-eAvg)
	r0 := SchlickF0FromEta(d.Eta)
	return core.Splat(r0 * missing / math.Pi)
}

func (d Dielectric) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags SamplingFlags) float64 {
	if d.Eta == 1 || d.Dist.EffectivelySmooth() {
		return 0
	}
	cosThetaO, cosThetaI := core.CosTheta(wo), core.CosTheta(wi)
	reflect := cosThetaI*cosThetaO > 0
	etaP := 1.0
	if !reflect {
		if cosThetaO > 0 {
			etaP = d.Eta
		} else {
			etaP = 1 / d.Eta
		}
	}
	wm := wi.Multiply(etaP).Add(wo)
	if cosThetaI == 0 || cosThetaO == 0 || wm.LengthSquared() == 0 {
		return 0
	}
	wm = core.FaceForward(wm.Normalize(), core.Vec3{X: 0, Y: 0, Z: 1})
	if wm.Dot(wi)*cosThetaI < 0 || wm.Dot(wo)*cosThetaO < 0 {
		return 0
	}

	r := FresnelDielectric(wo.Dot(wm), d.Eta)
	t := 1 - r
	pr, pt := r, t
	if !sampleFlags.Allows(true) {
		pr = 0
	}
	if !sampleFlags.Allows(false) {
		pt = 0
	}
	if pr == 0 && pt == 0 {
		return 0
	}

	if reflect {
		return d.Dist.PDF(wo, wm) / (4 * math.Abs(wo.Dot(wm))) * pr / (pr + pt)
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etaP)
	if denom == 0 {
		return 0
	}
	dwmDwi := math.Abs(wi.Dot(wm)) / denom
	return d.Dist.PDF(wo, wm) * dwmDwi * pt / (pr + pt)
}

func (d Dielectric) SampleF(wo core.Vec3, u0 float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if d.Eta == 1 || d.Dist.EffectivelySmooth() {
		return d.sampleSmooth(wo, u0, mode, sampleFlags)
	}
	return d.sampleRough(wo, u0, u12, mode, sampleFlags)
}

func (d Dielectric) sampleSmooth(wo core.Vec3, u0 float64, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	r := FresnelDielectric(core.CosTheta(wo), d.Eta)
	t := 1 - r
	pr, pt := r, t
	if !sampleFlags.Allows(true) {
		pr = 0
	}
	if !sampleFlags.Allows(false) {
		pt = 0
	}
	if pr == 0 && pt == 0 {
		return Sample{}, false
	}

	if u0 < pr/(pr+pt) {
		wi := core.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z}
		f := core.Splat(r / core.AbsCosTheta(wi))
		return Sample{F: f, Wi: wi, PDF: pr / (pr + pt), Flags: SpecularReflection, Eta: 1}, true
	}

	etaRatio := 1 / d.Eta
	if core.CosTheta(wo) < 0 {
		etaRatio = d.Eta
	}
	n := core.Vec3{X: 0, Y: 0, Z: 1}
	if core.CosTheta(wo) < 0 {
		n = n.Negate()
	}
	wi, ok := core.Refract(wo.Negate(), n, etaRatio)
	if !ok {
		return Sample{}, false
	}
	etaP := 1 / etaRatio
	ft := t / core.AbsCosTheta(wi)
	if mode == ToLight {
		ft /= etaP * etaP
	}
	return Sample{F: core.Splat(ft), Wi: wi, PDF: pt / (pr + pt), Flags: SpecularTransmission, Eta: etaP}, true
}

func (d Dielectric) sampleRough(wo core.Vec3, u0 float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	wm := d.Dist.SampleWm(wo, u12)
	r := FresnelDielectric(wo.Dot(wm), d.Eta)
	t := 1 - r
	pr, pt := r, t
	if !sampleFlags.Allows(true) {
		pr = 0
	}
	if !sampleFlags.Allows(false) {
		pt = 0
	}
	if pr == 0 && pt == 0 {
		return Sample{}, false
	}

	if u0 < pr/(pr+pt) {
		wi := core.Reflect(wo.Negate(), wm)
		if !core.SameHemisphere(wo, wi) {
			return Sample{}, false
		}
		f := d.F(wo, wi, mode)
		pdf := d.PDF(wo, wi, mode, sampleFlags)
		if pdf == 0 {
			return Sample{}, false
		}
		flags := GlossyReflection
		return Sample{F: f, Wi: wi, PDF: pdf, Flags: flags, Eta: 1}, true
	}

	etaRatio := 1 / d.Eta
	if wo.Dot(wm) < 0 {
		etaRatio = d.Eta
	}
	wi, ok := core.Refract(wo.Negate(), core.FaceForward(wm, wo), etaRatio)
	if !ok || core.SameHemisphere(wo, wi) || wi.Z == 0 {
		return Sample{}, false
	}
	f := d.F(wo, wi, mode)
	pdf := d.PDF(wo, wi, mode, sampleFlags)
	if pdf == 0 {
		return Sample{}, false
	}
	return Sample{F: f, Wi: wi, PDF: pdf, Flags: GlossyTransmission, Eta: 1 / etaRatio}, true
}

func (d Dielectric) Regularize() BxDF {
	d.Dist = d.Dist.Regularize()
	return d
}
