package bxdf

import "github.com/lumetrace/lumetrace/internal/core"

// ThinDielectric models a thin slab (two parallel interfaces, e.g. a
// soap film or thin glass pane) where the closed-form infinite
// geometric series of internal bounces gives an effective reflectance
// R' = R + T^2 R / (1-R^2), spec.md §4.2. Transmission passes straight
// through (wi = -wo) since the slab is infinitesimally thin.
type ThinDielectric struct {
	Eta float64
}

func (t ThinDielectric) Flags() Flags { return SpecularReflection | SpecularTransmission }

func (t ThinDielectric) F(wo, wi core.Vec3, _ TransportMode) core.Spectrum { return core.SpectrumBlack }
func (t ThinDielectric) PDF(wo, wi core.Vec3, _ TransportMode, _ SamplingFlags) float64 { return 0 }

func (t ThinDielectric) effectiveR(cosThetaO float64) float64 {
	r := FresnelDielectric(cosThetaO, t.Eta)
	if r < 1 {
		r += (1 - r) * (1 - r) * r / (1 - r*r)
	}
	return r
}

func (t ThinDielectric) SampleF(wo core.Vec3, u0 float64, _ core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	r := t.effectiveR(core.AbsCosTheta(wo))
	tr := 1 - r
	pr, pt := r, tr
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
		return Sample{F: core.Splat(r / core.AbsCosTheta(wi)), Wi: wi, PDF: pr / (pr + pt), Flags: SpecularReflection, Eta: 1}, true
	}
	wi := wo.Negate()
	return Sample{F: core.Splat(tr / core.AbsCosTheta(wi)), Wi: wi, PDF: pt / (pr + pt), Flags: SpecularTransmission, Eta: 1}, true
}

func (t ThinDielectric) Regularize() BxDF { return t }
