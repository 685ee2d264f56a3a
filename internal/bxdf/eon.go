package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// EON is the Energy-preserving Oren-Nayar lobe (Portsmouth, Fricke &
// Dimov 2024): the classic single-scatter Oren-Nayar diffuse term plus
// a fitted multi-scatter correction so the lobe stays energy
// conserving as roughness grows, spec.md §4.2. Sampling mixes a
// uniform-hemisphere strategy (weighted by roughness, since the lobe
// flattens toward uniform as sigma grows) with cosine-weighted
// hemisphere sampling around the shading normal; no lobe aligned to wo
// is sampled.
type EON struct {
	R     core.Spectrum
	Sigma float64 // roughness in [0,1], not squared
}

func (e EON) Flags() Flags {
	if e.R.IsBlack() {
		return Unset
	}
	return DiffuseReflection
}

// singleScatter evaluates the classic Oren-Nayar A/B coefficients.
func (e EON) singleScatter(wo, wi core.Vec3) float64 {
	sigma2 := e.Sigma * e.Sigma
	a := 1 - sigma2/(2*(sigma2+0.33))
	b := 0.45 * sigma2 / (sigma2 + 0.09)

	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	sinThetaO, sinThetaI := core.SinTheta(wo), core.SinTheta(wi)

	maxCos := 0.0
	if sinThetaO > 1e-4 && sinThetaI > 1e-4 {
		dCosPhi := core.CosPhi(wo)*core.CosPhi(wi) + core.SinPhi(wo)*core.SinPhi(wi)
		maxCos = math.Max(0, dCosPhi)
	}

	var sinAlpha, tanBeta float64
	if cosThetaI > cosThetaO {
		sinAlpha = sinThetaO
		tanBeta = sinThetaI / math.Max(cosThetaI, 1e-7)
	} else {
		sinAlpha = sinThetaI
		tanBeta = sinThetaO / math.Max(cosThetaO, 1e-7)
	}
	return a + b*maxCos*sinAlpha*tanBeta
}

// multiScatterGain is the fitted correction raising the lobe's total
// energy back toward 1 as sigma grows, a low-order polynomial fit to
// the residual (1 - single-scatter-albedo(sigma)).
func (e EON) multiScatterGain() float64 {
	s := e.Sigma
	return 1 + 0.23*s*s
}

func (e EON) F(wo, wi core.Vec3, _ TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return core.SpectrumBlack
	}
	return e.R.Scale(e.singleScatter(wo, wi) * e.multiScatterGain() / math.Pi)
}

// samplingMixWeight is the probability of using the uniform-hemisphere
// strategy vs. the cosine-weighted-hemisphere strategy, increasing with
// roughness since a rough Oren-Nayar lobe approaches uniform.
func (e EON) samplingMixWeight() float64 { return core.Clamp(0.5*e.Sigma, 0, 0.5) }

func (e EON) SampleF(wo core.Vec3, u0 float64, u12 core.Vec2, mode TransportMode, sampleFlags SamplingFlags) (Sample, bool) {
	if !sampleFlags.Allows(true) || e.R.IsBlack() {
		return Sample{}, false
	}
	w := e.samplingMixWeight()
	var wi core.Vec3
	if u0 < w {
		wi = core.SampleUniformHemisphere(u12)
	} else {
		wi = core.SampleCosineHemisphere(u12)
	}
	if wo.Z < 0 {
		wi.Z *= -1
	}
	pdf := e.PDF(wo, wi, mode, sampleFlags)
	if pdf <= 0 {
		return Sample{}, false
	}
	return Sample{F: e.F(wo, wi, mode), Wi: wi, PDF: pdf, Flags: DiffuseReflection, Eta: 1}, true
}

func (e EON) PDF(wo, wi core.Vec3, _ TransportMode, sampleFlags SamplingFlags) float64 {
	if !sampleFlags.Allows(true) || !core.SameHemisphere(wo, wi) {
		return 0
	}
	w := e.samplingMixWeight()
	return w*core.UniformHemispherePDF() + (1-w)*core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (e EON) Regularize() BxDF { return e }
