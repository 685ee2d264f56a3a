package bxdf

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// FresnelDielectric evaluates the unpolarized Fresnel reflectance for
// a dielectric interface with relative index of refraction eta
// (eta = etaTransmitted / etaIncident), cosThetaI measured against the
// interface normal on the incident side.
func FresnelDielectric(cosThetaI, eta float64) float64 {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	if cosThetaI < 0 {
		eta = 1 / eta
		cosThetaI = -cosThetaI
	}
	sin2ThetaI := 1 - cosThetaI*cosThetaI
	sin2ThetaT := sin2ThetaI / (eta * eta)
	if sin2ThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := core.SafeSqrt(1 - sin2ThetaT)

	rParl := (eta*cosThetaI - cosThetaT) / (eta*cosThetaI + cosThetaT)
	rPerp := (cosThetaI - eta*cosThetaT) / (cosThetaI + eta*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FresnelSchlick is the cheap Schlick approximation used by the
// metallic-roughness and principled lobes to interpolate between a
// dielectric F0 and a metal basecolor.
func FresnelSchlick(f0 core.Spectrum, cosTheta float64) core.Spectrum {
	m := core.Clamp(1-cosTheta, 0, 1)
	m2 := m * m
	m5 := m2 * m2 * m
	return f0.Add(core.SpectrumWhite.Sub(f0).Scale(m5))
}

func FresnelSchlickScalar(f0, cosTheta float64) float64 {
	m := core.Clamp(1-cosTheta, 0, 1)
	m2 := m * m
	m5 := m2 * m2 * m
	return f0 + (1-f0)*m5
}

// complexFresnelReflectance evaluates the Fresnel reflectance of a
// conductor with complex index of refraction (eta, k), per-channel.
func complexFresnelReflectance(cosThetaI, eta, k float64) float64 {
	cos2 := cosThetaI * cosThetaI
	sin2 := 1 - cos2
	eta2 := eta * eta
	k2 := k * k

	t0 := eta2 - k2 - sin2
	a2plusb2 := math.Sqrt(math.Max(0, t0*t0+4*eta2*k2))
	t1 := a2plusb2 + cos2
	a := math.Sqrt(math.Max(0, (a2plusb2+t0)/2))
	t2 := 2 * a * cosThetaI
	rs := (t1 - t2) / (t1 + t2)

	t3 := cos2*a2plusb2 + sin2*sin2
	t4 := t2 * sin2
	rp := rs * (t3 - t4) / (t3 + t4)

	return (rs + rp) / 2
}

// ConductorFresnel evaluates the complex-Fresnel conductor reflectance
// per channel from (eta, k) spectra, grounded on
// original_source/include/bulbit/bxdfs.h's FrConductor.
func ConductorFresnel(cosThetaI float64, eta, k core.Spectrum) core.Spectrum {
	cosThetaI = core.Clamp(cosThetaI, 0, 1)
	return core.Spectrum{
		R: complexFresnelReflectance(cosThetaI, eta.R, k.R),
		G: complexFresnelReflectance(cosThetaI, eta.G, k.G),
		B: complexFresnelReflectance(cosThetaI, eta.B, k.B),
	}
}

// SchlickF0FromEta gives the normal-incidence reflectance for a
// dielectric of relative IOR eta, the usual F0 = ((eta-1)/(eta+1))^2.
func SchlickF0FromEta(eta float64) float64 {
	r := (eta - 1) / (eta + 1)
	return r * r
}
