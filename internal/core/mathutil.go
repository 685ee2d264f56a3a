package core

import "math"

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(t, a, b float64) float64 { return a + t*(b-a) }

func Sqr(x float64) float64 { return x * x }

// SafeSqrt avoids NaN from tiny negative floating-point error.
func SafeSqrt(x float64) float64 { return math.Sqrt(math.Max(0, x)) }

// FresnelMoment1 and FresnelMoment2 are polynomial fits to the first
// and second moments of the Fresnel reflectance integral, used by
// NormalizedFresnelBxDF's normalization constant and by the diffusion
// BSSRDF's internal reflectance term. Grounded on
// original_source/include/bulbit/math_util.h.
func FresnelMoment1(eta float64) float64 {
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	eta5 := eta4 * eta
	if eta < 1 {
		return 0.45966 - 1.73965*eta + 3.37668*eta2 - 3.904945*eta3 + 2.49277*eta4 - 0.68441*eta5
	}
	return -4.61686 + 11.1136*eta - 10.4646*eta2 + 5.11455*eta3 - 1.27198*eta4 + 0.12746*eta5
}

func FresnelMoment2(eta float64) float64 {
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	eta5 := eta4 * eta
	if eta < 1 {
		return 0.27614 - 0.87350*eta + 1.12077*eta2 - 0.65095*eta3 + 0.07883*eta4 + 0.04860*eta5
	}
	rEta := 1 / eta
	rEta2 := rEta * rEta
	rEta3 := rEta2 * rEta
	return -547.033 + 45.3087*rEta3 - 218.725*rEta2 + 458.843*rEta + 404.557*eta -
		189.519*eta2 + 54.9327*eta3 - 9.00603*eta4 + 0.63942*eta5
}
