// Package microfacet implements the normal distribution functions
// (Trowbridge-Reitz/GGX, Charlie sheen) shared by every rough lobe in
// internal/bxdf.
package microfacet

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// TrowbridgeReitz is the anisotropic GGX microfacet distribution,
// grounded on original_source/include/bulbit/bxdfs.h's
// TrowbridgeReitzDistribution and spec.md §4.1.
type TrowbridgeReitz struct {
	AlphaX, AlphaY float64
}

func NewTrowbridgeReitz(alphaX, alphaY float64) TrowbridgeReitz {
	return TrowbridgeReitz{AlphaX: math.Max(1e-4, alphaX), AlphaY: math.Max(1e-4, alphaY)}
}

// RoughnessToAlpha maps a perceptual roughness in [0,1] to the alpha
// parameter used by D/G, via the common squared mapping.
func RoughnessToAlpha(roughness float64) float64 {
	return roughness * roughness
}

func (d TrowbridgeReitz) EffectivelySmooth() bool {
	return math.Max(d.AlphaX, d.AlphaY) < 1e-3
}

func (d TrowbridgeReitz) D(wm core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(wm)
	if math.IsInf(tan2Theta, 1) {
		return 0
	}
	cos4Theta := core.Cos2Theta(wm) * core.Cos2Theta(wm)
	if cos4Theta < 1e-16 {
		return 0
	}
	e := tan2Theta * (core.Sqr(core.CosPhi(wm)/d.AlphaX) + core.Sqr(core.SinPhi(wm)/d.AlphaY))
	return 1 / (math.Pi * d.AlphaX * d.AlphaY * cos4Theta * core.Sqr(1+e))
}

// lambda is the Smith masking-shadowing auxiliary function.
func (d TrowbridgeReitz) lambda(w core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(w)
	if math.IsInf(tan2Theta, 1) {
		return 0
	}
	alpha2 := core.Sqr(core.CosPhi(w)*d.AlphaX) + core.Sqr(core.SinPhi(w)*d.AlphaY)
	return (math.Sqrt(1+alpha2*tan2Theta) - 1) / 2
}

func (d TrowbridgeReitz) G1(w core.Vec3) float64 { return 1 / (1 + d.lambda(w)) }

func (d TrowbridgeReitz) G(wo, wi core.Vec3) float64 {
	return 1 / (1 + d.lambda(wo) + d.lambda(wi))
}

// D_Visible is the visible-normal distribution D(wm) G1(wo) |wo.wm| / |cos(wo)|.
func (d TrowbridgeReitz) DVisible(w, wm core.Vec3) float64 {
	return d.G1(w) / core.AbsCosTheta(w) * d.D(wm) * math.Abs(w.Dot(wm))
}

func (d TrowbridgeReitz) PDF(w, wm core.Vec3) float64 {
	return d.DVisible(w, wm)
}

// SampleWm samples a visible microfacet normal via the
// Dupuy-Benyoub "bounded VNDF" projected-area method: stretch to the
// isotropic configuration, sample within the projected hemisphere
// around the stretched view direction, then unstretch.
func (d TrowbridgeReitz) SampleWm(w core.Vec3, u core.Vec2) core.Vec3 {
	wh := core.Vec3{X: d.AlphaX * w.X, Y: d.AlphaY * w.Y, Z: w.Z}.Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}

	t1 := core.Vec3{X: 0, Y: 0, Z: 1}
	if wh.Z < 0.999 {
		t1 = core.Vec3{X: 0, Y: 0, Z: 1}.Cross(wh).Normalize()
	} else {
		t1 = core.Vec3{X: 1, Y: 0, Z: 0}
	}
	t2 := wh.Cross(t1)

	p := core.SampleUniformDiskConcentric(u)
	h := math.Sqrt(1 - p.X*p.X)
	pY := core.Lerp((1+wh.Z)/2, h, p.Y)

	pz := math.Sqrt(math.Max(0, 1-p.X*p.X-pY*pY))
	nh := t1.Multiply(p.X).Add(t2.Multiply(pY)).Add(wh.Multiply(pz))

	return core.Vec3{
		X: d.AlphaX * nh.X,
		Y: d.AlphaY * nh.Y,
		Z: math.Max(1e-6, nh.Z),
	}.Normalize()
}

// Regularize clamps alpha into [0.1, 0.3] to attenuate fireflies from
// caustic paths sampled deep in a recursive path (spec.md §4.1).
func (d TrowbridgeReitz) Regularize() TrowbridgeReitz {
	clamp := func(a float64) float64 {
		if a < 0.3 {
			return core.Clamp(2*a, 0.1, 0.3)
		}
		return a
	}
	return TrowbridgeReitz{AlphaX: clamp(d.AlphaX), AlphaY: clamp(d.AlphaY)}
}
