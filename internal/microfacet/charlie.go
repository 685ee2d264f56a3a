package microfacet

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/distribution"
)

// Charlie is the sheen microfacet distribution (Estevez & Kulla 2017),
// a flat distribution with an Ashikhmin-fitted masking term. Grounded
// on spec.md §4.1; sampling is tabulated from the marginal because the
// distribution has no closed-form VNDF inversion.
type Charlie struct {
	Alpha float64
}

func NewCharlie(roughness float64) Charlie {
	return Charlie{Alpha: math.Max(1e-3, roughness)}
}

func (d Charlie) EffectivelySmooth() bool { return d.Alpha < 1e-3 }

func (d Charlie) D(wm core.Vec3) float64 {
	cos2Theta := core.Cos2Theta(wm)
	sin2Theta := math.Max(0, 1-cos2Theta)
	if d.Alpha <= 0 {
		return 0
	}
	return (2 + 1/d.Alpha) * math.Pow(sin2Theta, 1/(2*d.Alpha)) / (2 * math.Pi)
}

// ashikhminG1 fits the Smith-style masking term for the Charlie
// distribution (Estevez & Kulla, "Production Friendly Microfacet
// Sheen BRDF").
func (d Charlie) ashikhminG1(w core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(w)
	if cosTheta < 0.5 {
		return (1 - 0.5*cosTheta) / 5
	}
	return 1 / (4*cosTheta + 1)
}

func (d Charlie) G(wo, wi core.Vec3) float64 {
	return 1 / (1 + d.ashikhminG1(wo) + d.ashikhminG1(wi) - 1)
}

// marginalTable tabulates the theta marginal of D(wm) sin(theta) on
// every call (nothing is cached between calls), inverted by
// Distribution1D for sampling
// (spec.md §4.1 allows tabulated sampling for Charlie).
func (d Charlie) marginalTable(n int) *distribution.Distribution1D {
	fn := make([]float64, n)
	for i := 0; i < n; i++ {
		cosTheta := 1 - (float64(i)+0.5)/float64(n)
		sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
		wm := core.Vec3{X: 0, Y: 0, Z: cosTheta}
		fn[i] = d.D(wm) * 2 * math.Pi * sinTheta
	}
	return distribution.NewDistribution1D(fn)
}

// SampleWm draws a microfacet normal from the tabulated marginal in
// theta and a uniform phi (the distribution is isotropic).
func (d Charlie) SampleWm(u core.Vec2) core.Vec3 {
	const n = 64
	tbl := d.marginalTable(n)
	s, _, _ := tbl.SampleContinuous(u.X)
	cosTheta := 1 - s
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y
	return core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
}

func (d Charlie) PDFWm(wm core.Vec3) float64 {
	return d.D(wm) * core.AbsCosTheta(wm)
}
