package material

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/rng"
)

// BSSRDFKind selects the spatial-profile model, spec.md §4.5.
type BSSRDFKind int

const (
	DisneyDiffusion BSSRDFKind = iota
	RandomWalk
)

// BSSRDF is Jensen's separable subsurface model: an exit-surface
// Fresnel term Sw, a spatial profile Sp, and a directional/scattering
// term Sr. Sp(r) = Sr(r); Sw is a NormalizedFresnel lobe evaluated at
// the exit vertex.
type BSSRDF struct {
	Kind     BSSRDFKind
	Eta      float64
	SigmaT   core.Spectrum // 1/mean-free-path per channel
	Albedo   core.Spectrum // single-scatter albedo per channel, used by diffusion's two-exponential fit
	G        float64       // Henyey-Greenstein asymmetry, used by the random-walk variant
}

// axisProbabilities is the fixed (0.25, 0.25, 0.5) weighting over the
// three local probe axes, biased toward the shading normal.
var axisProbabilities = [3]float64{0.25, 0.25, 0.5}

// ChooseAxis picks one of {tangent, bitangent, normal} by
// axisProbabilities for probe-based sampling, spec.md §4.5 step 1; the
// channel argument does not affect the choice.
func ChooseAxis(u1 float64, channel int) (axisIndex int) {
	switch {
	case u1 < axisProbabilities[0]:
		return 0
	case u1 < axisProbabilities[0]+axisProbabilities[1]:
		return 1
	default:
		return 2
	}
}

func (b BSSRDF) sigmaTr(channel int) float64 {
	st := b.channel(b.SigmaT, channel)
	alb := b.channel(b.Albedo, channel)
	// diffusion reduced extinction coefficient: sigma_tr = sqrt(3 sigma_a sigma_t')
	sigmaA := st * (1 - alb)
	return math.Sqrt(3 * sigmaA * st)
}

func (b BSSRDF) channel(s core.Spectrum, channel int) float64 {
	switch channel {
	case 0:
		return s.R
	case 1:
		return s.G
	default:
		return s.B
	}
}

// Rmax bounds the profile's support; beyond it Sr is treated as 0.
func (b BSSRDF) Rmax(channel int) float64 {
	tr := b.sigmaTr(channel)
	if tr <= 0 {
		return 0
	}
	return 12 / tr // the two-exponential Disney profile decays well below 1% by 12/sigma_tr
}

// Sr evaluates the radial scattering term for the given channel at
// distance r: a two-exponential fit for DisneyDiffusion, and an actual
// Monte Carlo simulation of a volumetric random walk through a
// homogeneous half-space medium (sigma_t, Albedo, G) for RandomWalk —
// walks free-flight sample with sigma_t, scatter with HG-sampled
// directions weighted by Albedo, and are binned by the planar radius
// at which they re-cross the entry surface, giving an annulus density
// estimate of diffuse reflectance that is numerically distinct from
// the closed-form diffusion profile (noisier, and sensitive to G in a
// way the diffusion fit is not).
func (b BSSRDF) Sr(r float64, channel int) float64 {
	if r <= 0 {
		r = 1e-6
	}
	if b.Kind == RandomWalk {
		return b.randomWalkSr(r, channel)
	}
	d := 1 / math.Max(b.sigmaTr(channel), 1e-6)
	return (math.Exp(-r/d) + math.Exp(-r/(3*d))) / (8 * math.Pi * d * r)
}

const (
	randomWalkTrials   = 128
	randomWalkMaxDepth = 64
	randomWalkBinWidth = 0.25 // fraction of r used as the annulus half-width
	randomWalkRRDepth  = 3
)

// randomWalkSr estimates diffuse reflectance at radius r by simulating
// randomWalkTrials independent photon walks entering the medium at the
// origin along -z, free-flight sampling exponential steps at sigma_t,
// scaling the walk's weight by Albedo at each scatter, and resampling
// direction from the Henyey-Greenstein phase function (asymmetry G)
// at each scatter. A walk that re-crosses z=0 within the annulus
// [r*(1-w), r*(1+w)] contributes its surviving weight, normalized by
// the annulus area; walks that are Russian-rouletted out or exceed
// randomWalkMaxDepth contribute nothing.
func (b BSSRDF) randomWalkSr(r float64, channel int) float64 {
	sigmaT := b.channel(b.SigmaT, channel)
	albedo := b.channel(b.Albedo, channel)
	if sigmaT <= 0 || albedo <= 0 {
		return 0
	}
	lo := math.Max(r*(1-randomWalkBinWidth), 0)
	hi := r * (1 + randomWalkBinWidth)
	if hi <= lo {
		return 0
	}
	annulusArea := math.Pi * (hi*hi - lo*lo)

	seed := uint64(math.Float64bits(r)) ^ uint64(channel+1)<<40 ^ uint64(math.Float64bits(sigmaT))<<8
	stream := rng.NewPCG32(seed, 0xb55d)

	var acc float64
	for i := 0; i < randomWalkTrials; i++ {
		pos := core.Vec3{}
		dir := core.Vec3{X: 0, Y: 0, Z: -1}
		weight := 1.0
		for depth := 0; depth < randomWalkMaxDepth; depth++ {
			step := -math.Log(1-stream.Float64()) / sigmaT
			pos = pos.Add(dir.Multiply(step))
			if pos.Z >= 0 {
				radius := math.Hypot(pos.X, pos.Y)
				if radius >= lo && radius < hi {
					acc += weight
				}
				break
			}
			weight *= albedo
			if depth >= randomWalkRRDepth {
				q := math.Max(0.05, 1-weight)
				if stream.Float64() < q {
					break
				}
				weight /= 1 - q
			}
			dir = sampleHenyeyGreenstein(dir, b.G, stream)
		}
	}
	return acc / float64(randomWalkTrials) / annulusArea
}

// sampleHenyeyGreenstein importance-samples a new travel direction
// from the Henyey-Greenstein phase function centered on dir, the same
// closed-form inversion used by the layered BxDF's medium walk.
func sampleHenyeyGreenstein(dir core.Vec3, g float64, stream *rng.PCG32) core.Vec3 {
	u1, u2 := stream.Float64(), stream.Float64()
	var cosTheta float64
	if math.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u1
	} else {
		sq := (1 - g*g) / (1 + g - 2*g*u1)
		cosTheta = -(1 + g*g - sq*sq) / (2 * g)
	}
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2
	local := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	return core.FrameFromZ(dir).FromLocal(local)
}

// SampleSr samples a radius from the single exponential exp(-r/d),
// d = 1/sigma_tr, the first term of the two-exponential profile, for
// both profile kinds; a radius at or beyond Rmax is rejected.
func (b BSSRDF) SampleSr(channel int, u float64) (r float64, ok bool) {
	d := 1 / math.Max(b.sigmaTr(channel), 1e-6)
	// invert the dominant exponential term; fine for importance sampling
	// purposes even for the two-exponential profile, since the second
	// term only adds a slower-decaying tail.
	if u >= 1 {
		u = 1 - 1e-7
	}
	r = -d * math.Log(1-u)
	if r >= b.Rmax(channel) {
		return 0, false
	}
	return r, true
}

func (b BSSRDF) PDFSr(r float64, channel int) float64 {
	if r <= 0 || r >= b.Rmax(channel) {
		return 0
	}
	d := 1 / math.Max(b.sigmaTr(channel), 1e-6)
	return math.Exp(-r/d) / d / (2 * math.Pi * r)
}

// PDFProbe combines the per-axis/channel Sr PDFs by the balance
// heuristic, spec.md §4.5: "PDF combines the three-axis/wavelength
// strategies by MIS."
func (b BSSRDF) PDFProbe(r float64) float64 {
	sum := 0.0
	for channel := 0; channel < 3; channel++ {
		for axis := 0; axis < 3; axis++ {
			sum += axisProbabilities[axis] * (1.0 / 3.0) * b.PDFSr(r, channel)
		}
	}
	return sum
}

// Sw is the exit-interface Fresnel term as a NormalizedFresnel lobe.
func (b BSSRDF) Sw() bxdf.NormalizedFresnel { return bxdf.NormalizedFresnel{Eta: b.Eta} }

// Sp is the full spatial profile at the measured distance between
// entry and exit points, summed over channels into a Spectrum.
func (b BSSRDF) Sp(distance float64) core.Spectrum {
	return core.NewSpectrum(b.Sr(distance, 0), b.Sr(distance, 1), b.Sr(distance, 2))
}
