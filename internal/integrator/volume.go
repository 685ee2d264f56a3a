package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/medium"
	"github.com/lumetrace/lumetrace/internal/sampler"
)

// mediumEvent reports what a majorant-tracking walk over one ray
// segment produced.
type mediumEvent int

const (
	mediumEventNone      mediumEvent = iota // reached tMax without a real collision
	mediumEventAbsorbed                     // the path terminates here
	mediumEventScattered                    // a real scattering vertex, continue with the phase function
)

// mediumInteraction is the scattering vertex produced by a
// mediumEventScattered result.
type mediumInteraction struct {
	Point core.Vec3
	Wo    core.Vec3
	Phase medium.PhaseFunction
}

// sampleMediumSegment walks m's majorant decomposition of the ray over
// [0, tMax] by delta tracking, spec.md §4.7.1 step 1's "null-scattering
// with the medium's majorant iterator": beta is updated in place by
// each null-collision's ratio weight, L accumulates any absorbed
// emission, and the returned event tells the caller whether to treat
// this as a medium-scattering vertex, fall through to the surface hit
// at tMax, or stop.
func sampleMediumSegment(m medium.Medium, ray core.Ray, tMax float64, beta, L *core.Spectrum, samp sampler.Sampler) (mediumEvent, mediumInteraction) {
	it := m.SampleRay(tMax)
	for {
		seg, ok := it.Next()
		if !ok {
			return mediumEventNone, mediumInteraction{}
		}
		sigmaMaj := seg.SigmaMaj.MaxComponent()
		if sigmaMaj <= 0 {
			continue
		}
		t := seg.TMin
		for {
			t -= math.Log(1-samp.Next1D()) / sigmaMaj
			if t >= seg.TMax {
				break
			}
			point := ray.Origin.Add(ray.Direction.Multiply(t))
			s := m.SamplePoint(point)
			sigmaT := s.SigmaA.Add(s.SigmaS)
			pAbsorb := s.SigmaA.MaxComponent() / sigmaMaj
			pScatter := s.SigmaS.MaxComponent() / sigmaMaj
			u := samp.Next1D()
			switch {
			case u < pAbsorb:
				if !s.Le.IsBlack() && pAbsorb > 0 {
					*L = L.Add(beta.Mul(s.SigmaA).Mul(s.Le).Scale(1 / (sigmaMaj * pAbsorb)))
				}
				*beta = core.SpectrumBlack
				return mediumEventAbsorbed, mediumInteraction{}
			case u < pAbsorb+pScatter:
				*beta = beta.Mul(s.SigmaS).Scale(1 / (sigmaMaj * pScatter))
				return mediumEventScattered, mediumInteraction{Point: point, Wo: ray.Direction.Negate(), Phase: s.Phase}
			default:
				pNull := math.Max(1-pAbsorb-pScatter, 1e-6)
				sigmaN := core.Splat(sigmaMaj).Sub(sigmaT)
				*beta = beta.Mul(sigmaN).Scale(1 / (sigmaMaj * pNull))
			}
			if beta.IsBlack() {
				return mediumEventAbsorbed, mediumInteraction{}
			}
		}
	}
}
