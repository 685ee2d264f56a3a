package medium

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// PhaseSample is a sampled in-medium scattering direction.
type PhaseSample struct {
	P   float64
	Wi  core.Vec3
	PDF float64
}

// PhaseFunction governs how light scatters at a medium interaction,
// spec.md §3/§4.9.
type PhaseFunction interface {
	P(wo, wi core.Vec3) float64
	PDF(wo, wi core.Vec3) float64
	SampleP(wo core.Vec3, u core.Vec2) (PhaseSample, bool)
}

// HenyeyGreenstein is the default phase function, asymmetry G in (-1,1):
// G>0 is forward-scattering, G<0 back-scattering, G=0 isotropic.
type HenyeyGreenstein struct {
	G float64
}

func hgPhase(cosTheta, g float64) float64 {
	denom := 1 + g*g + 2*g*cosTheta
	denom = math.Max(denom, 1e-9)
	return (1 - g*g) / (4 * math.Pi * denom * math.Sqrt(denom))
}

// wo and wi both point away from the interaction, so forward
// scattering (light continuing straight on) is wi = -wo, wo.wi = -1;
// hgPhase takes wo.wi, and its 1+g^2+2g*cos denominator is smallest
// there for G>0.
func (h HenyeyGreenstein) P(wo, wi core.Vec3) float64 {
	return hgPhase(wo.Dot(wi), h.G)
}

func (h HenyeyGreenstein) PDF(wo, wi core.Vec3) float64 { return h.P(wo, wi) }

func (h HenyeyGreenstein) SampleP(wo core.Vec3, u core.Vec2) (PhaseSample, bool) {
	g := h.G
	var cosTheta float64
	if math.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u.X
	} else {
		sqrTerm := (1 - g*g) / (1 + g - 2*g*u.X)
		cosTheta = -(1 + g*g - sqrTerm*sqrTerm) / (2 * g)
	}
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y
	frame := core.FrameFromZ(wo)
	localDir := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	wi := frame.FromLocal(localDir)
	p := hgPhase(cosTheta, g)
	return PhaseSample{P: p, Wi: wi, PDF: p}, true
}
