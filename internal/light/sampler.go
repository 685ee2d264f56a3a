package light

import "github.com/lumetrace/lumetrace/internal/distribution"

// SampledLight is a light chosen by a LightSampler along with the
// probability of that choice.
type SampledLight struct {
	Light Light
	PMF   float64
}

// LightSampler selects one light among the scene's lights for NEE,
// spec.md §4.6: "uniform probability or by power."
type LightSampler interface {
	Sample(u float64) (SampledLight, bool)
	PMF(l Light) float64
}

// UniformLightSampler gives every light equal selection probability.
type UniformLightSampler struct {
	Lights []Light
}

func (s *UniformLightSampler) Sample(u float64) (SampledLight, bool) {
	if len(s.Lights) == 0 {
		return SampledLight{}, false
	}
	idx := int(u * float64(len(s.Lights)))
	if idx >= len(s.Lights) {
		idx = len(s.Lights) - 1
	}
	return SampledLight{Light: s.Lights[idx], PMF: 1 / float64(len(s.Lights))}, true
}

func (s *UniformLightSampler) PMF(_ Light) float64 {
	if len(s.Lights) == 0 {
		return 0
	}
	return 1 / float64(len(s.Lights))
}

// PowerLightSampler weights each light by its Phi().Luminance(), spec.md
// §4.6: "builds a Distribution1D over Phi = light.phi().luminance()."
type PowerLightSampler struct {
	Lights []Light
	dist   *distribution.Distribution1D
}

// NewPowerLightSampler builds the power-weighted selection distribution.
// Lights must already have had Preprocess called (infinite lights need
// the world radius to report a finite Phi).
func NewPowerLightSampler(lights []Light) *PowerLightSampler {
	phi := make([]float64, len(lights))
	for i, l := range lights {
		phi[i] = l.Phi().Luminance()
	}
	return &PowerLightSampler{Lights: lights, dist: distribution.NewDistribution1D(phi)}
}

func (s *PowerLightSampler) Sample(u float64) (SampledLight, bool) {
	if len(s.Lights) == 0 {
		return SampledLight{}, false
	}
	idx, pdf := s.dist.SampleDiscrete(u)
	if pdf <= 0 {
		return SampledLight{}, false
	}
	return SampledLight{Light: s.Lights[idx], PMF: pdf}, true
}

func (s *PowerLightSampler) PMF(target Light) float64 {
	for i, l := range s.Lights {
		if l == target {
			return s.dist.DiscretePDF(i)
		}
	}
	return 0
}
