package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// DebugChannel selects what DebugIntegrator visualizes.
type DebugChannel int

const (
	DebugShadingNormal DebugChannel = iota
	DebugGeometricNormal
	DebugUV
)

// DebugIntegrator exposes shading normals/UVs for inspection, spec.md
// §4.7.5, mapping [-1,1] components to [0,1] color so the result is
// displayable.
type DebugIntegrator struct {
	Channel DebugChannel
}

func (d DebugIntegrator) Li(ray core.Ray, sc *scene.Scene, _ sampler.Sampler, _ int, _ *arena.VertexArena) core.Spectrum {
	hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
	if !found {
		return core.SpectrumBlack
	}

	switch d.Channel {
	case DebugUV:
		return core.NewSpectrum(hit.UV.X, hit.UV.Y, 0)
	case DebugGeometricNormal:
		return normalToColor(hit.GeometricNormal)
	default:
		return normalToColor(hit.ShadingNormal)
	}
}

func normalToColor(n core.Vec3) core.Spectrum {
	return core.NewSpectrum((n.X+1)/2, (n.Y+1)/2, (n.Z+1)/2)
}
