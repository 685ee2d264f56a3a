// Package film implements the tile-based pixel accumulator of spec.md
// §4.11: box/tent/gaussian reconstruction filters and a splat bucket
// for light-tracing contributions.
package film

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Filter reconstructs a pixel's radiance from nearby samples: how much
// weight a sample at `offset` (in pixels, from the pixel center)
// contributes.
type Filter interface {
	Evaluate(offset core.Vec2) float64
	Radius() core.Vec2
}

// Box is a unit-weight filter over [-r,r]^2.
type Box struct{ R float64 }

func (b Box) Radius() core.Vec2 { return core.Vec2{X: b.R, Y: b.R} }
func (b Box) Evaluate(offset core.Vec2) float64 {
	if math.Abs(offset.X) > b.R || math.Abs(offset.Y) > b.R {
		return 0
	}
	return 1
}

// Tent is a triangular (bilinear) filter.
type Tent struct{ R float64 }

func (t Tent) Radius() core.Vec2 { return core.Vec2{X: t.R, Y: t.R} }
func (t Tent) Evaluate(offset core.Vec2) float64 {
	fx := math.Max(0, t.R-math.Abs(offset.X))
	fy := math.Max(0, t.R-math.Abs(offset.Y))
	return fx * fy
}

// Gaussian is a truncated Gaussian filter with the usual
// edge-subtraction so it reaches exactly zero at the radius.
type Gaussian struct {
	R     float64
	Sigma float64
}

func (g Gaussian) Radius() core.Vec2 { return core.Vec2{X: g.R, Y: g.R} }

func (g Gaussian) gaussian1D(d float64) float64 {
	edge := math.Exp(-d * d / (2 * g.Sigma * g.Sigma))
	return edge
}

func (g Gaussian) Evaluate(offset core.Vec2) float64 {
	if math.Abs(offset.X) > g.R || math.Abs(offset.Y) > g.R {
		return 0
	}
	edgeVal := g.gaussian1D(g.R)
	fx := math.Max(0, g.gaussian1D(offset.X)-edgeVal)
	fy := math.Max(0, g.gaussian1D(offset.Y)-edgeVal)
	return fx * fy
}
