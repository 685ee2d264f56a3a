package camera

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Orthographic is a parallel-projection camera: all rays share a
// direction, only the origin varies across the viewport. Constructor
// pinned to (viewportSize, resolutionX, lookFrom, lookAt, up) per the
// cameras.h variant referenced in DESIGN.md's Open Question decision.
type Orthographic struct {
	Origin        core.Vec3
	Frame         core.Frame
	ViewportWidth, ViewportHeight float64
	ResX, ResY    int
}

func NewOrthographic(viewportSize float64, resX int, lookFrom, lookAt, up core.Vec3) *Orthographic {
	resY := resX // square viewport unless caller scales resX/resY externally
	forward := lookAt.Subtract(lookFrom).Normalize()
	frame := core.FrameFromXZ(up, forward)
	return &Orthographic{
		Origin: lookFrom, Frame: frame,
		ViewportWidth: viewportSize, ViewportHeight: viewportSize,
		ResX: resX, ResY: resY,
	}
}

func (o *Orthographic) SampleRay(filmX, filmY float64, _ core.Vec2) RaySample {
	s := filmX/float64(o.ResX) - 0.5
	t := 0.5 - filmY/float64(o.ResY)
	local := core.Vec3{X: s * o.ViewportWidth, Y: t * o.ViewportHeight, Z: 0}
	origin := o.Origin.Add(o.Frame.FromLocal(local))
	return RaySample{Ray: core.Ray{Origin: origin, Direction: o.Frame.Z}, Weight: 1}
}

func (o *Orthographic) PDFWe(ray core.Ray) (pdfPos, pdfDir float64) {
	if ray.Direction.Dot(o.Frame.Z) <= 1-1e-6 {
		return 0, 0
	}
	area := o.ViewportWidth * o.ViewportHeight
	return 1 / area, 1
}

func (o *Orthographic) SampleWi(refPoint core.Vec3, _ core.Vec2) (WiSample, bool) {
	wi := o.Frame.Z.Negate()
	local := o.Frame.ToLocal(refPoint.Subtract(o.Origin))
	s := local.X/o.ViewportWidth + 0.5
	t := 0.5 - local.Y/o.ViewportHeight
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return WiSample{}, false
	}
	area := o.ViewportWidth * o.ViewportHeight
	return WiSample{
		Wi: wi, Distance: math.Abs(local.Z),
		RasterX: s * float64(o.ResX), RasterY: t * float64(o.ResY),
		PDF: 1, We: 1 / area, OnCamera: true,
	}, true
}
