package light

import (
	"github.com/lumetrace/lumetrace/internal/core"
)

// AreaSampleable is implemented by any primitive capable of sampling a
// point on its own surface, the minimal shape contract DiffuseAreaLight
// needs (full ray intersection lives in internal/accel).
type AreaSampleable interface {
	Area() float64
	// SampleArea draws a uniform point+normal on the shape.
	SampleArea(u core.Vec2) (point, normal core.Vec3)
	// SampleAreaFrom draws a point+normal solid-angle-importance-sampled
	// from refPoint, along with the area-measure PDF of that sample.
	SampleAreaFrom(refPoint core.Vec3, u core.Vec2) (point, normal core.Vec3, pdfArea float64)
	// PDFArea is the area-measure PDF of a uniform point sample (1/Area
	// for a uniformly sampled shape).
	PDFArea() float64
	// PDFLiDirection is the solid-angle PDF that SampleAreaFrom would
	// have produced for wi from refPoint (0 if wi misses the shape).
	PDFLiDirection(refPoint, wi core.Vec3) float64
}

// EmissionFunc returns the radiance leaving the surface at uv in
// direction w (already assumed front-facing).
type EmissionFunc func(uv core.Vec2, w core.Vec3) core.Spectrum

// DiffuseAreaLight emits emission(uv) from one or both faces of a shape.
type DiffuseAreaLight struct {
	Shape     AreaSampleable
	Emission  EmissionFunc
	TwoSided  bool
}

func (l *DiffuseAreaLight) IsDelta() bool     { return false }
func (l *DiffuseAreaLight) IsInfinite() bool  { return false }
func (l *DiffuseAreaLight) Preprocess(_ core.Vec3, _ float64) {}

// Le returns the emitted radiance toward w at a shading point with the
// given geometric normal and uv, honoring front_face || two_sided.
func (l *DiffuseAreaLight) Le(normal core.Vec3, w core.Vec3, uv core.Vec2) core.Spectrum {
	frontFace := normal.Dot(w) > 0
	if !frontFace && !l.TwoSided {
		return core.SpectrumBlack
	}
	return l.Emission(uv, w)
}

func (l *DiffuseAreaLight) SampleLi(refPoint core.Vec3, u core.Vec2) (LiSample, bool) {
	point, normal, pdfArea := l.Shape.SampleAreaFrom(refPoint, u)
	wi, dist := directionToward(refPoint, point)
	if dist == 0 {
		return LiSample{}, false
	}
	cosAtLight := normal.Dot(wi.Negate())
	if cosAtLight <= 0 && !l.TwoSided {
		return LiSample{}, false
	}
	pdf := solidAnglePDFFromArea(pdfArea, dist, abs(cosAtLight))
	le := l.Le(normal, wi.Negate(), core.Vec2{})
	if le.IsBlack() || pdf <= 0 {
		return LiSample{}, false
	}
	return LiSample{L: le, Wi: wi, Distance: dist, PDF: pdf}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (l *DiffuseAreaLight) PDFLi(refPoint core.Vec3, wi core.Vec3) float64 {
	return l.Shape.PDFLiDirection(refPoint, wi)
}

func (l *DiffuseAreaLight) SampleLe(u1, u2 core.Vec2) (LeSample, bool) {
	point, normal := l.Shape.SampleArea(u1)
	wLocal := core.SampleCosineHemisphere(u2)
	frame := core.FrameFromZ(normal)
	dir := frame.FromLocal(wLocal)
	pdfDir := core.CosineHemispherePDF(wLocal.Z)
	le := l.Le(normal, dir, core.Vec2{})
	if le.IsBlack() {
		return LeSample{}, false
	}
	return LeSample{
		Ray:    core.SpawnRay(point, normal, dir),
		Normal: normal,
		PDFPos: l.Shape.PDFArea(),
		PDFDir: pdfDir,
		L:      le,
	}, true
}

func (l *DiffuseAreaLight) Phi() core.Spectrum {
	// Phi = pi * Area * average emission (the caller is expected to have
	// a roughly uniform emission texture; a textured emitter would
	// integrate, an extension not required by the closed light set).
	avg := l.Emission(core.Vec2{X: 0.5, Y: 0.5}, core.Vec3{Z: 1})
	area := l.Shape.Area()
	if l.TwoSided {
		area *= 2
	}
	return avg.Scale(3.14159265358979 * area)
}
