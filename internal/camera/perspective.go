package camera

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Perspective is a thin-lens pinhole-generalized camera: rays
// originate on a finite-aperture lens and converge through a pinhole
// focused at FocusDistance, generalizing the teacher's fixed
// origin/horizontal/vertical/lowerLeftCorner construction with depth
// of field.
type Perspective struct {
	Origin                  core.Vec3
	Frame                   core.Frame // Z = forward (into the scene), X = right, Y = up
	ViewportWidth, ViewportHeight float64
	FocusDistance           float64
	LensRadius              float64
	ResX, ResY              int
}

// NewPerspective builds a thin-lens camera from a vertical FOV in
// degrees, aspect ratio resX/resY, an aperture diameter (0 disables
// depth of field: LensRadius is aperture/2), and explicit focus
// distance (<= 0 falls back to the lookFrom-lookAt distance).
func NewPerspective(lookFrom, lookAt, up core.Vec3, vfovDegrees float64, resX, resY int, aperture, focusDistance float64) *Perspective {
	theta := vfovDegrees * math.Pi / 180
	h := math.Tan(theta / 2)
	aspect := float64(resX) / float64(resY)
	viewportHeight := 2 * h
	viewportWidth := aspect * viewportHeight

	forward := lookAt.Subtract(lookFrom).Normalize()
	frame := core.FrameFromXZ(up, forward)

	if focusDistance <= 0 {
		focusDistance = lookAt.Subtract(lookFrom).Length()
	}

	return &Perspective{
		Origin: lookFrom, Frame: frame,
		ViewportWidth: viewportWidth * focusDistance, ViewportHeight: viewportHeight * focusDistance,
		FocusDistance: focusDistance, LensRadius: aperture / 2,
		ResX: resX, ResY: resY,
	}
}

// filmToCameraDir maps a film-space position to the unfocused ray
// direction through the pinhole (before any lens offset).
func (p *Perspective) filmToCameraDir(filmX, filmY float64) core.Vec3 {
	s := filmX/float64(p.ResX) - 0.5
	t := 0.5 - filmY/float64(p.ResY)
	local := core.Vec3{
		X: s * p.ViewportWidth,
		Y: t * p.ViewportHeight,
		Z: p.FocusDistance,
	}
	return p.Frame.FromLocal(local)
}

func (p *Perspective) SampleRay(filmX, filmY float64, lensU core.Vec2) RaySample {
	focalPoint := p.Origin.Add(p.filmToCameraDir(filmX, filmY))
	origin := p.Origin
	if p.LensRadius > 0 {
		disk := core.SampleUniformDiskConcentric(lensU).Multiply(p.LensRadius)
		lensOffset := p.Frame.X.Multiply(disk.X).Add(p.Frame.Y.Multiply(disk.Y))
		origin = origin.Add(lensOffset)
	}
	dir := focalPoint.Subtract(origin).Normalize()
	return RaySample{Ray: core.Ray{Origin: origin, Direction: dir}, Weight: 1}
}

// importanceNormalization makes PDFWe's positional density integrate
// to 1 over the lens disk, and the directional density integrate to 1
// over the solid angle subtended by the film at unit focus distance.
func (p *Perspective) importanceNormalization() float64 {
	area := p.ViewportWidth * p.ViewportHeight / (p.FocusDistance * p.FocusDistance)
	return area
}

func (p *Perspective) PDFWe(ray core.Ray) (pdfPos, pdfDir float64) {
	cosTheta := ray.Direction.Dot(p.Frame.Z)
	if cosTheta <= 0 {
		return 0, 0
	}
	lensArea := math.Pi * p.LensRadius * p.LensRadius
	if lensArea == 0 {
		lensArea = 1
	}
	pdfPos = 1 / lensArea
	pdfDir = 1 / (p.importanceNormalization() * cosTheta * cosTheta * cosTheta)
	return pdfPos, pdfDir
}

func (p *Perspective) SampleWi(refPoint core.Vec3, u core.Vec2) (WiSample, bool) {
	lensOrigin := p.Origin
	if p.LensRadius > 0 {
		disk := core.SampleUniformDiskConcentric(u).Multiply(p.LensRadius)
		lensOrigin = lensOrigin.Add(p.Frame.X.Multiply(disk.X)).Add(p.Frame.Y.Multiply(disk.Y))
	}
	d := lensOrigin.Subtract(refPoint)
	dist := d.Length()
	if dist == 0 {
		return WiSample{}, false
	}
	wi := d.Multiply(-1 / dist)
	cosTheta := wi.Negate().Dot(p.Frame.Z)
	if cosTheta <= 0 {
		return WiSample{}, false
	}

	// project the lens-to-ref ray back into film space
	local := p.Frame.ToLocal(refPoint.Subtract(lensOrigin))
	scaledLocal := local.Multiply(p.FocusDistance / local.Z)
	s := scaledLocal.X/p.ViewportWidth + 0.5
	t := 0.5 - scaledLocal.Y/p.ViewportHeight
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return WiSample{}, false
	}

	lensArea := math.Pi * p.LensRadius * p.LensRadius
	if lensArea == 0 {
		lensArea = 1
	}
	pdf := (dist * dist) / (cosTheta * lensArea)
	pdfDir := 1 / (p.importanceNormalization() * cosTheta * cosTheta * cosTheta)
	we := pdfDir / lensArea

	return WiSample{
		Wi: wi, Distance: dist,
		RasterX: s * float64(p.ResX), RasterY: t * float64(p.ResY),
		PDF: pdf, We: we, OnCamera: true,
	}, true
}
