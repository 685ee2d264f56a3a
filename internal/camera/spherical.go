package camera

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Spherical is a 360-degree equirectangular camera, useful for
// environment-map baking and immersive renders: film X maps to
// longitude, film Y to latitude.
type Spherical struct {
	Origin core.Vec3
	Frame  core.Frame
	ResX, ResY int
}

func NewSpherical(origin core.Vec3, forward, up core.Vec3, resX, resY int) *Spherical {
	return &Spherical{Origin: origin, Frame: core.FrameFromXZ(up, forward.Normalize()), ResX: resX, ResY: resY}
}

func (s *Spherical) SampleRay(filmX, filmY float64, _ core.Vec2) RaySample {
	phi := (filmX/float64(s.ResX))*2*math.Pi - math.Pi
	theta := (filmY / float64(s.ResY)) * math.Pi
	local := core.Vec3{
		X: math.Sin(theta) * math.Sin(phi),
		Y: math.Cos(theta),
		Z: math.Sin(theta) * math.Cos(phi),
	}
	dir := s.Frame.FromLocal(local)
	return RaySample{Ray: core.Ray{Origin: s.Origin, Direction: dir}, Weight: 1}
}

func (s *Spherical) PDFWe(ray core.Ray) (pdfPos, pdfDir float64) {
	local := s.Frame.ToLocal(ray.Direction)
	sinTheta := math.Sqrt(math.Max(0, 1-local.Y*local.Y))
	if sinTheta == 0 {
		return 0, 0
	}
	return 1, 1 / (2 * math.Pi * math.Pi * sinTheta)
}

func (s *Spherical) SampleWi(refPoint core.Vec3, _ core.Vec2) (WiSample, bool) {
	d := refPoint.Subtract(s.Origin)
	dist := d.Length()
	if dist == 0 {
		return WiSample{}, false
	}
	wi := d.Multiply(-1 / dist)
	local := s.Frame.ToLocal(wi.Negate())
	theta := math.Acos(core.Clamp(local.Y, -1, 1))
	phi := math.Atan2(local.X, local.Z)
	x := (phi + math.Pi) / (2 * math.Pi) * float64(s.ResX)
	y := theta / math.Pi * float64(s.ResY)
	_, pdfDir := s.PDFWe(core.Ray{Direction: wi.Negate()})
	if pdfDir == 0 {
		return WiSample{}, false
	}
	pdf := pdfDir / (dist * dist)
	return WiSample{Wi: wi, Distance: dist, RasterX: x, RasterY: y, PDF: pdf, We: pdfDir, OnCamera: true}, true
}
