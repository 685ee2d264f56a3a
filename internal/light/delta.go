package light

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
)

// PointLight emits uniformly in all directions from a single point.
type PointLight struct {
	Position core.Vec3
	Intensity core.Spectrum // radiant intensity (W/sr)
}

func (p *PointLight) IsDelta() bool    { return true }
func (p *PointLight) IsInfinite() bool { return false }
func (p *PointLight) Preprocess(_ core.Vec3, _ float64) {}

func (p *PointLight) SampleLi(refPoint core.Vec3, _ core.Vec2) (LiSample, bool) {
	wi, dist := directionToward(refPoint, p.Position)
	if dist == 0 {
		return LiSample{}, false
	}
	return LiSample{L: p.Intensity.Scale(1 / (dist * dist)), Wi: wi, Distance: dist, PDF: 1}, true
}

func (p *PointLight) PDFLi(_ core.Vec3, _ core.Vec3) float64 { return 0 }

func (p *PointLight) SampleLe(u1, u2 core.Vec2) (LeSample, bool) {
	dir := core.SampleUniformSphere(u2)
	return LeSample{
		Ray:    core.Ray{Origin: p.Position, Direction: dir},
		Normal: dir,
		PDFPos: 1,
		PDFDir: core.UniformSpherePDF(),
		L:      p.Intensity,
	}, true
}

func (p *PointLight) Phi() core.Spectrum { return p.Intensity.Scale(4 * math.Pi) }

// SpotLight emits within a cone of cosFalloffStart..cosFalloffEnd,
// smoothly attenuated between them (standard spot falloff).
type SpotLight struct {
	Position, Direction        core.Vec3
	Intensity                  core.Spectrum
	CosFalloffStart, CosFalloffEnd float64
}

func (s *SpotLight) IsDelta() bool    { return true }
func (s *SpotLight) IsInfinite() bool { return false }
func (s *SpotLight) Preprocess(_ core.Vec3, _ float64) {}

func (s *SpotLight) falloff(w core.Vec3) float64 {
	cosTheta := s.Direction.Dot(w)
	if cosTheta >= s.CosFalloffStart {
		return 1
	}
	if cosTheta <= s.CosFalloffEnd {
		return 0
	}
	delta := (cosTheta - s.CosFalloffEnd) / (s.CosFalloffStart - s.CosFalloffEnd)
	return delta * delta * delta * delta
}

func (s *SpotLight) SampleLi(refPoint core.Vec3, _ core.Vec2) (LiSample, bool) {
	wi, dist := directionToward(refPoint, s.Position)
	if dist == 0 {
		return LiSample{}, false
	}
	att := s.falloff(wi.Negate())
	if att == 0 {
		return LiSample{}, false
	}
	return LiSample{L: s.Intensity.Scale(att / (dist * dist)), Wi: wi, Distance: dist, PDF: 1}, true
}

func (s *SpotLight) PDFLi(_ core.Vec3, _ core.Vec3) float64 { return 0 }

func (s *SpotLight) SampleLe(u1, u2 core.Vec2) (LeSample, bool) {
	cosThetaMax := s.CosFalloffEnd
	frame := core.FrameFromZ(s.Direction)
	wLocal := core.SampleUniformCone(u2, cosThetaMax)
	dir := frame.FromLocal(wLocal)
	return LeSample{
		Ray:    core.Ray{Origin: s.Position, Direction: dir},
		Normal: dir,
		PDFPos: 1,
		PDFDir: core.UniformConePDF(cosThetaMax),
		L:      s.Intensity.Scale(s.falloff(dir)),
	}, true
}

func (s *SpotLight) Phi() core.Spectrum {
	cosFalloffMid := (s.CosFalloffStart + s.CosFalloffEnd) / 2
	return s.Intensity.Scale(2 * math.Pi * ((1 - s.CosFalloffStart) + (s.CosFalloffStart-s.CosFalloffEnd)*cosFalloffMid))
}

// DirectionalLight emits parallel rays from "infinitely far away" along
// Direction, with a finite footprint once the world radius is known
// (set via Preprocess).
type DirectionalLight struct {
	Direction   core.Vec3
	Irradiance  core.Spectrum
	worldCenter core.Vec3
	worldRadius float64
}

func (d *DirectionalLight) IsDelta() bool    { return true }
func (d *DirectionalLight) IsInfinite() bool { return false }

func (d *DirectionalLight) Preprocess(worldCenter core.Vec3, worldRadius float64) {
	d.worldCenter, d.worldRadius = worldCenter, worldRadius
}

func (d *DirectionalLight) SampleLi(refPoint core.Vec3, _ core.Vec2) (LiSample, bool) {
	wi := d.Direction.Negate()
	return LiSample{L: d.Irradiance, Wi: wi, Distance: 2 * d.worldRadius, PDF: 1}, true
}

func (d *DirectionalLight) PDFLi(_ core.Vec3, _ core.Vec3) float64 { return 0 }

func (d *DirectionalLight) SampleLe(u1, u2 core.Vec2) (LeSample, bool) {
	diskPoint := core.SampleUniformDiskConcentric(u1)
	frame := core.FrameFromZ(d.Direction)
	origin := d.worldCenter.
		Add(frame.X.Multiply(diskPoint.X * d.worldRadius)).
		Add(frame.Y.Multiply(diskPoint.Y * d.worldRadius)).
		Subtract(d.Direction.Multiply(d.worldRadius))
	area := math.Pi * d.worldRadius * d.worldRadius
	if area == 0 {
		area = 1
	}
	return LeSample{
		Ray:    core.Ray{Origin: origin, Direction: d.Direction},
		Normal: d.Direction,
		PDFPos: 1 / area,
		PDFDir: 1,
		L:      d.Irradiance,
	}, true
}

func (d *DirectionalLight) Phi() core.Spectrum {
	area := math.Pi * d.worldRadius * d.worldRadius
	return d.Irradiance.Scale(area)
}
