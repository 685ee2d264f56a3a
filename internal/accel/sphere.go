package accel

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/medium"
)

// Sphere is a simple analytic shape, also usable as an area light via
// light.AreaSampleable.
type Sphere struct {
	Center          core.Vec3
	Radius          float64
	Mat             material.Material
	MediumInterface *medium.Interface
	LightRef        interface{}
}

func (s *Sphere) Bounds() core.AABB {
	r := core.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

func (s *Sphere) Area() float64 { return 4 * math.Pi * s.Radius * s.Radius }

func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return HitRecord{}, false
	}
	sqrtD := math.Sqrt(disc)
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return HitRecord{}, false
		}
	}
	p := ray.Origin.Add(ray.Direction.Multiply(root))
	outward := p.Subtract(s.Center).Multiply(1 / s.Radius)
	frontFace := ray.Direction.Dot(outward) < 0
	n := outward
	if !frontFace {
		n = outward.Negate()
	}
	theta := math.Acos(core.Clamp(outward.Y, -1, 1))
	phi := math.Atan2(outward.Z, outward.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	tangent := core.Vec3{X: -math.Sin(phi), Y: 0, Z: math.Cos(phi)}
	return HitRecord{
		T: root, Point: p, GeometricNormal: n, ShadingNormal: n, Tangent: tangent,
		UV: core.Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}, FrontFace: frontFace,
		Material: s.Mat, Light: s.LightRef, MediumInterface: s.MediumInterface,
	}, true
}

// --- light.AreaSampleable ---

func (s *Sphere) SampleArea(u core.Vec2) (point, normal core.Vec3) {
	n := core.SampleUniformSphere(u)
	return s.Center.Add(n.Multiply(s.Radius)), n
}

func (s *Sphere) PDFArea() float64 { return 1 / s.Area() }

// SampleAreaFrom uses uniform-cone sampling of the visible cap when
// outside the sphere, falling back to full-sphere sampling when the
// reference point is inside it.
func (s *Sphere) SampleAreaFrom(refPoint core.Vec3, u core.Vec2) (point, normal core.Vec3, pdfArea float64) {
	d := s.Center.Subtract(refPoint)
	dist2 := d.LengthSquared()
	if dist2 <= s.Radius*s.Radius {
		p, n := s.SampleArea(u)
		return p, n, s.PDFArea()
	}
	dist := math.Sqrt(dist2)
	cosThetaMax := math.Sqrt(math.Max(0, 1-s.Radius*s.Radius/dist2))
	frame := core.FrameFromZ(d.Multiply(1 / dist))
	wLocal := core.SampleUniformCone(u, cosThetaMax)
	wi := frame.FromLocal(wLocal)

	// project the cone sample onto the sphere surface
	ds := dist*wLocal.Z - math.Sqrt(math.Max(0, s.Radius*s.Radius-dist2*(1-wLocal.Z*wLocal.Z)))
	p := refPoint.Add(wi.Multiply(ds))
	n := p.Subtract(s.Center).Multiply(1 / s.Radius)

	solidAnglePDF := core.UniformConePDF(cosThetaMax)
	cosAtLight := math.Abs(n.Dot(wi.Negate()))
	if cosAtLight < 1e-7 {
		return p, n, 0
	}
	// convert solid-angle PDF to area measure for the caller's uniform
	// solidAnglePDFFromArea conversion.
	pdfArea = solidAnglePDF * cosAtLight / ds / ds
	return p, n, pdfArea
}

func (s *Sphere) PDFLiDirection(refPoint, wi core.Vec3) float64 {
	d := s.Center.Subtract(refPoint)
	dist2 := d.LengthSquared()
	if dist2 <= s.Radius*s.Radius {
		return s.PDFArea()
	}
	cosThetaMax := math.Sqrt(math.Max(0, 1-s.Radius*s.Radius/dist2))
	return core.UniformConePDF(cosThetaMax)
}
