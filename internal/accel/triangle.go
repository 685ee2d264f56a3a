package accel

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/medium"
)

// Triangle is a single triangle, with optional per-vertex normals/UVs
// for smooth shading and texture lookup.
type Triangle struct {
	P0, P1, P2    core.Vec3
	N0, N1, N2    core.Vec3 // vertex normals, used if HasVertexNormals
	UV0, UV1, UV2 core.Vec2
	HasVertexNormals bool
	Mat              material.Material
	MediumInterface  *medium.Interface
	LightRef         interface{}
}

func (t *Triangle) Bounds() core.AABB {
	return core.NewAABBFromPoints(t.P0, t.P1, t.P2)
}

func (t *Triangle) Area() float64 {
	e1 := t.P1.Subtract(t.P0)
	e2 := t.P2.Subtract(t.P0)
	return 0.5 * e1.Cross(e2).Length()
}

func (t *Triangle) geometricNormal() core.Vec3 {
	e1 := t.P1.Subtract(t.P0)
	e2 := t.P2.Subtract(t.P0)
	return e1.Cross(e2).Normalize()
}

// Hit uses the Möller-Trumbore ray-triangle intersection.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	e1 := t.P1.Subtract(t.P0)
	e2 := t.P2.Subtract(t.P0)
	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < 1e-10 {
		return HitRecord{}, false
	}
	invDet := 1 / det
	tvec := ray.Origin.Subtract(t.P0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return HitRecord{}, false
	}
	qvec := tvec.Cross(e1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return HitRecord{}, false
	}
	tHit := e2.Dot(qvec) * invDet
	if tHit < tMin || tHit > tMax {
		return HitRecord{}, false
	}

	ng := t.geometricNormal()
	frontFace := ray.Direction.Dot(ng) < 0
	if !frontFace {
		ng = ng.Negate()
	}
	shading := ng
	if t.HasVertexNormals {
		w := 1 - u - v
		shading = t.N0.Multiply(w).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v)).Normalize()
		if shading.Dot(ng) < 0 {
			shading = shading.Negate()
		}
	}
	uv := t.UV0.Multiply(1 - u - v).Add(t.UV1.Multiply(u)).Add(t.UV2.Multiply(v))
	tangent := e1.Normalize()

	p := ray.Origin.Add(ray.Direction.Multiply(tHit))
	return HitRecord{
		T: tHit, Point: p, GeometricNormal: ng, ShadingNormal: shading, Tangent: tangent,
		UV: uv, FrontFace: frontFace, Material: t.Mat, Light: t.LightRef, MediumInterface: t.MediumInterface,
	}, true
}

// --- light.AreaSampleable ---

func (t *Triangle) SampleArea(u core.Vec2) (point, normal core.Vec3) {
	b0, b1 := core.SampleUniformTriangle(u)
	b2 := 1 - b0 - b1
	p := t.P0.Multiply(b0).Add(t.P1.Multiply(b1)).Add(t.P2.Multiply(b2))
	return p, t.geometricNormal()
}

func (t *Triangle) PDFArea() float64 {
	a := t.Area()
	if a == 0 {
		return 0
	}
	return 1 / a
}

// SampleAreaFrom uses uniform area sampling and converts to solid
// angle at the call site; triangles have no closed-form solid-angle
// sampler in this implementation (unlike Sphere's cone sampling).
func (t *Triangle) SampleAreaFrom(refPoint core.Vec3, u core.Vec2) (point, normal core.Vec3, pdfArea float64) {
	p, n := t.SampleArea(u)
	return p, n, t.PDFArea()
}

func (t *Triangle) PDFLiDirection(refPoint, wi core.Vec3) float64 {
	hr, ok := t.Hit(core.Ray{Origin: refPoint, Direction: wi}, core.RayEpsilon, math.Inf(1))
	if !ok {
		return 0
	}
	dist2 := hr.Point.Subtract(refPoint).LengthSquared()
	cosAtLight := math.Abs(hr.GeometricNormal.Dot(wi))
	if cosAtLight < 1e-7 {
		return 0
	}
	return t.PDFArea() * dist2 / cosAtLight
}
