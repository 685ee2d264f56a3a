// Package light implements the light taxonomy of spec.md §4.6: area,
// delta (point/spot/directional), and infinite (uniform/image) lights,
// plus a LightSampler selecting among them uniformly or by power.
package light

import (
	"github.com/lumetrace/lumetrace/internal/core"
)

// LiSample is the result of sampling a light for direct lighting (NEE)
// toward a reference point.
type LiSample struct {
	L        core.Spectrum
	Wi       core.Vec3
	Distance float64
	PDF      float64 // area->solid-angle converted PDF; 0 for failed samples
}

// LeSample is the result of sampling emission for light-tracing: a ray
// leaving the light plus the forward spatial/directional PDFs.
type LeSample struct {
	Ray      core.Ray
	Normal   core.Vec3
	PDFPos   float64
	PDFDir   float64
	L        core.Spectrum
}

// Light is implemented by every emitter kind.
type Light interface {
	// SampleLi samples a direction from refPoint toward the light.
	SampleLi(refPoint core.Vec3, u core.Vec2) (LiSample, bool)
	// PDFLi is the solid-angle PDF of SampleLi for wi from refPoint; 0
	// for delta lights.
	PDFLi(refPoint core.Vec3, wi core.Vec3) float64
	// SampleLe samples an emitted ray for light-tracing/BDPT.
	SampleLe(u1, u2 core.Vec2) (LeSample, bool)
	// Phi is the total emitted power, used by the power light sampler.
	Phi() core.Spectrum
	// IsDelta reports whether the light has zero measure (point/spot/directional).
	IsDelta() bool
	// IsInfinite reports whether the light has no finite position (infinite lights).
	IsInfinite() bool
	// Preprocess is called once the scene's world bounding sphere is known;
	// infinite lights need it to convert a constant radiance into finite power.
	Preprocess(worldCenter core.Vec3, worldRadius float64)
}

// directionToward builds a normalized direction and distance from a
// reference point to a light-space point.
func directionToward(from, to core.Vec3) (wi core.Vec3, dist float64) {
	d := to.Subtract(from)
	dist = d.Length()
	if dist == 0 {
		return core.Vec3{}, 0
	}
	return d.Multiply(1 / dist), dist
}

// solidAnglePDFFromArea converts an area-measure PDF to solid angle
// given the distance and the cosine of the angle between the light's
// normal and the direction back to the reference point.
func solidAnglePDFFromArea(areaPDF, distance, cosAtLight float64) float64 {
	if cosAtLight <= 0 || distance == 0 {
		return 0
	}
	return areaPDF * distance * distance / cosAtLight
}
