// Package camera implements the camera models of spec.md §4.12:
// perspective (thin-lens), orthographic, and spherical, each exposing
// a forward SampleRay and the reverse SampleWi/PDFWe pair needed for
// light-tracing and BDPT's camera-subpath connections.
package camera

import "github.com/lumetrace/lumetrace/internal/core"

// RaySample is a generated camera ray plus its positional/directional
// importance weight (1 for a pinhole/orthographic camera with no lens).
type RaySample struct {
	Ray    core.Ray
	Weight float64
}

// WiSample is the reverse sample used by light-tracing: given a world
// point, find the direction back to the camera, the raster pixel it
// lands on, and the importance value We.
type WiSample struct {
	Wi        core.Vec3
	Distance  float64
	RasterX   float64
	RasterY   float64
	PDF       float64
	We        float64
	OnCamera  bool
}

// Camera is implemented by every camera model.
type Camera interface {
	// SampleRay generates a ray through film position (x,y) in
	// [0,width]x[0,height], with lens-sample u used for depth of field.
	SampleRay(filmX, filmY float64, lensU core.Vec2) RaySample
	// SampleWi samples a direction from refPoint back toward the
	// camera's lens, for light-tracing connections.
	SampleWi(refPoint core.Vec3, u core.Vec2) (WiSample, bool)
	// PDFWe is the positional/directional importance PDF pair for a
	// ray leaving the camera in direction ray.Direction.
	PDFWe(ray core.Ray) (pdfPos, pdfDir float64)
}
