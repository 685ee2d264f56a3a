package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
	"github.com/lumetrace/lumetrace/internal/vertex"
)

// BDPTIntegrator builds a camera subpath and a light subpath and sums
// every (s,t) connection strategy with t >= 2 camera vertices (i.e. at
// least one real vertex beyond the lens on the camera side) and any
// s >= 0 light vertices, spec.md §4.7.2.
// The t=1 strategies -- connecting the light subpath straight back to
// the lens -- can land on any pixel, not just this one, so they are
// not formed here: the renderer runs LightTracingIntegrator's photon
// pass alongside BDPT to cover them (see DESIGN.md).
type BDPTIntegrator struct{}

func (BDPTIntegrator) Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxDepth int, vtx *arena.VertexArena) core.Spectrum {
	if vtx == nil {
		vtx = arena.NewVertexArena()
	}
	vtx.Reset()
	cameraPath := generateCameraSubpath(ray, sc, samp, maxDepth+1, vtx)
	lightPath := generateLightSubpath(sc, samp, maxDepth, vtx)

	L := core.SpectrumBlack
	for ct := 2; ct <= len(cameraPath); ct++ {
		for lt := 0; lt <= len(lightPath); lt++ {
			contrib, ok := connectBDPT(sc, cameraPath, lightPath, ct, lt)
			if ok {
				L = L.Add(contrib)
			}
		}
	}
	return L
}

// generateCameraSubpath traces from the given camera ray, storing one
// vertex per real surface hit (medium-boundary-only primitives are
// passed through without consuming a vertex slot). Index 0 is the
// lens vertex itself.
func generateCameraSubpath(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxVertices int, vtx *arena.VertexArena) []vertex.Vertex {
	path := vtx.Alloc(maxVertices + 1)
	path = append(path, vertex.Vertex{Kind: vertex.Camera, Point: ray.Origin, Normal: ray.Direction, Beta: core.SpectrumWhite, PDFFwd: 1})

	beta := core.SpectrumWhite
	currentRay := ray
	currentMedium := rayMedium(ray.Medium)
	pdfFwdDir := 1.0

	for len(path) <= maxVertices {
		hit, found := sc.Intersect(currentRay, rayEpsilon, math.Inf(1))
		if !found {
			break
		}
		if hit.Material == nil {
			nextMedium := currentMedium
			if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
				nextMedium = hit.MediumInterface.Resolve(currentRay.Direction, hit.GeometricNormal, hit.FrontFace)
			}
			currentRay = spawnRay(hit.Point, hit.GeometricNormal, currentRay.Direction, nextMedium)
			currentMedium = nextMedium
			continue
		}

		si := material.SurfaceInteraction{
			Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
			Tangent: hit.Tangent, Wo: currentRay.Direction.Negate(), UV: hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			break
		}

		prev := path[len(path)-1]
		v := vertex.Vertex{
			Kind: vertex.Surface, Point: hit.Point, Normal: hit.ShadingNormal,
			Wo:     currentRay.Direction.Negate(),
			Beta:   beta,
			PDFFwd: vertex.ConvertDensity(pdfFwdDir, prev, vertex.Vertex{Point: hit.Point, Normal: hit.ShadingNormal, Kind: vertex.Surface}),
			BSDF:   &b,
			Delta:  !b.Flags().IsNonSpecular(),
		}
		if al, isLight := hit.Light.(*light.DiffuseAreaLight); isLight {
			v.Light = al
		}
		path = append(path, v)
		if len(path) > maxVertices {
			break
		}

		wo := currentRay.Direction.Negate()
		bs, sok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToLight, bxdf.SampleAll)
		if !sok {
			break
		}
		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		if beta.IsBlack() {
			break
		}
		pdfFwdDir = bs.PDF

		nextMedium := currentMedium
		if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
			nextMedium = hit.MediumInterface.Resolve(bs.Wi, hit.GeometricNormal, hit.FrontFace)
		}
		currentRay = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, nextMedium)
		currentMedium = nextMedium
	}
	return path
}

// generateLightSubpath mirrors generateCameraSubpath starting from a
// sampled light emission; index 0 is the vertex on the light itself.
func generateLightSubpath(sc *scene.Scene, samp sampler.Sampler, maxVertices int, vtx *arena.VertexArena) []vertex.Vertex {
	sampled, ok := sc.LightSampler.Sample(samp.Next1D())
	if !ok {
		return nil
	}
	le, ok := sampled.Light.SampleLe(samp.Next2D(), samp.Next2D())
	if !ok || le.PDFPos <= 0 || le.PDFDir <= 0 {
		return nil
	}

	path := vtx.Alloc(maxVertices + 1)
	path = append(path, vertex.Vertex{
		Kind: vertex.LightKind, Point: le.Ray.Origin, Normal: le.Normal, Wo: le.Ray.Direction,
		Beta:   le.L.Scale(1 / (le.PDFPos * sampled.PMF)),
		PDFFwd: le.PDFPos * sampled.PMF,
		Light:  sampled.Light,
		Delta:  sampled.Light.IsDelta(),
	})

	cosLight := absDot(le.Normal, le.Ray.Direction)
	beta := path[0].Beta.Scale(cosLight / le.PDFDir)
	currentRay := le.Ray
	currentMedium := rayMedium(currentRay.Medium)
	pdfFwdDir := le.PDFDir

	for len(path) <= maxVertices {
		hit, found := sc.Intersect(currentRay, rayEpsilon, math.Inf(1))
		if !found {
			break
		}
		if hit.Material == nil {
			nextMedium := currentMedium
			if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
				nextMedium = hit.MediumInterface.Resolve(currentRay.Direction, hit.GeometricNormal, hit.FrontFace)
			}
			currentRay = spawnRay(hit.Point, hit.GeometricNormal, currentRay.Direction, nextMedium)
			currentMedium = nextMedium
			continue
		}

		si := material.SurfaceInteraction{
			Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
			Tangent: hit.Tangent, Wo: currentRay.Direction.Negate(), UV: hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			break
		}

		prev := path[len(path)-1]
		v := vertex.Vertex{
			Kind: vertex.Surface, Point: hit.Point, Normal: hit.ShadingNormal,
			Wo:     currentRay.Direction.Negate(),
			Beta:   beta,
			PDFFwd: vertex.ConvertDensity(pdfFwdDir, prev, vertex.Vertex{Point: hit.Point, Normal: hit.ShadingNormal, Kind: vertex.Surface}),
			BSDF:   &b,
			Delta:  !b.Flags().IsNonSpecular(),
		}
		path = append(path, v)
		if len(path) > maxVertices {
			break
		}

		wo := currentRay.Direction.Negate()
		bs, sok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToCamera, bxdf.SampleAll)
		if !sok {
			break
		}
		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		if beta.IsBlack() {
			break
		}
		pdfFwdDir = bs.PDF
		currentRay = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, currentMedium)
	}
	return path
}

// connectBDPT evaluates one (ct, lt) connection strategy (ct camera
// vertices, lt light vertices consumed) and returns its MIS-weighted
// contribution. lt==0 is the "camera path hit a light directly" case;
// otherwise the two subpath endpoints are joined by f_cam*f_light*G
// with an explicit shadow ray.
func connectBDPT(sc *scene.Scene, cameraPath, lightPath []vertex.Vertex, ct, lt int) (core.Spectrum, bool) {
	if ct == 0 || ct > len(cameraPath) || lt > len(lightPath) {
		return core.SpectrumBlack, false
	}
	zCam := cameraPath[ct-1]

	if lt == 0 {
		if zCam.Light == nil {
			return core.SpectrumBlack, false
		}
		al, ok := zCam.Light.(*light.DiffuseAreaLight)
		if !ok {
			return core.SpectrumBlack, false
		}
		le := al.Le(zCam.Normal, zCam.Wo, core.Vec2{})
		if le.IsBlack() {
			return core.SpectrumBlack, false
		}
		contrib := zCam.Beta.Mul(le)
		w := vertex.MISWeight(cameraPath[:ct], nil, ct, 0)
		return contrib.Scale(w), true
	}

	yLight := lightPath[lt-1]
	if !zCam.IsConnectible() || !yLight.IsConnectible() {
		return core.SpectrumBlack, false
	}

	d := yLight.Point.Subtract(zCam.Point)
	dist2 := d.LengthSquared()
	if dist2 == 0 {
		return core.SpectrumBlack, false
	}
	dist := math.Sqrt(dist2)
	wi := d.Multiply(1 / dist)

	fCam := core.SpectrumWhite
	if zCam.BSDF != nil {
		fCam = zCam.BSDF.F(zCam.Wo, wi, bxdf.ToLight)
	}
	if fCam.IsBlack() {
		return core.SpectrumBlack, false
	}

	fLight := core.SpectrumBlack
	if yLight.BSDF != nil {
		fLight = yLight.BSDF.F(yLight.Wo, wi.Negate(), bxdf.ToCamera)
	} else if al, ok := yLight.Light.(*light.DiffuseAreaLight); ok {
		fLight = al.Le(yLight.Normal, wi.Negate(), core.Vec2{})
	}
	if fLight.IsBlack() {
		return core.SpectrumBlack, false
	}

	g := vertex.G(zCam, yLight)
	if g == 0 {
		return core.SpectrumBlack, false
	}

	shadow := core.Ray{Origin: zCam.Point, Direction: wi}
	if sc.IntersectAny(shadow, rayEpsilon, dist*(1-1e-3)) {
		return core.SpectrumBlack, false
	}

	contrib := zCam.Beta.Mul(fCam).Mul(fLight).Mul(yLight.Beta).Scale(g)
	if contrib.IsBlack() {
		return core.SpectrumBlack, false
	}

	camCopy := append([]vertex.Vertex(nil), cameraPath[:ct]...)
	lightCopy := append([]vertex.Vertex(nil), lightPath[:lt]...)
	if zCam.BSDF != nil && ct >= 2 {
		revPDF := zCam.BSDF.PDF(wi, zCam.Wo, bxdf.ToLight, bxdf.SampleAll)
		camCopy[ct-2].PDFRev = vertex.ConvertDensity(revPDF, camCopy[ct-1], camCopy[ct-2])
	}
	if yLight.BSDF != nil && lt >= 2 {
		revPDF := yLight.BSDF.PDF(wi.Negate(), yLight.Wo, bxdf.ToCamera, bxdf.SampleAll)
		lightCopy[lt-2].PDFRev = vertex.ConvertDensity(revPDF, lightCopy[lt-1], lightCopy[lt-2])
	}
	w := vertex.MISWeight(camCopy, lightCopy, ct, lt)
	return contrib.Scale(w), true
}
