// Package integrator implements the rendering algorithms of spec.md
// §4.7: unidirectional and bidirectional path tracing, light tracing,
// stochastic progressive photon mapping, and small reference
// integrators (AO, albedo, naive, random-walk, debug).
package integrator

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/medium"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// rayEpsilon mirrors core.RayEpsilon, kept local for readability where
// this package constructs shadow-ray tMax bounds directly.
const rayEpsilon = core.RayEpsilon

// rrMinBounces is the depth after which Russian roulette may terminate
// a path, spec.md §4.7.1 step 5.
const rrMinBounces = 1

// Integrator computes the radiance arriving along a camera ray. BDPT,
// light tracing and SPPM additionally splat contributions straight
// into the film and are driven by the renderer through their own
// entry points (see bdpt.go, lighttracing.go, sppm.go) since their
// per-iteration structure isn't a simple "one color per camera ray".
//
// vtx is the per-pixel-sample scratch arena (spec.md §3/§5,
// internal/arena.VertexArena): the renderer resets it before each
// call. Only BDPT currently draws from it, for its camera/light
// subpath vertex buffers; every other Li implementation ignores it.
type Integrator interface {
	Li(ray core.Ray, sc *scene.Scene, samp sampler.Sampler, maxDepth int, vtx *arena.VertexArena) core.Spectrum
}

// Film is the minimal splatting target light tracing, BDPT and SPPM
// need to deposit radiance at raster positions other than the pixel
// their own sample was generated for. The renderer package implements
// this against its actual pixel buffer; defining it here (rather than
// importing the renderer) keeps the dependency one-directional.
type Film interface {
	AddSplat(x, y float64, L core.Spectrum)
	Resolution() (width, height int)
}

// spawnRay offsets a new ray's origin along the geometric normal on
// the correct side to avoid immediately re-intersecting its own
// surface, then attaches the medium the path continues through.
func spawnRay(point, normal, dir core.Vec3, currentMedium interface{}) core.Ray {
	r := core.SpawnRay(point, normal, dir)
	r.Medium = currentMedium
	return r
}

// rayMedium unboxes the interface{} stashed on core.Ray back to a
// medium.Medium, returning nil for vacuum.
func rayMedium(m interface{}) medium.Medium {
	if m == nil {
		return nil
	}
	med, _ := m.(medium.Medium)
	return med
}

// powerHeuristic is the beta=2 MIS heuristic variant. Nothing in this
// package calls it: every MIS weight here uses the plain balance
// heuristic per spec.md §4.7.1/§4.7.2.
func powerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f*f+g*g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

func balanceHeuristic(fPdf, gPdf float64) float64 {
	if fPdf+gPdf == 0 {
		return 0
	}
	return fPdf / (fPdf + gPdf)
}

// russianRoulette reports whether the path survives, and rescales beta
// in place when it does.
func russianRoulette(beta *core.Spectrum, etaScale float64, samp sampler.Sampler) bool {
	q := core.Clamp(beta.MaxComponent()*etaScale, 0, 1)
	if q <= 0 {
		return false
	}
	if samp.Next1D() > q {
		return false
	}
	*beta = beta.Scale(1 / q)
	return true
}

// escapedRadiance sums Le from every infinite light for a ray that
// left the scene, weighted by the balance-heuristic MIS term when the
// previous bounce wasn't a specular/first bounce.
func escapedRadiance(sc *scene.Scene, ray core.Ray, prevPDF float64, specularBounce bool) core.Spectrum {
	L := core.SpectrumBlack
	for _, l := range sc.InfiniteLights() {
		leSrc, ok := l.(light.InfiniteLe)
		if !ok {
			continue
		}
		le := leSrc.Le(ray.Direction)
		if le.IsBlack() {
			continue
		}
		if specularBounce {
			L = L.Add(le)
			continue
		}
		lightPDF := l.PDFLi(ray.Origin, ray.Direction) * sc.LightSampler.PMF(l)
		w := balanceHeuristic(prevPDF, lightPDF)
		L = L.Add(le.Scale(w))
	}
	return L
}

// isSpecularFlags reports whether a sampled lobe is a delta
// distribution, used to decide whether NEE MIS applies at all.
func isSpecularFlags(f bxdf.Flags) bool { return f.IsSpecular() }

var _ = math.Pi
