package integrator

import (
	"math"
	"sync"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// sppmAlpha is the per-iteration radius-shrink factor of spec.md
// §4.7.3's r' = r*sqrt((N+alpha)/(N+1)).
const sppmAlpha = 2.0 / 3.0

// SPPMPixel is one image pixel's persistent stochastic progressive
// photon mapping state, kept alive by the renderer across iterations.
// Valid is false whenever the eye pass for the current iteration never
// found a diffuse vertex to store (the ray escaped, or every bounce
// was specular) -- such a pixel receives no indirect contribution this
// iteration but keeps its radius and Tau from before.
type SPPMPixel struct {
	mu sync.Mutex

	Point, Normal, Wo core.Vec3
	BSDF              *bsdf.BSDF
	Beta              core.Spectrum
	Valid             bool

	Radius float64
	N      float64 // iterations this pixel has accumulated photons over
	Tau    core.Spectrum

	Ld core.Spectrum // direct + emitted radiance collected on the eye pass this iteration

	photonTau core.Spectrum // flux deposited by the current iteration's photon pass
	photonHit bool
}

// NewSPPMPixel seeds a pixel with the integrator's initial search radius.
func NewSPPMPixel(initialRadius float64) *SPPMPixel {
	return &SPPMPixel{Radius: initialRadius}
}

// SPPMIntegrator implements the progressive photon-mapping algorithm of
// spec.md §4.7.3. Unlike the other integrators it has no meaningful
// per-ray Li: a visible point must first be gathered across the whole
// image, then a photon pass deposits flux into every pixel whose
// search disc it lands in. Each iteration, the renderer calls
// TraceEyePath once per pixel and then TracePhoton once per photon,
// the same split already used by LightTracingIntegrator's TracePhoton.
type SPPMIntegrator struct{}

func (SPPMIntegrator) Li(core.Ray, *scene.Scene, sampler.Sampler, int, *arena.VertexArena) core.Spectrum {
	return core.SpectrumBlack
}

// TraceEyePath walks the camera ray to the first non-specular vertex,
// accumulating emitted radiance and one NEE sample at that vertex into
// pixel.Ld, and records the vertex itself as the visible point for the
// photon pass. Specular bounces are followed through (mirrors,
// dielectrics) since SPPM cannot deposit photons on a delta BSDF.
func (SPPMIntegrator) TraceEyePath(sc *scene.Scene, ray core.Ray, samp sampler.Sampler, maxDepth int, pixel *SPPMPixel) {
	pixel.Valid = false
	pixel.Ld = core.SpectrumBlack
	beta := core.SpectrumWhite
	currentRay := ray
	currentMedium := rayMedium(ray.Medium)

	for depth := 0; depth < maxDepth; depth++ {
		hit, found := sc.Intersect(currentRay, rayEpsilon, math.Inf(1))
		if !found {
			pixel.Ld = pixel.Ld.Add(beta.Mul(escapedRadiance(sc, currentRay, 0, true)))
			return
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

		if al, isLight := hit.Light.(lightEmitter); isLight {
			pixel.Ld = pixel.Ld.Add(beta.Mul(al.Le(hit.ShadingNormal, currentRay.Direction.Negate(), hit.UV)))
		}

		si := material.SurfaceInteraction{
			Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
			Tangent: hit.Tangent, Wo: currentRay.Direction.Negate(), UV: hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			return
		}
		wo := currentRay.Direction.Negate()

		if b.Flags().IsNonSpecular() {
			pixel.Ld = pixel.Ld.Add(beta.Mul(sampleDirectLightingSurface(sc, hit.Point, hit.ShadingNormal, b, wo, currentMedium, samp)))
			pixel.Point, pixel.Normal, pixel.Wo = hit.Point, hit.ShadingNormal, wo
			pixel.BSDF = &b
			pixel.Beta = beta
			pixel.Valid = true
			return
		}

		bs, sok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToLight, bxdf.SampleAll)
		if !sok {
			return
		}
		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		if beta.IsBlack() {
			return
		}
		nextMedium := currentMedium
		if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
			nextMedium = hit.MediumInterface.Resolve(bs.Wi, hit.GeometricNormal, hit.FrontFace)
		}
		currentRay = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, nextMedium)
		currentMedium = nextMedium
	}
}

// lightEmitter is the narrow capability SPPM needs from a hit's area
// light; matches the *light.DiffuseAreaLight method used elsewhere in
// this package without importing the light package just for the type
// assertion target.
type lightEmitter interface {
	Le(normal, wo core.Vec3, uv core.Vec2) core.Spectrum
}

// TracePhoton traces one photon from a sampled light and deposits its
// flux into every visible point whose search disc contains a surface
// hit, spec.md §4.7.3's photon pass.
func (SPPMIntegrator) TracePhoton(sc *scene.Scene, samp sampler.Sampler, maxDepth int, grid *SPPMGrid) {
	sampled, ok := sc.LightSampler.Sample(samp.Next1D())
	if !ok {
		return
	}
	le, ok := sampled.Light.SampleLe(samp.Next2D(), samp.Next2D())
	if !ok || le.PDFPos <= 0 || le.PDFDir <= 0 {
		return
	}
	cosLight := absDot(le.Normal, le.Ray.Direction)
	if cosLight == 0 {
		return
	}
	beta := le.L.Scale(cosLight / (le.PDFPos * le.PDFDir * sampled.PMF))
	ray := le.Ray
	currentMedium := rayMedium(ray.Medium)

	for depth := 0; depth < maxDepth; depth++ {
		hit, found := sc.Intersect(ray, rayEpsilon, math.Inf(1))
		if !found {
			return
		}
		if hit.Material == nil {
			nextMedium := currentMedium
			if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
				nextMedium = hit.MediumInterface.Resolve(ray.Direction, hit.GeometricNormal, hit.FrontFace)
			}
			ray = spawnRay(hit.Point, hit.GeometricNormal, ray.Direction, nextMedium)
			currentMedium = nextMedium
			continue
		}

		si := material.SurfaceInteraction{
			Point: hit.Point, GeometricNormal: hit.GeometricNormal, ShadingNormal: hit.ShadingNormal,
			Tangent: hit.Tangent, Wo: ray.Direction.Negate(), UV: hit.UV,
		}
		b, ok := hit.Material.Sample(si, samp.Next1D())
		if !ok {
			return
		}
		wo := ray.Direction.Negate()

		if b.Flags().IsNonSpecular() {
			grid.Deposit(hit.Point, wo, b, beta)
		}

		if depth+1 >= maxDepth {
			return
		}
		bs, sok := b.SampleF(wo, samp.Next1D(), samp.Next2D(), bxdf.ToCamera, bxdf.SampleAll)
		if !sok {
			return
		}
		cosTheta := absDot(bs.Wi, hit.ShadingNormal)
		beta = beta.Mul(bs.F).Scale(cosTheta / bs.PDF)
		if beta.IsBlack() {
			return
		}
		if depth > rrMinBounces && !russianRoulette(&beta, 1, samp) {
			return
		}
		nextMedium := currentMedium
		if hit.MediumInterface != nil && hit.MediumInterface.IsTransition() {
			nextMedium = hit.MediumInterface.Resolve(bs.Wi, hit.GeometricNormal, hit.FrontFace)
		}
		ray = spawnRay(hit.Point, hit.GeometricNormal, bs.Wi, nextMedium)
		currentMedium = nextMedium
	}
}

// SPPMGrid hashes SPPMPixel visible points into cells sized to the
// largest current search radius, so a photon only has to test the
// handful of pixels sharing its cell instead of the whole image.
type SPPMGrid struct {
	cellSize float64
	mu       sync.RWMutex
	cells    map[[3]int64][]*SPPMPixel
}

// NewSPPMGrid buckets every valid pixel by its search disc. Call this
// once per iteration after the eye pass, before the photon pass.
func NewSPPMGrid(pixels []*SPPMPixel) *SPPMGrid {
	maxRadius := 0.0
	for _, p := range pixels {
		if p.Valid && p.Radius > maxRadius {
			maxRadius = p.Radius
		}
	}
	if maxRadius <= 0 {
		maxRadius = 1
	}
	g := &SPPMGrid{cellSize: 2 * maxRadius, cells: make(map[[3]int64][]*SPPMPixel)}
	for _, p := range pixels {
		p.photonTau = core.SpectrumBlack
		p.photonHit = false
		if !p.Valid {
			continue
		}
		lo := g.cellKey(p.Point.Subtract(core.Vec3{X: p.Radius, Y: p.Radius, Z: p.Radius}))
		hi := g.cellKey(p.Point.Add(core.Vec3{X: p.Radius, Y: p.Radius, Z: p.Radius}))
		for x := lo[0]; x <= hi[0]; x++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for z := lo[2]; z <= hi[2]; z++ {
					key := [3]int64{x, y, z}
					g.cells[key] = append(g.cells[key], p)
				}
			}
		}
	}
	return g
}

func (g *SPPMGrid) cellKey(p core.Vec3) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / g.cellSize)),
		int64(math.Floor(p.Y / g.cellSize)),
		int64(math.Floor(p.Z / g.cellSize)),
	}
}

// Deposit adds a photon's flux contribution to every visible point
// within its search radius of point.
func (g *SPPMGrid) Deposit(point, wo core.Vec3, photonBSDF bsdf.BSDF, photonBeta core.Spectrum) {
	key := g.cellKey(point)
	g.mu.RLock()
	bucket := g.cells[key]
	g.mu.RUnlock()

	for _, p := range bucket {
		if p.Point.Subtract(point).LengthSquared() > p.Radius*p.Radius {
			continue
		}
		if p.BSDF == nil {
			continue
		}
		f := p.BSDF.F(p.Wo, wo, bxdf.ToLight)
		if f.IsBlack() {
			continue
		}
		contribution := p.Beta.Mul(f).Mul(photonBeta)
		p.mu.Lock()
		p.photonTau = p.photonTau.Add(contribution)
		p.photonHit = true
		p.mu.Unlock()
	}
}

// UpdateRadii applies spec.md §4.7.3's radius shrink to every pixel
// that received at least one photon this iteration, and folds the
// iteration's flux into Tau scaled consistently with the new, smaller
// radius. Call once per iteration after the photon pass completes.
func UpdateRadii(pixels []*SPPMPixel) {
	for _, p := range pixels {
		if !p.Valid || !p.photonHit {
			continue
		}
		newN := p.N + sppmAlpha
		ratio := newN / (p.N + 1)
		p.Tau = p.Tau.Add(p.photonTau).Scale(ratio)
		p.Radius *= math.Sqrt(ratio)
		p.N = newN
	}
}
