package renderer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lumetrace/lumetrace/internal/arena"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/film"
	"github.com/lumetrace/lumetrace/internal/integrator"
	"github.com/lumetrace/lumetrace/internal/logging"
)

// Renderer drives a RendererInfo to completion: it builds the tile
// grid, dispatches to the integrator variant the config names, and
// reports back RenderStats. Everything about *how* a ray becomes a
// color lives in internal/integrator; this package only owns *when*
// and *how many times* that happens.
type Renderer struct {
	info   RendererInfo
	logger logging.Logger
}

// New validates info and returns a ready-to-run Renderer, spec.md §7's
// "configuration error reported before any tile starts."
func New(info RendererInfo, logger logging.Logger) (*Renderer, error) {
	info = info.withDefaults()
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Renderer{info: info, logger: logger}, nil
}

// liIntegrator returns the single-ray-in-single-color-out integrator
// for the config's type, used by every strategy except BDPT/light
// tracing/SPPM, which have their own entry points below.
func (r *Renderer) liIntegrator() integrator.Integrator {
	ii := r.info.Integrator
	switch ii.Type {
	case NaivePath, NaiveVolPath:
		return integrator.NaivePathIntegrator{}
	case RandomWalk:
		return integrator.RandomWalkIntegrator{}
	case AO:
		return integrator.AOIntegrator{Range: ii.AORange}
	case Albedo:
		return integrator.AlbedoIntegrator{}
	case Debug:
		return integrator.DebugIntegrator{}
	case BDPT, VolBDPT:
		return integrator.BDPTIntegrator{}
	default: // Path, VolPath, LightPath, LightVolPath handled separately below
		return integrator.PathIntegrator{}
	}
}

// Render runs the configured integrator to completion over the whole
// film, tile by tile, honoring ctx cancellation between tiles; an
// in-flight tile always finishes (spec.md §5's cancellation policy).
// The film accumulated so far is always left in a valid, partially
// sampled state, even on early return.
func (r *Renderer) Render(ctx context.Context) (RenderStats, error) {
	ii := r.info.Integrator
	switch ii.Type {
	case SPPM:
		return r.renderSPPM(ctx)
	case LightPath, LightVolPath:
		return r.renderLightTracingOnly(ctx)
	default:
		return r.renderTiled(ctx)
	}
}

// renderTiled covers every per-pixel Li-style integrator, including
// BDPT's camera-subpath side (the t=1 strategies BDPT defers are
// covered by running a light-tracing pass alongside it, see below).
func (r *Renderer) renderTiled(ctx context.Context) (RenderStats, error) {
	f := r.info.Film
	width, height := f.Resolution()
	tiles := NewTileGrid(width, height, r.info.TileSize)
	pool := NewWorkerPool(r.info.NumWorkers)
	li := r.liIntegrator()

	wantsLightTracing := needsLightTracing(r.info.Integrator.Type)

	sampleCounts := make([]int32, width*height)
	var cancelled atomic.Bool

	for _, t := range tiles {
		t := t
		select {
		case <-ctx.Done():
			cancelled.Store(true)
		default:
		}
		if cancelled.Load() {
			break
		}
		pool.Submit(func() {
			r.renderTile(t, f, li, sampleCounts, width)
		})
	}
	pool.Wait()

	if wantsLightTracing && !cancelled.Load() {
		if err := r.runLightTracingPass(ctx, f); err != nil {
			return RenderStats{}, err
		}
	}

	stats := RenderStats{}
	counts := make([]int, len(sampleCounts))
	for i, c := range sampleCounts {
		counts[i] = int(c)
	}
	stats.Finalize(counts)
	r.countSaturation(&stats)

	if cancelled.Load() {
		return stats, ctx.Err()
	}
	return stats, nil
}

func needsLightTracing(k IntegratorKind) bool {
	return k == BDPT || k == VolBDPT
}

func (r *Renderer) renderTile(t *Tile, f *film.Film, li integrator.Integrator, sampleCounts []int32, width int) {
	ii := r.info.Integrator
	maxSamples := r.info.Sampler.SamplesPerPixel()
	for y := t.Y0; y < t.Y1; y++ {
		for x := t.X0; x < t.X1; x++ {
			samp := r.info.Sampler.Clone(uint64(t.ID)<<32 | uint64(y*width+x))
			vtx := arena.NewVertexArena()
			var ps PixelStats
			for s := 0; s < maxSamples; s++ {
				samp.StartPixelSample([2]int{x, y}, s)
				vtx.Reset()
				jitter := samp.Next2D()
				rs := r.info.Scene.Camera.SampleRay(float64(x)+jitter.X, float64(y)+jitter.Y, samp.Next2D())
				L := li.Li(rs.Ray, r.info.Scene, samp, ii.MaxBounces, vtx).Scale(rs.Weight)
				if !L.Finite() {
					continue
				}
				ps.AddSample(L.R, L.G, L.B)
				f.AddSample(core.Vec2{X: float64(x) + jitter.X, Y: float64(y) + jitter.Y}, L)
				if ShouldStopSampling(&ps, 4, maxSamples, 0.05) {
					break
				}
			}
			atomic.StoreInt32(&sampleCounts[y*width+x], int32(ps.SampleCount))
		}
	}
}

// runLightTracingPass runs the light-tracing integrator's own photon
// walk for n_photons iterations, splatting into f; this is how BDPT's
// t=1 strategies and the standalone light-tracing integrator reach the
// film, since Film.AddSplat targets whatever pixel the camera
// connection lands on rather than the pixel the calling tile owns.
func (r *Renderer) runLightTracingPass(ctx context.Context, f *film.Film) error {
	lt := integrator.LightTracingIntegrator{Camera: r.info.Scene.Camera}
	n := r.info.Integrator.NPhotons
	if n <= 0 {
		n = 100_000
	}
	pool := NewWorkerPool(r.info.NumWorkers)
	const batch = 1024
	for start := 0; start < n; start += batch {
		select {
		case <-ctx.Done():
			pool.Wait()
			return nil
		default:
		}
		end := min(start+batch, n)
		for i := start; i < end; i++ {
			i := i
			pool.Submit(func() {
				samp := r.info.Sampler.Clone(uint64(i) + 1)
				lt.TracePhoton(r.info.Scene, samp, r.info.Integrator.MaxBounces, f)
			})
		}
	}
	pool.Wait()
	return nil
}

// renderLightTracingOnly drives a pure light-tracing integrator, whose
// Li always returns black; every contribution reaches the film through
// TracePhoton's splats.
func (r *Renderer) renderLightTracingOnly(ctx context.Context) (RenderStats, error) {
	if err := r.runLightTracingPass(ctx, r.info.Film); err != nil {
		return RenderStats{}, err
	}
	stats := RenderStats{}
	r.countSaturation(&stats)
	return stats, ctx.Err()
}

// renderSPPM alternates an eye pass (one visible point per pixel) with
// a photon pass depositing flux into those points' grid cells,
// shrinking search radii each iteration per spec.md's SPPM module.
func (r *Renderer) renderSPPM(ctx context.Context) (RenderStats, error) {
	f := r.info.Film
	width, height := f.Resolution()
	sp := integrator.SPPMIntegrator{}

	initialRadius := r.info.Integrator.InitialRadius
	if initialRadius <= 0 {
		initialRadius = r.info.Scene.WorldRadius / float64(max(width, height)) * 10
	}

	pixels := make([]*integrator.SPPMPixel, width*height)
	for i := range pixels {
		pixels[i] = integrator.NewSPPMPixel(initialRadius)
	}

	iterations := r.info.Sampler.SamplesPerPixel()

	for iter := 0; iter < iterations; iter++ {
		select {
		case <-ctx.Done():
			r.flushSPPM(f, pixels, photonsPerIteration(r.info.Integrator.NPhotons))
			stats := RenderStats{}
			r.countSppmSaturation(&stats, pixels)
			return stats, ctx.Err()
		default:
		}

		pool := NewWorkerPool(r.info.NumWorkers)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				x, y := x, y
				pool.Submit(func() {
					samp := r.info.Sampler.Clone(uint64(iter)<<32 | uint64(y*width+x))
					samp.StartPixelSample([2]int{x, y}, iter)
					jitter := samp.Next2D()
					rs := r.info.Scene.Camera.SampleRay(float64(x)+jitter.X, float64(y)+jitter.Y, samp.Next2D())
					pixel := pixels[y*width+x]
					sp.TraceEyePath(r.info.Scene, rs.Ray, samp, r.info.Integrator.MaxBounces, pixel)
				})
			}
		}
		pool.Wait()

		grid := integrator.NewSPPMGrid(pixels)
		pool = NewWorkerPool(r.info.NumWorkers)
		n := r.info.Integrator.NPhotons
		if n <= 0 {
			n = 100_000
		}
		var wg sync.WaitGroup
		const batch = 1024
		for start := 0; start < n; start += batch {
			end := min(start+batch, n)
			wg.Add(1)
			start := start
			pool.Submit(func() {
				defer wg.Done()
				samp := r.info.Sampler.Clone(uint64(iter)<<16 | uint64(start))
				for i := start; i < end; i++ {
					sp.TracePhoton(r.info.Scene, samp, r.info.Integrator.MaxBounces, grid)
				}
			})
		}
		pool.Wait()
		wg.Wait()

		integrator.UpdateRadii(pixels)
	}

	r.flushSPPM(f, pixels, photonsPerIteration(r.info.Integrator.NPhotons))

	stats := RenderStats{}
	r.countSppmSaturation(&stats, pixels)
	return stats, nil
}

func photonsPerIteration(n int) int {
	if n <= 0 {
		return 100_000
	}
	return n
}

// flushSPPM writes each pixel's accumulated direct + photon radiance
// into the film as a single splat, with film samplesPerPixel treated
// as 1 for SPPM (AddSplat/Pixel's usual 1/spp averaging doesn't apply
// here: UpdateRadii's (N+alpha)/(N+1) recurrence already folds
// iteration count into Tau, so the only remaining normalization is
// flux-to-radiance via photonsPerIter and the disc area pi*r^2, the
// standard progressive photon mapping estimator). Ld holds only the
// most recent iteration's direct-lighting estimate rather than a
// running average, since TraceEyePath resets it on every call; an
// accepted variance/bias tradeoff for the eye-pass's single-bounce
// direct term.
func (r *Renderer) flushSPPM(f *film.Film, pixels []*integrator.SPPMPixel, photonsPerIter int) {
	width, height := f.Resolution()
	denom := float64(photonsPerIter) * piApprox
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pixels[y*width+x]
			photon := p.Tau.Scale(1 / (denom * p.Radius * p.Radius))
			f.AddSplat(float64(x)+0.5, float64(y)+0.5, p.Ld.Add(photon))
		}
	}
}

// countSppmSaturation mirrors countSaturation but reads pixels with an
// effective samplesPerPixel of 1, matching flushSPPM's single splat
// per pixel.
func (r *Renderer) countSppmSaturation(stats *RenderStats, pixels []*integrator.SPPMPixel) {
	f := r.info.Film
	width, height := f.Resolution()
	var count int64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if film.IsSaturated(f.Pixel(x, y, 1)) {
				count++
			}
		}
	}
	stats.SaturatedCount = count
	if count > 0 {
		r.logger.Warnf("render produced %d out-of-gamut pixels", count)
	}
}

const piApprox = 3.14159265358979323846

// countSaturation logs a single Warn-level count of out-of-gamut
// pixels per render rather than per pixel per sample, per DESIGN.md's
// note on film.IsSaturated's intended call frequency.
func (r *Renderer) countSaturation(stats *RenderStats) {
	f := r.info.Film
	width, height := f.Resolution()
	spp := r.info.Sampler.SamplesPerPixel()
	var count int64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if film.IsSaturated(f.Pixel(x, y, spp)) {
				count++
			}
		}
	}
	stats.SaturatedCount = count
	if count > 0 {
		r.logger.Warnf("render produced %d out-of-gamut pixels", count)
	}
}
