package renderer

import (
	"context"
	"testing"

	"github.com/lumetrace/lumetrace/internal/accel"
	"github.com/lumetrace/lumetrace/internal/camera"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/film"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

func oneSphereScene(width, height int) *scene.Scene {
	ground := &accel.Sphere{
		Center: core.Vec3{X: 0, Y: -100.5, Z: -1},
		Radius: 100,
		Mat:    material.Diffuse{Reflectance: core.NewSpectrum(0.5, 0.5, 0.5)},
	}
	ball := &accel.Sphere{
		Center: core.Vec3{X: 0, Y: 0, Z: -1},
		Radius: 0.5,
		Mat:    material.Diffuse{Reflectance: core.NewSpectrum(0.7, 0.3, 0.3)},
	}
	lightShape := &accel.Sphere{
		Center: core.Vec3{X: 2, Y: 2, Z: 1},
		Radius: 0.5,
		Mat:    material.Diffuse{Reflectance: core.SpectrumBlack},
	}
	areaLight := &light.DiffuseAreaLight{
		Shape:    lightShape,
		Emission: func(core.Vec2, core.Vec3) core.Spectrum { return core.NewSpectrum(10, 10, 10) },
		TwoSided: true,
	}
	lightShape.LightRef = areaLight

	prims := []accel.Primitive{ground, ball, lightShape}
	lights := []light.Light{areaLight}
	lightSampler := &light.UniformLightSampler{Lights: lights}
	cam := camera.NewPerspective(core.Vec3{Z: 3}, core.Vec3{Z: -1}, core.Vec3{Y: 1}, 40, width, height, 0, 0)

	return scene.New(prims, lights, lightSampler, cam, nil)
}

func TestRenderPathIntegratorProducesSamples(t *testing.T) {
	const width, height = 8, 8
	info := RendererInfo{
		Scene:   oneSphereScene(width, height),
		Film:    film.New(width, height, film.Box{R: 0.5}),
		Sampler: sampler.NewIndependent(4, 1),
		Integrator: IntegratorInfo{
			Type:       Path,
			MaxBounces: 4,
		},
	}

	r, err := New(info, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	stats, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if stats.TotalPixels != width*height {
		t.Errorf("expected %d pixels, got %d", width*height, stats.TotalPixels)
	}
	if stats.TotalSamples == 0 {
		t.Error("expected a nonzero number of total samples")
	}
}

func TestRenderRespectsCancellation(t *testing.T) {
	const width, height = 64, 64
	info := RendererInfo{
		Scene:   oneSphereScene(width, height),
		Film:    film.New(width, height, film.Box{R: 0.5}),
		Sampler: sampler.NewIndependent(256, 1),
		Integrator: IntegratorInfo{
			Type:       Path,
			MaxBounces: 8,
		},
	}

	r, err := New(info, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := r.Render(ctx)
	if err == nil {
		t.Fatal("expected Render to report the cancellation")
	}
	if stats.TotalPixels != width*height {
		t.Errorf("expected stats over the full image even when cancelled early, got %d pixels", stats.TotalPixels)
	}
}

func TestRenderAOIntegrator(t *testing.T) {
	const width, height = 4, 4
	info := RendererInfo{
		Scene:   oneSphereScene(width, height),
		Film:    film.New(width, height, film.Box{R: 0.5}),
		Sampler: sampler.NewIndependent(4, 1),
		Integrator: IntegratorInfo{
			Type:       AO,
			MaxBounces: 1,
			AORange:    0.1,
		},
	}

	r, err := New(info, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := r.Render(context.Background()); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
}
