package main

import (
	"fmt"
	"sort"

	"github.com/lumetrace/lumetrace/internal/accel"
	"github.com/lumetrace/lumetrace/internal/camera"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/film"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/material"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// sceneBuilder constructs a ready-to-render Scene at the requested
// resolution, mirroring the teacher's pkg/scene/scene_discovery.go
// built-in catalog (there: cornell/spheregrid/trianglemesh/dragon by
// name; here: a small set exercising the same primitive/material/light
// combinations through this module's own constructors).
type sceneBuilder func(width, height int) *scene.Scene

var builtinScenes = map[string]sceneBuilder{
	"cornell": buildCornellScene,
	"spheres": buildSphereScene,
}

func sceneNames() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildScene resolves a scene by name, builds its Film and a default
// sampler, and returns everything the renderer needs to start.
func buildScene(name string, width, height, spp int) (*scene.Scene, *film.Film, sampler.Sampler, error) {
	builder, ok := builtinScenes[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown scene %q (try --list-scenes)", name)
	}
	sc := builder(width, height)
	f := film.New(width, height, film.Box{R: 0.5})
	samp := sampler.NewStratified(spp, true, 1)
	return sc, f, samp, nil
}

// buildCornellScene assembles a minimal Cornell-box-like enclosure:
// five diffuse walls plus a ceiling area light, grounded on the
// teacher's NewCornellScene box geometry but built directly from
// accel.Sphere/Quad-equivalent primitives available in this module.
func buildCornellScene(width, height int) *scene.Scene {
	red := material.Diffuse{Reflectance: core.NewSpectrum(0.65, 0.05, 0.05)}
	green := material.Diffuse{Reflectance: core.NewSpectrum(0.12, 0.45, 0.15)}
	white := material.Diffuse{Reflectance: core.NewSpectrum(0.73, 0.73, 0.73)}

	const wallRadius = 1000.0
	prims := []accel.Primitive{
		&accel.Sphere{Center: core.Vec3{X: -wallRadius - 1, Y: 0, Z: 0}, Radius: wallRadius, Mat: red},
		&accel.Sphere{Center: core.Vec3{X: wallRadius + 1, Y: 0, Z: 0}, Radius: wallRadius, Mat: green},
		&accel.Sphere{Center: core.Vec3{X: 0, Y: -wallRadius - 1, Z: 0}, Radius: wallRadius, Mat: white},
		&accel.Sphere{Center: core.Vec3{X: 0, Y: wallRadius + 1, Z: 0}, Radius: wallRadius, Mat: white},
		&accel.Sphere{Center: core.Vec3{X: 0, Y: 0, Z: -wallRadius - 1}, Radius: wallRadius, Mat: white},
	}

	lightSphere := &accel.Sphere{Center: core.Vec3{X: 0, Y: 0.72, Z: 0}, Radius: 0.2,
		Mat: material.Diffuse{Reflectance: core.SpectrumBlack}}
	areaLight := &light.DiffuseAreaLight{
		Shape:    lightSphere,
		Emission: func(core.Vec2, core.Vec3) core.Spectrum { return core.NewSpectrum(15, 15, 15) },
		TwoSided: false,
	}
	lightSphere.LightRef = areaLight

	sphere1 := &accel.Sphere{Center: core.Vec3{X: -0.35, Y: -0.6, Z: -0.2}, Radius: 0.4,
		Mat: material.Diffuse{Reflectance: core.NewSpectrum(0.4, 0.4, 0.75)}}
	sphere2 := &accel.Sphere{Center: core.Vec3{X: 0.4, Y: -0.65, Z: 0.3}, Radius: 0.35,
		Mat: material.Conductor{
			Eta:       core.NewSpectrum(0.2, 0.92, 1.1),
			K:         core.NewSpectrum(3.9, 2.45, 2.14),
			Roughness: 0.05,
		}}

	prims = append(prims, lightSphere, sphere1, sphere2)

	lights := []light.Light{areaLight}
	lightSampler := &light.UniformLightSampler{Lights: lights}

	cam := camera.NewPerspective(
		core.Vec3{X: 0, Y: 0, Z: 3.5}, core.Vec3{X: 0, Y: 0, Z: 0}, core.Vec3{X: 0, Y: 1, Z: 0},
		40, width, height, 0, 0)

	return scene.New(prims, lights, lightSampler, cam, nil)
}

// buildSphereScene is a simpler scene for quick smoke tests: one
// emissive sphere lighting a row of five diffuse spheres over a
// ground sphere, grounded on the teacher's NewSphereGridScene.
func buildSphereScene(width, height int) *scene.Scene {
	ground := &accel.Sphere{Center: core.Vec3{X: 0, Y: -1000.5, Z: -1}, Radius: 1000,
		Mat: material.Diffuse{Reflectance: core.NewSpectrum(0.5, 0.5, 0.5)}}

	lightSphere := &accel.Sphere{Center: core.Vec3{X: -2, Y: 3, Z: 1}, Radius: 0.6,
		Mat: material.Diffuse{Reflectance: core.SpectrumBlack}}
	areaLight := &light.DiffuseAreaLight{
		Shape:    lightSphere,
		Emission: func(core.Vec2, core.Vec3) core.Spectrum { return core.NewSpectrum(8, 8, 7) },
		TwoSided: true,
	}
	lightSphere.LightRef = areaLight

	prims := []accel.Primitive{ground, lightSphere}
	for i := 0; i < 5; i++ {
		x := float64(i)*0.6 - 1.2
		prims = append(prims, &accel.Sphere{
			Center: core.Vec3{X: x, Y: 0, Z: -1},
			Radius: 0.25,
			Mat:    material.Diffuse{Reflectance: core.NewSpectrum(0.1+0.15*float64(i), 0.2, 0.6)},
		})
	}

	lights := []light.Light{areaLight}
	lightSampler := &light.UniformLightSampler{Lights: lights}

	cam := camera.NewPerspective(
		core.Vec3{X: 0, Y: 1, Z: 4}, core.Vec3{X: 0, Y: 0, Z: -1}, core.Vec3{X: 0, Y: 1, Z: 0},
		35, width, height, 0, 0)

	return scene.New(prims, lights, lightSampler, cam, nil)
}
