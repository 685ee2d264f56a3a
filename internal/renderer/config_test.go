package renderer

import (
	"errors"
	"testing"

	"github.com/lumetrace/lumetrace/internal/camera"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/film"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

func validScene() *scene.Scene {
	cam := camera.NewPerspective(core.Vec3{Z: 1}, core.Vec3{}, core.Vec3{Y: 1}, 40, 4, 4, 0, 0)
	return scene.New(nil, nil, &light.UniformLightSampler{}, cam, nil)
}

func TestValidateRejectsNilScene(t *testing.T) {
	info := RendererInfo{}
	err := info.Validate()
	var renderErr *RenderError
	if !errors.As(err, &renderErr) || renderErr.Kind != ErrConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestValidateRejectsMissingSampler(t *testing.T) {
	info := RendererInfo{
		Scene: validScene(),
		Film:  film.New(4, 4, film.Box{R: 0.5}),
	}
	if err := info.Validate(); err == nil {
		t.Fatal("expected validation error for missing sampler")
	}
}

func TestValidateAcceptsMinimalValidConfig(t *testing.T) {
	info := RendererInfo{
		Scene:   validScene(),
		Film:    film.New(4, 4, film.Box{R: 0.5}),
		Sampler: sampler.NewIndependent(4, 1),
		Integrator: IntegratorInfo{
			Type:       Path,
			MaxBounces: 8,
		},
	}
	if err := info.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsNonPositiveMaxBounces(t *testing.T) {
	info := RendererInfo{
		Scene:      validScene(),
		Film:       film.New(4, 4, film.Box{R: 0.5}),
		Sampler:    sampler.NewIndependent(4, 1),
		Integrator: IntegratorInfo{Type: Path, MaxBounces: 0},
	}
	if err := info.Validate(); err == nil {
		t.Fatal("expected validation error for zero MaxBounces")
	}
}

func TestWithDefaultsFillsTileSize(t *testing.T) {
	info := RendererInfo{}.withDefaults()
	if info.TileSize != 32 {
		t.Errorf("expected default tile size 32, got %d", info.TileSize)
	}
}
