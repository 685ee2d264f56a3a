// Package renderer implements the driver of spec.md §5/§6: tiling,
// adaptive per-pixel sampling, the worker pool, progressive passes,
// and cancellation. It is the one package allowed to know about every
// integrator variant, since dispatching to the right one is exactly
// what a driver does.
package renderer

import (
	"fmt"

	"github.com/lumetrace/lumetrace/internal/film"
	"github.com/lumetrace/lumetrace/internal/sampler"
	"github.com/lumetrace/lumetrace/internal/scene"
)

// ErrorKind classifies a RenderError per spec.md §7; exit codes in
// cmd/lumetrace map 1:1 from these.
type ErrorKind int

const (
	ErrConfig ErrorKind = iota
	ErrAssetLoad
	ErrInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfig:
		return "config"
	case ErrAssetLoad:
		return "asset_load"
	case ErrInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// RenderError wraps any fatal render-time failure with its kind so the
// CLI can map it to an exit code without string-matching.
type RenderError struct {
	Kind ErrorKind
	Err  error
}

func (e *RenderError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// ConfigError names the specific missing/invalid RendererInfo field,
// spec.md §7's "Configuration error — missing required fields;
// reported before any tile starts."
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("renderer config: %s: %s", e.Field, e.Msg) }

// IntegratorKind selects which internal/integrator implementation the
// driver dispatches to, spec.md §6's integrator_info.type.
type IntegratorKind int

const (
	Path IntegratorKind = iota
	VolPath
	LightPath
	LightVolPath
	BDPT
	VolBDPT
	SPPM
	NaivePath
	NaiveVolPath
	RandomWalk
	AO
	Albedo
	Debug
)

// IntegratorInfo mirrors spec.md §6's integrator_info record.
type IntegratorInfo struct {
	Type           IntegratorKind
	MaxBounces     int     // default 16
	RRMinBounces   int     // default 1; not read: the integrators use their fixed rrMinBounces (1)
	RegularizeBSDF bool    // default false; not read, and no integrator calls BSDF.Regularize
	AORange        float64 // default 0.1
	NPhotons       int     // default 100_000
	InitialRadius  float64 // default -1 -> auto from scene extent
}

// DefaultIntegratorInfo returns spec.md §6's stated defaults.
func DefaultIntegratorInfo() IntegratorInfo {
	return IntegratorInfo{
		Type:          Path,
		MaxBounces:    16,
		RRMinBounces:  1,
		AORange:       0.1,
		NPhotons:      100_000,
		InitialRadius: -1,
	}
}

// RendererInfo is spec.md §6's single configuration record, scoped to
// the fields the driver itself consumes; the camera/film/sampler and
// scene geometry are assembled upstream (internal/loader, cmd) since
// that's asset-loading, not render-driving.
type RendererInfo struct {
	Scene      *scene.Scene
	Film       *film.Film
	Sampler    sampler.Sampler // prototype; Clone() per tile/pixel
	Integrator IntegratorInfo
	TileSize   int // default 32
	NumWorkers int // 0 = runtime.NumCPU()
}

// Validate checks every required field before any tile starts, spec.md
// §7's configuration-error category.
func (r RendererInfo) Validate() error {
	if r.Scene == nil {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Scene", Msg: "must not be nil"}}
	}
	if r.Scene.Camera == nil {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Scene.Camera", Msg: "must not be nil"}}
	}
	if r.Film == nil {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Film", Msg: "must not be nil"}}
	}
	if r.Sampler == nil {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Sampler", Msg: "must not be nil"}}
	}
	if r.Sampler.SamplesPerPixel() <= 0 {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Sampler.SamplesPerPixel", Msg: "must be positive"}}
	}
	if r.Integrator.MaxBounces <= 0 {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Integrator.MaxBounces", Msg: "must be positive"}}
	}
	if r.Integrator.Type == AO && r.Integrator.AORange < 0 {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Integrator.AORange", Msg: "must be non-negative"}}
	}
	if r.Integrator.Type == SPPM && r.Integrator.NPhotons <= 0 {
		return &RenderError{Kind: ErrConfig, Err: &ConfigError{Field: "Integrator.NPhotons", Msg: "must be positive"}}
	}
	return nil
}

// withDefaults fills TileSize when it is zero, called by New before
// Validate. Every other field is taken as given, so MaxBounces (and
// NPhotons for SPPM) must still be set; DefaultIntegratorInfo returns
// a fully defaulted IntegratorInfo.
func (r RendererInfo) withDefaults() RendererInfo {
	if r.TileSize <= 0 {
		r.TileSize = 32
	}
	return r
}
