// Package material maps a surface hit to a BSDF (and optional BSSRDF),
// spec.md §4.5: alpha and normal-map resolution, and deterministic
// per-vertex mixture selection.
package material

import (
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/core"
)

// SurfaceInteraction is the minimal hit-point context a Material needs
// to build a BSDF: position, geometric/shading normals and tangent,
// outgoing direction, and texture coordinates for any maps.
type SurfaceInteraction struct {
	Point           core.Vec3
	GeometricNormal core.Vec3
	ShadingNormal   core.Vec3
	Tangent         core.Vec3
	Wo              core.Vec3
	UV              core.Vec2
}

// Material builds a BSDF (and optionally a BSSRDF) for a hit point.
type Material interface {
	// Sample returns the BSDF active at the hit, and ok=false if the
	// surface should be treated as fully transparent (alpha test failed).
	Sample(si SurfaceInteraction, u float64) (bsdf.BSDF, bool)

	// BSSRDF returns the subsurface-scattering model for this material,
	// or nil if the material has none.
	BSSRDF() *BSSRDF

	// Alpha returns the (possibly textured) opacity at uv, used for
	// alpha-tested cutouts. A deterministic hash of the hit drives any
	// stochastic alpha test so repeated calls at the same point agree
	// (spec.md §8 invariant 7, "idempotent alpha test").
	Alpha(si SurfaceInteraction) float64
}

// NormalMapped wraps a shading normal/tangent pair with an optional
// tangent-space normal-map perturbation, spec.md §4.4:
// n_shading' = normalize(TBN . (texel.rgb*2-1)), then the tangent is
// re-orthogonalized against the new normal via FrameFromXZ.
func NormalMapped(si SurfaceInteraction, texel core.Vec3, hasMap bool) (shadingNormal, tangent core.Vec3) {
	if !hasMap {
		return si.ShadingNormal, si.Tangent
	}
	tbn := core.FrameFromXZ(si.Tangent, si.ShadingNormal)
	local := core.Vec3{X: texel.X*2 - 1, Y: texel.Y*2 - 1, Z: texel.Z*2 - 1}
	n := tbn.FromLocal(local).Normalize()
	return n, core.FrameFromXZ(si.Tangent, n).X
}
