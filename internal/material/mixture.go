package material

import (
	"math"
	"reflect"

	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/core"
)

// uintptrOf returns an identity hash for a Material: the pointer for
// pointer-like kinds, and otherwise the type's size and name length,
// so two non-pointer children of the same type (or of types equal in
// both) contribute the same value.
func uintptrOf(m Material) uint64 {
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return uint64(v.Pointer())
	default:
		return uint64(v.Type().Size())<<32 | uint64(len(v.Type().Name()))
	}
}

// Mixture blends two materials by a spatially varying weight, spec.md
// §4.5: the choice between A and B must be a deterministic function of
// the shading vertex alone (point, outgoing direction, and the two
// material identities) so repeated BSDF samples at the same vertex
// - e.g. a camera-subpath and a light-subpath both reaching it in BDPT -
// agree on which material is active, keeping MIS weights consistent.
type Mixture struct {
	A, B Material
	Mix  func(uv core.Vec2) float64 // weight toward B
}

// choose hashes (point, wo direction bits, &A, &B) to u in [0,1) and
// compares against Mix(uv); no BSDF-sample dimension enters the hash
// (see DESIGN.md's Open Question decision).
func (m Mixture) choose(si SurfaceInteraction) bool {
	h := hashVertex(si.Point, si.Wo, m.A, m.B)
	u := float64(h%(1<<53)) / float64(uint64(1)<<53)
	return u < m.Mix(si.UV)
}

func hashVertex(p, wo core.Vec3, a, b Material) uint64 {
	bits := func(f float64) uint64 { return math.Float64bits(f) }
	h := bits(p.X) ^ (bits(p.Y) << 1) ^ (bits(p.Z) << 2)
	h ^= bits(wo.X)*0x9E3779B97F4A7C15 ^ bits(wo.Y)*0xC2B2AE3D27D4EB4F ^ bits(wo.Z)*0x165667B19E3779F9
	h ^= uintptrOf(a)*0xFF51AFD7ED558CCD ^ uintptrOf(b)*0xC4CEB9FE1A85EC53
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

func (m Mixture) Sample(si SurfaceInteraction, u float64) (bsdf.BSDF, bool) {
	if m.choose(si) {
		return m.B.Sample(si, u)
	}
	return m.A.Sample(si, u)
}

func (m Mixture) BSSRDF() *BSSRDF { return nil }

func (m Mixture) Alpha(si SurfaceInteraction) float64 {
	if m.choose(si) {
		return m.B.Alpha(si)
	}
	return m.A.Alpha(si)
}
