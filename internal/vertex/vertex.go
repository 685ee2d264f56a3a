// Package vertex implements the unified BDPT path vertex of spec.md
// §3: a tagged union over {Camera, Light, Surface, Medium} carrying
// enough state for geometric-to-area PDF conversion and MIS weight
// computation.
package vertex

import (
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/light"
	"github.com/lumetrace/lumetrace/internal/medium"
)

// Kind tags which subpath role a Vertex plays.
type Kind int

const (
	Camera Kind = iota
	LightKind
	Surface
	Medium
)

// Vertex is a single node of a camera or light subpath.
type Vertex struct {
	Kind   Kind
	Point  core.Vec3
	Normal core.Vec3
	Wo     core.Vec3
	Beta   core.Spectrum // accumulated throughput up to this vertex

	PDFFwd float64 // forward solid-angle/area PDF of having sampled this vertex from the previous one
	PDFRev float64 // reverse PDF, filled in once the next vertex is known (for MIS)
	Delta  bool    // true for delta lights/specular surfaces: never connectible

	BSDF  *bsdf.BSDF
	Phase medium.PhaseFunction
	Light light.Light
}

// IsConnectible is true for all non-delta surfaces, all medium
// vertices, and all non-delta lights, spec.md §3.
func (v Vertex) IsConnectible() bool {
	switch v.Kind {
	case Surface:
		return v.BSDF == nil || v.BSDF.Flags().IsNonSpecular()
	case Medium:
		return true
	case LightKind:
		return !v.Delta
	default: // Camera
		return true
	}
}

// IsOnSurface reports whether this vertex has a well-defined normal
// (Surface and Light vertices on area lights do; Medium and most
// Camera vertices don't).
func (v Vertex) IsOnSurface() bool { return v.Kind == Surface || (v.Kind == LightKind && !v.Delta) }

// ConvertDensity converts a solid-angle PDF at v (measured from `from`)
// into an area-measure PDF at v, spec.md §3: "multiplies by |cosθ|/d²."
func ConvertDensity(pdfSolidAngle float64, from, to Vertex) float64 {
	d := to.Point.Subtract(from.Point)
	dist2 := d.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	if !to.IsOnSurface() {
		return pdfSolidAngle / dist2
	}
	wi := d.Multiply(1 / core_sqrt(dist2))
	cosTheta := abs(to.Normal.Dot(wi))
	if cosTheta == 0 {
		return 0
	}
	return pdfSolidAngle * cosTheta / dist2
}

func core_sqrt(v float64) float64 {
	// local alias to avoid importing math solely for Sqrt in this file
	return core.SafeSqrt(v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// G is the geometric coupling term between two vertices:
// |cosθ_a|*|cosθ_b|/d^2, used by BDPT connection strategies.
func G(a, b Vertex) float64 {
	d := b.Point.Subtract(a.Point)
	dist2 := d.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	wi := d.Multiply(1 / core_sqrt(dist2))
	g := 1.0
	if a.IsOnSurface() {
		g *= abs(a.Normal.Dot(wi))
	}
	if b.IsOnSurface() {
		g *= abs(b.Normal.Dot(wi.Negate()))
	}
	return g / dist2
}

// MISWeight computes the balance-heuristic MIS weight for a single
// BDPT (s,t) strategy given the full camera subpath `cameraPath` and
// light subpath `lightPath` used to build the sampled path, following
// Veach's revised path-probability recurrence: every vertex's PDFRev
// must already be set to the density of having sampled it from its
// neighbor on the *other* subpath, as would happen if this particular
// strategy had been the one used to build the whole path.
//
// cameraPath and lightPath are passed with their vertices already
// carrying the PDFFwd/PDFRev values appropriate to this (s,t)
// strategy (the integrator recomputes these before each call, since
// they depend on which connection strategy produced the path).
func MISWeight(cameraPath, lightPath []Vertex, s, t int) float64 {
	if s+t == 2 {
		return 1
	}

	sumRi := func(path []Vertex, count int, otherDelta bool) float64 {
		sum := 0.0
		ri := 1.0
		for i := count - 1; i >= 0; i-- {
			v := path[i]
			if v.PDFFwd <= 0 {
				ri = 0
			} else {
				ri *= v.PDFRev / v.PDFFwd
			}
			deltaHere := v.Delta
			var deltaPrev bool
			if i > 0 {
				deltaPrev = path[i-1].Delta
			} else {
				deltaPrev = otherDelta
			}
			if !deltaHere && !deltaPrev {
				sum += ri
			}
		}
		return sum
	}

	lightDeltaAtConnection := t > 0 && lightPath[t-1].Delta
	cameraDeltaAtConnection := s > 0 && cameraPath[s-1].Delta

	sumCamera := sumRi(cameraPath, s, lightDeltaAtConnection)
	sumLight := sumRi(lightPath, t, cameraDeltaAtConnection)

	return 1 / (1 + sumCamera + sumLight)
}
