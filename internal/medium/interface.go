package medium

import "github.com/lumetrace/lumetrace/internal/core"

// Interface attaches an inside/outside medium pair to a primitive;
// which one a ray enters is resolved by the sign of dot(w, geometric
// normal) combined with front_face, spec.md §3.
type Interface struct {
	Inside, Outside Medium
}

// IsTransition reports whether the two sides carry different media (a
// boundary primitive used purely for camouflage has Inside == Outside
// and does not change the current medium when crossed).
func (mi Interface) IsTransition() bool { return mi.Inside != mi.Outside }

// Resolve returns the medium a ray continues into after crossing this
// boundary, given the ray direction and the geometric normal at the hit.
func (mi Interface) Resolve(rayDir, geometricNormal core.Vec3, frontFace bool) Medium {
	leaving := rayDir.Dot(geometricNormal) > 0
	if frontFace {
		if leaving {
			return mi.Outside
		}
		return mi.Inside
	}
	if leaving {
		return mi.Inside
	}
	return mi.Outside
}
