package accel

import "github.com/lumetrace/lumetrace/internal/core"

// leafThreshold mirrors the teacher's BVH: few enough shapes and a
// linear scan beats another split.
const leafThreshold = 8

type bvhNode struct {
	bounds      core.AABB
	left, right *bvhNode
	prims       []Primitive
}

// BVH is a midpoint-split bounding volume hierarchy over Primitives
// (each node is split at the midpoint of its bounds, not at the
// median primitive), generalized from the teacher's pkg/core/bvh.go
// (fast to build, no per-build sort).
type BVH struct {
	root        *bvhNode
	worldBounds core.AABB
}

// NewBVH builds a BVH from the given primitives. Watertight
// intersection (handling grazing self-intersection at shared edges) is
// left to each Primitive's own Hit implementation via core.RayEpsilon
// offsetting rather than a Woop-style ray transform, since the closed
// shape set here (sphere, triangle) is simple enough not to need it.
func NewBVH(prims []Primitive) *BVH {
	if len(prims) == 0 {
		return &BVH{}
	}
	cp := make([]Primitive, len(prims))
	copy(cp, prims)
	root := buildBVH(cp)
	return &BVH{root: root, worldBounds: root.bounds}
}

func boundsOf(prims []Primitive) core.AABB {
	b := prims[0].Bounds()
	for _, p := range prims[1:] {
		b = b.Union(p.Bounds())
	}
	return b
}

func buildBVH(prims []Primitive) *bvhNode {
	bounds := boundsOf(prims)
	if len(prims) <= leafThreshold {
		return &bvhNode{bounds: bounds, prims: prims}
	}

	axis := bounds.LongestAxis()
	minV, maxV := axisRange(bounds, axis)
	if maxV <= minV {
		return &bvhNode{bounds: bounds, prims: prims}
	}
	split := (minV + maxV) * 0.5

	var left, right []Primitive
	for _, p := range prims {
		if axisValue(p.Bounds().Center(), axis) < split {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &bvhNode{bounds: bounds, prims: prims}
	}
	return &bvhNode{bounds: bounds, left: buildBVH(left), right: buildBVH(right)}
}

func axisRange(b core.AABB, axis int) (float64, float64) {
	switch axis {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}

func axisValue(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (b *BVH) WorldBounds() core.AABB { return b.worldBounds }

func (b *BVH) Intersect(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	if b.root == nil {
		return HitRecord{}, false
	}
	return intersectNode(b.root, ray, tMin, tMax)
}

func intersectNode(n *bvhNode, ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	if !n.bounds.Hit(ray, tMin, tMax) {
		return HitRecord{}, false
	}
	if n.prims != nil {
		var best HitRecord
		found := false
		closest := tMax
		for _, p := range n.prims {
			if hr, ok := p.Hit(ray, tMin, closest); ok {
				found = true
				closest = hr.T
				best = hr
			}
		}
		return best, found
	}
	var best HitRecord
	found := false
	closest := tMax
	if n.left != nil {
		if hr, ok := intersectNode(n.left, ray, tMin, closest); ok {
			found, closest, best = true, hr.T, hr
		}
	}
	if n.right != nil {
		if hr, ok := intersectNode(n.right, ray, tMin, closest); ok {
			found, closest, best = true, hr.T, hr
		}
	}
	_ = closest
	return best, found
}

func (b *BVH) IntersectAny(ray core.Ray, tMin, tMax float64) bool {
	if b.root == nil {
		return false
	}
	return anyNode(b.root, ray, tMin, tMax)
}

func anyNode(n *bvhNode, ray core.Ray, tMin, tMax float64) bool {
	if !n.bounds.Hit(ray, tMin, tMax) {
		return false
	}
	if n.prims != nil {
		for _, p := range n.prims {
			if _, ok := p.Hit(ray, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	if n.left != nil && anyNode(n.left, ray, tMin, tMax) {
		return true
	}
	if n.right != nil && anyNode(n.right, ray, tMin, tMax) {
		return true
	}
	return false
}
