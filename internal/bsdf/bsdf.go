// Package bsdf binds a chosen BxDF lobe to a shading frame, exposing
// the same (evaluate, sample, pdf) triple in world space, spec.md §4.4.
package bsdf

import (
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
)

// BSDF stores a shading Frame and the lobe active at a surface point.
// Both the geometric normal (used for ray-spawning side tests) and
// the shading normal (which may have been perturbed by normal
// mapping) are kept so the integrator can detect light-leak
// configurations at grazing angles.
type BSDF struct {
	frame   core.Frame
	ng      core.Vec3
	Lobe    bxdf.BxDF
}

// New builds a BSDF from a shading normal and tangent. Normal mapping,
// if any, has already perturbed shadingNormal before this call.
func New(shadingNormal, tangent, geometricNormal core.Vec3, lobe bxdf.BxDF) BSDF {
	return BSDF{
		frame: core.FrameFromXZ(tangent, shadingNormal),
		ng:    geometricNormal,
		Lobe:  lobe,
	}
}

func (b BSDF) Flags() bxdf.Flags { return b.Lobe.Flags() }

// regularGeometry rejects a local direction pair that would leak light
// through the surface relative to the geometric normal but not the
// (possibly bump/normal-mapped) shading normal.
func (b BSDF) regularGeometry(woWorld, wiWorld core.Vec3) bool {
	return (woWorld.Dot(b.ng) > 0) == (wiWorld.Dot(b.ng) > 0)
}

func (b BSDF) F(woWorld, wiWorld core.Vec3, mode bxdf.TransportMode) core.Spectrum {
	wo, wi := b.frame.ToLocal(woWorld), b.frame.ToLocal(wiWorld)
	if wo.Z == 0 || !b.regularGeometry(woWorld, wiWorld) {
		return core.SpectrumBlack
	}
	return b.Lobe.F(wo, wi, mode)
}

func (b BSDF) PDF(woWorld, wiWorld core.Vec3, mode bxdf.TransportMode, sampleFlags bxdf.SamplingFlags) float64 {
	wo, wi := b.frame.ToLocal(woWorld), b.frame.ToLocal(wiWorld)
	if wo.Z == 0 {
		return 0
	}
	return b.Lobe.PDF(wo, wi, mode, sampleFlags)
}

// Sample is the world-space BSDF sample, mirroring bxdf.Sample with
// Wi rotated back into world space.
type Sample struct {
	F     core.Spectrum
	Wi    core.Vec3
	PDF   float64
	Flags bxdf.Flags
	Eta   float64
}

func (b BSDF) SampleF(woWorld core.Vec3, u0 float64, u12 core.Vec2, mode bxdf.TransportMode, sampleFlags bxdf.SamplingFlags) (Sample, bool) {
	wo := b.frame.ToLocal(woWorld)
	if wo.Z == 0 {
		return Sample{}, false
	}
	s, ok := b.Lobe.SampleF(wo, u0, u12, mode, sampleFlags)
	if !ok || s.PDF <= 0 || s.F.IsBlack() {
		return Sample{}, false
	}
	wiWorld := b.frame.FromLocal(s.Wi)
	if !b.regularGeometry(woWorld, wiWorld) {
		return Sample{}, false
	}
	return Sample{F: s.F, Wi: wiWorld, PDF: s.PDF, Flags: s.Flags, Eta: s.Eta}, true
}

// Rho estimates the hemispherical-directional reflectance at woWorld,
// delegating to bxdf.Rho in the BSDF's own local frame so callers
// never need to convert directions themselves.
func (b BSDF) Rho(woWorld core.Vec3, uc []float64, u2 []core.Vec2) core.Spectrum {
	wo := b.frame.ToLocal(woWorld)
	return bxdf.Rho(b.Lobe, wo, uc, u2)
}

// Regularize returns a copy of the BSDF whose lobe is replaced by the
// lobe's regularized (non-delta) approximation; the receiver itself is
// left unchanged. No integrator in this module calls it.
func (b BSDF) Regularize() BSDF {
	b.Lobe = b.Lobe.Regularize()
	return b
}
