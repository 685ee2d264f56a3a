package material

import (
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
)

// PBR is the glTF metallic-roughness material: a thin wrapper handing
// control to the MetallicRoughness lobe, for assets loaded from GLB.
type PBR struct {
	BaseColor core.Spectrum
	Metallic  float64
	Roughness float64
}

func (p PBR) Sample(si SurfaceInteraction, _ float64) (bsdf.BSDF, bool) {
	a := microfacetAlpha(p.Roughness)
	lobe := bxdf.MetallicRoughness{BaseColor: p.BaseColor, Metallic: p.Metallic, Dist: newTR(a, a)}
	return bsdf.New(si.ShadingNormal, si.Tangent, si.GeometricNormal, lobe), true
}

func (p PBR) BSSRDF() *BSSRDF { return nil }

func (p PBR) Alpha(_ SurfaceInteraction) float64 { return 1 }
