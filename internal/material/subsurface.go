package material

import (
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/bxdf"
)

// Subsurface is a dielectric entrance interface paired with a BSSRDF,
// spec.md §4.5: the entrance BSDF handles the specular/glossy
// reflection+refraction at the boundary, and the BSSRDF carries
// light that refracts in, scatters through the medium, and exits
// elsewhere on the surface.
type Subsurface struct {
	Eta       float64
	Roughness float64
	Profile   BSSRDF
}

func (s Subsurface) Sample(si SurfaceInteraction, _ float64) (bsdf.BSDF, bool) {
	a := microfacetAlpha(s.Roughness)
	lobe := bxdf.Dielectric{Dist: newTR(a, a), Eta: s.Eta}
	return bsdf.New(si.ShadingNormal, si.Tangent, si.GeometricNormal, lobe), true
}

func (s Subsurface) BSSRDF() *BSSRDF { return &s.Profile }

func (s Subsurface) Alpha(_ SurfaceInteraction) float64 { return 1 }
