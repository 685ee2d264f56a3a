package material

import (
	"github.com/lumetrace/lumetrace/internal/bsdf"
	"github.com/lumetrace/lumetrace/internal/bxdf"
	"github.com/lumetrace/lumetrace/internal/core"
)

// Diffuse is a pure Lambertian material.
type Diffuse struct {
	Reflectance core.Spectrum
}

func (d Diffuse) Sample(si SurfaceInteraction, _ float64) (bsdf.BSDF, bool) {
	lobe := bxdf.Lambertian{R: d.Reflectance}
	return bsdf.New(si.ShadingNormal, si.Tangent, si.GeometricNormal, lobe), true
}

func (d Diffuse) BSSRDF() *BSSRDF { return nil }

func (d Diffuse) Alpha(_ SurfaceInteraction) float64 { return 1 }

// Conductor is a metallic material.
type Conductor struct {
	Eta, K       core.Spectrum
	Roughness    float64
	MultiScatter bool
}

func (c Conductor) Sample(si SurfaceInteraction, _ float64) (bsdf.BSDF, bool) {
	a := microfacetAlpha(c.Roughness)
	lobe := bxdf.Conductor{Dist: newTR(a, a), Eta: c.Eta, K: c.K, MultiScatter: c.MultiScatter}
	return bsdf.New(si.ShadingNormal, si.Tangent, si.GeometricNormal, lobe), true
}

func (c Conductor) BSSRDF() *BSSRDF { return nil }

func (c Conductor) Alpha(_ SurfaceInteraction) float64 { return 1 }

// Glass is a smooth or rough dielectric.
type Glass struct {
	Eta          float64
	Roughness    float64
	MultiScatter bool
}

func (g Glass) Sample(si SurfaceInteraction, _ float64) (bsdf.BSDF, bool) {
	a := microfacetAlpha(g.Roughness)
	lobe := bxdf.Dielectric{Dist: newTR(a, a), Eta: g.Eta, MultiScatter: g.MultiScatter}
	return bsdf.New(si.ShadingNormal, si.Tangent, si.GeometricNormal, lobe), true
}

func (g Glass) BSSRDF() *BSSRDF { return nil }

func (g Glass) Alpha(_ SurfaceInteraction) float64 { return 1 }
