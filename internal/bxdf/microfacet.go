package bxdf

import "github.com/lumetrace/lumetrace/internal/microfacet"

// TrowbridgeReitz is the GGX microfacet distribution every rough lobe
// in this package samples and evaluates against; the distribution
// itself lives in internal/microfacet so internal/material can build
// one (material.newTR) without importing bxdf.
type TrowbridgeReitz = microfacet.TrowbridgeReitz

func NewTrowbridgeReitz(alphaX, alphaY float64) TrowbridgeReitz {
	return microfacet.NewTrowbridgeReitz(alphaX, alphaY)
}
