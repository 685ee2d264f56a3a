package material

import "github.com/lumetrace/lumetrace/internal/microfacet"

// microfacetAlpha maps an artist roughness in [0,1] to a GGX alpha.
func microfacetAlpha(roughness float64) float64 {
	return microfacet.RoughnessToAlpha(roughness)
}

func newTR(alphaX, alphaY float64) microfacet.TrowbridgeReitz {
	return microfacet.NewTrowbridgeReitz(alphaX, alphaY)
}
