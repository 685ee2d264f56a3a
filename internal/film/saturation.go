package film

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lumetrace/lumetrace/internal/core"
)

// ToColorful converts a linear Spectrum into a go-colorful Color so
// go-colorful's color operations have something to work on;
// out-of-gamut components are passed through unclamped.
func ToColorful(c core.Spectrum) colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// IsSaturated reports whether a pixel's accumulated color falls
// outside the displayable [0,1]^3 gamut (any channel below 0 or above
// 1), spec.md §7's saturation counter. The renderer counts these once
// per integrator per render (logged at Warn, not per-occurrence)
// instead of calling this per pixel per sample.
func IsSaturated(c core.Spectrum) bool {
	return !ToColorful(c).IsValid()
}
