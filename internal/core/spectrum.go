package core

import "math"

// Spectrum is a three-channel (R,G,B) radiometric quantity. It is a
// distinct type from Vec3 even though the underlying arithmetic is
// identical, so that color and geometry are never silently mixed up.
type Spectrum struct {
	R, G, B float64
}

var (
	SpectrumBlack = Spectrum{}
	SpectrumWhite = Spectrum{1, 1, 1}
)

func NewSpectrum(r, g, b float64) Spectrum { return Spectrum{r, g, b} }

// Splat returns a Spectrum with all three channels set to v.
func Splat(v float64) Spectrum { return Spectrum{v, v, v} }

func (s Spectrum) Add(o Spectrum) Spectrum {
	return Spectrum{s.R + o.R, s.G + o.G, s.B + o.B}
}

func (s Spectrum) Sub(o Spectrum) Spectrum {
	return Spectrum{s.R - o.R, s.G - o.G, s.B - o.B}
}

func (s Spectrum) Mul(o Spectrum) Spectrum {
	return Spectrum{s.R * o.R, s.G * o.G, s.B * o.B}
}

func (s Spectrum) Scale(k float64) Spectrum {
	return Spectrum{s.R * k, s.G * k, s.B * k}
}

// Div divides component-wise; callers must ensure o has no zero
// channel (checked by IsBlack at call sites where that matters).
func (s Spectrum) Div(o Spectrum) Spectrum {
	return Spectrum{s.R / o.R, s.G / o.G, s.B / o.B}
}

func (s Spectrum) Luminance() float64 {
	return 0.2126*s.R + 0.7152*s.G + 0.0722*s.B
}

func (s Spectrum) MaxComponent() float64 {
	return math.Max(s.R, math.Max(s.G, s.B))
}

func (s Spectrum) IsBlack() bool { return s.R == 0 && s.G == 0 && s.B == 0 }

func (s Spectrum) HasNaN() bool {
	return math.IsNaN(s.R) || math.IsNaN(s.G) || math.IsNaN(s.B)
}

func (s Spectrum) HasInf() bool {
	return math.IsInf(s.R, 0) || math.IsInf(s.G, 0) || math.IsInf(s.B, 0)
}

// Finite reports whether every channel is a finite number (no NaN, no
// ±Inf); negative values pass. Construction sites that accept arbitrary input should check
// this and clamp to black, counting a saturation occurrence (spec.md §7).
func (s Spectrum) Finite() bool {
	return !s.HasNaN() && !s.HasInf()
}

// ClampNonNegative clamps negative channels (which can appear from
// floating-point error in BSDF evaluation) to zero.
func (s Spectrum) ClampNonNegative() Spectrum {
	return Spectrum{math.Max(0, s.R), math.Max(0, s.G), math.Max(0, s.B)}
}

func (s Spectrum) Lerp(o Spectrum, t float64) Spectrum {
	return s.Scale(1 - t).Add(o.Scale(t))
}

// AsVec3/SpectrumFromVec3 bridge the two triple types at the few sites
// (texture lookups, vertex throughput math shared with geometry) where
// that is unavoidable.
func (s Spectrum) AsVec3() Vec3        { return Vec3{s.R, s.G, s.B} }
func SpectrumFromVec3(v Vec3) Spectrum { return Spectrum{v.X, v.Y, v.Z} }
