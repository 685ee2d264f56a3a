package core

import (
	"math"
	"testing"
)

func TestSpectrumArithmetic(t *testing.T) {
	a := NewSpectrum(1, 2, 3)
	b := NewSpectrum(0.5, 0.5, 0.5)

	if got := a.Add(b); got != (Spectrum{1.5, 2.5, 3.5}) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Sub(b); got != (Spectrum{0.5, 1.5, 2.5}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != (Spectrum{2, 4, 6}) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Mul(Splat(2)); got != (Spectrum{2, 4, 6}) {
		t.Errorf("Mul: got %v", got)
	}
}

func TestSpectrumLuminanceWeights(t *testing.T) {
	white := SpectrumWhite
	if lum := white.Luminance(); math.Abs(lum-1.0) > 1e-9 {
		t.Errorf("expected white luminance 1.0, got %v", lum)
	}
	if lum := SpectrumBlack.Luminance(); lum != 0 {
		t.Errorf("expected black luminance 0, got %v", lum)
	}
}

func TestSpectrumIsBlack(t *testing.T) {
	if !SpectrumBlack.IsBlack() {
		t.Error("expected SpectrumBlack.IsBlack() true")
	}
	if NewSpectrum(0, 0.001, 0).IsBlack() {
		t.Error("expected a nonzero channel to not be black")
	}
}

func TestSpectrumFiniteDetectsNaNAndInf(t *testing.T) {
	if !NewSpectrum(1, 2, 3).Finite() {
		t.Error("expected a finite spectrum to report Finite()")
	}
	if NewSpectrum(math.NaN(), 0, 0).Finite() {
		t.Error("expected NaN channel to report not Finite()")
	}
	if NewSpectrum(math.Inf(1), 0, 0).Finite() {
		t.Error("expected Inf channel to report not Finite()")
	}
}

func TestSpectrumClampNonNegative(t *testing.T) {
	got := NewSpectrum(-1, 2, -0.5).ClampNonNegative()
	if got != (Spectrum{0, 2, 0}) {
		t.Errorf("expected negative channels clamped to zero, got %v", got)
	}
}

func TestSpectrumLerp(t *testing.T) {
	a := NewSpectrum(0, 0, 0)
	b := NewSpectrum(10, 10, 10)
	got := a.Lerp(b, 0.25)
	if got != (Spectrum{2.5, 2.5, 2.5}) {
		t.Errorf("expected lerp at t=0.25 to be 2.5, got %v", got)
	}
}

func TestSpectrumVec3RoundTrip(t *testing.T) {
	s := NewSpectrum(1, 2, 3)
	v := s.AsVec3()
	back := SpectrumFromVec3(v)
	if back != s {
		t.Errorf("expected round trip through Vec3 to be lossless, got %v", back)
	}
}
