package bxdf

import (
	"math"
	"testing"

	"github.com/lumetrace/lumetrace/internal/core"
)

func TestLambertianFIsZeroAcrossHemispheres(t *testing.T) {
	l := NewLambertian(core.NewSpectrum(0.8, 0.8, 0.8))
	wo := core.Vec3{X: 0, Y: 0, Z: 1}
	wiBelow := core.Vec3{X: 0, Y: 0, Z: -1}
	if f := l.F(wo, wiBelow, ToLight); !f.IsBlack() {
		t.Errorf("expected zero reflectance across hemispheres, got %v", f)
	}
}

func TestLambertianFMatchesROverPi(t *testing.T) {
	r := core.NewSpectrum(0.6, 0.4, 0.2)
	l := NewLambertian(r)
	wo := core.Vec3{Z: 1}
	wi := core.Vec3{Z: 1}
	got := l.F(wo, wi, ToLight)
	want := r.Scale(1 / math.Pi)
	if got != want {
		t.Errorf("expected f = R/pi = %v, got %v", want, got)
	}
}

func TestLambertianSampleFConsistentWithPDF(t *testing.T) {
	l := NewLambertian(core.NewSpectrum(0.5, 0.5, 0.5))
	wo := core.Vec3{Z: 1}
	sample, ok := l.SampleF(wo, 0, core.Vec2{X: 0.3, Y: 0.7}, ToLight, SampleAll)
	if !ok {
		t.Fatal("expected SampleF to succeed for a non-black Lambertian")
	}
	if sample.PDF <= 0 {
		t.Errorf("expected positive PDF, got %v", sample.PDF)
	}
	gotPDF := l.PDF(wo, sample.Wi, ToLight, SampleAll)
	if math.Abs(gotPDF-sample.PDF) > 1e-9 {
		t.Errorf("expected PDF() to match the PDF returned by SampleF, got %v vs %v", gotPDF, sample.PDF)
	}
}

func TestLambertianBlackReflectanceNeverSamples(t *testing.T) {
	l := NewLambertian(core.SpectrumBlack)
	if l.Flags() != Unset {
		t.Errorf("expected a black Lambertian to report Unset flags, got %v", l.Flags())
	}
	_, ok := l.SampleF(core.Vec3{Z: 1}, 0, core.Vec2{}, ToLight, SampleAll)
	if ok {
		t.Error("expected SampleF to fail for a black Lambertian")
	}
}
