package film

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumetrace/lumetrace/internal/core"
)

func TestAddSampleAveragesRepeatedSamples(t *testing.T) {
	f := New(4, 4, Box{R: 0.5})
	for i := 0; i < 4; i++ {
		f.AddSample(core.Vec2{X: 1.5, Y: 1.5}, core.NewSpectrum(1, 0, 0))
	}
	got := f.Pixel(1, 1, 4)
	if math.Abs(got.R-1) > 1e-9 {
		t.Errorf("expected averaged red channel 1.0, got %v", got.R)
	}
}

func TestAddSplatIsSeparateFromFilteredSamples(t *testing.T) {
	f := New(2, 2, Box{R: 0.5})
	f.AddSplat(0.5, 0.5, core.NewSpectrum(2, 2, 2))
	got := f.Pixel(0, 0, 1)
	if got != (core.Spectrum{R: 2, G: 2, B: 2}) {
		t.Errorf("expected pure splat contribution, got %v", got)
	}
}

func TestAddSplatOutOfBoundsIsIgnored(t *testing.T) {
	f := New(2, 2, Box{R: 0.5})
	f.AddSplat(-1, -1, core.NewSpectrum(5, 5, 5))
	f.AddSplat(100, 100, core.NewSpectrum(5, 5, 5))
	got := f.Pixel(0, 0, 1)
	if !got.IsBlack() {
		t.Errorf("expected out-of-bounds splats to be dropped, got %v", got)
	}
}

func TestAddSampleIgnoresNonFiniteRadiance(t *testing.T) {
	f := New(2, 2, Box{R: 0.5})
	f.AddSample(core.Vec2{X: 0.5, Y: 0.5}, core.NewSpectrum(math.NaN(), 0, 0))
	got := f.Pixel(0, 0, 1)
	if !got.IsBlack() {
		t.Errorf("expected NaN sample to be dropped, got %v", got)
	}
}

func TestToneMapClampsAndGammaCorrects(t *testing.T) {
	f := New(1, 1, Box{R: 0.5})
	black := f.ToneMap(core.SpectrumBlack)
	if black != (core.Spectrum{}) {
		t.Errorf("expected black to tone-map to black, got %v", black)
	}
	bright := f.ToneMap(core.NewSpectrum(1000, 1000, 1000))
	if bright.R > 1 || bright.R < 0 {
		t.Errorf("expected tone-mapped output within [0,1], got %v", bright.R)
	}
}

// TestFilterReconstructsConstantRadiance is spec.md §8 invariant 6,
// "filter partition of unity": an interior pixel flooded with many
// samples of a constant radiance at uniformly random sub-pixel
// positions must reconstruct to (within MC noise) that same constant,
// for every reconstruction filter -- each pixel's own weighted average
// self-normalizes regardless of how the filter spreads weight across
// neighbors.
func TestFilterReconstructsConstantRadiance(t *testing.T) {
	filters := map[string]Filter{
		"box":      Box{R: 0.5},
		"tent":     Tent{R: 1},
		"gaussian": Gaussian{R: 2, Sigma: 0.5},
	}
	const want = 3.0
	for name, filt := range filters {
		t.Run(name, func(t *testing.T) {
			f := New(9, 9, filt)
			seed := uint64(12345)
			for i := 0; i < 20000; i++ {
				seed = seed*6364136223846793005 + 1442695040888963407
				jx := float64(seed>>33) / float64(1<<31)
				seed = seed*6364136223846793005 + 1442695040888963407
				jy := float64(seed>>33) / float64(1<<31)
				f.AddSample(core.Vec2{X: 4 + jx, Y: 4 + jy}, core.NewSpectrum(want, want, want))
			}
			got := f.Pixel(4, 4, 1)
			if math.Abs(got.R-want) > 0.05*want {
				t.Errorf("%s filter: expected reconstructed radiance near %v, got %v", name, want, got.R)
			}
		})
	}
}

func TestWritePPMProducesValidHeader(t *testing.T) {
	f := New(3, 2, Box{R: 0.5})
	f.AddSplat(0.5, 0.5, core.NewSpectrum(1, 1, 1))

	path := filepath.Join(t.TempDir(), "out.ppm")
	if err := f.WritePPM(path, 1); err != nil {
		t.Fatalf("WritePPM returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written PPM: %v", err)
	}
	wantHeader := "P6\n3 2\n255\n"
	if len(data) < len(wantHeader) || string(data[:len(wantHeader)]) != wantHeader {
		t.Errorf("expected PPM header %q, got %q", wantHeader, string(data[:min(len(wantHeader), len(data))]))
	}
	wantBytes := len(wantHeader) + 3*2*3
	if len(data) != wantBytes {
		t.Errorf("expected %d total bytes, got %d", wantBytes, len(data))
	}
}
