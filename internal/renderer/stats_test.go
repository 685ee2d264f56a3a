package renderer

import "testing"

func TestPixelStatsMeanOfConstantSamples(t *testing.T) {
	var ps PixelStats
	for i := 0; i < 10; i++ {
		ps.AddSample(0.5, 0.5, 0.5)
	}
	r, g, b := ps.Mean()
	if r != 0.5 || g != 0.5 || b != 0.5 {
		t.Errorf("expected mean (0.5,0.5,0.5), got (%v,%v,%v)", r, g, b)
	}
}

func TestShouldStopSamplingRespectsMinSamples(t *testing.T) {
	var ps PixelStats
	ps.AddSample(1, 1, 1)
	if ShouldStopSampling(&ps, 4, 256, 0.05) {
		t.Error("expected sampling to continue before reaching minSamples")
	}
}

func TestShouldStopSamplingStopsAtMaxRegardlessOfVariance(t *testing.T) {
	var ps PixelStats
	for i := 0; i < 8; i++ {
		// Alternating bright/dark samples keep relative error high.
		if i%2 == 0 {
			ps.AddSample(10, 10, 10)
		} else {
			ps.AddSample(0, 0, 0)
		}
	}
	if !ShouldStopSampling(&ps, 2, 8, 0.001) {
		t.Error("expected sampling to stop once maxSamples is reached")
	}
}

func TestShouldStopSamplingConvergesOnConstantSignal(t *testing.T) {
	var ps PixelStats
	for i := 0; i < 16; i++ {
		ps.AddSample(1, 1, 1)
	}
	if !ShouldStopSampling(&ps, 4, 256, 0.05) {
		t.Error("expected a zero-variance pixel to converge before maxSamples")
	}
}

func TestRenderStatsFinalize(t *testing.T) {
	var rs RenderStats
	rs.Finalize([]int{4, 8, 2, 16})
	if rs.TotalPixels != 4 {
		t.Errorf("expected 4 pixels, got %d", rs.TotalPixels)
	}
	if rs.TotalSamples != 30 {
		t.Errorf("expected 30 total samples, got %d", rs.TotalSamples)
	}
	if rs.MinSamples != 2 || rs.MaxSamples != 16 {
		t.Errorf("expected min/max 2/16, got %d/%d", rs.MinSamples, rs.MaxSamples)
	}
	if rs.AverageSamples != 7.5 {
		t.Errorf("expected average 7.5, got %v", rs.AverageSamples)
	}
}

func TestRenderStatsFinalizeEmpty(t *testing.T) {
	var rs RenderStats
	rs.Finalize(nil)
	if rs.TotalPixels != 0 {
		t.Errorf("expected 0 pixels for empty input, got %d", rs.TotalPixels)
	}
}
