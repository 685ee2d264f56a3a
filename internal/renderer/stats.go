package renderer

import "math"

// PixelStats accumulates running moments for one pixel's samples,
// grounded on the teacher's pkg/renderer/stats.go PixelStats, adapted
// from core.Vec3 color accumulation to core.Spectrum + Luminance.
type PixelStats struct {
	ColorSum       [3]float64
	LuminanceSum   float64
	LuminanceSqSum float64
	SampleCount    int
}

// AddSample folds one more (R,G,B) sample into the running moments.
func (ps *PixelStats) AddSample(r, g, b float64) {
	ps.ColorSum[0] += r
	ps.ColorSum[1] += g
	ps.ColorSum[2] += b
	lum := 0.2126*r + 0.7152*g + 0.0722*b
	ps.LuminanceSum += lum
	ps.LuminanceSqSum += lum * lum
	ps.SampleCount++
}

// Mean returns the running mean color.
func (ps *PixelStats) Mean() (r, g, b float64) {
	if ps.SampleCount == 0 {
		return 0, 0, 0
	}
	n := float64(ps.SampleCount)
	return ps.ColorSum[0] / n, ps.ColorSum[1] / n, ps.ColorSum[2] / n
}

// relativeError returns the standard error of the luminance mean
// divided by the mean itself (coefficient of variation of the mean),
// the teacher's adaptive-sampling criterion: a pixel that has
// converged has a small relative error regardless of its absolute
// brightness.
func (ps *PixelStats) relativeError() float64 {
	if ps.SampleCount < 2 {
		return math.Inf(1)
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceSum / n
	if mean <= 1e-8 {
		return 0
	}
	variance := ps.LuminanceSqSum/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	stderr := math.Sqrt(variance / n)
	return stderr / mean
}

// ShouldStopSampling reports whether a pixel has taken at least
// minSamples and its relative error has fallen under threshold, the
// per-pixel adaptive-sampling stop rule; a pixel that never converges
// still stops once it hits maxSamples.
func ShouldStopSampling(ps *PixelStats, minSamples, maxSamples int, threshold float64) bool {
	if ps.SampleCount >= maxSamples {
		return true
	}
	if ps.SampleCount < minSamples {
		return false
	}
	return ps.relativeError() < threshold
}

// RenderStats summarizes sample distribution across an entire render,
// reported alongside the final image; grounded on the teacher's
// RenderStats.
type RenderStats struct {
	TotalPixels    int
	TotalSamples   int64
	AverageSamples float64
	MinSamples     int
	MaxSamples     int
	SaturatedCount int64
}

// Finalize computes Average/Min/Max from a slice of per-pixel sample
// counts collected during the render.
func (rs *RenderStats) Finalize(sampleCounts []int) {
	rs.TotalPixels = len(sampleCounts)
	if rs.TotalPixels == 0 {
		return
	}
	rs.MinSamples = sampleCounts[0]
	rs.MaxSamples = sampleCounts[0]
	var total int64
	for _, n := range sampleCounts {
		total += int64(n)
		if n < rs.MinSamples {
			rs.MinSamples = n
		}
		if n > rs.MaxSamples {
			rs.MaxSamples = n
		}
	}
	rs.TotalSamples = total
	rs.AverageSamples = float64(total) / float64(rs.TotalPixels)
}
