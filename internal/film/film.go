package film

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/lumetrace/lumetrace/internal/core"
)

// pixel holds a weighted running sum of filtered sample contributions
// plus a separate splat accumulator for light-tracing/BDPT t=1
// contributions, which carry no filter weight (spec.md §4.11).
type pixel struct {
	sumR, sumG, sumB uint64 // atomic float64 bit patterns, CAS-updated
	weight           uint64
	splatR, splatG, splatB uint64
}

// Film is the tile-friendly pixel accumulator. AddSample/AddSplat are
// safe to call concurrently from any tile worker without a shared lock,
// via compare-and-swap on the float64 bit pattern of each channel.
type Film struct {
	width, height int
	filter        Filter
	pixels        []pixel
}

func New(width, height int, filter Filter) *Film {
	return &Film{width: width, height: height, filter: filter, pixels: make([]pixel, width*height)}
}

func (f *Film) Width() int  { return f.width }
func (f *Film) Height() int { return f.height }

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(newVal)) {
			return
		}
	}
}

// AddSample splats a filtered radiance contribution from a sample at
// film position `p` (pixel-space, including the filter-warped offset)
// into every pixel whose filter support covers it.
func (f *Film) AddSample(p core.Vec2, L core.Spectrum) {
	if !L.Finite() {
		return
	}
	radius := f.filter.Radius()
	x0 := int(math.Ceil(p.X - radius.X - 0.5))
	x1 := int(math.Floor(p.X + radius.X - 0.5))
	y0 := int(math.Ceil(p.Y - radius.Y - 0.5))
	y1 := int(math.Floor(p.Y + radius.Y - 0.5))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, f.width-1), min(y1, f.height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			offset := core.Vec2{X: p.X - (float64(x) + 0.5), Y: p.Y - (float64(y) + 0.5)}
			w := f.filter.Evaluate(offset)
			if w == 0 {
				continue
			}
			px := &f.pixels[y*f.width+x]
			atomicAddFloat64(&px.sumR, L.R*w)
			atomicAddFloat64(&px.sumG, L.G*w)
			atomicAddFloat64(&px.sumB, L.B*w)
			atomicAddFloat64(&px.weight, w)
		}
	}
}

// AddSplat adds an unfiltered light-tracing/BDPT/SPPM contribution
// directly to the pixel containing raster position (x,y), spec.md
// §4.11's "splat bucket." x and y are float64 (rather than pre-rounded
// ints) so it satisfies integrator.Film, whose callers only have a
// sub-pixel raster position from Camera.SampleWi to work with.
func (f *Film) AddSplat(x, y float64, L core.Spectrum) {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	if ix < 0 || ix >= f.width || iy < 0 || iy >= f.height || !L.Finite() {
		return
	}
	px := &f.pixels[iy*f.width+ix]
	atomicAddFloat64(&px.splatR, L.R)
	atomicAddFloat64(&px.splatG, L.G)
	atomicAddFloat64(&px.splatB, L.B)
}

// Resolution reports the film's pixel dimensions, satisfying
// integrator.Film.
func (f *Film) Resolution() (int, int) { return f.width, f.height }

// Pixel returns the filter-weighted average of the pixel's samples plus
// its splat accumulator divided by samplesPerPixel (splats add one
// contribution per sample, so the division turns their sum into a
// mean), clamped to non-negative.
func (f *Film) Pixel(x, y int, samplesPerPixel int) core.Spectrum {
	px := &f.pixels[y*f.width+x]
	weight := math.Float64frombits(atomic.LoadUint64(&px.weight))
	sum := core.NewSpectrum(
		math.Float64frombits(atomic.LoadUint64(&px.sumR)),
		math.Float64frombits(atomic.LoadUint64(&px.sumG)),
		math.Float64frombits(atomic.LoadUint64(&px.sumB)),
	)
	var filtered core.Spectrum
	if weight > 0 {
		filtered = sum.Scale(1 / weight)
	}
	splat := core.NewSpectrum(
		math.Float64frombits(atomic.LoadUint64(&px.splatR)),
		math.Float64frombits(atomic.LoadUint64(&px.splatG)),
		math.Float64frombits(atomic.LoadUint64(&px.splatB)),
	)
	if samplesPerPixel > 0 {
		splat = splat.Scale(1 / float64(samplesPerPixel))
	}
	return filtered.Add(splat).ClampNonNegative()
}

// ToneMap applies a Reinhard tone-map curve (L/(1+L) per channel)
// before gamma encoding; a minimal, well-understood hook so the
// Film's PPM dump is directly viewable.
func (f *Film) ToneMap(c core.Spectrum) core.Spectrum {
	tone := func(v float64) float64 { return v / (1 + v) }
	gamma := func(v float64) float64 { return math.Pow(core.Clamp(v, 0, 1), 1/2.2) }
	return core.NewSpectrum(gamma(tone(c.R)), gamma(tone(c.G)), gamma(tone(c.B)))
}

// WritePPM dumps the current film state as a binary PPM, a debug
// format with no external codec dependency, used by the CLI for its
// output image.
func (f *Film) WritePPM(path string, samplesPerPixel int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "P6\n%d %d\n255\n", f.width, f.height); err != nil {
		return err
	}
	buf := make([]byte, f.width*f.height*3)
	i := 0
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			c := f.ToneMap(f.Pixel(x, y, samplesPerPixel))
			buf[i] = byte(core.Clamp(c.R, 0, 1) * 255)
			buf[i+1] = byte(core.Clamp(c.G, 0, 1) * 255)
			buf[i+2] = byte(core.Clamp(c.B, 0, 1) * 255)
			i += 3
		}
	}
	_, err = file.Write(buf)
	return err
}
