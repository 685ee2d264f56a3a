package loader

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strings"

	"golang.org/x/image/hdr"

	"github.com/lumetrace/lumetrace/internal/core"
)

// Image is an in-memory float radiance map implementing light.EnvMap,
// decoded from PNG/JPEG (gamma-decoded to linear) or Radiance HDR
// (already linear).
type Image struct {
	width, height int
	pixels        []core.Spectrum
}

func (img *Image) Width() int  { return img.width }
func (img *Image) Height() int { return img.height }

func (img *Image) At(x, y int) core.Spectrum {
	x = clampInt(x, 0, img.width-1)
	y = clampInt(y, 0, img.height-1)
	return img.pixels[y*img.width+x]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LoadImage decodes a texture/environment map from disk. .hdr files
// decode via golang.org/x/image/hdr (already linear radiance); every
// other extension uses the stdlib image registry with an sRGB-to-linear
// decode, since LDR texture and environment-map formats store
// gamma-encoded color.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".hdr") {
		hdrImg, err := hdr.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("loader: hdr decode %q: %w", path, err)
		}
		return fromHDRImage(hdrImg), nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %q: %w", path, err)
	}
	return fromLDRImage(img), nil
}

func fromHDRImage(img image.Image) *Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Image{width: w, height: h, pixels: make([]core.Spectrum, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.pixels[y*w+x] = core.NewSpectrum(float64(r)/65535, float64(g)/65535, float64(bl)/65535)
		}
	}
	return out
}

func fromLDRImage(img image.Image) *Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Image{width: w, height: h, pixels: make([]core.Spectrum, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.pixels[y*w+x] = core.NewSpectrum(
				srgbToLinear(float64(r)/65535),
				srgbToLinear(float64(g)/65535),
				srgbToLinear(float64(bl)/65535),
			)
		}
	}
	return out
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
