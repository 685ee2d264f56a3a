package light

import (
	"math"

	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/distribution"
)

// UniformInfiniteLight returns a constant radiance from every
// direction and uses uniform-sphere sampling, spec.md §4.6.
type UniformInfiniteLight struct {
	L           core.Spectrum
	worldRadius float64
}

func (u *UniformInfiniteLight) IsDelta() bool    { return false }
func (u *UniformInfiniteLight) IsInfinite() bool { return true }

func (u *UniformInfiniteLight) Preprocess(_ core.Vec3, worldRadius float64) {
	u.worldRadius = worldRadius
}

func (u *UniformInfiniteLight) SampleLi(_ core.Vec3, uSample core.Vec2) (LiSample, bool) {
	wi := core.SampleUniformSphere(uSample)
	pdf := core.UniformSpherePDF()
	return LiSample{L: u.L, Wi: wi, Distance: 2 * u.worldRadius, PDF: pdf}, true
}

func (u *UniformInfiniteLight) PDFLi(_ core.Vec3, _ core.Vec3) float64 {
	return core.UniformSpherePDF()
}

func (u *UniformInfiniteLight) SampleLe(u1, u2 core.Vec2) (LeSample, bool) {
	dir := core.SampleUniformSphere(u1).Negate()
	diskPoint := core.SampleUniformDiskConcentric(u2)
	frame := core.FrameFromZ(dir.Negate())
	origin := frame.X.Multiply(diskPoint.X * u.worldRadius).
		Add(frame.Y.Multiply(diskPoint.Y * u.worldRadius)).
		Subtract(dir.Multiply(u.worldRadius))
	area := math.Pi * u.worldRadius * u.worldRadius
	if area == 0 {
		area = 1
	}
	return LeSample{
		Ray:    core.Ray{Origin: origin, Direction: dir},
		Normal: dir.Negate(),
		PDFPos: 1 / area,
		PDFDir: core.UniformSpherePDF(),
		L:      u.L,
	}, true
}

func (u *UniformInfiniteLight) Phi() core.Spectrum {
	area := 4 * math.Pi * u.worldRadius * u.worldRadius
	return u.L.Scale(math.Pi * area)
}

// Le returns the constant emitted radiance toward any direction, used
// by an integrator when a camera or light-subpath ray escapes the
// scene entirely.
func (u *UniformInfiniteLight) Le(_ core.Vec3) core.Spectrum { return u.L }

// InfiniteLe is implemented by every infinite light so an integrator
// can evaluate Le for an escaped ray without a position.
type InfiniteLe interface {
	Le(dir core.Vec3) core.Spectrum
}

// EnvMap is the minimal equirectangular-image contract ImageInfiniteLight
// needs: dimensions and a per-texel lookup.
type EnvMap interface {
	Width() int
	Height() int
	At(x, y int) core.Spectrum
}

// ImageInfiniteLight wraps an equirectangular (theta, phi) environment
// map, precomputing a 2D distribution over luminance * sin(theta) for
// importance sampling, spec.md §4.6.
type ImageInfiniteLight struct {
	Image       EnvMap
	WorldToEnv  core.Transform
	dist        *distribution.Distribution2D
	worldRadius float64
}

// NewImageInfiniteLight builds the luminance*sinTheta importance map.
func NewImageInfiniteLight(img EnvMap, worldToEnv core.Transform) *ImageInfiniteLight {
	w, h := img.Width(), img.Height()
	fn := make([]float64, w*h)
	for y := 0; y < h; y++ {
		theta := (float64(y) + 0.5) / float64(h) * math.Pi
		sinTheta := math.Sin(theta)
		for x := 0; x < w; x++ {
			fn[y*w+x] = img.At(x, y).Luminance() * sinTheta
		}
	}
	return &ImageInfiniteLight{Image: img, WorldToEnv: worldToEnv, dist: distribution.NewDistribution2D(fn, w, h)}
}

func (l *ImageInfiniteLight) IsDelta() bool    { return false }
func (l *ImageInfiniteLight) IsInfinite() bool { return true }

func (l *ImageInfiniteLight) Preprocess(_ core.Vec3, worldRadius float64) { l.worldRadius = worldRadius }

// lookup returns the texel containing (u,v) in [0,1]^2 (nearest texel,
// no interpolation between neighbours).
func (l *ImageInfiniteLight) lookup(u, v float64) core.Spectrum {
	w, h := l.Image.Width(), l.Image.Height()
	x := int(core.Clamp(u, 0, 0.999999) * float64(w))
	y := int(core.Clamp(v, 0, 0.999999) * float64(h))
	return l.Image.At(x, y)
}

// dirFromUV converts equirectangular (u,v) texture coordinates to
// a world-space direction via theta=v*pi, phi=u*2pi, then the stored
// transform.
func (l *ImageInfiniteLight) dirFromUV(u, v float64) core.Vec3 {
	theta := v * math.Pi
	phi := u * 2 * math.Pi
	localDir := core.Vec3{
		X: math.Sin(theta) * math.Cos(phi),
		Y: math.Cos(theta),
		Z: math.Sin(theta) * math.Sin(phi),
	}
	return l.WorldToEnv.Inverse().Vector(localDir).Normalize()
}

func (l *ImageInfiniteLight) uvFromDir(wWorld core.Vec3) (u, v float64) {
	local := l.WorldToEnv.Vector(wWorld).Normalize()
	theta := math.Acos(core.Clamp(local.Y, -1, 1))
	phi := math.Atan2(local.Z, local.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi / (2 * math.Pi), theta / math.Pi
}

func (l *ImageInfiniteLight) SampleLi(_ core.Vec3, uSample core.Vec2) (LiSample, bool) {
	uv, mapPDF := l.dist.SampleContinuous([2]float64{uSample.X, uSample.Y})
	if mapPDF == 0 {
		return LiSample{}, false
	}
	wi := l.dirFromUV(uv[0], uv[1])
	theta := uv[1] * math.Pi
	sinTheta := math.Sin(theta)
	if sinTheta == 0 {
		return LiSample{}, false
	}
	pdf := mapPDF / (2 * math.Pi * math.Pi * sinTheta)
	le := l.lookup(uv[0], uv[1])
	return LiSample{L: le, Wi: wi, Distance: 2 * l.worldRadius, PDF: pdf}, true
}

func (l *ImageInfiniteLight) PDFLi(_ core.Vec3, wi core.Vec3) float64 {
	u, v := l.uvFromDir(wi)
	theta := v * math.Pi
	sinTheta := math.Sin(theta)
	if sinTheta == 0 {
		return 0
	}
	mapPDF := l.dist.PDF([2]float64{u, v})
	return mapPDF / (2 * math.Pi * math.Pi * sinTheta)
}

func (l *ImageInfiniteLight) SampleLe(u1, u2 core.Vec2) (LeSample, bool) {
	li, ok := l.SampleLi(core.Vec3{}, u1)
	if !ok {
		return LeSample{}, false
	}
	dir := li.Wi.Negate()
	diskPoint := core.SampleUniformDiskConcentric(u2)
	frame := core.FrameFromZ(li.Wi)
	origin := frame.X.Multiply(diskPoint.X * l.worldRadius).
		Add(frame.Y.Multiply(diskPoint.Y * l.worldRadius)).
		Subtract(li.Wi.Multiply(l.worldRadius))
	area := math.Pi * l.worldRadius * l.worldRadius
	if area == 0 {
		area = 1
	}
	return LeSample{Ray: core.Ray{Origin: origin, Direction: li.Wi}, Normal: dir, PDFPos: 1 / area, PDFDir: li.PDF, L: li.L}, true
}

func (l *ImageInfiniteLight) Phi() core.Spectrum {
	w, h := l.Image.Width(), l.Image.Height()
	sum := core.SpectrumBlack
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum = sum.Add(l.Image.At(x, y))
		}
	}
	avg := sum.Scale(1 / float64(w*h))
	area := 4 * math.Pi * l.worldRadius * l.worldRadius
	return avg.Scale(math.Pi * area)
}

// Le looks up the environment map in the direction dir is pointing
// away from (the direction a ray left the scene along).
func (l *ImageInfiniteLight) Le(dir core.Vec3) core.Spectrum {
	u, v := l.uvFromDir(dir)
	return l.lookup(u, v)
}
