// Package sampler implements the per-pixel-sample 1D/2D draw sources
// (independent and stratified), keyed for reproducibility by
// (seed, pixel, sample index, dimension).
package sampler

import (
	"github.com/lumetrace/lumetrace/internal/core"
	"github.com/lumetrace/lumetrace/internal/rng"
)

// Sampler produces the stream of 1D/2D samples consumed by a single
// pixel-sample's path. Clone() must produce an independent generator
// of the same kind so tiles can run concurrently without sharing state.
type Sampler interface {
	SamplesPerPixel() int
	StartPixelSample(pixel [2]int, sampleIndex int)
	Next1D() float64
	Next2D() core.Vec2
	Clone(seed uint64) Sampler
}

// Independent draws every dimension from a fresh PCG32 stream keyed by
// (pixel, sample index, dimension) -- no stratification, no
// correlation between dimensions.
type Independent struct {
	seed  uint64
	spp   int
	pixel [2]int
	index int
	dim   uint64
	rng   *rng.PCG32
}

func NewIndependent(spp int, seed uint64) *Independent {
	return &Independent{seed: seed, spp: spp, rng: rng.NewPCG32(seed, 0)}
}

func (s *Independent) SamplesPerPixel() int { return s.spp }

func (s *Independent) StartPixelSample(pixel [2]int, sampleIndex int) {
	s.pixel = pixel
	s.index = sampleIndex
	s.dim = 0
	stream := rng.HashStream(pixel[0], pixel[1], uint64(sampleIndex), 0)
	s.rng = rng.NewPCG32(s.seed, stream)
}

func (s *Independent) Next1D() float64 {
	s.dim++
	return s.rng.Float64()
}

func (s *Independent) Next2D() core.Vec2 {
	x := s.Next1D()
	y := s.Next1D()
	return core.Vec2{X: x, Y: y}
}

func (s *Independent) Clone(seed uint64) Sampler {
	return NewIndependent(s.spp, seed)
}

// Stratified subdivides [0,1) into spp strata per 1D dimension (and a
// sqrt(spp) x sqrt(spp) grid per 2D dimension), then shuffles strata
// order with a Kensler permutation of the sample index keyed by
// (pixel, dim) so adjacent pixels don't share the same jittered
// pattern; the seed feeds only the jitter stream.
type Stratified struct {
	spp       int
	strataX   int // for 2D dims: sqrt(spp) rounded up
	strataY   int
	jitter    bool
	seed      uint64
	pixel     [2]int
	index     int
	dim       uint64
	rng       *rng.PCG32
}

func NewStratified(spp int, jitter bool, seed uint64) *Stratified {
	sx, sy := factorSquareish(spp)
	return &Stratified{spp: spp, strataX: sx, strataY: sy, jitter: jitter, seed: seed}
}

func factorSquareish(spp int) (int, int) {
	if spp <= 1 {
		return 1, 1
	}
	x := 1
	for x*x < spp {
		x++
	}
	y := (spp + x - 1) / x
	return x, y
}

func (s *Stratified) SamplesPerPixel() int { return s.spp }

func (s *Stratified) StartPixelSample(pixel [2]int, sampleIndex int) {
	s.pixel = pixel
	s.index = sampleIndex
	s.dim = 0
	stream := rng.HashStream(pixel[0], pixel[1], uint64(sampleIndex), 0xABCD)
	s.rng = rng.NewPCG32(s.seed, stream)
}

// kenslerPermute implements Andrew Kensler's "Correlated Multi-Jittered
// Sampling" permutation: a bijection on [0,l) parameterized by a seed,
// used so each pixel's strata are visited in a distinct pseudo-random
// order without needing to materialize a shuffled array.
func kenslerPermute(i, l uint32, seed uint32) uint32 {
	if l <= 1 {
		return 0
	}
	w := l - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16
	for {
		i ^= seed
		i *= 0xe170893d
		i ^= seed >> 16
		i ^= (i & w) >> 4
		i ^= seed >> 8
		i *= 0x0929eb3f
		i ^= seed >> 23
		i ^= (i & w) >> 1
		i *= 1 | seed>>27
		i *= 0x6935fa69
		i ^= (i & w) >> 11
		i *= 0x74dcb303
		i ^= (i & w) >> 2
		i *= 0x9e501cc3
		i ^= (i & w) >> 2
		i *= 0xc860a3df
		i &= w
		i ^= i >> 5
		if i < l {
			return (i + seed) % l
		}
	}
}

func (s *Stratified) Next1D() float64 {
	s.dim++
	streamSeed := uint32(rng.HashStream(s.pixel[0], s.pixel[1], s.dim, 0x5151))
	stratum := kenslerPermute(uint32(s.index), uint32(s.spp), streamSeed)
	delta := 0.5
	if s.jitter {
		delta = s.rng.Float64()
	}
	return core.Clamp((float64(stratum)+delta)/float64(s.spp), 0, oneMinusEpsilon)
}

func (s *Stratified) Next2D() core.Vec2 {
	s.dim++
	n := s.strataX * s.strataY
	streamSeed := uint32(rng.HashStream(s.pixel[0], s.pixel[1], s.dim, 0x9e3d))
	stratum := kenslerPermute(uint32(s.index%n), uint32(n), streamSeed)
	sx := int(stratum) % s.strataX
	sy := int(stratum) / s.strataX
	dx, dy := 0.5, 0.5
	if s.jitter {
		dx, dy = s.rng.Float64(), s.rng.Float64()
	}
	return core.Vec2{
		X: core.Clamp((float64(sx)+dx)/float64(s.strataX), 0, oneMinusEpsilon),
		Y: core.Clamp((float64(sy)+dy)/float64(s.strataY), 0, oneMinusEpsilon),
	}
}

func (s *Stratified) Clone(seed uint64) Sampler {
	return NewStratified(s.spp, s.jitter, seed)
}

const oneMinusEpsilon = 0.99999994
