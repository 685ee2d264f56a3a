// Package rng implements the PCG32 generator used as the renderer's
// single source of randomness, with explicit stream derivation so
// renders are reproducible across worker goroutines.
package rng

// PCG32 is the O'Neill PCG family generator with 64-bit state and
// 64-bit stream selector, grounded on
// original_source/include/bulbit/random.h.
type PCG32 struct {
	state uint64
	inc   uint64
}

const (
	pcgDefaultState = 0x853c49e6748fea9b
	pcgDefaultInc   = 0xda3e39cb94b95bdb
	pcgMult         = 0x5851f42d4c957f2d
)

// NewPCG32 creates a generator seeded from (seqIndex, seed), matching
// pcg32_srandom_r's two-argument seeding.
func NewPCG32(seed, seqIndex uint64) *PCG32 {
	p := &PCG32{}
	p.Seed(seed, seqIndex)
	return p
}

func (p *PCG32) Seed(seed, seqIndex uint64) {
	p.state = 0
	p.inc = (seqIndex << 1) | 1
	p.step()
	p.state += seed
	p.step()
}

func (p *PCG32) step() {
	p.state = p.state*pcgMult + p.inc
}

// Uint32 returns the next 32-bit output.
func (p *PCG32) Uint32() uint32 {
	oldState := p.state
	p.step()
	xorshifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a value in [0,1).
func (p *PCG32) Float64() float64 {
	return float64(p.Uint32()) / 4294967296.0
}

// UintBounded returns a value in [0, bound) without modulo bias.
func (p *PCG32) UintBounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		r := p.Uint32()
		if r >= threshold {
			return r % bound
		}
	}
}

// Advance jumps the generator forward (or backward) delta steps in
// O(log delta) time, used to decorrelate per-dimension substreams
// derived from the same seed.
func (p *PCG32) Advance(delta uint64) {
	curMult := uint64(pcgMult)
	curPlus := p.inc
	accMult := uint64(1)
	accPlus := uint64(0)
	d := delta
	for d > 0 {
		if d&1 != 0 {
			accMult *= curMult
			accPlus = accPlus*curMult + curPlus
		}
		curPlus = (curMult + 1) * curPlus
		curMult *= curMult
		d >>= 1
	}
	p.state = accMult*p.state + accPlus
}

// HashStream derives a stream id from (pixel, sampleIndex, dimension),
// per spec.md §9's RNG design note. Uses the MurmurHash3 64-bit
// finalizer (fmix64) rather than a library hash: the inputs are three small integers and a
// dependency would only wrap this one-liner.
func HashStream(px, py int, sampleIndex, dimension uint64) uint64 {
	h := uint64(px)*2654435761 ^ uint64(py)*40503 ^ sampleIndex*2246822519 ^ dimension*3266489917
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
