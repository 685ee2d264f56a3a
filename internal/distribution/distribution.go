// Package distribution implements piecewise-constant CDF inversion for
// both continuous (Distribution1D/2D) and discrete sampling, used by
// image-infinite-light importance sampling and by power-weighted
// light selection.
package distribution

import "sort"

// Distribution1D supports continuous sampling (SampleContinuous) and
// discrete sampling (SampleDiscrete) over a piecewise-constant
// function given by its per-interval values.
type Distribution1D struct {
	fn     []float64
	cdf    []float64 // len(fn)+1
	funcInt float64
}

func NewDistribution1D(fn []float64) *Distribution1D {
	n := len(fn)
	d := &Distribution1D{fn: append([]float64(nil), fn...), cdf: make([]float64, n+1)}
	for i := 1; i <= n; i++ {
		d.cdf[i] = d.cdf[i-1] + fn[i-1]/float64(n)
	}
	d.funcInt = d.cdf[n]
	if d.funcInt == 0 {
		for i := 1; i <= n; i++ {
			d.cdf[i] = float64(i) / float64(n)
		}
	} else {
		for i := 1; i <= n; i++ {
			d.cdf[i] /= d.funcInt
		}
	}
	return d
}

func (d *Distribution1D) Count() int { return len(d.fn) }

// SampleContinuous inverts u against the CDF, returning the sampled
// value in [0,1), its PDF, and the offset (interval index) it fell in.
func (d *Distribution1D) SampleContinuous(u float64) (sample, pdf float64, offset int) {
	offset = d.findInterval(u)
	du := u - d.cdf[offset]
	if diff := d.cdf[offset+1] - d.cdf[offset]; diff > 0 {
		du /= diff
	}
	if d.funcInt > 0 {
		pdf = d.fn[offset] / d.funcInt
	}
	sample = (float64(offset) + du) / float64(len(d.fn))
	return sample, pdf, offset
}

// SampleDiscrete returns the index of the weighted interval containing
// u, and its selection PDF.
func (d *Distribution1D) SampleDiscrete(u float64) (index int, pdf float64) {
	offset := d.findInterval(u)
	if d.funcInt > 0 {
		pdf = d.fn[offset] / (d.funcInt * float64(len(d.fn)))
	} else {
		pdf = 1 / float64(len(d.fn))
	}
	return offset, pdf
}

func (d *Distribution1D) DiscretePDF(index int) float64 {
	if d.funcInt == 0 {
		return 1 / float64(len(d.fn))
	}
	return d.fn[index] / (d.funcInt * float64(len(d.fn)))
}

func (d *Distribution1D) findInterval(u float64) int {
	i := sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > u }) - 1
	if i < 0 {
		i = 0
	}
	if i > len(d.fn)-1 {
		i = len(d.fn) - 1
	}
	return i
}

func (d *Distribution1D) FuncInt() float64 { return d.funcInt }

// Distribution2D samples a 2D piecewise-constant function as a
// marginal Distribution1D over rows and a conditional Distribution1D
// per row, as used by ImageInfiniteLight over (theta, phi).
type Distribution2D struct {
	conditional []*Distribution1D
	marginal    *Distribution1D
	nu, nv      int
}

func NewDistribution2D(fn []float64, nu, nv int) *Distribution2D {
	conditional := make([]*Distribution1D, nv)
	marginalFunc := make([]float64, nv)
	for v := 0; v < nv; v++ {
		row := fn[v*nu : v*nu+nu]
		conditional[v] = NewDistribution1D(row)
		marginalFunc[v] = conditional[v].FuncInt()
	}
	return &Distribution2D{
		conditional: conditional,
		marginal:    NewDistribution1D(marginalFunc),
		nu:          nu, nv: nv,
	}
}

// SampleContinuous samples (u,v) in [0,1)^2 with the joint PDF over
// solid angle / image area.
func (d *Distribution2D) SampleContinuous(u [2]float64) (sample [2]float64, pdf float64) {
	d1, pdf1, v := d.marginal.SampleContinuous(u[1])
	d0, pdf0, _ := d.conditional[v].SampleContinuous(u[0])
	return [2]float64{d0, d1}, pdf0 * pdf1
}

func (d *Distribution2D) PDF(p [2]float64) float64 {
	iu := clampIndex(int(p[0]*float64(d.nu)), d.nu)
	iv := clampIndex(int(p[1]*float64(d.nv)), d.nv)
	if d.marginal.FuncInt() == 0 {
		return 0
	}
	return d.conditional[iv].fn[iu] / d.marginal.FuncInt()
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
