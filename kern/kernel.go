package kern

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gptools/gogp/mpdiff"
	"github.com/gptools/gogp/utils"
)

var ErrNumDim = errors.New("kern: number of dimensions must be positive")
var ErrNumParams = errors.New("kern: hyperparameter count does not match number of dimensions")
var ErrDimMismatch = errors.New("kern: input dimension does not match kernel")

// Kernel is a stationary covariance kernel evaluated on a batch of
// input-difference vectors.
type Kernel interface {
	// Number of input dimensions :math:`N`.
	NumDim() int

	// Covariance at each row of the (M, N) batch of difference vectors
	// tau, including the :math:`\sigma^2` prefactor. A non-empty
	// multi-index b requests the mixed partial derivative of the
	// covariance instead: one dimension index per differentiation,
	// repeats allowed, order irrelevant.
	Cov(tau *mat.Dense, b []int) []float64
}

// envelope is a kernel of the form :math:`f(y(\tau))`, split into an
// outer derivative with respect to the radial argument y and an inner
// derivative of y with respect to the inputs.
type envelope interface {
	outerDeriv(y []float64, n int) []float64
	innerDeriv(tau *mat.Dense, b []int, r2l2 []float64) []float64
	radialArg(tau *mat.Dense) (y, r2l2 []float64)
}

// chainCov assembles the mixed partial derivative of f(y(tau)) via Faa
// di Bruno's formula: a sum over the set partitions of b, each
// partition contributing the |p|-th envelope derivative times the
// product of the blocks' inner derivatives. An empty b yields the
// plain kernel value.
func chainCov(e envelope, tau *mat.Dense, b []int) []float64 {
	y, r2l2 := e.radialArg(tau)
	out := make([]float64, len(y))
	for _, p := range utils.SetPartitions(b) {
		term := e.outerDeriv(y, len(p))
		for _, block := range p {
			floats.Mul(term, e.innerDeriv(tau, block, r2l2))
		}
		floats.Add(out, term)
	}
	return out
}

// radial carries the anisotropic radial argument shared by the Matern
// family, :math:`y(\tau) = \sqrt{2\nu\sum_i \tau_i^2/l_i^2}`, and its
// derivatives.
type radial struct {
	numDim int
	nu     float64
	ls     []float64 // Per-dimension length scales.
}

// scaledDist computes the anisotropically scaled squared distance r2l2
// for each row of tau.
func (r *radial) scaledDist(tau *mat.Dense) []float64 {
	m, n := tau.Dims()
	if n != r.numDim {
		panic(ErrDimMismatch)
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		s := 0.0
		for d, t := range tau.RawRowView(i) {
			v := t / r.ls[d]
			s += v * v
		}
		out[i] = s
	}
	return out
}

func (r *radial) radialArg(tau *mat.Dense) (y, r2l2 []float64) {
	r2l2 = r.scaledDist(tau)
	y = make([]float64, len(r2l2))
	for i, v := range r2l2 {
		y[i] = math.Sqrt(2 * r.nu * v)
	}
	return y, r2l2
}

// innerDeriv evaluates the mixed partial derivative of the radial
// argument with respect to the dimensions named in b, one value per
// row, via Faa di Bruno's formula over the set partitions of b. Rows
// at the origin cannot use the closed form (it divides by powers of
// r2l2) and fall back to numerical differentiation.
func (r *radial) innerDeriv(tau *mat.Dense, b []int, r2l2 []float64) []float64 {
	out := make([]float64, len(r2l2))
	for _, p := range utils.SetPartitions(b) {
		np := len(p)
		coeff := math.Sqrt(2*r.nu) * poch(1.5-float64(np), np)
		term := make([]float64, len(r2l2))
		for i, v := range r2l2 {
			if v != 0 {
				term[i] = coeff * math.Pow(v, 0.5-float64(np))
			}
		}
		for _, block := range p {
			floats.Mul(term, r.distDeriv(tau, block))
		}
		floats.Add(out, term)
	}
	origin := math.NaN()
	for i, v := range r2l2 {
		if v != 0 {
			continue
		}
		if math.IsNaN(origin) {
			origin = r.innerDerivOrigin(b)
		}
		out[i] = origin
	}
	return out
}

// innerDerivOrigin differentiates the full radial argument at tau = 0
// numerically, approaching from the positive side.
//
// TODO: this re-differentiates y from scratch on every call; deriving
// the origin values from the series expansion of y would remove the
// slow path.
func (r *radial) innerDerivOrigin(b []int) float64 {
	f := func(x []float64) float64 {
		s := 0.0
		for d, t := range x {
			v := t / r.ls[d]
			s += v * v
		}
		return math.Sqrt(2 * r.nu * s)
	}
	return mpdiff.Partial(f, make([]float64, r.numDim), utils.OrderCounts(b, r.numDim),
		&mpdiff.Settings{Singular: true, Direction: 1})
}

// distDeriv evaluates the derivative of r2l2 with respect to the
// dimensions in a single partition block. The sum is quadratic with no
// cross terms, so blocks of order three and up, and blocks mixing
// distinct dimensions, vanish identically.
func (r *radial) distDeriv(tau *mat.Dense, block []int) []float64 {
	m, _ := tau.Dims()
	out := make([]float64, m)
	d := block[0]
	for _, e := range block[1:] {
		if e != d {
			return out
		}
	}
	if len(block) >= 3 {
		return out
	}
	l2 := r.ls[d] * r.ls[d]
	if len(block) == 1 {
		for i := range out {
			out[i] = 2 * tau.At(i, d) / l2
		}
	} else {
		for i := range out {
			out[i] = 2 / l2
		}
	}
	return out
}
