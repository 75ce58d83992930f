package kern

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/gptools/gogp/mpdiff"
)

var (
	matern *Matern
	_      Kernel = matern // Check that Matern respects the Kernel interface.
)

// Matern is the anisotropic Matern covariance kernel of arbitrary
// order, with support for mixed partial derivatives of any order:
//
// .. math::
//
//	k(\tau) = \sigma^2 \frac{2^{1-\nu}}{\Gamma(\nu)} y^\nu K_\nu(y),
//	\quad y = \sqrt{2\nu \sum_i \tau_i^2/l_i^2}
//
// where :math:`K_\nu` is the modified Bessel function of the second
// kind. The hyperparameters are always referenced in the order sigma,
// nu, l1, ..., lN. The order nu must be positive; this is a
// precondition, not a runtime check.
type Matern struct {
	radial
	params []float64
}

// NewMatern builds a Matern kernel over numDim input dimensions from
// the hyperparameter vector [sigma, nu, l1, ..., lN].
func NewMatern(numDim int, params []float64) (*Matern, error) {
	if numDim <= 0 {
		return nil, ErrNumDim
	}
	if len(params) != numDim+2 {
		return nil, ErrNumParams
	}
	p := make([]float64, len(params))
	copy(p, params)
	return &Matern{
		radial: radial{numDim: numDim, nu: p[1], ls: p[2:]},
		params: p,
	}, nil
}

func (k *Matern) NumDim() int {
	return k.numDim
}

// Nu returns the order of the kernel.
func (k *Matern) Nu() float64 {
	return k.params[1]
}

// LengthScales returns a copy of the per-dimension length scales.
func (k *Matern) LengthScales() []float64 {
	return append([]float64(nil), k.ls...)
}

// Value evaluates the kernel at each row of tau, less the sigma^2
// prefactor. Rows at the origin evaluate to exactly 1: the closed form
// is the indeterminate 0^nu * Inf there, with limit 1.
func (k *Matern) Value(tau *mat.Dense) []float64 {
	y, r2l2 := k.radialArg(tau)
	out := make([]float64, len(y))
	c := math.Exp2(1-k.nu) / math.Gamma(k.nu)
	for i, v := range y {
		if r2l2[i] == 0 {
			out[i] = 1
		} else {
			out[i] = c * math.Pow(v, k.nu) * besselK(k.nu, v)
		}
	}
	return out
}

// OuterDeriv evaluates the n-th derivative of the envelope
// :math:`f(y) = 2^{1-\nu}/\Gamma(\nu)\, y^\nu K_\nu(y)` at each entry
// of y, using the generalized Leibniz rule:
//
// .. math::
//
//	f^{(n)}(y) \propto \sum_{k=0}^{n} \binom{n}{k}
//	(\nu-k+1)_k\, y^{\nu-k} K_\nu^{(n-k)}(y)
//
// Entries at y = 0 are indeterminate and use a closed form for
// n < 2 nu, or a one-sided numerical derivative otherwise.
func (k *Matern) OuterDeriv(y []float64, n int) []float64 {
	if float64(n) >= 2*k.nu {
		log.Printf("kern: outer derivative with n >= 2*nu can yield inaccurate results (n=%d, nu=%g)", n, k.nu)
	}
	out := make([]float64, len(y))
	for j := 0; j <= n; j++ {
		c := float64(combin.Binomial(n, j)) * poch(k.nu-float64(j)+1, j)
		for i, v := range y {
			if v != 0 {
				out[i] += c * math.Pow(v, k.nu-float64(j)) * besselKDeriv(k.nu, v, n-j)
			}
		}
	}
	origin := math.NaN()
	for i, v := range y {
		if v != 0 {
			continue
		}
		if math.IsNaN(origin) {
			origin = k.outerDerivOrigin(n)
		}
		out[i] = origin
	}
	floats.Scale(math.Exp2(1-k.nu)/math.Gamma(k.nu), out)
	return out
}

// outerDerivOrigin evaluates the n-th derivative of y^nu K_nu(y) at
// y = 0, without the outer scale factor. For n < 2 nu the value has a
// closed form: zero at odd n, a signed Gamma expression at even n.
// Beyond that the closed form breaks down and the derivative is taken
// numerically from the positive side, which is best-effort only.
func (k *Matern) outerDerivOrigin(n int) float64 {
	if float64(n) < 2*k.nu {
		if n%2 == 1 {
			return 0
		}
		m := n / 2
		sign := 1.0
		if m%2 == 1 {
			sign = -1
		}
		return sign * math.Exp2(k.nu-1-float64(n)) *
			math.Gamma(k.nu-float64(m)) * factorial(n) / factorial(m)
	}
	f := func(x float64) float64 {
		return math.Pow(x, k.nu) * besselK(k.nu, x)
	}
	return mpdiff.Derivative(f, 0, n, &mpdiff.Settings{Singular: true, Direction: 1})
}

// InnerDeriv evaluates the mixed partial derivative of the radial
// argument y with respect to the dimensions named in b, given the
// precomputed scaled squared distances r2l2.
func (k *Matern) InnerDeriv(tau *mat.Dense, b []int, r2l2 []float64) []float64 {
	return k.radial.innerDeriv(tau, b, r2l2)
}

// Cov evaluates the kernel, or for a non-empty multi-index b its mixed
// partial derivative, at each row of tau, including the sigma^2
// prefactor.
func (k *Matern) Cov(tau *mat.Dense, b []int) []float64 {
	out := chainCov(k, tau, b)
	floats.Scale(k.params[0]*k.params[0], out)
	return out
}

func (k *Matern) outerDeriv(y []float64, n int) []float64 {
	return k.OuterDeriv(y, n)
}
