package kern

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

var (
	matern52 *Matern52
	_        Kernel = matern52 // Check that Matern52 respects the Kernel interface.
)

// Matern52 is the Matern kernel with the order fixed at nu = 5/2,
// where the Bessel envelope reduces to the elementary form
// :math:`(1 + y + y^2/3) e^{-y}`. Its envelope derivatives are
// analytic everywhere, so none of the general kernel's singular
// fallbacks are needed on the outer side. Prefer it over Matern when
// the order is known: it avoids Bessel evaluations entirely.
type Matern52 struct {
	radial
	sigma float64
}

// NewMatern52 builds a fixed-order nu = 5/2 kernel with the given
// prefactor and per-dimension length scales.
func NewMatern52(numDim int, sigma float64, lscales []float64) (*Matern52, error) {
	if numDim <= 0 {
		return nil, ErrNumDim
	}
	if len(lscales) != numDim {
		return nil, ErrNumParams
	}
	ls := append([]float64(nil), lscales...)
	return &Matern52{
		radial: radial{numDim: numDim, nu: 2.5, ls: ls},
		sigma:  sigma,
	}, nil
}

func (k *Matern52) NumDim() int {
	return k.numDim
}

// Nu returns the order of the kernel, always 5/2.
func (k *Matern52) Nu() float64 {
	return k.nu
}

// LengthScales returns a copy of the per-dimension length scales.
func (k *Matern52) LengthScales() []float64 {
	return append([]float64(nil), k.ls...)
}

// Cov evaluates the kernel, or for a non-empty multi-index b its mixed
// partial derivative, at each row of tau, including the sigma^2
// prefactor.
func (k *Matern52) Cov(tau *mat.Dense, b []int) []float64 {
	out := chainCov(k, tau, b)
	floats.Scale(k.sigma*k.sigma, out)
	return out
}

// outerDeriv is the n-th derivative of (1 + y + y^2/3) e^{-y} by the
// Leibniz rule; only the polynomial's first three derivatives survive.
func (k *Matern52) outerDeriv(y []float64, n int) []float64 {
	sign := 1.0
	if n%2 == 1 {
		sign = -1
	}
	c2 := 0.0
	if n >= 2 {
		c2 = float64(combin.Binomial(n, 2)) * (2.0 / 3.0)
	}
	out := make([]float64, len(y))
	for i, v := range y {
		t := 1 + v + v*v/3
		if n >= 1 {
			t -= float64(n) * (1 + 2*v/3)
		}
		t += c2
		out[i] = sign * t * math.Exp(-v)
	}
	return out
}
