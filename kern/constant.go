package kern

import (
	"gonum.org/v1/gonum/mat"
)

var (
	constant *Constant
	_        Kernel = constant // Check that Constant respects the Kernel interface.
)

// Constant is a kernel with the same covariance everywhere. All of its
// derivatives vanish.
type Constant struct {
	numDim   int
	variance float64
}

func NewConstant(numDim int, variance float64) (*Constant, error) {
	if numDim <= 0 {
		return nil, ErrNumDim
	}
	return &Constant{
		numDim:   numDim,
		variance: variance,
	}, nil
}

func (k *Constant) NumDim() int {
	return k.numDim
}

func (k *Constant) Cov(tau *mat.Dense, b []int) []float64 {
	m, n := tau.Dims()
	if n != k.numDim {
		panic(ErrDimMismatch)
	}
	out := make([]float64, m)
	if len(b) == 0 {
		for i := range out {
			out[i] = k.variance
		}
	}
	return out
}
