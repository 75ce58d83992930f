package kern

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	sum *Sum
	_   Kernel = sum // Check that Sum respects the Kernel interface.
)

// Sum is the sum of two or more kernels. Covariances and their
// derivatives add term by term.
type Sum struct {
	parts  []Kernel
	numDim int
}

// NewSum combines two kernels over the same input dimensions,
// flattening nested sums.
func NewSum(first, second Kernel) (*Sum, error) {
	if first.NumDim() != second.NumDim() {
		return nil, ErrDimMismatch
	}
	parts := make([]Kernel, 0, 2)
	switch first := first.(type) {
	case *Sum:
		parts = append(parts, first.parts...)
	default:
		parts = append(parts, first)
	}
	switch second := second.(type) {
	case *Sum:
		parts = append(parts, second.parts...)
	default:
		parts = append(parts, second)
	}
	return &Sum{
		parts:  parts,
		numDim: first.NumDim(),
	}, nil
}

func (k *Sum) NumDim() int {
	return k.numDim
}

func (k *Sum) Cov(tau *mat.Dense, b []int) []float64 {
	out := k.parts[0].Cov(tau, b)
	for _, part := range k.parts[1:] {
		floats.Add(out, part.Cov(tau, b))
	}
	return out
}
