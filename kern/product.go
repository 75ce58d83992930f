package kern

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	product *Product
	_       Kernel = product // Check that Product respects the Kernel interface.
)

// Product is the product of two kernels. Derivatives distribute over
// the factors by the general Leibniz rule: the multi-index is split in
// every possible way between the two factors, treating its entries as
// distinct positions.
type Product struct {
	first, second Kernel
}

func NewProduct(first, second Kernel) (*Product, error) {
	if first.NumDim() != second.NumDim() {
		return nil, ErrDimMismatch
	}
	return &Product{
		first:  first,
		second: second,
	}, nil
}

func (k *Product) NumDim() int {
	return k.first.NumDim()
}

func (k *Product) Cov(tau *mat.Dense, b []int) []float64 {
	m, _ := tau.Dims()
	out := make([]float64, m)
	n := len(b)
	b1 := make([]int, 0, n)
	b2 := make([]int, 0, n)
	for mask := 0; mask < 1<<uint(n); mask++ {
		b1, b2 = b1[:0], b2[:0]
		for i, d := range b {
			if mask&(1<<uint(i)) != 0 {
				b1 = append(b1, d)
			} else {
				b2 = append(b2, d)
			}
		}
		term := k.first.Cov(tau, b1)
		floats.Mul(term, k.second.Cov(tau, b2))
		floats.Add(out, term)
	}
	return out
}
