// Package mpdiff computes high-accuracy numerical derivatives of
// scalar functions at a point, tolerant of a removable singularity at
// that point. It stands in for closed forms where they break down:
// one-sided finite differences with exact big-rational weights,
// refined by a step-halving extrapolation tableau that tracks its own
// error estimate and returns its best entry.
package mpdiff

import (
	"errors"
	"math"
	"math/big"
)

var ErrOrder = errors.New("mpdiff: negative derivative order")
var ErrDims = errors.New("mpdiff: order vector length must match point dimension")

const (
	prec          = 200
	defaultStep   = 0.25
	defaultLevels = 12
)

// Settings control a derivative evaluation. The zero value (or a nil
// pointer) selects the defaults.
type Settings struct {
	// Step is the initial step size. Zero selects the default.
	Step float64

	// Levels is the number of step halvings. Zero selects the default.
	Levels int

	// Singular shifts the evaluation stencil off the base point, so
	// the function is never evaluated exactly at x. Use it when the
	// function is undefined or indeterminate there.
	Singular bool

	// Direction selects the side the stencil extends toward: positive
	// or zero approaches from above, negative from below.
	Direction int
}

// Derivative computes the n-th derivative of f at x.
func Derivative(f func(float64) float64, x float64, n int, s *Settings) float64 {
	return Partial(func(v []float64) float64 { return f(v[0]) }, []float64{x}, []int{n}, s)
}

// Partial computes the mixed partial derivative of f at x, taking
// orders[d] derivatives along dimension d.
func Partial(f func([]float64) float64, x []float64, orders []int, s *Settings) float64 {
	if len(orders) != len(x) {
		panic(ErrDims)
	}
	total := 0
	for _, n := range orders {
		if n < 0 {
			panic(ErrOrder)
		}
		total += n
	}
	dir := 1.0
	shift := 0.0
	levels := defaultLevels
	h := defaultStep
	if s != nil {
		if s.Direction < 0 {
			dir = -1
		}
		if s.Singular {
			shift = 1
		}
		if s.Levels > 0 {
			levels = s.Levels
		}
		if s.Step > 0 {
			h = s.Step
		}
	}
	if total == 0 && shift == 0 {
		return f(x)
	}

	// Signed binomial weights of the forward difference, one row per
	// dimension, kept exact.
	weights := make([][]*big.Int, len(orders))
	for d, n := range orders {
		weights[d] = make([]*big.Int, n+1)
		for k := 0; k <= n; k++ {
			c := new(big.Int).Binomial(int64(n), int64(k))
			if (n-k)%2 == 1 {
				c.Neg(c)
			}
			weights[d][k] = c
		}
	}

	// Richardson tableau over halved steps. The one-sided difference
	// has an error series in integer powers of h, eliminated column by
	// column; the entry with the smallest spread to its neighbors is
	// kept, and the loop stops once halving only makes things worse.
	var prev []float64
	best := math.NaN()
	bestErr := math.Inf(1)
	for i := 0; i < levels; i++ {
		val := stencil(f, x, orders, weights, dir*h, shift, total)
		row := make([]float64, i+1)
		row[0] = val
		if i == 0 {
			best = val
		}
		for j := 1; j <= i; j++ {
			fac := math.Exp2(float64(j))
			row[j] = (fac*row[j-1] - prev[j-1]) / (fac - 1)
			errt := math.Max(math.Abs(row[j]-row[j-1]), math.Abs(row[j]-prev[j-1]))
			if errt <= bestErr {
				bestErr = errt
				best = row[j]
			}
		}
		if i > 0 && math.Abs(row[i]-prev[i-1]) >= 4*bestErr {
			break
		}
		prev = row
		h /= 2
	}
	return best
}

// stencil evaluates one forward-difference estimate of the derivative
// with signed step size step, accumulating in extended precision so
// the alternating sum does not add rounding of its own.
func stencil(f func([]float64) float64, x []float64, orders []int,
	weights [][]*big.Int, step, shift float64, total int) float64 {

	dims := len(x)
	combo := make([]int, dims)
	pt := make([]float64, dims)
	sum := new(big.Float).SetPrec(prec)
	term := new(big.Float).SetPrec(prec)
	fv := new(big.Float).SetPrec(prec)
	w := new(big.Int)
	for {
		w.SetInt64(1)
		for d, k := range combo {
			w.Mul(w, weights[d][k])
		}
		for d := range pt {
			pt[d] = x[d] + step*(float64(combo[d])+shift)
		}
		term.SetInt(w)
		fv.SetFloat64(f(pt))
		term.Mul(term, fv)
		sum.Add(sum, term)

		d := 0
		for d < dims {
			combo[d]++
			if combo[d] <= orders[d] {
				break
			}
			combo[d] = 0
			d++
		}
		if d == dims {
			break
		}
	}
	hp := new(big.Float).SetPrec(prec).SetFloat64(1)
	sf := new(big.Float).SetPrec(prec).SetFloat64(step)
	for k := 0; k < total; k++ {
		hp.Mul(hp, sf)
	}
	sum.Quo(sum, hp)
	out, _ := sum.Float64()
	return out
}
