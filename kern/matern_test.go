package kern

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/gptools/gogp/mpdiff"
	"github.com/gptools/gogp/utils"
)

func TestNewMaternValidation(t *testing.T) {
	if _, err := NewMatern(0, []float64{1, 1.5}); err != ErrNumDim {
		t.Errorf("numDim=0: got %v, want ErrNumDim", err)
	}
	if _, err := NewMatern(2, []float64{1, 1.5, 1}); err != ErrNumParams {
		t.Errorf("short params: got %v, want ErrNumParams", err)
	}
}

func TestMaternAccessors(t *testing.T) {
	k, err := NewMatern(2, []float64{2, 1.7, 1.1, 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if got := k.Nu(); got != 1.7 {
		t.Errorf("Nu: got %v, want 1.7", got)
	}
	ls := k.LengthScales()
	ls[0] = 99
	if got := k.LengthScales()[0]; got != 1.1 {
		t.Errorf("LengthScales not a copy: got %v, want 1.1", got)
	}
}

func TestMaternValueOrigin(t *testing.T) {
	for _, nu := range []float64{0.7, 1.5, 2.5} {
		k, err := NewMatern(2, []float64{1, nu, 1, 2})
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range k.Value(mat.NewDense(2, 2, nil)) {
			if v != 1 {
				t.Errorf("nu=%v row %d: got %v, want exactly 1", nu, i, v)
			}
		}
	}
}

func TestMaternValueHalfInteger(t *testing.T) {
	// For nu = 3/2 the kernel reduces to (1 + sqrt(3)|tau|) e^{-sqrt(3)|tau|}.
	k, err := NewMatern(1, []float64{1, 1.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	got := k.Value(mat.NewDense(3, 1, []float64{0, 1, 2}))
	r3 := math.Sqrt(3)
	want := []float64{1, math.Exp(-r3) * (1 + r3), math.Exp(-2*r3) * (1 + 2*r3)}
	for i := range want {
		if !scalar.EqualWithinAbs(got[i], want[i], 1e-8) {
			t.Errorf("row %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOuterDerivHalfInteger(t *testing.T) {
	// For nu = 3/2 the envelope is (1+y)e^{-y}, with elementary
	// derivatives to compare the Leibniz expansion against.
	k, err := NewMatern(1, []float64{1, 1.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	fns := []func(v float64) float64{
		func(v float64) float64 { return (1 + v) * math.Exp(-v) },
		func(v float64) float64 { return -v * math.Exp(-v) },
		func(v float64) float64 { return (v - 1) * math.Exp(-v) },
		func(v float64) float64 { return (2 - v) * math.Exp(-v) },
	}
	y := []float64{0.3, 1.0, 2.5}
	for n, fn := range fns {
		got := k.OuterDeriv(append([]float64(nil), y...), n)
		for i, v := range y {
			if !scalar.EqualWithinAbs(got[i], fn(v), 1e-8) {
				t.Errorf("n=%d y=%v: got %v, want %v", n, v, got[i], fn(v))
			}
		}
	}
}

func TestOuterDerivOriginClosedForm(t *testing.T) {
	k, err := NewMatern(1, []float64{1, 2.6, 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{1, 3} {
		if got := k.OuterDeriv([]float64{0}, n)[0]; got != 0 {
			t.Errorf("odd n=%d: got %v, want exactly 0", n, got)
		}
	}
	k15, err := NewMatern(1, []float64{1, 1.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := k15.OuterDeriv([]float64{0}, 0)[0]; !scalar.EqualWithinAbs(got, 1, 1e-12) {
		t.Errorf("n=0: got %v, want 1", got)
	}
	// f(y) = (1+y)e^{-y} has f''(0) = -1.
	if got := k15.OuterDeriv([]float64{0}, 2)[0]; !scalar.EqualWithinAbs(got, -1, 1e-12) {
		t.Errorf("n=2: got %v, want -1", got)
	}
}

func TestOuterDerivOriginFallback(t *testing.T) {
	// nu = 1/2: the envelope is exactly e^{-y}, so the one-sided
	// derivatives at the origin are known; n=1 >= 2*nu engages the
	// numerical fallback.
	k, err := NewMatern(1, []float64{1, 0.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := k.OuterDeriv([]float64{0}, 1)[0]; !scalar.EqualWithinAbs(got, -1, 1e-5) {
		t.Errorf("nu=0.5 n=1: got %v, want -1", got)
	}
	// nu = 3/2: the envelope (1+y)e^{-y} has third derivative 2 at the
	// origin; n=3 >= 2*nu.
	k15, err := NewMatern(1, []float64{1, 1.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := k15.OuterDeriv([]float64{0}, 3)[0]; !scalar.EqualWithinAbs(got, 2, 1e-3) {
		t.Errorf("nu=1.5 n=3: got %v, want 2", got)
	}
}

func TestOuterDerivClosedFormMatchesNumeric(t *testing.T) {
	// Just below the n >= 2*nu boundary both the closed form and the
	// numerical path are valid; they must agree.
	k, err := NewMatern(1, []float64{1, 2.6, 1})
	if err != nil {
		t.Fatal(err)
	}
	got := k.OuterDeriv([]float64{0}, 2)[0]
	f := func(x float64) float64 { return math.Pow(x, k.Nu()) * besselK(k.Nu(), x) }
	num := mpdiff.Derivative(f, 0, 2, &mpdiff.Settings{Singular: true, Direction: 1})
	num *= math.Exp2(1-k.Nu()) / math.Gamma(k.Nu())
	if !scalar.EqualWithinAbs(got, num, 1e-4) {
		t.Errorf("closed form %v, numeric %v", got, num)
	}
}

func TestInnerDerivFirstOrder(t *testing.T) {
	k, err := NewMatern(2, []float64{1, 1.3, 1.5, 0.7})
	if err != nil {
		t.Fatal(err)
	}
	tau := mat.NewDense(1, 2, []float64{0.4, -0.2})
	_, r2l2 := k.radialArg(tau)
	got := k.InnerDeriv(tau, []int{0}, r2l2)[0]
	want := math.Sqrt(2*1.3) * (0.4 / (1.5 * 1.5)) / math.Sqrt(r2l2[0])
	if !scalar.EqualWithinAbs(got, want, 1e-12) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInnerDerivMatchesFiniteDiff(t *testing.T) {
	k, err := NewMatern(2, []float64{1, 1.3, 1.5, 0.7})
	if err != nil {
		t.Fatal(err)
	}
	x0 := []float64{0.4, -0.2}
	tau := mat.NewDense(1, 2, append([]float64(nil), x0...))
	_, r2l2 := k.radialArg(tau)
	f := func(x []float64) float64 {
		s := x[0]*x[0]/(1.5*1.5) + x[1]*x[1]/(0.7*0.7)
		return math.Sqrt(2 * 1.3 * s)
	}
	for _, b := range [][]int{{0}, {1, 1}, {0, 1}, {0, 0, 1}} {
		got := k.InnerDeriv(tau, b, r2l2)[0]
		num := mpdiff.Partial(f, x0, utils.OrderCounts(b, 2), nil)
		if !scalar.EqualWithinAbs(got, num, 1e-4) {
			t.Errorf("b=%v: got %v, numeric %v", b, got, num)
		}
	}
}

func TestInnerDerivOrigin(t *testing.T) {
	// 1-D with l=2: y = sqrt(3)|tau|/2, whose one-sided first
	// derivative from above is sqrt(3)/2.
	k, err := NewMatern(1, []float64{1, 1.5, 2})
	if err != nil {
		t.Fatal(err)
	}
	tau := mat.NewDense(1, 1, []float64{0})
	_, r2l2 := k.radialArg(tau)
	got := k.InnerDeriv(tau, []int{0}, r2l2)[0]
	if !scalar.EqualWithinAbs(got, math.Sqrt(3)/2, 1e-6) {
		t.Errorf("got %v, want %v", got, math.Sqrt(3)/2)
	}
}

func TestCovMatchesFiniteDiff(t *testing.T) {
	k, err := NewMatern(2, []float64{1.2, 2.5, 1.0, 1.5})
	if err != nil {
		t.Fatal(err)
	}
	x0 := []float64{0.3, -0.4}
	f := func(x []float64) float64 {
		return k.Cov(mat.NewDense(1, 2, append([]float64(nil), x...)), nil)[0]
	}
	for _, b := range [][]int{{0}, {1}, {0, 1}, {1, 1}} {
		got := k.Cov(mat.NewDense(1, 2, append([]float64(nil), x0...)), b)[0]
		num := mpdiff.Partial(f, x0, utils.OrderCounts(b, 2), nil)
		if !scalar.EqualWithinAbs(got, num, 1e-5) {
			t.Errorf("b=%v: got %v, numeric %v", b, got, num)
		}
	}
}

func TestMatern52MatchesMatern(t *testing.T) {
	m52, err := NewMatern52(2, 1.2, []float64{1.0, 1.5})
	if err != nil {
		t.Fatal(err)
	}
	gen, err := NewMatern(2, []float64{1.2, 2.5, 1.0, 1.5})
	if err != nil {
		t.Fatal(err)
	}
	tau := mat.NewDense(3, 2, []float64{0, 0, 0.3, -0.4, 1.1, 0.6})
	for _, b := range [][]int{nil, {0}, {0, 1}} {
		a := m52.Cov(tau, b)
		c := gen.Cov(tau, b)
		for i := range a {
			if !scalar.EqualWithinAbs(a[i], c[i], 1e-8) {
				t.Errorf("b=%v row %d: fixed %v, general %v", b, i, a[i], c[i])
			}
		}
	}
}
