package kern

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// besselK is the modified Bessel function of the second kind of real
// order. K is even in its order, so derivative recurrences may pass
// negative orders.
func besselK(v, x float64) float64 {
	return besselKNu(math.Abs(v), x)
}

// besselKNu evaluates K_nu(x) for nu >= 0. The order is split as
// nu = xmu + nl with |xmu| <= 1/2; K_xmu and K_{xmu+1} come from
// Temme's series for x < 2 and from Steed's continued fraction
// otherwise, and upward recurrence in the order climbs to nu.
func besselKNu(nu, x float64) float64 {
	const (
		eps   = 2.220446049250313e-16
		maxit = 10000
		xmin  = 2.0
	)
	if x < 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if x == 0 {
		return math.Inf(1)
	}
	nl := int(nu + 0.5)
	xmu := nu - float64(nl)
	xmu2 := xmu * xmu
	xi := 1 / x
	xi2 := 2 * xi
	var rkmu, rk1 float64
	if x < xmin {
		x2 := 0.5 * x
		pimu := math.Pi * xmu
		fact := 1.0
		if math.Abs(pimu) > eps {
			fact = pimu / math.Sin(pimu)
		}
		d := -math.Log(x2)
		e := xmu * d
		fact2 := 1.0
		if math.Abs(e) > eps {
			fact2 = math.Sinh(e) / e
		}
		gam1, gam2, gampl, gammi := temmeGamma(xmu)
		ff := fact * (gam1*math.Cosh(e) + gam2*fact2*d)
		sum := ff
		e = math.Exp(e)
		p := 0.5 * e / gampl
		q := 0.5 / (e * gammi)
		c := 1.0
		d = x2 * x2
		sum1 := p
		for i := 1; i <= maxit; i++ {
			fi := float64(i)
			ff = (fi*ff + p + q) / (fi*fi - xmu2)
			c *= d / fi
			p /= fi - xmu
			q /= fi + xmu
			del := c * ff
			sum += del
			sum1 += c * (p - fi*ff)
			if math.Abs(del) < math.Abs(sum)*eps {
				break
			}
		}
		rkmu = sum
		rk1 = sum1 * xi2
	} else {
		b := 2 * (1 + x)
		d := 1 / b
		h := d
		delh := d
		q1 := 0.0
		q2 := 1.0
		a1 := 0.25 - xmu2
		c := a1
		q := c
		a := -a1
		s := 1 + q*delh
		for i := 2; i <= maxit; i++ {
			a -= 2 * float64(i-1)
			c = -a * c / float64(i)
			qnew := (q1 - b*q2) / a
			q1 = q2
			q2 = qnew
			q += c * qnew
			b += 2
			d = 1 / (b + a*d)
			delh = (b*d - 1) * delh
			h += delh
			dels := q * delh
			s += dels
			if math.Abs(dels/s) < eps {
				break
			}
		}
		h = a1 * h
		rkmu = math.Sqrt(math.Pi/(2*x)) * math.Exp(-x) / s
		rk1 = rkmu * (xmu + x + 0.5 - h) * xi
	}
	for i := 1; i <= nl; i++ {
		rktemp := (xmu+float64(i))*xi2*rk1 + rkmu
		rkmu = rk1
		rk1 = rktemp
	}
	return rkmu
}

const eulerGamma = 0.5772156649015329

// temmeGamma returns the auxiliary Gamma combinations of Temme's
// series for |mu| <= 1/2: gam1 = (1/Gamma(1-mu) - 1/Gamma(1+mu))/(2mu),
// gam2 = (1/Gamma(1-mu) + 1/Gamma(1+mu))/2, and the two reciprocals
// themselves. Near mu = 0 the gam1 quotient cancels badly and a series
// takes over.
func temmeGamma(mu float64) (gam1, gam2, gampl, gammi float64) {
	gampl = 1 / math.Gamma(1+mu)
	gammi = 1 / math.Gamma(1-mu)
	if math.Abs(mu) < 1e-4 {
		// 1/Gamma(1+x) = 1 + a1 x + a2 x^2 + a3 x^3 + ..., so the odd
		// part of the quotient is -(a1 + a3 mu^2) to O(mu^4).
		const a3 = -0.042016495 // gamma^3/6 - gamma*pi^2/12 + zeta(3)/3
		gam1 = -(eulerGamma + a3*mu*mu)
	} else {
		gam1 = (gammi - gampl) / (2 * mu)
	}
	gam2 = (gammi + gampl) / 2
	return gam1, gam2, gampl, gammi
}

// besselKDeriv is the m-th derivative of K_v with respect to its
// argument, by the standard recurrence
//
// .. math::
//
//	K_v^{(m)}(x) = \frac{(-1)^m}{2^m} \sum_{j=0}^{m}
//	\binom{m}{j} K_{v-m+2j}(x)
func besselKDeriv(v, x float64, m int) float64 {
	if m == 0 {
		return besselK(v, x)
	}
	s := 0.0
	for j := 0; j <= m; j++ {
		s += float64(combin.Binomial(m, j)) * besselK(v-float64(m)+2*float64(j), x)
	}
	if m%2 == 1 {
		s = -s
	}
	return s / math.Exp2(float64(m))
}

// poch is the Pochhammer (rising factorial) symbol
// x (x+1) ... (x+k-1). Computed as a direct product: a Gamma ratio is
// NaN at the non-positive integer bases that occur for integer nu.
func poch(x float64, k int) float64 {
	p := 1.0
	for i := 0; i < k; i++ {
		p *= x + float64(i)
	}
	return p
}

func factorial(n int) float64 {
	return math.Gamma(float64(n) + 1)
}
