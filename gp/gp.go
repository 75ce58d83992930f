// Package gp implements Gaussian-process regression over a covariance
// kernel.
package gp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gptools/gogp/kern"
)

var ErrDimMismatch = errors.New("gp: input dimension does not match kernel")
var ErrNoData = errors.New("gp: no training data")
var ErrNotPosDef = errors.New("gp: covariance matrix is not positive definite")

// GaussianProcess is a batch Gaussian-process regressor. Training data
// are accumulated with AddData; the covariance matrix is factorized
// lazily on the first prediction and reused until more data arrive.
type GaussianProcess struct {
	kernel kern.Kernel
	noise  float64 // Observation noise variance.
	xs     [][]float64
	ys     []float64

	chol  *mat.Cholesky
	alpha *mat.VecDense // (K + noise I)^{-1} y.
}

// New builds a regressor over the given kernel with the given
// observation noise variance.
func New(kernel kern.Kernel, noise float64) *GaussianProcess {
	return &GaussianProcess{
		kernel: kernel,
		noise:  noise,
		xs:     make([][]float64, 0, 10),
		ys:     make([]float64, 0, 10),
	}
}

// AddData appends M training points: X is an (M, N) matrix of inputs,
// y the corresponding targets.
func (gp *GaussianProcess) AddData(X *mat.Dense, y []float64) {
	m, n := X.Dims()
	if n != gp.kernel.NumDim() {
		panic(ErrDimMismatch)
	}
	if len(y) != m {
		panic(ErrDimMismatch)
	}
	for i := 0; i < m; i++ {
		gp.xs = append(gp.xs, append([]float64(nil), X.RawRowView(i)...))
	}
	gp.ys = append(gp.ys, y...)
	gp.chol = nil
	gp.alpha = nil
}

func (gp *GaussianProcess) factorize() error {
	if gp.chol != nil {
		return nil
	}
	m := len(gp.xs)
	if m == 0 {
		return ErrNoData
	}
	n := gp.kernel.NumDim()
	kmat := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		tau := mat.NewDense(m-i, n, nil)
		for j := i; j < m; j++ {
			for d := 0; d < n; d++ {
				tau.Set(j-i, d, gp.xs[i][d]-gp.xs[j][d])
			}
		}
		cov := gp.kernel.Cov(tau, nil)
		for j := i; j < m; j++ {
			v := cov[j-i]
			if j == i {
				v += gp.noise
			}
			kmat.SetSym(i, j, v)
		}
	}
	chol := new(mat.Cholesky)
	if !chol.Factorize(kmat) {
		return ErrNotPosDef
	}
	alpha := mat.NewVecDense(m, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(m, gp.ys)); err != nil {
		return err
	}
	gp.chol = chol
	gp.alpha = alpha
	return nil
}

// Predict returns the posterior mean and variance of the latent
// function at each row of Xstar.
func (gp *GaussianProcess) Predict(Xstar *mat.Dense) (mean, variance []float64, err error) {
	if err := gp.factorize(); err != nil {
		return nil, nil, err
	}
	p, n := Xstar.Dims()
	if n != gp.kernel.NumDim() {
		return nil, nil, ErrDimMismatch
	}
	m := len(gp.xs)
	prior := gp.kernel.Cov(mat.NewDense(1, n, nil), nil)[0]
	mean = make([]float64, p)
	variance = make([]float64, p)
	tau := mat.NewDense(m, n, nil)
	v := mat.NewVecDense(m, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < m; j++ {
			for d := 0; d < n; d++ {
				tau.Set(j, d, Xstar.At(i, d)-gp.xs[j][d])
			}
		}
		kstar := mat.NewVecDense(m, gp.kernel.Cov(tau, nil))
		mean[i] = mat.Dot(kstar, gp.alpha)
		if err := gp.chol.SolveVecTo(v, kstar); err != nil {
			return nil, nil, err
		}
		variance[i] = prior - mat.Dot(kstar, v)
	}
	return mean, variance, nil
}

// LogLikelihood returns the log marginal likelihood of the training
// data under the kernel and noise variance.
func (gp *GaussianProcess) LogLikelihood() (float64, error) {
	if err := gp.factorize(); err != nil {
		return 0, err
	}
	m := len(gp.xs)
	yv := mat.NewVecDense(m, gp.ys)
	return -0.5*mat.Dot(yv, gp.alpha) - 0.5*gp.chol.LogDet() -
		0.5*float64(m)*math.Log(2*math.Pi), nil
}
