package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRankTolerance is the relative threshold on the QR diagonal below
// which a design column is treated as linearly dependent.
const DefaultRankTolerance = 1e-10

type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool

	// RankTolerance rejects a fit when any diagonal entry of R falls below
	// this fraction of the largest diagonal entry.
	RankTolerance float64
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept:  true,
		RankTolerance: DefaultRankTolerance,
	}
}

// Validate returns a usable copy of the options, substituting defaults for
// a nil receiver or an unset tolerance.
func (o *OLSOptions) Validate() *OLSOptions {
	if o == nil {
		return NewDefaultOLSOptions()
	}
	opt := *o
	if opt.RankTolerance <= 0 {
		opt.RankTolerance = DefaultRankTolerance
	}
	return &opt
}

// OLSRegression computes ordinary least squares using QR factorization. The
// QR route is preferred over normal equations since consecutive lag columns
// are nearly collinear.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
}

func NewOLSRegression(opt *OLSOptions) *OLSRegression {
	return &OLSRegression{
		opt: opt.Validate(),
	}
}

// Fit solves min ||y - Xb|| for b. Fails with ErrSingularDesign when the
// design matrix is rank deficient beyond the configured tolerance.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	if o.opt.FitIntercept {
		x = withInterceptColumn(x)
		_, n = x.Dims()
	}

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)
	qr.QTo(q)
	qr.RTo(r)

	maxDiag := 0.0
	for i := 0; i < n; i++ {
		if d := math.Abs(r.At(i, i)); d > maxDiag {
			maxDiag = d
		}
	}
	for i := 0; i < n; i++ {
		if math.Abs(r.At(i, i)) <= o.opt.RankTolerance*maxDiag {
			return fmt.Errorf("column %d, %w", i, ErrSingularDesign)
		}
	}

	yq := new(mat.Dense)
	yq.Mul(y.T(), q)

	// back substitution on R b = Qᵀ y
	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.coef = c
	}

	return nil
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	coef := o.coef
	if o.opt.FitIntercept {
		coef = append([]float64{o.intercept}, o.coef...)
		x = withInterceptColumn(x)
	}
	n := len(coef)

	_, xn := x.Dims()
	if xn != n {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", xn, n, ErrFeatureLenMismatch)
	}
	coefMx := mat.NewDense(1, n, coef)

	var res mat.Dense
	res.Mul(coefMx, x.T())
	return res.RawRowView(0), nil
}

func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// withInterceptColumn prepends a column of ones to the design matrix.
func withInterceptColumn(x mat.Matrix) mat.Matrix {
	m, n := x.Dims()
	aug := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		aug.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			aug.Set(i, j+1, x.At(i, j))
		}
	}
	return aug
}
