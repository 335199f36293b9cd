package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func denseFromRows(rows [][]float64) *mat.Dense {
	m := len(rows)
	n := len(rows[0])
	x := mat.NewDense(m, n, nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	return x
}

func targetMatrix(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, y)
}

func TestOLSRegressionFit(t *testing.T) {
	tol := 1e-8

	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
		err       error
	}{
		"exact recovery with intercept": {
			x: [][]float64{
				{0, 0},
				{1, 2},
				{2, 1},
				{3, 5},
				{4, 3},
				{5, 8},
			},
			y:         []float64{2.0, 2.0, 6.5, 3.5, 9.5, 5.0},
			intercept: 2.0,
			coef:      []float64{3.0, -1.5},
		},
		"exact recovery without intercept": {
			x: [][]float64{
				{1, 0},
				{0, 1},
				{2, 2},
				{3, 1},
			},
			y:    []float64{4.0, -2.0, 4.0, 10.0},
			opt:  &OLSOptions{FitIntercept: false},
			coef: []float64{4.0, -2.0},
		},
		"constant column collides with intercept": {
			x: [][]float64{
				{3.0, 1.0},
				{3.0, 2.0},
				{3.0, 3.0},
				{3.0, 4.0},
			},
			y:   []float64{1.0, 2.0, 3.0, 4.0},
			err: ErrSingularDesign,
		},
		"duplicate columns": {
			x: [][]float64{
				{1.0, 1.0},
				{2.0, 2.0},
				{3.0, 3.0},
				{4.0, 4.0},
			},
			y:   []float64{1.0, 2.0, 3.0, 4.0},
			err: ErrSingularDesign,
		},
		"target length mismatch": {
			x: [][]float64{
				{1.0, 0.0},
				{0.0, 1.0},
			},
			y:   []float64{1.0, 2.0, 3.0},
			err: ErrTargetLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			o := NewOLSRegression(td.opt)
			err := o.Fit(denseFromRows(td.x), targetMatrix(td.y))
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)

			assert.InDelta(t, td.intercept, o.Intercept(), tol)
			assert.InDeltaSlice(t, td.coef, o.Coef(), tol)

			r2, err := o.Score(denseFromRows(td.x), targetMatrix(td.y))
			require.NoError(t, err)
			assert.InDelta(t, 1.0, r2, tol)
		})
	}
}

func TestOLSRegressionNormalEquations(t *testing.T) {
	// with a noisy target the residual must still be orthogonal to the
	// design columns
	x := denseFromRows([][]float64{
		{0.0, 1.0},
		{1.0, 0.5},
		{2.0, 3.0},
		{3.0, 2.5},
		{4.0, 0.2},
		{5.0, 4.4},
		{6.0, 1.7},
	})
	y := []float64{0.3, 2.1, 3.9, 4.2, 7.1, 6.8, 10.4}

	o := NewOLSRegression(nil)
	require.NoError(t, o.Fit(x, targetMatrix(y)))

	predicted, err := o.Predict(x)
	require.NoError(t, err)

	m, n := x.Dims()
	residual := make([]float64, m)
	for i := 0; i < m; i++ {
		residual[i] = y[i] - predicted[i]
	}

	// intercept column: residuals sum to zero
	sum := 0.0
	for _, r := range residual {
		sum += r
	}
	assert.InDelta(t, 0.0, sum, 1e-8)

	for j := 0; j < n; j++ {
		dot := 0.0
		for i := 0; i < m; i++ {
			dot += x.At(i, j) * residual[i]
		}
		assert.InDelta(t, 0.0, dot, 1e-8)
	}
}

func TestOLSRegressionPredictErrors(t *testing.T) {
	o := NewOLSRegression(nil)
	require.NoError(t, o.Fit(
		denseFromRows([][]float64{{0, 0}, {1, 2}, {2, 1}, {3, 5}}),
		targetMatrix([]float64{1, 2, 3, 4}),
	))

	_, err := o.Predict(nil)
	require.ErrorIs(t, err, ErrNoDesignMatrix)

	_, err = o.Predict(denseFromRows([][]float64{{1, 2, 3}}))
	require.ErrorIs(t, err, ErrFeatureLenMismatch)
}

func TestOLSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *OLSOptions
		expected *OLSOptions
	}{
		"nil": {nil, NewDefaultOLSOptions()},
		"unset tolerance defaulted": {
			&OLSOptions{FitIntercept: true},
			&OLSOptions{FitIntercept: true, RankTolerance: DefaultRankTolerance},
		},
		"explicit tolerance kept": {
			&OLSOptions{FitIntercept: false, RankTolerance: 1e-6},
			&OLSOptions{FitIntercept: false, RankTolerance: 1e-6},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.opt.Validate())
		})
	}
}
