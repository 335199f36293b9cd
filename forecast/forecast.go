// Package forecast fits the per-driver distributed-lag inflation models and
// produces in-sample fitted values and out-of-sample forecasts.
package forecast

import (
	"fmt"
	"time"

	"github.com/Allisterh/inflation-forecasting/models"
	"github.com/Allisterh/inflation-forecasting/transform"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a fitted distributed-lag regression for a single driver
// variable: dinfl12 against an intercept, 12 lags of dinfl, and 12 lags of
// the driver. Immutable after Fit.
type Model struct {
	Driver         string    `json:"driver"`
	TrainEnd       time.Time `json:"train_end_month"`
	Intercept      float64   `json:"intercept"`
	Coef           []float64 `json:"coefficients"`
	ResidualStdDev float64   `json:"residual_stddev"`
	Scores         *Scores   `json:"scores"`

	fitted      []float64
	fittedStart int
}

// Fit estimates a driver model over the train side of the partition by
// ordinary least squares. Rank deficiency in the lag window surfaces as
// models.ErrSingularDesign; the caller decides whether to skip the model or
// abort.
func Fit(p *transform.Partition, driver string, opt *models.OLSOptions) (*Model, error) {
	lo := MaxLag
	hi := p.Boundary
	if hi-lo < NumParams {
		return nil, fmt.Errorf("train partition leaves %d usable rows for %d parameters, %w",
			hi-lo, NumParams, transform.ErrInsufficientData)
	}

	x, err := LagMatrix(p.Rows, driver, lo, hi)
	if err != nil {
		return nil, err
	}
	y := transform.Targets(p.Rows[lo:hi])
	yMx := mat.NewDense(len(y), 1, y)

	ols := models.NewOLSRegression(opt)
	if err := ols.Fit(x, yMx); err != nil {
		return nil, fmt.Errorf("driver %s, %w", driver, err)
	}

	fitted, err := ols.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("driver %s, %w", driver, err)
	}

	residual := make([]float64, len(y))
	floats.SubTo(residual, y, fitted)

	scores, err := NewScores(fitted, y)
	if err != nil {
		return nil, fmt.Errorf("driver %s, %w", driver, err)
	}

	return &Model{
		Driver:         driver,
		TrainEnd:       p.Rows[hi-1].Month,
		Intercept:      ols.Intercept(),
		Coef:           ols.Coef(),
		ResidualStdDev: stat.StdDev(residual, nil),
		Scores:         scores,
		fitted:         fitted,
		fittedStart:    lo,
	}, nil
}

// Forecast predicts dinfl12 for rows [lo, hi), pulling lagged regressors
// from the continuous history. Only past information relative to each
// target row is used since every regressor is lagged at least 12 months.
func (m *Model) Forecast(rows []transform.Row, lo, hi int) ([]float64, error) {
	x, err := LagMatrix(rows, m.Driver, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("driver %s, %w", m.Driver, err)
	}

	yhat := make([]float64, hi-lo)
	for i := range yhat {
		yhat[i] = m.Intercept + floats.Dot(m.Coef, x.RawRowView(i))
	}
	return yhat, nil
}

// PredictAt returns the scalar prediction for a single row index.
func (m *Model) PredictAt(rows []transform.Row, i int) (float64, error) {
	yhat, err := m.Forecast(rows, i, i+1)
	if err != nil {
		return 0, err
	}
	return yhat[0], nil
}

// FittedValues returns the in-sample fitted values aligned to train rows
// starting at FittedStart.
func (m *Model) FittedValues() []float64 {
	fitted := make([]float64, len(m.fitted))
	copy(fitted, m.fitted)
	return fitted
}

// FittedStart returns the index of the first train row with a fitted value.
func (m *Model) FittedStart() int {
	return m.fittedStart
}

// Interval widens a forecast into upper and lower bounds at z standard
// deviations of the train residual.
func (m *Model) Interval(forecast []float64, z float64) (upper, lower []float64) {
	upper = make([]float64, len(forecast))
	lower = make([]float64, len(forecast))
	copy(upper, forecast)
	copy(lower, forecast)
	floats.AddConst(z*m.ResidualStdDev, upper)
	floats.AddConst(-z*m.ResidualStdDev, lower)
	return upper, lower
}
