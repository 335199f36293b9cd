package forecast

import (
	"errors"
	"fmt"

	"github.com/Allisterh/inflation-forecasting/transform"
	"gonum.org/v1/gonum/mat"
)

// Distributed lag structure shared by every driver model: 12 lags of dinfl
// and 12 lags of the driver, both reaching 12 to 23 months back.
const (
	MinLag      = 12
	MaxLag      = 23
	NumLags     = MaxLag - MinLag + 1
	NumFeatures = 2 * NumLags
	NumParams   = NumFeatures + 1
)

// Driver variable identifiers, one per fitted model.
const (
	DriverUnrate    = "unrate"
	DriverExpInf1Yr = "expinf1yr"
	DriverMich      = "mich"
	DriverIndPro    = "indpro"
)

var (
	ErrUnknownDriver         = errors.New("unknown driver variable")
	ErrInsufficientHistory   = errors.New("insufficient history for lagged regressors")
	ErrInvalidPredictionSpan = errors.New("invalid prediction index span")
)

// Drivers returns the driver variables in their fixed model order. The
// order is load-bearing: accuracy ranking breaks MAPE ties by it.
func Drivers() []string {
	return []string{DriverUnrate, DriverExpInf1Yr, DriverMich, DriverIndPro}
}

func driverValue(r transform.Row, driver string) (float64, error) {
	switch driver {
	case DriverUnrate:
		return r.Unrate, nil
	case DriverExpInf1Yr:
		return r.ExpInf1Yr, nil
	case DriverMich:
		return r.Mich, nil
	case DriverIndPro:
		return r.IndPro, nil
	}
	return 0, fmt.Errorf("%q, %w", driver, ErrUnknownDriver)
}

// LagMatrix builds the design matrix for target rows [lo, hi) over the
// continuous row history. Column layout: dinfl lags 12..23 followed by
// driver lags 12..23. The intercept column is added by the regression.
//
// Lags are pulled from the full history slice, so a target row early in the
// test partition reaches back into train rows.
func LagMatrix(rows []transform.Row, driver string, lo, hi int) (*mat.Dense, error) {
	if lo >= hi || hi > len(rows) {
		return nil, fmt.Errorf("span [%d, %d) over %d rows, %w", lo, hi, len(rows), ErrInvalidPredictionSpan)
	}
	if lo < MaxLag {
		return nil, fmt.Errorf("row %d needs %d months of history, %w", lo, MaxLag, ErrInsufficientHistory)
	}

	x := mat.NewDense(hi-lo, NumFeatures, nil)
	for t := lo; t < hi; t++ {
		for lag := MinLag; lag <= MaxLag; lag++ {
			src := rows[t-lag]
			driverVal, err := driverValue(src, driver)
			if err != nil {
				return nil, err
			}
			x.Set(t-lo, lag-MinLag, src.DInfl)
			x.Set(t-lo, NumLags+lag-MinLag, driverVal)
		}
	}
	return x, nil
}
