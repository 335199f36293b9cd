package forecast

import (
	"errors"
	"fmt"
)

var (
	ErrNoForecasts         = errors.New("no forecasts to ensemble")
	ErrForecastLenMismatch = errors.New("forecasts have different lengths")
)

// Ensemble returns the pointwise unweighted mean of already-produced
// forecasts. The ensemble is a derived view over the fitted models: it has
// no coefficients of its own, is never fit, and is never serialized as a
// model.
func Ensemble(forecasts ...[]float64) ([]float64, error) {
	if len(forecasts) == 0 {
		return nil, ErrNoForecasts
	}

	n := len(forecasts[0])
	for i, f := range forecasts {
		if len(f) != n {
			return nil, fmt.Errorf("forecast %d has %d points, expected %d, %w", i, len(f), n, ErrForecastLenMismatch)
		}
	}

	mean := make([]float64, n)
	for _, f := range forecasts {
		for i, v := range f {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(forecasts))
	}
	return mean, nil
}
