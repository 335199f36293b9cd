// Package inflation orchestrates the inflation forecasting pipeline: raw
// series retrieval, stationarity transform, train/test split, four
// distributed-lag Phillips-curve model fits, an ensemble average, and
// accuracy evaluation.
package inflation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Allisterh/inflation-forecasting/forecast"
	"github.com/Allisterh/inflation-forecasting/fred"
	"github.com/Allisterh/inflation-forecasting/models"
	"github.com/Allisterh/inflation-forecasting/timeseries"
	"github.com/Allisterh/inflation-forecasting/transform"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoFetcher      = errors.New("no series fetcher")
	ErrNoUsableModels = errors.New("no driver model could be fit")
)

// Pipeline runs the forecasting computation end to end. It holds no state
// across runs beyond its configuration.
type Pipeline struct {
	opt     *Options
	fetcher fred.Fetcher

	rawDataset *timeseries.Dataset
}

// New creates a Pipeline using the provided fetcher and options. If no
// options are provided a default is used.
func New(fetcher fred.Fetcher, opt *Options) (*Pipeline, error) {
	if fetcher == nil {
		return nil, ErrNoFetcher
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Pipeline{
		opt:     opt,
		fetcher: fetcher,
	}, nil
}

// Run fetches the raw series once and computes forecasts and the accuracy
// report. The computation after the fetch is pure and deterministic.
func (p *Pipeline) Run(ctx context.Context) (*Results, error) {
	series, err := p.fetcher.Fetch(ctx, transform.SeriesIDs(), p.opt.Start, p.opt.End)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve raw series, %w", err)
	}

	ds, err := timeseries.Align(series)
	if err != nil {
		return nil, fmt.Errorf("unable to align raw series, %w", err)
	}
	p.rawDataset = ds

	rows, err := transform.Stationary(ds)
	if err != nil {
		return nil, fmt.Errorf("unable to transform raw series, %w", err)
	}

	part, err := transform.Split(rows, p.opt.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("unable to partition transformed rows, %w", err)
	}

	fitted, err := p.fitModels(part)
	if err != nil {
		return nil, err
	}
	if len(fitted) == 0 {
		return nil, ErrNoUsableModels
	}

	return p.evaluate(part, fitted)
}

// RawDataset returns the aligned raw series from the most recent run, for
// report rendering.
func (p *Pipeline) RawDataset() *timeseries.Dataset {
	return p.rawDataset
}

// fitModels fits the four driver models concurrently. The fits share no
// mutable state so they only need a join point. A rank-deficient driver is
// skipped with a warning rather than failing the run.
func (p *Pipeline) fitModels(part *transform.Partition) ([]*forecast.Model, error) {
	drivers := forecast.Drivers()
	slots := make([]*forecast.Model, len(drivers))

	var g errgroup.Group
	for i, driver := range drivers {
		g.Go(func() error {
			m, err := forecast.Fit(part, driver, p.opt.OLS)
			if err != nil {
				if errors.Is(err, models.ErrSingularDesign) {
					slog.Warn("skipping driver with degenerate regressor data", "driver", driver, "error", err.Error())
					return nil
				}
				return fmt.Errorf("unable to fit driver model, %w", err)
			}
			slots[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fitted := make([]*forecast.Model, 0, len(slots))
	for _, m := range slots {
		if m != nil {
			fitted = append(fitted, m)
		}
	}
	return fitted, nil
}

func (p *Pipeline) evaluate(part *transform.Partition, fitted []*forecast.Model) (*Results, error) {
	rows := part.Rows
	testLo := part.Boundary
	testHi := len(rows)
	fittedStart := fitted[0].FittedStart()

	trainActual := transform.Targets(rows[fittedStart:part.Boundary])
	testActual := transform.Targets(rows[testLo:testHi])

	res := &Results{
		Rows:        rows,
		Boundary:    part.Boundary,
		FittedStart: fittedStart,
		Models:      make([]ModelResult, 0, len(fitted)),
	}

	var inSample, outSample []ModelScore
	fittedSeries := make([][]float64, 0, len(fitted))
	forecastSeries := make([][]float64, 0, len(fitted))

	for _, m := range fitted {
		fc, err := m.Forecast(rows, testLo, testHi)
		if err != nil {
			return nil, fmt.Errorf("unable to forecast test range, %w", err)
		}

		outScores, err := forecast.NewScores(fc, testActual)
		if err != nil {
			return nil, fmt.Errorf("unable to score driver %s forecast, %w", m.Driver, err)
		}

		res.Models = append(res.Models, ModelResult{
			Driver:   m.Driver,
			Model:    m,
			Fitted:   m.FittedValues(),
			Forecast: fc,
		})
		fittedSeries = append(fittedSeries, m.FittedValues())
		forecastSeries = append(forecastSeries, fc)
		inSample = append(inSample, ModelScore{Model: m.Driver, Scores: *m.Scores})
		outSample = append(outSample, ModelScore{Model: m.Driver, Scores: *outScores})
	}

	ensFitted, err := forecast.Ensemble(fittedSeries...)
	if err != nil {
		return nil, fmt.Errorf("unable to ensemble fitted values, %w", err)
	}
	ensForecast, err := forecast.Ensemble(forecastSeries...)
	if err != nil {
		return nil, fmt.Errorf("unable to ensemble forecasts, %w", err)
	}

	ensInScores, err := forecast.NewScores(ensFitted, trainActual)
	if err != nil {
		return nil, fmt.Errorf("unable to score ensemble fitted values, %w", err)
	}
	ensOutScores, err := forecast.NewScores(ensForecast, testActual)
	if err != nil {
		return nil, fmt.Errorf("unable to score ensemble forecast, %w", err)
	}
	inSample = append(inSample, ModelScore{Model: EnsembleName, Scores: *ensInScores})
	outSample = append(outSample, ModelScore{Model: EnsembleName, Scores: *ensOutScores})

	// 95% band from the spread of the ensemble train residual
	ensResidual := make([]float64, len(trainActual))
	floats.SubTo(ensResidual, trainActual, ensFitted)
	spread := p.opt.IntervalZ * stat.StdDev(ensResidual, nil)

	upper := make([]float64, len(ensForecast))
	lower := make([]float64, len(ensForecast))
	copy(upper, ensForecast)
	copy(lower, ensForecast)
	floats.AddConst(spread, upper)
	floats.AddConst(-spread, lower)

	res.Ensemble = EnsembleResult{
		Fitted:   ensFitted,
		Forecast: ensForecast,
		Upper:    upper,
		Lower:    lower,
	}
	res.Accuracy = AccuracyReport{
		InSample:    rankByMAPE(inSample),
		OutOfSample: rankByMAPE(outSample),
	}
	return res, nil
}
