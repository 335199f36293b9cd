package transform

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Allisterh/inflation-forecasting/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func testDataset(t *testing.T, n int) *timeseries.Dataset {
	t.Helper()

	r := rand.New(rand.NewPCG(7, 11))
	start := time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

	pcepi := timeseries.GenerateGrowth(n, 100.0, 0.002).
		Add(timeseries.GenerateWave(n, 0.3, 12.0, 0))
	indpro := timeseries.GenerateGrowth(n, 95.0, 0.001).
		Add(timeseries.GenerateNoise(r, n, 0.2))
	unrate := timeseries.GenerateConst(n, 5.0).
		Add(timeseries.GenerateWave(n, 0.8, 48.0, 3)).
		Add(timeseries.GenerateNoise(r, n, 0.05))
	expinf := timeseries.GenerateConst(n, 2.0).
		Add(timeseries.GenerateWave(n, 0.4, 36.0, 7)).
		Add(timeseries.GenerateNoise(r, n, 0.03))
	mich := timeseries.GenerateConst(n, 3.0).
		Add(timeseries.GenerateWave(n, 0.5, 24.0, 1)).
		Add(timeseries.GenerateNoise(r, n, 0.04))

	return &timeseries.Dataset{
		T: timeseries.GenerateMonths(start, n),
		Series: map[string][]float64{
			SeriesPCEPI:     pcepi,
			SeriesUnrate:    unrate,
			SeriesExpInf1Yr: expinf,
			SeriesMich:      mich,
			SeriesIndPro:    indpro,
		},
	}
}

func TestStationaryRowCount(t *testing.T) {
	for _, n := range []int{14, 40, 100} {
		ds := testDataset(t, n)
		rows, err := Stationary(ds)
		require.NoError(t, err)
		require.Len(t, rows, n-Warmup)

		for _, r := range rows {
			assert.False(t, math.IsNaN(r.Infl))
			assert.False(t, math.IsNaN(r.DInfl))
			assert.False(t, math.IsNaN(r.DInfl12))
			assert.False(t, math.IsNaN(r.Unrate))
			assert.False(t, math.IsNaN(r.ExpInf1Yr))
			assert.False(t, math.IsNaN(r.Mich))
			assert.False(t, math.IsNaN(r.IndPro))
		}
	}
}

func TestStationaryShortHistory(t *testing.T) {
	// ranges shorter than the warm-up have no fully-defined row and must
	// fail cleanly rather than panic
	for _, n := range []int{1, 5, Warmup} {
		ds := testDataset(t, n)
		rows, err := Stationary(ds)
		require.ErrorIs(t, err, ErrInsufficientData)
		assert.Nil(t, rows)
	}
}

func TestStationaryMissingSeries(t *testing.T) {
	ds := testDataset(t, 40)
	delete(ds.Series, SeriesMich)
	_, err := Stationary(ds)
	require.ErrorIs(t, err, timeseries.ErrSeriesNotListed)
}

func TestStationaryConstantGrowth(t *testing.T) {
	// PCEPI compounding at a constant monthly rate makes infl flat after
	// warm-up and dinfl12 identically zero.
	n := 40
	rate := 0.003
	ds := testDataset(t, n)
	ds.Series[SeriesPCEPI] = timeseries.GenerateGrowth(n, 100.0, rate)

	rows, err := Stationary(ds)
	require.NoError(t, err)
	require.Len(t, rows, n-Warmup)

	wantInfl := 1200.0 * math.Log(1.0+rate)
	for _, r := range rows {
		assert.InDelta(t, wantInfl, r.Infl, tol)
		assert.InDelta(t, 0.0, r.DInfl, tol)
		assert.InDelta(t, 0.0, r.DInfl12, tol)
	}
}

func TestStationaryFormulas(t *testing.T) {
	n := 40
	ds := testDataset(t, n)
	rows, err := Stationary(ds)
	require.NoError(t, err)

	pcepi := ds.Series[SeriesPCEPI]
	unrate := ds.Series[SeriesUnrate]
	indpro := ds.Series[SeriesIndPro]

	infl := func(t int) float64 { return 1200.0 * math.Log(pcepi[t]/pcepi[t-1]) }

	for i, r := range rows {
		raw := i + Warmup
		assert.InDelta(t, infl(raw), r.Infl, tol)
		assert.InDelta(t, 100.0*math.Log(pcepi[raw]/pcepi[raw-12])-infl(raw-12), r.DInfl12, tol)
		assert.InDelta(t, unrate[raw]-unrate[raw-1], r.Unrate, tol)
		assert.InDelta(t, 1200.0*math.Log(indpro[raw]/indpro[raw-1]), r.IndPro, tol)
	}

	// dinfl is exactly the first difference of infl on consecutive rows
	for i := 1; i < len(rows); i++ {
		assert.InDelta(t, rows[i].Infl-rows[i-1].Infl, rows[i].DInfl, tol)
	}
}

func TestSplit(t *testing.T) {
	rows, err := Stationary(testDataset(t, 60))
	require.NoError(t, err)
	require.Len(t, rows, 47)

	testData := map[string]struct {
		cutoff   time.Time
		boundary int
		err      error
	}{
		"valid": {
			cutoff:   rows[39].Month,
			boundary: 40,
		},
		"cutoff between months floors to earlier month": {
			cutoff:   rows[39].Month.AddDate(0, 0, 12),
			boundary: 40,
		},
		"empty train": {
			cutoff: rows[0].Month.AddDate(0, -1, 0),
			err:    ErrInsufficientData,
		},
		"empty test": {
			cutoff: rows[len(rows)-1].Month,
			err:    ErrInsufficientData,
		},
		"train smaller than parameter count": {
			cutoff: rows[MinTrainRows-2].Month,
			err:    ErrInsufficientData,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := Split(rows, td.cutoff)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.boundary, p.Boundary)

			// disjoint and jointly covering
			train := p.Train()
			test := p.Test()
			require.Equal(t, len(rows), len(train)+len(test))
			assert.True(t, train[len(train)-1].Month.Before(test[0].Month))
			assert.Equal(t, rows[0].Month, train[0].Month)
			assert.Equal(t, rows[len(rows)-1].Month, test[len(test)-1].Month)
		})
	}
}
