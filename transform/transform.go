// Package transform converts raw monthly levels into the stationary
// differenced series used as regression inputs, and partitions the result
// into train and test ranges.
package transform

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Allisterh/inflation-forecasting/timeseries"
)

// Raw series identifiers the transformer consumes.
const (
	SeriesPCEPI     = "PCEPI"
	SeriesUnrate    = "UNRATE"
	SeriesExpInf1Yr = "EXPINF1YR"
	SeriesMich      = "MICH"
	SeriesIndPro    = "INDPRO"
)

// Warmup is the number of leading months without a fully-defined row. The
// deepest reach is infl lagged 12 months, which itself differences the raw
// price index one month back.
const Warmup = 13

var ErrInsufficientData = errors.New("insufficient rows for the lag structure")

// SeriesIDs returns the raw series required by the transformer in a fixed
// order.
func SeriesIDs() []string {
	return []string{SeriesPCEPI, SeriesUnrate, SeriesExpInf1Yr, SeriesMich, SeriesIndPro}
}

// Row is one month of the stationary dataset. Every field is fully defined;
// months with insufficient history are dropped by Stationary.
type Row struct {
	Month     time.Time `json:"month"`
	Infl      float64   `json:"infl"`
	DInfl     float64   `json:"dinfl"`
	DInfl12   float64   `json:"dinfl12"`
	Unrate    float64   `json:"unrate"`
	ExpInf1Yr float64   `json:"expinf1yr"`
	Mich      float64   `json:"mich"`
	IndPro    float64   `json:"indpro"`
}

// Stationary derives the differenced dataset from the raw aligned series:
//
//	infl[t]    = 1200 * ln(PCEPI[t] / PCEPI[t-1])
//	dinfl[t]   = infl[t] - infl[t-1]
//	dinfl12[t] = 100 * ln(PCEPI[t] / PCEPI[t-12]) - infl[t-12]
//	unrate, expinf1yr, mich first differenced, indpro annualized log diff
//
// The dinfl12 form mixes a 100-scaled cumulative log term with the
// 1200-scaled annualized infl lag. That asymmetry is part of the target
// definition and must not be normalized away.
//
// The output holds len(input) - Warmup rows with no undefined fields.
// Inputs no longer than the warm-up fail with ErrInsufficientData.
func Stationary(ds *timeseries.Dataset) ([]Row, error) {
	pcepi, err := ds.Get(SeriesPCEPI)
	if err != nil {
		return nil, err
	}
	unrate, err := ds.Get(SeriesUnrate)
	if err != nil {
		return nil, err
	}
	expinf, err := ds.Get(SeriesExpInf1Yr)
	if err != nil {
		return nil, err
	}
	mich, err := ds.Get(SeriesMich)
	if err != nil {
		return nil, err
	}
	indpro, err := ds.Get(SeriesIndPro)
	if err != nil {
		return nil, err
	}

	n := ds.Len()
	if n <= Warmup {
		return nil, fmt.Errorf("%d months with a %d month warm-up, %w", n, Warmup, ErrInsufficientData)
	}

	infl := make([]float64, n)
	infl[0] = math.NaN()
	for t := 1; t < n; t++ {
		infl[t] = 1200.0 * math.Log(pcepi[t]/pcepi[t-1])
	}

	rows := make([]Row, 0, n-Warmup)
	for t := Warmup; t < n; t++ {
		rows = append(rows, Row{
			Month:     ds.T[t],
			Infl:      infl[t],
			DInfl:     infl[t] - infl[t-1],
			DInfl12:   100.0*math.Log(pcepi[t]/pcepi[t-12]) - infl[t-12],
			Unrate:    unrate[t] - unrate[t-1],
			ExpInf1Yr: expinf[t] - expinf[t-1],
			Mich:      mich[t] - mich[t-1],
			IndPro:    1200.0 * math.Log(indpro[t]/indpro[t-1]),
		})
	}
	return rows, nil
}

// Months returns the month index of a row slice.
func Months(rows []Row) []time.Time {
	t := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		t = append(t, r.Month)
	}
	return t
}

// Targets returns the dinfl12 regression target of a row slice.
func Targets(rows []Row) []float64 {
	y := make([]float64, 0, len(rows))
	for _, r := range rows {
		y = append(y, r.DInfl12)
	}
	return y
}
