// Package timeseries provides containers for monthly economic series and
// alignment of multiple series onto a common monthly index.
package timeseries

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoData          = errors.New("no series data")
	ErrLenMismatch     = errors.New("month index has a different length than values")
	ErrNonMonotonic    = errors.New("month index is not strictly increasing")
	ErrMonthGap        = errors.New("month index is not contiguous")
	ErrNoOverlap       = errors.New("series have no overlapping month range")
	ErrSeriesNotListed = errors.New("series not present in dataset")
)

// MonthOf truncates a timestamp to the first day of its month in UTC. All
// month indexes are normalized through this so series from different
// providers align on equality.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Monthly represents a single economic series sampled at a monthly
// frequency. The month index is strictly increasing and contiguous with no
// gaps.
type Monthly struct {
	T []time.Time
	V []float64
}

// NewMonthly returns a Monthly series after validating the month index is
// strictly increasing and contiguous. Input slices are copied and months are
// normalized to the first of the month.
func NewMonthly(t []time.Time, v []float64) (*Monthly, error) {
	if len(v) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(v) {
		return nil, fmt.Errorf(
			"month index has length of %d, but values has a length of %d, %w",
			len(t), len(v), ErrLenMismatch,
		)
	}

	tSeries := make([]time.Time, len(t))
	for i, tPnt := range t {
		tSeries[i] = MonthOf(tPnt)
	}
	for i := 1; i < len(tSeries); i++ {
		if !tSeries[i].After(tSeries[i-1]) {
			return nil, fmt.Errorf("at index %d, %w", i, ErrNonMonotonic)
		}
		if !tSeries[i].Equal(tSeries[i-1].AddDate(0, 1, 0)) {
			return nil, fmt.Errorf("gap between %s and %s, %w",
				tSeries[i-1].Format("2006-01"), tSeries[i].Format("2006-01"), ErrMonthGap)
		}
	}

	vSeries := make([]float64, len(v))
	copy(vSeries, v)
	return &Monthly{T: tSeries, V: vSeries}, nil
}

// Len returns the number of observations in the series.
func (m *Monthly) Len() int {
	if m == nil {
		return 0
	}
	return len(m.T)
}

// Slice returns the sub-series covering months in [from, to] inclusive. The
// result shares no storage with the receiver.
func (m *Monthly) Slice(from, to time.Time) *Monthly {
	from = MonthOf(from)
	to = MonthOf(to)

	lo := len(m.T)
	hi := 0
	for i, tPnt := range m.T {
		if !tPnt.Before(from) && i < lo {
			lo = i
		}
		if !tPnt.After(to) {
			hi = i + 1
		}
	}
	if lo >= hi {
		return &Monthly{}
	}

	t := make([]time.Time, hi-lo)
	v := make([]float64, hi-lo)
	copy(t, m.T[lo:hi])
	copy(v, m.V[lo:hi])
	return &Monthly{T: t, V: v}
}

// Dataset holds multiple named series aligned on a single common monthly
// index. Values are keyed by series name and share the index T.
type Dataset struct {
	T      []time.Time
	Series map[string][]float64
}

// Align intersects the input series onto their common month range and
// returns a Dataset over that range. Every input must cover the full
// overlapping window since gaps are rejected by NewMonthly.
func Align(series map[string]*Monthly) (*Dataset, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	var start, end time.Time
	for name, s := range series {
		if s.Len() == 0 {
			return nil, fmt.Errorf("series %q, %w", name, ErrNoData)
		}
		if start.IsZero() || s.T[0].After(start) {
			start = s.T[0]
		}
		if end.IsZero() || s.T[s.Len()-1].Before(end) {
			end = s.T[s.Len()-1]
		}
	}
	if start.After(end) {
		return nil, ErrNoOverlap
	}

	n := monthsBetween(start, end) + 1
	ds := &Dataset{
		T:      make([]time.Time, 0, n),
		Series: make(map[string][]float64, len(series)),
	}
	for i := 0; i < n; i++ {
		ds.T = append(ds.T, start.AddDate(0, i, 0))
	}

	for name, s := range series {
		window := s.Slice(start, end)
		if window.Len() != n {
			return nil, fmt.Errorf("series %q covers %d of %d months, %w", name, window.Len(), n, ErrMonthGap)
		}
		ds.Series[name] = window.V
	}
	return ds, nil
}

// Get returns the values for a named series in the dataset.
func (ds *Dataset) Get(name string) ([]float64, error) {
	v, exists := ds.Series[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrSeriesNotListed)
	}
	return v, nil
}

// Len returns the number of months covered by the dataset.
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.T)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
