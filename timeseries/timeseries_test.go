package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonthly(t *testing.T) {
	jan := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		t   []time.Time
		v   []float64
		err error
	}{
		"valid": {
			t: []time.Time{jan, jan.AddDate(0, 1, 0), jan.AddDate(0, 2, 0)},
			v: []float64{1.0, 2.0, 3.0},
		},
		"mid month timestamps normalized": {
			t: []time.Time{
				time.Date(2020, time.January, 15, 11, 0, 0, 0, time.UTC),
				time.Date(2020, time.February, 3, 0, 0, 0, 0, time.UTC),
			},
			v: []float64{1.0, 2.0},
		},
		"no data": {
			err: ErrNoData,
		},
		"length mismatch": {
			t:   []time.Time{jan},
			v:   []float64{1.0, 2.0},
			err: ErrLenMismatch,
		},
		"non monotonic": {
			t:   []time.Time{jan.AddDate(0, 1, 0), jan},
			v:   []float64{1.0, 2.0},
			err: ErrNonMonotonic,
		},
		"duplicate month": {
			t:   []time.Time{jan, time.Date(2020, time.January, 20, 0, 0, 0, 0, time.UTC)},
			v:   []float64{1.0, 2.0},
			err: ErrNonMonotonic,
		},
		"month gap": {
			t:   []time.Time{jan, jan.AddDate(0, 2, 0)},
			v:   []float64{1.0, 2.0},
			err: ErrMonthGap,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := NewMonthly(td.t, td.v)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, len(td.v), s.Len())
			for _, tPnt := range s.T {
				assert.Equal(t, 1, tPnt.Day())
				assert.Equal(t, time.UTC, tPnt.Location())
			}
		})
	}
}

func TestMonthlySlice(t *testing.T) {
	months := GenerateMonths(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), 12)
	s, err := NewMonthly(months, GenerateConst(12, 5.0))
	require.NoError(t, err)

	window := s.Slice(months[3], months[7])
	require.Equal(t, 5, window.Len())
	assert.Equal(t, months[3], window.T[0])
	assert.Equal(t, months[7], window.T[4])

	empty := s.Slice(months[11].AddDate(0, 1, 0), months[11].AddDate(0, 5, 0))
	assert.Equal(t, 0, empty.Len())
}

func TestAlign(t *testing.T) {
	start := time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)

	mustMonthly := func(start time.Time, v []float64) *Monthly {
		s, err := NewMonthly(GenerateMonths(start, len(v)), v)
		require.NoError(t, err)
		return s
	}

	testData := map[string]struct {
		series map[string]*Monthly
		months int
		err    error
	}{
		"identical ranges": {
			series: map[string]*Monthly{
				"a": mustMonthly(start, GenerateConst(6, 1.0)),
				"b": mustMonthly(start, GenerateConst(6, 2.0)),
			},
			months: 6,
		},
		"staggered ranges intersect": {
			series: map[string]*Monthly{
				"a": mustMonthly(start, GenerateConst(8, 1.0)),
				"b": mustMonthly(start.AddDate(0, 2, 0), GenerateConst(8, 2.0)),
			},
			months: 6,
		},
		"no overlap": {
			series: map[string]*Monthly{
				"a": mustMonthly(start, GenerateConst(3, 1.0)),
				"b": mustMonthly(start.AddDate(0, 6, 0), GenerateConst(3, 2.0)),
			},
			err: ErrNoOverlap,
		},
		"empty": {
			series: map[string]*Monthly{},
			err:    ErrNoData,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := Align(td.series)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, td.months, ds.Len())
			for name := range td.series {
				v, err := ds.Get(name)
				require.NoError(t, err)
				assert.Len(t, v, td.months)
			}

			_, err = ds.Get("missing")
			assert.ErrorIs(t, err, ErrSeriesNotListed)
		})
	}
}
