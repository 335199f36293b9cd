package timeseries

import (
	"math"
	"math/rand/v2"
	"time"
)

// GenerateMonths returns n contiguous months starting at the month of start.
func GenerateMonths(start time.Time, n int) []time.Time {
	first := MonthOf(start)
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, first.AddDate(0, i, 0))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	for i := range s {
		s[i] += src[i]
	}
	return s
}

// GenerateGrowth produces an index level series compounding at a constant
// monthly rate from an initial level.
func GenerateGrowth(n int, level, monthlyRate float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, level*math.Pow(1.0+monthlyRate, float64(i)))
	}
	return Series(y)
}

// GenerateConst produces a flat series of the given value.
func GenerateConst(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateWave produces a sinusoid over the month index with the given
// amplitude and period in months.
func GenerateWave(n int, amp, periodMonths, offset float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, amp*math.Sin(2.0*math.Pi*(float64(i)+offset)/periodMonths))
	}
	return Series(y)
}

// GenerateNoise produces gaussian noise from a seeded source so simulated
// datasets are reproducible across runs.
func GenerateNoise(r *rand.Rand, n int, scale float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}
