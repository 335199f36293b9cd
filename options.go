package inflation

import (
	"time"

	"github.com/Allisterh/inflation-forecasting/models"
)

// DefaultIntervalZ is the z-score for the 95% forecast interval.
const DefaultIntervalZ = 1.96

// Options configures a pipeline run. Every run is a pure function of the
// raw series and these options.
type Options struct {
	// Start and End bound the raw series retrieval.
	Start time.Time
	End   time.Time

	// Cutoff is the last train month; everything after it is the test
	// partition.
	Cutoff time.Time

	// OLS configures the regression solve for each driver model.
	OLS *models.OLSOptions

	// IntervalZ scales the train residual spread into the forecast band.
	IntervalZ float64
}

// NewDefaultOptions trains on 1985 through 2018 and holds out 2019, the
// span where all five raw series are available.
func NewDefaultOptions() *Options {
	return &Options{
		Start:     time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2019, time.December, 1, 0, 0, 0, 0, time.UTC),
		Cutoff:    time.Date(2018, time.December, 1, 0, 0, 0, 0, time.UTC),
		OLS:       models.NewDefaultOLSOptions(),
		IntervalZ: DefaultIntervalZ,
	}
}
