package transform

import (
	"fmt"
	"time"

	"github.com/Allisterh/inflation-forecasting/timeseries"
)

// MinTrainRows is the smallest usable train partition: an intercept plus 24
// lagged regressor terms leaves OLS underdetermined below this.
const MinTrainRows = 25

// Partition splits the stationary rows at a cutoff month while keeping the
// rows in one continuous backing slice. Train and Test are views into that
// slice so lagged regressors can reach across the boundary.
type Partition struct {
	Rows     []Row
	Boundary int // index of the first test row
}

// Split partitions rows into train (month <= cutoff) and test (month >
// cutoff). Fails with ErrInsufficientData when either side is empty or the
// train side cannot identify the regression parameters.
func Split(rows []Row, cutoff time.Time) (*Partition, error) {
	cutoff = timeseries.MonthOf(cutoff)

	boundary := 0
	for boundary < len(rows) && !rows[boundary].Month.After(cutoff) {
		boundary++
	}

	if boundary == 0 {
		return nil, fmt.Errorf("no rows at or before cutoff %s, %w", cutoff.Format("2006-01"), ErrInsufficientData)
	}
	if boundary == len(rows) {
		return nil, fmt.Errorf("no rows after cutoff %s, %w", cutoff.Format("2006-01"), ErrInsufficientData)
	}
	if boundary < MinTrainRows {
		return nil, fmt.Errorf("train partition has %d rows but the regression has %d parameters, %w",
			boundary, MinTrainRows, ErrInsufficientData)
	}

	return &Partition{Rows: rows, Boundary: boundary}, nil
}

// Train returns the rows at or before the cutoff.
func (p *Partition) Train() []Row {
	return p.Rows[:p.Boundary]
}

// Test returns the rows after the cutoff.
func (p *Partition) Test() []Row {
	return p.Rows[p.Boundary:]
}
