package inflation

import (
	"math"
	"sort"
	"time"

	"github.com/Allisterh/inflation-forecasting/forecast"
	"github.com/Allisterh/inflation-forecasting/transform"
	"github.com/goccy/go-json"
)

// EnsembleName identifies the derived ensemble in accuracy reports.
const EnsembleName = "ensem"

// ModelResult pairs a fitted driver model with its in-sample fitted values
// and out-of-sample forecast.
type ModelResult struct {
	Driver   string          `json:"driver"`
	Model    *forecast.Model `json:"model"`
	Fitted   []float64       `json:"fitted"`
	Forecast []float64       `json:"forecast"`
}

// EnsembleResult holds the derived ensemble series. There is deliberately
// no model here: the ensemble has no coefficients and cannot be queried
// like a fitted model.
type EnsembleResult struct {
	Fitted   []float64 `json:"fitted"`
	Forecast []float64 `json:"forecast"`
	Upper    []float64 `json:"upper"`
	Lower    []float64 `json:"lower"`
}

// ModelScore names a model with its accuracy scores over one range.
type ModelScore struct {
	Model  string          `json:"model"`
	Scores forecast.Scores `json:"scores"`
}

// AccuracyReport ranks models by MAPE over the train range (fitted values)
// and the test range (forecasts). Lower is better; ties keep model
// insertion order.
type AccuracyReport struct {
	InSample    []ModelScore `json:"in_sample"`
	OutOfSample []ModelScore `json:"out_of_sample"`
}

// Results is the full output of a pipeline run.
type Results struct {
	Rows        []transform.Row `json:"rows"`
	Boundary    int             `json:"boundary"`
	FittedStart int             `json:"fitted_start"`
	Models      []ModelResult   `json:"models"`
	Ensemble    EnsembleResult  `json:"ensemble"`
	Accuracy    AccuracyReport  `json:"accuracy"`
}

// TrainRows returns the train side of the partition.
func (r *Results) TrainRows() []transform.Row {
	return r.Rows[:r.Boundary]
}

// TestRows returns the test side of the partition.
func (r *Results) TestRows() []transform.Row {
	return r.Rows[r.Boundary:]
}

// FittedMonths returns the months covered by in-sample fitted values.
func (r *Results) FittedMonths() []time.Time {
	return transform.Months(r.Rows[r.FittedStart:r.Boundary])
}

// TestMonths returns the months covered by out-of-sample forecasts.
func (r *Results) TestMonths() []time.Time {
	return transform.Months(r.TestRows())
}

// JSON serializes the results including each fitted model's coefficients.
// The ensemble appears only as its derived series.
func (r *Results) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// rankByMAPE stable-sorts scores ascending by MAPE so ties keep insertion
// order. Undefined MAPE sinks to the bottom.
func rankByMAPE(scores []ModelScore) []ModelScore {
	ranked := make([]ModelScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		mi := ranked[i].Scores.MAPE
		mj := ranked[j].Scores.MAPE
		if math.IsNaN(mi) {
			return false
		}
		if math.IsNaN(mj) {
			return true
		}
		return mi < mj
	})
	return ranked
}
