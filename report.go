package inflation

import (
	"fmt"
	"io"
	"time"

	"github.com/Allisterh/inflation-forecasting/timeseries"
	"github.com/Allisterh/inflation-forecasting/transform"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
)

const monthFormat = "2006-01"

func monthLabels(t []time.Time) []string {
	labels := make([]string, 0, len(t))
	for _, tPnt := range t {
		labels = append(labels, tPnt.Format(monthFormat))
	}
	return labels
}

// LineTSeries generates an echart multi-line chart for some arbitrary
// month/value combination. Each input series must have the same length as
// the month slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(monthLabels(t))
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}
	return line
}

// LineRawSeries generates one chart per raw input series, in loader order.
func LineRawSeries(ds *timeseries.Dataset) []*charts.Line {
	lines := make([]*charts.Line, 0, len(ds.Series))
	for _, name := range transform.SeriesIDs() {
		v, err := ds.Get(name)
		if err != nil {
			continue
		}
		lines = append(lines, LineTSeries("Raw "+name, []string{name}, ds.T, [][]float64{v}))
	}
	return lines
}

// LineTransformed plots the stationary derived series on a single chart.
func LineTransformed(rows []transform.Row) *charts.Line {
	n := len(rows)
	series := map[string][]float64{
		"infl":      make([]float64, 0, n),
		"dinfl":     make([]float64, 0, n),
		"dinfl12":   make([]float64, 0, n),
		"unrate":    make([]float64, 0, n),
		"expinf1yr": make([]float64, 0, n),
		"mich":      make([]float64, 0, n),
		"indpro":    make([]float64, 0, n),
	}
	for _, r := range rows {
		series["infl"] = append(series["infl"], r.Infl)
		series["dinfl"] = append(series["dinfl"], r.DInfl)
		series["dinfl12"] = append(series["dinfl12"], r.DInfl12)
		series["unrate"] = append(series["unrate"], r.Unrate)
		series["expinf1yr"] = append(series["expinf1yr"], r.ExpInf1Yr)
		series["mich"] = append(series["mich"], r.Mich)
		series["indpro"] = append(series["indpro"], r.IndPro)
	}

	names := []string{"infl", "dinfl", "dinfl12", "unrate", "expinf1yr", "mich", "indpro"}
	y := make([][]float64, 0, len(names))
	for _, name := range names {
		y = append(y, series[name])
	}
	return LineTSeries("Transformed Series", names, transform.Months(rows), y)
}

// LineForecast overlays the test-range actuals with every model forecast,
// the ensemble, and its 95% band.
func LineForecast(res *Results) *charts.Line {
	names := []string{"Actual"}
	y := [][]float64{transform.Targets(res.TestRows())}
	for _, mr := range res.Models {
		names = append(names, mr.Driver)
		y = append(y, mr.Forecast)
	}
	names = append(names, EnsembleName, "Upper", "Lower")
	y = append(y, res.Ensemble.Forecast, res.Ensemble.Upper, res.Ensemble.Lower)

	return LineTSeries("Out-of-Sample Forecast", names, res.TestMonths(), y)
}

func accuracyTable(title string, scores []ModelScore) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.AppendHeader(table.Row{"Model", "MAPE", "MSE", "R2"})
	for _, s := range scores {
		tbl.AppendRow(table.Row{
			s.Model,
			fmt.Sprintf("%.3f", s.Scores.MAPE),
			fmt.Sprintf("%.3f", s.Scores.MSE),
			fmt.Sprintf("%.3f", s.Scores.R2),
		})
	}
	return tbl
}

// WriteAccuracyTables renders the ranked in-sample and out-of-sample
// accuracy tables as text.
func WriteAccuracyTables(w io.Writer, rep AccuracyReport) error {
	if _, err := fmt.Fprintln(w, accuracyTable("In-Sample Accuracy (MAPE ascending)", rep.InSample).Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, accuracyTable("Out-of-Sample Accuracy (MAPE ascending)", rep.OutOfSample).Render())
	return err
}

// WriteReport renders the full HTML report: raw series charts, transformed
// series chart, forecast overlay with the 95% band, and both accuracy
// tables.
func WriteReport(w io.Writer, ds *timeseries.Dataset, res *Results) error {
	page := components.NewPage()
	for _, line := range LineRawSeries(ds) {
		page.AddCharts(line)
	}
	page.AddCharts(
		LineTransformed(res.Rows),
		LineForecast(res),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("unable to render report charts, %w", err)
	}

	if _, err := fmt.Fprintln(w, accuracyTable("In-Sample Accuracy (MAPE ascending)", res.Accuracy.InSample).RenderHTML()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, accuracyTable("Out-of-Sample Accuracy (MAPE ascending)", res.Accuracy.OutOfSample).RenderHTML()); err != nil {
		return err
	}
	return nil
}
