// Package analysis turns one AERONET field into plot-ready day/night
// aggregates: outlier filtering, segment aggregation, month tick metadata
// and an optional cubic trend.
package analysis

import (
	"errors"
	"fmt"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Classifier names accepted by Options.ClassifierName.
const (
	ClassifierClock = "clock"
	ClassifierSolar = "solar"
)

// Options configures an Analyzer.
type Options struct {
	Compat Compatibility
	// ClassifierName is "clock" (default) or "solar". The solar classifier
	// needs site coordinates, taken from Site or else from the dataset.
	ClassifierName string
	Site           *Site
	Range          Range
	Series         aeronet.SeriesOptions
	Fit            bool
	Gaussian       bool
}

// Site is a station location in decimal degrees.
type Site struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FilterStats summarizes the outlier filter pass.
type FilterStats struct {
	Input    int      `json:"input"`
	Kept     int      `json:"kept"`
	Gaussian Gaussian `json:"gaussian"`
}

// PlotSeries is everything a plotting collaborator needs for one field. It
// must not reorder or alter the values.
type PlotSeries struct {
	Field         string          `json:"field"`
	Title         string          `json:"title"`
	WindowTitle   string          `json:"window_title"`
	XAxisCaption  string          `json:"x_axis_caption"`
	YAxisName     string          `json:"y_axis_name"`
	X             []float64       `json:"x"`
	Labels        []string        `json:"labels"`
	Y             []float64       `json:"y"`
	YLow          []float64       `json:"y_low"`
	YHigh         []float64       `json:"y_high"`
	Counts        []int           `json:"counts"`
	TickPositions []float64       `json:"tick_positions"`
	TickLabels    []string        `json:"tick_labels"`
	Years         []string        `json:"years"`
	Filter        FilterStats     `json:"filter"`
	Fit           *FitResult      `json:"fit,omitempty"`
	FitError      string          `json:"fit_error,omitempty"`
	Gaussian      []GaussianPoint `json:"gaussian,omitempty"`
}

// Plottable reports whether the series has enough points to draw.
func (p *PlotSeries) Plottable() bool { return len(p.Y) > 1 }

// FieldFailure records why one field of a batch was not plotted.
type FieldFailure struct {
	Field string `json:"field"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

// BatchReport is the outcome of analyzing several fields of one snapshot.
type BatchReport struct {
	RunID    string         `json:"run_id"`
	Source   string         `json:"source"`
	Series   []*PlotSeries  `json:"series"`
	Skipped  []string       `json:"skipped,omitempty"`
	Failures []FieldFailure `json:"failures,omitempty"`
}

// Analyzer runs the per-field pipeline.
type Analyzer struct {
	opts   Options
	logger *zap.SugaredLogger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts Options, logger *zap.SugaredLogger) *Analyzer {
	return &Analyzer{opts: opts, logger: logger}
}

// Options returns the analyzer's configuration.
func (a *Analyzer) Options() Options { return a.opts }

// WithRange returns a copy of the analyzer restricted to r.
func (a *Analyzer) WithRange(r Range) *Analyzer {
	opts := a.opts
	opts.Range = r
	return &Analyzer{opts: opts, logger: a.logger}
}

func (a *Analyzer) classifier(ds *aeronet.Dataset) Classifier {
	if a.opts.ClassifierName != ClassifierSolar {
		return a.opts.Compat.DefaultClassifier()
	}
	if a.opts.Site != nil {
		return SolarClassifier{Latitude: a.opts.Site.Latitude, Longitude: a.opts.Site.Longitude}
	}
	if lat, lon, ok := ds.SiteCoordinates(); ok {
		return SolarClassifier{Latitude: lat, Longitude: lon}
	}
	a.logger.Warnf("no site coordinates in %s; falling back to clock day/night split", ds.Source)
	return a.opts.Compat.DefaultClassifier()
}

// Analyze runs the pipeline for one field. A failed fit is reported in
// PlotSeries.FitError, never as an error.
func (a *Analyzer) Analyze(ds *aeronet.Dataset, field string) (*PlotSeries, error) {
	series, err := ds.Series(field, a.opts.Series)
	if err != nil {
		return nil, err
	}

	kept, g, err := FilterOutliers(series)
	if err != nil {
		return nil, err
	}
	a.logger.Debugf("%s: kept %d of %d values (peak=%g mean=%g sigma=%g)",
		field, kept.Len(), series.Len(), g.Peak, g.Mean, g.Sigma)

	points := Aggregate(observations(kept), AggregateOptions{
		Compat:     a.opts.Compat,
		Classifier: a.classifier(ds),
		Range:      a.opts.Range,
	})

	p := &PlotSeries{
		Field:     field,
		Title:     field,
		YAxisName: YAxisName(field),
		Filter:    FilterStats{Input: series.Len(), Kept: kept.Len(), Gaussian: g},
	}
	for i, pt := range points {
		p.X = append(p.X, float64(i))
		p.Labels = append(p.Labels, pt.Label)
		p.Y = append(p.Y, pt.Mean)
		p.YLow = append(p.YLow, pt.Sigma)
		p.YHigh = append(p.YHigh, pt.Sigma)
		p.Counts = append(p.Counts, pt.Count)
	}
	p.WindowTitle = fmt.Sprintf("%s with %d data points", field, len(points))

	axis := BuildAxis(p.Labels)
	p.TickPositions = axis.Positions()
	p.TickLabels = axis.Labels()
	p.Years = axis.Years
	p.XAxisCaption = axis.Caption()

	if a.opts.Gaussian {
		p.Gaussian = g.Curve(series.Values)
	}

	if a.opts.Fit && p.Plottable() {
		fit, err := FitCubic(p.Y)
		if err != nil {
			a.logger.Warnf("%s: %v", field, err)
			p.FitError = err.Error()
		} else {
			p.Fit = fit
		}
	}

	return p, nil
}

// Resolve turns a selection into header field names.
func Resolve(h *aeronet.Header, sel Selection) ([]string, error) {
	var fields []string
	switch {
	case sel.All:
		fields = h.PlottableFields()
	case len(sel.Fields) > 0:
		for _, choice := range sel.Fields {
			if f, ok := h.MatchField(choice); ok {
				fields = append(fields, f)
			}
		}
	case sel.Keyword != "":
		fields = h.MatchKeyword(sel.Keyword)
	}
	if len(fields) == 0 {
		return nil, &EmptySelectionError{Selection: sel.String()}
	}
	return fields, nil
}

// AnalyzeSelection resolves sel and analyzes every matching field of ds.
// Per-field failures are recorded in the report and do not stop the batch.
// An EmptySelectionError is returned, along with the report, when nothing
// plottable came out.
func (a *Analyzer) AnalyzeSelection(ds *aeronet.Dataset, sel Selection) (*BatchReport, error) {
	report := &BatchReport{
		RunID:  uuid.NewString(),
		Source: ds.Source,
	}

	fields, err := Resolve(ds.Header, sel)
	if err != nil {
		return report, err
	}

	for _, field := range fields {
		p, err := a.Analyze(ds, field)
		if err != nil {
			a.logFailure(report.RunID, field, err)
			report.Failures = append(report.Failures, FieldFailure{Field: field, Error: err.Error(), Err: err})
			continue
		}
		if !p.Plottable() {
			a.logger.Debugw("field has too few aggregate points", "run", report.RunID, "field", field, "points", len(p.Y))
			report.Skipped = append(report.Skipped, field)
			continue
		}
		report.Series = append(report.Series, p)
	}

	a.logger.Infow("analysis complete",
		"run", report.RunID,
		"selection", sel.String(),
		"plotted", len(report.Series),
		"skipped", len(report.Skipped),
		"failed", len(report.Failures))

	if len(report.Series) == 0 {
		return report, &EmptySelectionError{Selection: sel.String()}
	}
	return report, nil
}

func (a *Analyzer) logFailure(runID, field string, err error) {
	var degenerate *DegenerateInputError
	var schema *aeronet.SchemaError
	switch {
	case errors.As(err, &degenerate):
		a.logger.Debugw("skipping field without usable spread", "run", runID, "field", field, "error", err)
	case errors.As(err, &schema):
		a.logger.Errorw("dataset is missing date/time columns", "run", runID, "field", field, "error", err)
	default:
		a.logger.Warnw("field analysis failed", "run", runID, "field", field, "error", err)
	}
}
