// Package render draws analysis results as PNG charts.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNotPlottable is returned for series with fewer than two points.
var ErrNotPlottable = errors.New("series has fewer than two points")

// Options sizes the rendered chart.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 720
	}
	return w, h
}

// pointStyle renders points only, with no connecting line.
func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, dashed bool) chart.Style {
	st := chart.Style{
		StrokeWidth: 1.5,
		StrokeColor: col,
	}
	if dashed {
		st.StrokeDashArray = []float64{5, 3}
		st.StrokeWidth = 1
	}
	return st
}

// PNG draws the day/night means, their spread band and the cubic trend, with
// month ticks on the x axis.
func PNG(w io.Writer, p *analysis.PlotSeries, opts Options) error {
	if !p.Plottable() {
		return fmt.Errorf("%s: %w", p.Field, ErrNotPlottable)
	}

	upper := make([]float64, len(p.Y))
	lower := make([]float64, len(p.Y))
	for i, y := range p.Y {
		upper[i] = y + p.YHigh[i]
		lower[i] = y - p.YLow[i]
	}

	series := []chart.Series{
		chart.ContinuousSeries{Name: "mean + sigma", XValues: p.X, YValues: upper, Style: lineStyle(chart.ColorLightGray, true)},
		chart.ContinuousSeries{Name: "mean - sigma", XValues: p.X, YValues: lower, Style: lineStyle(chart.ColorLightGray, true)},
		chart.ContinuousSeries{Name: p.Field, XValues: p.X, YValues: p.Y, Style: pointStyle(chart.ColorBlue, 4)},
	}
	if p.Fit != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    "cubic fit",
			XValues: p.X,
			YValues: p.Fit.Fitted,
			Style:   lineStyle(chart.ColorRed, false),
		})
	}

	ticks := make([]chart.Tick, len(p.TickPositions))
	for i, pos := range p.TickPositions {
		ticks[i] = chart.Tick{Value: pos, Label: p.TickLabels[i]}
	}

	xMax := p.X[len(p.X)-1]
	for _, pos := range p.TickPositions {
		xMax = math.Max(xMax, pos)
	}

	width, height := opts.size()
	ch := chart.Chart{
		Title:      p.WindowTitle,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:      p.XAxisCaption,
			Ticks:     ticks,
			Range:     &chart.ContinuousRange{Min: -0.5, Max: xMax + 0.5},
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Name:  p.YAxisName,
			Range: paddedRange(lower, upper),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// GaussianPNG draws the outlier filter's (value, weight) pairs.
func GaussianPNG(w io.Writer, p *analysis.PlotSeries, opts Options) error {
	if len(p.Gaussian) < 2 {
		return fmt.Errorf("%s gaussian: %w", p.Field, ErrNotPlottable)
	}

	xs := make([]float64, len(p.Gaussian))
	ys := make([]float64, len(p.Gaussian))
	for i, gp := range p.Gaussian {
		xs[i] = gp.Value
		ys[i] = gp.Weight
	}

	width, height := opts.size()
	ch := chart.Chart{
		Title:  p.Field + " gaussian",
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: "value", Range: paddedRange(xs, xs)},
		YAxis:  chart.YAxis{Name: "weight", Range: paddedRange(ys, ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "weight", XValues: xs, YValues: ys, Style: pointStyle(chart.ColorGreen, 3)},
		},
	}
	return ch.Render(chart.PNG, w)
}

// paddedRange spans both slices with a 5% margin. A flat series gets a unit
// span so the axis is never empty.
func paddedRange(a, b []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range [][]float64{a, b} {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if hi == lo {
		return &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
