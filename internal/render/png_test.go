package render

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/chrissnell/aeronetwx/internal/analysis"
)

func plotSeries() *analysis.PlotSeries {
	labels := []string{"01:06:2023_night", "01:06:2023_day", "02:06:2023_night", "02:06:2023_day", "03:07:2023_night"}
	y := []float64{0.21, 0.25, 0.23, 0.31, 0.28}
	sigma := []float64{0.01, 0.02, 0.01, 0.03, 0.02}
	axis := analysis.BuildAxis(labels)
	fit, _ := analysis.FitCubic(y)
	return &analysis.PlotSeries{
		Field:         "AOD_500nm",
		WindowTitle:   "AOD_500nm with 5 data points",
		XAxisCaption:  axis.Caption(),
		YAxisName:     analysis.YAxisName("AOD_500nm"),
		X:             []float64{0, 1, 2, 3, 4},
		Labels:        labels,
		Y:             y,
		YLow:          sigma,
		YHigh:         sigma,
		Counts:        []int{2, 3, 1, 4, 2},
		TickPositions: axis.Positions(),
		TickLabels:    axis.Labels(),
		Years:         axis.Years,
		Fit:           fit,
		Gaussian: []analysis.GaussianPoint{
			{Value: 0.2, Weight: 0.25},
			{Value: 0.3, Weight: 0.31},
			{Value: 0.25, Weight: 0.3},
		},
	}
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, plotSeries(), Options{Width: 640, Height: 360}); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
		t.Errorf("size = %v", b)
	}
}

func TestPNGFlatSeries(t *testing.T) {
	p := plotSeries()
	p.Y = []float64{0.2, 0.2, 0.2, 0.2, 0.2}
	p.YLow = make([]float64, 5)
	p.YHigh = make([]float64, 5)
	p.Fit = nil
	if err := PNG(&bytes.Buffer{}, p, Options{}); err != nil {
		t.Fatalf("PNG: %v", err)
	}
}

func TestPNGNotPlottable(t *testing.T) {
	p := &analysis.PlotSeries{Field: "AOD_500nm", X: []float64{0}, Y: []float64{0.2}, YLow: []float64{0}, YHigh: []float64{0}}
	if err := PNG(&bytes.Buffer{}, p, Options{}); !errors.Is(err, ErrNotPlottable) {
		t.Errorf("err = %v, want ErrNotPlottable", err)
	}
}

func TestGaussianPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := GaussianPNG(&buf, plotSeries(), Options{Width: 400, Height: 300}); err != nil {
		t.Fatalf("GaussianPNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}

	p := plotSeries()
	p.Gaussian = nil
	if err := GaussianPNG(&bytes.Buffer{}, p, Options{}); !errors.Is(err, ErrNotPlottable) {
		t.Errorf("err = %v, want ErrNotPlottable", err)
	}
}
