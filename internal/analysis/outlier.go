package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Gaussian is the bell curve the outlier filter weights values with.
// Peak is the series maximum, not a fitted amplitude.
type Gaussian struct {
	Peak  float64 `json:"peak"`
	Mean  float64 `json:"mean"`
	Sigma float64 `json:"sigma"`
}

// GaussianPoint pairs a raw value with its Gaussian weight.
type GaussianPoint struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// NewGaussian derives the filter curve from values. Empty input or zero
// spread cannot define a curve and yields a DegenerateInputError.
func NewGaussian(values []float64) (Gaussian, error) {
	if len(values) == 0 {
		return Gaussian{}, &DegenerateInputError{Count: 0}
	}
	g := Gaussian{
		Peak:  floats.Max(values),
		Mean:  stat.Mean(values, nil),
		Sigma: MeasurementSigma(values),
	}
	if g.Sigma == 0 || math.IsNaN(g.Sigma) {
		return Gaussian{}, &DegenerateInputError{Count: len(values), Value: values[0]}
	}
	return g, nil
}

// Weight evaluates the curve at v.
func (g Gaussian) Weight(v float64) float64 {
	d := v - g.Mean
	return g.Peak * math.Exp(-(d*d)/(2*g.Sigma*g.Sigma))
}

// Accepts reports whether weight w lies inside the band of two sigma
// around the peak, bounds included.
func (g Gaussian) Accepts(w float64) bool {
	return g.Peak-2*g.Sigma <= w && w <= g.Peak+2*g.Sigma
}

// Curve returns the (value, weight) pairs for a diagnostic plot.
func (g Gaussian) Curve(values []float64) []GaussianPoint {
	out := make([]GaussianPoint, len(values))
	for i, v := range values {
		out[i] = GaussianPoint{Value: v, Weight: g.Weight(v)}
	}
	return out
}

// FilterOutliers keeps the entries of s whose Gaussian weight is inside the
// acceptance band and whose value is not a missing-value sentinel. The
// original values are kept, in input order, together with their date, time
// and instant.
func FilterOutliers(s *aeronet.FieldSeries) (*aeronet.FieldSeries, Gaussian, error) {
	n := len(s.Values)
	if len(s.Dates) != n || len(s.Times) != n || len(s.Instants) != n {
		return nil, Gaussian{}, fmt.Errorf("series %q has mismatched lengths: %d values, %d dates, %d times, %d instants",
			s.Field, n, len(s.Dates), len(s.Times), len(s.Instants))
	}

	g, err := NewGaussian(s.Values)
	if err != nil {
		var de *DegenerateInputError
		if errors.As(err, &de) {
			de.Field = s.Field
		}
		return nil, Gaussian{}, err
	}

	kept := &aeronet.FieldSeries{Field: s.Field}
	for i, v := range s.Values {
		if !g.Accepts(g.Weight(v)) || aeronet.IsMissing(v) {
			continue
		}
		kept.Values = append(kept.Values, v)
		kept.Dates = append(kept.Dates, s.Dates[i])
		kept.Times = append(kept.Times, s.Times[i])
		kept.Instants = append(kept.Instants, s.Instants[i])
	}
	return kept, g, nil
}

// observations zips a filtered series into the aggregator's input.
func observations(s *aeronet.FieldSeries) []Observation {
	out := make([]Observation, len(s.Values))
	for i := range s.Values {
		var instant time.Time
		if i < len(s.Instants) {
			instant = s.Instants[i]
		}
		out[i] = Observation{Value: s.Values[i], Date: s.Dates[i], Time: s.Times[i], Instant: instant}
	}
	return out
}
