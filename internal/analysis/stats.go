package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeasurementSigma is the spread reported as the measurement error of an
// aggregate: the population standard deviation multiplied by sqrt(2).
// It is intentionally not a conventional standard deviation and is also the
// width of the outlier filter's Gaussian.
func MeasurementSigma(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(values, nil)
	return std * math.Sqrt2
}
