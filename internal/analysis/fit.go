package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cubic is the trend model y = A*x + B*x^2 + C*x^3 + D.
type Cubic struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
}

// Eval evaluates the polynomial at x.
func (c Cubic) Eval(x float64) float64 {
	return c.A*x + c.B*x*x + c.C*x*x*x + c.D
}

// FitResult is a cubic trend over the aggregate points.
type FitResult struct {
	Coefficients Cubic     `json:"coefficients"`
	Fitted       []float64 `json:"fitted"`
	RSquared     float64   `json:"r_squared"`
}

var errTooFewPoints = errors.New("need at least 4 points for a cubic")

// FitCubic fits y against the indices 0..n-1 by least squares using a QR
// decomposition of the design matrix [x, x^2, x^3, 1].
func FitCubic(y []float64) (*FitResult, error) {
	n := len(y)
	if n < 4 {
		return nil, &FitError{Points: n, Err: errTooFewPoints}
	}

	X := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		X.Set(i, 0, x)
		X.Set(i, 1, x*x)
		X.Set(i, 2, x*x*x)
		X.Set(i, 3, 1)
	}

	var qr mat.QR
	qr.Factorize(X)

	coeffs := mat.NewVecDense(4, nil)
	if err := qr.SolveVecTo(coeffs, false, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, &FitError{Points: n, Err: err}
	}

	c := Cubic{A: coeffs.AtVec(0), B: coeffs.AtVec(1), C: coeffs.AtVec(2), D: coeffs.AtVec(3)}
	for _, v := range []float64{c.A, c.B, c.C, c.D} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &FitError{Points: n, Err: errors.New("non-finite coefficients")}
		}
	}

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = c.Eval(float64(i))
	}
	return &FitResult{
		Coefficients: c,
		Fitted:       fitted,
		RSquared:     rSquared(y, fitted),
	}, nil
}

func rSquared(y, predicted []float64) float64 {
	var sum float64
	for _, v := range y {
		sum += v
	}
	mean := sum / float64(len(y))

	var ssTot, ssRes float64
	for i := range y {
		ssTot += (y[i] - mean) * (y[i] - mean)
		ssRes += (y[i] - predicted[i]) * (y[i] - predicted[i])
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
