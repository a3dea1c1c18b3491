package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestFitCubicRecoversPolynomial(t *testing.T) {
	want := Cubic{A: 2, B: -0.5, C: 0.1, D: 3}
	y := make([]float64, 10)
	for i := range y {
		y[i] = want.Eval(float64(i))
	}

	fit, err := FitCubic(y)
	if err != nil {
		t.Fatalf("FitCubic: %v", err)
	}
	got := fit.Coefficients
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"a", got.A, want.A},
		{"b", got.B, want.B},
		{"c", got.C, want.C},
		{"d", got.D, want.D},
	} {
		if math.Abs(c.got-c.want) > 1e-8 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(fit.Fitted) != len(y) {
		t.Fatalf("fitted has %d values, want %d", len(fit.Fitted), len(y))
	}
	if math.Abs(fit.RSquared-1) > 1e-9 {
		t.Errorf("r^2 = %v, want 1", fit.RSquared)
	}
}

func TestFitCubicTooFewPoints(t *testing.T) {
	for n := 0; n < 4; n++ {
		_, err := FitCubic(make([]float64, n))
		var fe *FitError
		if !errors.As(err, &fe) {
			t.Fatalf("n=%d: err = %v, want FitError", n, err)
		}
		if fe.Points != n {
			t.Errorf("n=%d: Points = %d", n, fe.Points)
		}
	}
}

func TestFitCubicConstant(t *testing.T) {
	fit, err := FitCubic([]float64{2, 2, 2, 2, 2})
	if err != nil {
		t.Fatalf("FitCubic: %v", err)
	}
	for i, v := range fit.Fitted {
		if math.Abs(v-2) > 1e-9 {
			t.Errorf("fitted[%d] = %v, want 2", i, v)
		}
	}
}
