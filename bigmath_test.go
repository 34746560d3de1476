package rmi

import "testing"

func TestBigCoefficientsExactLine(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{10, 13, 16, 19, 22} // y = 3x + 10
	m, b, ok := bigCoefficients(x, y)
	if !ok {
		t.Fatal("expected ok=true for non-degenerate x")
	}
	mf, _ := m.Float64()
	bf, _ := b.Float64()
	if diff := mf - 3; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("slope = %v, want 3", mf)
	}
	if diff := bf - 10; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("intercept = %v, want 10", bf)
	}
}

func TestBigCoefficientsDegenerate(t *testing.T) {
	x := []float64{5, 5, 5, 5}
	y := []float64{1, 2, 3, 4}
	if _, _, ok := bigCoefficients(x, y); ok {
		t.Fatal("expected ok=false when every x value is identical")
	}
}

func TestBigMeanAndVariance(t *testing.T) {
	values := []float64{2, 4, 6, 8}
	mean := bigMean(values)
	mf, _ := mean.Float64()
	if mf != 5 {
		t.Fatalf("bigMean = %v, want 5", mf)
	}

	variance := bigVariance(values, mean)
	vf, _ := variance.Float64()
	// sum((x-mean)^2) = 9+1+1+9 = 20
	if vf != 20 {
		t.Fatalf("bigVariance = %v, want 20", vf)
	}
}
