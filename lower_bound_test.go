package rmi

import "testing"

// TestLowerBoundSoundness is spec property 2: for every leaf L and
// every key k in its bucket, the true position i lies in
// [L.predict(k) - left_radius, L.predict(k) + right_radius].
func TestLowerBoundSoundness(t *testing.T) {
	values := make([]uint64, 300)
	for i := range values {
		// A slightly noisy ramp so linear regression has nonzero
		// residuals worth bounding.
		values[i] = uint64(i*3 + (i%7)*2)
	}
	data := NewTrainingData(U64, u64Keys(values))

	m, err := newModel("linear", data)
	if err != nil {
		t.Fatalf("newModel failed: %v", err)
	}
	bound := computeLeafBound(m, data)

	for i := 0; i < data.Len(); i++ {
		pred := m.PredictF64(data.Key(i))
		lo, hi := pred-bound.leftRadius, pred+bound.rightRadius
		if float64(i) < lo-1e-9 || float64(i) > hi+1e-9 {
			t.Fatalf("pair %d: search interval [%v, %v] around prediction %v excludes the true position", i, lo, hi, pred)
		}
	}
}

func TestLowerBoundEmptyOrSingleton(t *testing.T) {
	empty := NewTrainingData(U64, nil)
	if b := computeLeafBound(nil, empty); b.leftRadius != 0 || b.rightRadius != 0 {
		t.Fatalf("expected zero bound for empty data, got %+v", b)
	}

	single := NewTrainingData(U64, u64Keys([]uint64{42}))
	m, err := newModel("linear_spline", single)
	if err != nil {
		t.Fatalf("newModel failed: %v", err)
	}
	if b := computeLeafBound(m, single); b.leftRadius != 0 || b.rightRadius != 0 {
		t.Fatalf("expected zero bound for a single-pair leaf, got %+v", b)
	}
}
