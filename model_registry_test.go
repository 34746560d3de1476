package rmi

import "testing"

func TestNewModelUnknownPrimitive(t *testing.T) {
	data := NewTrainingData(U64, u64Keys([]uint64{1, 2, 3}))
	if _, err := newModel("not_a_real_model", data); err == nil {
		t.Fatal("expected ErrBadSpec for an unknown primitive name")
	}
}

func TestValidateRestrictionPlacement(t *testing.T) {
	cases := []struct {
		spec    string
		wantErr bool
	}{
		{"radix,linear", false},
		{"linear,radix", true},          // radix is RootOnly, not at layer 0
		{"linear,linear_spline", false}, // linear_spline is LeafOnly, at the last layer
		{"linear_spline,linear", true},  // linear_spline is LeafOnly, not at the last layer
		{"radix,linear,linear_spline", false},
	}
	for _, c := range cases {
		_, err := parseModelSpec(c.spec, U64)
		if c.wantErr && err == nil {
			t.Errorf("spec %q: expected error, got none", c.spec)
		}
		if !c.wantErr && err != nil {
			t.Errorf("spec %q: unexpected error: %v", c.spec, err)
		}
	}
}

func TestLinearModelFitsExactRamp(t *testing.T) {
	values := make([]uint64, 200)
	for i := range values {
		values[i] = uint64(5 * i)
	}
	data := NewTrainingData(U64, u64Keys(values))

	m, err := newModel("linear", data)
	if err != nil {
		t.Fatalf("newModel failed: %v", err)
	}
	for i := 0; i < data.Len(); i++ {
		pred := m.PredictF64(data.Key(i))
		if diff := pred - float64(i); diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("pair %d: predicted %v, want %v", i, pred, i)
		}
	}
}

func TestRadixModelIsMonotoneOnSortedKeys(t *testing.T) {
	values := make([]uint64, 500)
	for i := range values {
		values[i] = uint64(i * 17)
	}
	data := NewTrainingData(U64, u64Keys(values))

	m, err := newModel("radix", data)
	if err != nil {
		t.Fatalf("newModel failed: %v", err)
	}
	if m.Restriction() != RootOnly {
		t.Fatalf("radix should be RootOnly, got %v", m.Restriction())
	}

	prev := m.PredictF64(data.Key(0))
	for i := 1; i < data.Len(); i++ {
		cur := m.PredictF64(data.Key(i))
		if cur < prev {
			t.Fatalf("radix prediction not monotone at %d: %v < %v", i, cur, prev)
		}
		prev = cur
	}
}

func TestDegenerateLinearFallsBackToConstant(t *testing.T) {
	// every key identical -> zero key variance -> NumericDegenerate
	values := make([]uint64, 50)
	for i := range values {
		values[i] = 7
	}
	data := NewTrainingData(U64, u64Keys(values))

	m, err := newModel("linear", data)
	if err != nil {
		t.Fatalf("newModel failed: %v", err)
	}
	want := midpoint(data.Targets())
	got := m.PredictF64(data.Key(0))
	if got != want {
		t.Fatalf("degenerate linear model predicted %v, want constant midpoint %v", got, want)
	}
}
