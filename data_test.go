package rmi

import "testing"

func TestTrainingDataRestrictIsIndependentSoftCopy(t *testing.T) {
	values := []uint64{10, 20, 30, 40, 50, 60}
	data := NewTrainingData(U64, u64Keys(values))

	sub := data.Restrict(2, 5) // keys 30,40,50
	if sub.Len() != 3 {
		t.Fatalf("Restrict length = %d, want 3", sub.Len())
	}
	if sub.KeyF64(0) != 30 {
		t.Fatalf("sub.KeyF64(0) = %v, want 30", sub.KeyF64(0))
	}
	if sub.AbsIndex(0) != 2 {
		t.Fatalf("sub.AbsIndex(0) = %d, want 2 (absolute position preserved)", sub.AbsIndex(0))
	}

	// Mutating sub via further restriction must not affect data or
	// any other soft copy taken from it.
	other := data.SoftCopy()
	sub2 := sub.Restrict(0, 1)
	if sub2.Len() != 1 || data.Len() != 6 || other.Len() != 6 {
		t.Fatalf("soft copies are not independent: sub2=%d data=%d other=%d", sub2.Len(), data.Len(), other.Len())
	}
}

func TestTrainingDataTargetDefaultsToAbsoluteIndex(t *testing.T) {
	data := NewTrainingData(U64, u64Keys([]uint64{1, 2, 3}))
	for i := 0; i < data.Len(); i++ {
		if got := data.Target(i); got != float64(i) {
			t.Fatalf("Target(%d) = %v, want %v", i, got, float64(i))
		}
	}
}

func TestTrainingDataWithOutputScale(t *testing.T) {
	data := NewTrainingData(U64, u64Keys([]uint64{1, 2, 3, 4}))
	scaled := data.WithOutputScale(0.5, 10)
	for i := 0; i < scaled.Len(); i++ {
		want := 0.5*float64(i) + 10
		if got := scaled.Target(i); got != want {
			t.Fatalf("Target(%d) = %v, want %v", i, got, want)
		}
	}
	// the original view must be unaffected.
	if data.Target(1) != 1 {
		t.Fatalf("original view's Target mutated by WithOutputScale soft copy")
	}
}

func TestTrainingDataWithCustomTargets(t *testing.T) {
	data := NewTrainingData(U64, u64Keys([]uint64{1, 2, 3}))
	custom := data.WithCustomTargets([]float64{7.5, 8.5, 9.5})
	for i, want := range []float64{7.5, 8.5, 9.5} {
		if got := custom.Target(i); got != want {
			t.Fatalf("Target(%d) = %v, want %v", i, got, want)
		}
	}
	if data.Target(0) != 0 {
		t.Fatalf("original view's Target mutated by WithCustomTargets soft copy")
	}
}

func TestTrainingDataPairsAndKeysMaterialize(t *testing.T) {
	values := []uint64{5, 15, 25}
	data := NewTrainingData(U64, u64Keys(values))
	pairs := data.Pairs()
	if len(pairs) != 3 {
		t.Fatalf("len(Pairs()) = %d, want 3", len(pairs))
	}
	for i, p := range pairs {
		if p.Pos != i {
			t.Fatalf("pair %d has Pos %d, want %d", i, p.Pos, i)
		}
	}
	keys := data.Keys()
	for i, want := range []float64{5, 15, 25} {
		if keys[i] != want {
			t.Fatalf("Keys()[%d] = %v, want %v", i, keys[i], want)
		}
	}
}

func TestTrainingDataEmpty(t *testing.T) {
	data := NewTrainingData(U64, nil)
	if !data.Empty() {
		t.Fatal("expected Empty() true for a nil-backed view")
	}
	if data.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", data.Len())
	}
}
