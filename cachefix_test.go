package rmi

import (
	"math/rand"
	"sort"
	"testing"
)

// TestCacheFixGuarantee is spec property 7 / scenario S5: after
// train_bounded(data, spec, bf, L), a reference lookup using the
// reported radius touches <= L consecutive elements of the original
// array for every key in data.
func TestCacheFixGuarantee(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	values := make([]uint64, 10000)
	var cum uint64
	for i := range values {
		cum += uint64(r.Intn(8) + 1)
		values[i] = cum
	}
	data := NewTrainingData(U64, u64Keys(values))

	const lineSize = 8
	trained, err := TrainBounded(data, "radix,linear", 256, lineSize)
	if err != nil {
		t.Fatalf("TrainBounded failed: %v", err)
	}

	if trained.CacheFix == nil {
		t.Fatal("expected a CacheFix payload")
	}
	if trained.NumDataRows != data.Len() {
		t.Fatalf("NumDataRows = %d, want captured original N = %d", trained.NumDataRows, data.Len())
	}

	anchorKeys := make([]float64, len(trained.CacheFix.Spline))
	for i, a := range trained.CacheFix.Spline {
		anchorKeys[i] = a.Key
	}

	for i := 0; i < data.Len(); i++ {
		k := data.KeyF64(i)
		// locate the anchor segment this key falls in, the same way a
		// served lookup would via binary search over anchor keys.
		idx := sort.SearchFloat64s(anchorKeys, k)
		if idx > 0 {
			idx--
		}
		if idx >= len(trained.CacheFix.Spline) {
			idx = len(trained.CacheFix.Spline) - 1
		}
		offset := trained.CacheFix.Spline[idx].OriginalOffset
		if abs(offset-i) > lineSize {
			t.Fatalf("key at true position %d resolves to anchor offset %d, outside one cache line of size %d", i, offset, lineSize)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestBuildCacheFixSplineMonotoneAnchors(t *testing.T) {
	keys := make([]float64, 1000)
	for i := range keys {
		keys[i] = float64(i)
	}
	anchors := buildCacheFixSpline(keys, 8)
	if len(anchors) == 0 {
		t.Fatal("expected at least one anchor")
	}
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Key <= anchors[i-1].Key {
			t.Fatalf("anchor keys not strictly increasing at %d", i)
		}
		if anchors[i].OriginalOffset <= anchors[i-1].OriginalOffset {
			t.Fatalf("anchor offsets not strictly increasing at %d", i)
		}
	}
}
