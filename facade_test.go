package rmi

import (
	"math/rand"
	"testing"
)

func gappyU64Data(n int, seed int64) *TrainingData {
	r := rand.New(rand.NewSource(seed))
	values := make([]uint64, n)
	var cum uint64
	for i := range values {
		cum += uint64(r.Intn(8) + 1)
		values[i] = cum
	}
	return NewTrainingData(U64, u64Keys(values))
}

func TestTrainDispatchesByLayerCount(t *testing.T) {
	data := gappyU64Data(2000, 1)

	two, err := Train(data, "linear,linear", 16)
	if err != nil {
		t.Fatalf("two-layer Train failed: %v", err)
	}
	if two.BuildTime <= 0 {
		t.Fatal("expected Train to fill BuildTime")
	}

	three, err := Train(data, "radix,linear,linear", 8)
	if err != nil {
		t.Fatalf("three-layer Train failed: %v", err)
	}
	if len(three.layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(three.layers))
	}

	multi, err := Train(data, "radix,linear,linear,linear", 4)
	if err != nil {
		t.Fatalf("multi-layer Train failed: %v", err)
	}
	if len(multi.layers) != 4 {
		t.Fatalf("expected 4 layers, got %d", len(multi.layers))
	}
}

func TestTrainBoundedRejectsNonU64(t *testing.T) {
	data := NewTrainingData(U32, []U512{U512FromUint64(1), U512FromUint64(2)})
	if _, err := TrainBounded(data, "linear,linear", 4, 8); err == nil {
		t.Fatal("expected ErrUnsupportedKind for non-U64 data")
	}
}

func TestTrainForSizePicksFirstFittingFrontierPoint(t *testing.T) {
	data := gappyU64Data(5000, 2)

	configs, err := FindParetoEfficientConfigs(data, 5)
	if err != nil {
		t.Fatalf("FindParetoEfficientConfigs failed: %v", err)
	}
	if len(configs) < 2 {
		t.Skip("frontier too small to exercise train_for_size meaningfully")
	}

	maxBytes := configs[1].Size + 1
	result, err := TrainForSize(data, maxBytes)
	if err != nil {
		t.Fatalf("TrainForSize failed: %v", err)
	}
	size := result.SizeInBytes()
	if size >= maxBytes {
		t.Fatalf("returned RMI size %d not under max_bytes %d", size, maxBytes)
	}
}

func TestTrainForSizeNoConfigFits(t *testing.T) {
	data := gappyU64Data(500, 3)
	if _, err := TrainForSize(data, 1); err == nil {
		t.Fatal("expected ErrNoConfigFits for an impossibly small budget")
	}
}

func TestDriverValidationVariantSelection(t *testing.T) {
	data := gappyU64Data(1000, 4)

	twoSpec, err := DriverValidation(data, "linear,linear", 8)
	if err != nil {
		t.Fatalf("DriverValidation (2-layer spec) failed: %v", err)
	}
	if twoSpec.TwoLayer == nil || twoSpec.MultiLayer == nil {
		t.Fatal("expected TwoLayer and MultiLayer to be populated for a 2-model spec")
	}
	if twoSpec.ThreeLayer != nil || twoSpec.PartialThreeLayer != nil || twoSpec.NaiveThreeLayer != nil {
		t.Fatal("did not expect three-layer variants for a 2-model spec")
	}

	threeSpec, err := DriverValidation(data, "radix,linear,linear", 8)
	if err != nil {
		t.Fatalf("DriverValidation (3-layer spec) failed: %v", err)
	}
	if threeSpec.ThreeLayer == nil || threeSpec.PartialThreeLayer == nil || threeSpec.NaiveThreeLayer == nil || threeSpec.MultiLayer == nil {
		t.Fatal("expected three-layer, partial-three-layer, naive-three-layer and multi-layer to all be populated for a 3-model spec")
	}
	if threeSpec.TwoLayer != nil {
		t.Fatal("did not expect TwoLayer for a 3-model spec")
	}
}
