package rmi

import (
	"encoding/json"
	"testing"
)

func TestTrainedRMIMarshalJSONShape(t *testing.T) {
	data := gappyU64Data(1000, 9)
	trained, err := TrainTwoLayer(data, "linear", "linear", 16)
	if err != nil {
		t.Fatalf("TrainTwoLayer failed: %v", err)
	}

	raw, err := json.Marshal(trained)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode marshaled JSON: %v", err)
	}

	if _, ok := decoded["branching_factor"].(string); !ok {
		t.Fatalf("branching_factor should be a JSON string, got %T", decoded["branching_factor"])
	}
	if _, ok := decoded["build_time"].(string); !ok {
		t.Fatalf("build_time should be a JSON string, got %T", decoded["build_time"])
	}
	l1s, ok := decoded["last_layer_max_l1s"].([]interface{})
	if !ok {
		t.Fatalf("last_layer_max_l1s should be a JSON array, got %T", decoded["last_layer_max_l1s"])
	}
	for _, v := range l1s {
		if _, ok := v.(string); !ok {
			t.Fatalf("last_layer_max_l1s entries should be strings, got %T", v)
		}
	}
	if _, present := decoded["third_layer_max_l1s"]; present {
		t.Fatal("two-layer RMI should omit third_layer_max_l1s")
	}
	if decoded["models"] != "linear,linear" {
		t.Fatalf("models = %v, want %q", decoded["models"], "linear,linear")
	}
}

func TestTrainedRMIMarshalJSONIncludesThirdLayerForThreeLayer(t *testing.T) {
	data := gappyU64Data(2000, 10)
	trained, err := TrainThreeLayer(data, "radix", "linear", "linear", 8)
	if err != nil {
		t.Fatalf("TrainThreeLayer failed: %v", err)
	}
	raw, err := json.Marshal(trained)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode marshaled JSON: %v", err)
	}
	if _, present := decoded["third_layer_max_l1s"]; !present {
		t.Fatal("three-layer RMI should include third_layer_max_l1s")
	}
}

func TestTrainedRMIPredictAllKeysWithinBound(t *testing.T) {
	data := gappyU64Data(3000, 11)
	trained, err := TrainTwoLayer(data, "linear", "linear", 32)
	if err != nil {
		t.Fatalf("TrainTwoLayer failed: %v", err)
	}
	for i := 0; i < data.Len(); i++ {
		pred, left, right := trained.Predict(data.Key(i))
		lo, hi := pred-left, pred+right
		if float64(i) < lo-1e-6 || float64(i) > hi+1e-6 {
			t.Fatalf("key %d: predict=%v, search bound [%v, %v] excludes the true position", i, pred, lo, hi)
		}
	}
}
