package rmi

import (
	"encoding/json"
	"time"
)

// SplineAnchor is one control point of a cache-fix spline: the key at
// which a new slope-feasible segment began, and that key's original
// offset in the unmodified key stream (spec.md §4.4).
type SplineAnchor struct {
	Key            float64
	OriginalOffset int
}

// CacheFixPayload is the optional (line_size, spline) pair attached to
// a TrainedRMI by TrainBounded (spec.md §3's "Cache-fix payload").
type CacheFixPayload struct {
	LineSize int
	Spline   []SplineAnchor
}

// trainedLayer is one layer of a TrainedRMI: a dense array of bucket
// slots, each either a trained Model or nil (an empty bucket, served
// by a null leaf at lookup time — spec.md §4.2 point 4).
type trainedLayer struct {
	models []Model
}

// TrainedRMI is the immutable result of one training run: the full
// layer-of-layers model structure plus every aggregate and per-leaf
// statistic spec.md §3 requires a TrainedRMI to carry.
type TrainedRMI struct {
	Kind            KeyType
	ModelSpec       string
	ModelNames      []string
	BranchingFactor int

	// layers[0] is always the single-model root layer. The last layer
	// is the leaf layer; leafBounds is parallel to it.
	layers     []trainedLayer
	leafBounds []leafBound

	NumRMIRows  int // total populated (non-nil) leaves
	NumDataRows int

	ModelAvgError     float64
	ModelAvgL2Error   float64
	ModelAvgLog2Error float64
	ModelMaxError     float64
	ModelMaxErrorIdx  int
	ModelMaxLog2Error float64

	// LastLayerMaxL1s is the per-leaf maximum absolute error of the
	// bottom layer, indexed by leaf bucket index.
	LastLayerMaxL1s []float64
	// ThirdLayerMaxL1s is the per-bucket maximum absolute error of the
	// middle layer in a three-layer RMI; nil for two-layer/N-layer.
	ThirdLayerMaxL1s []float64

	CacheFix *CacheFixPayload

	BuildTime time.Duration
}

// leafCount reports how many leaf slots this RMI was divided into,
// including empty ones.
func (t *TrainedRMI) leafCount() int {
	return len(t.layers[len(t.layers)-1].models)
}

// SizeInBytes sums every trained model's serialized size, the size
// axis the Pareto frontier optimizes against (spec.md §4.5) and the
// figure reported in a param-grid result entry.
func (t *TrainedRMI) SizeInBytes() uint64 {
	var total uint64
	for _, layer := range t.layers {
		for _, m := range layer.models {
			if m != nil {
				total += m.SizeInBytes()
			}
		}
	}
	return total
}

// Predict descends the layer stack from the root, applying the
// bucket-to-child mapping at each non-leaf layer (spec.md §4.2's
// "critical" bit-identical formula) and flattening the multi-index the
// same way the trainer did (parent*B+child), and returns the leaf's
// raw position estimate together with its stored error radii.
func (t *TrainedRMI) Predict(key U512) (pos float64, leftRadius, rightRadius float64) {
	n := t.NumDataRows
	b := t.BranchingFactor

	p := t.layers[0].models[0].PredictF64(key)
	idx := 0
	for layerNum := 1; layerNum < len(t.layers); layerNum++ {
		child := bucketIndex(p, b, n)
		idx = idx*b + child
		layer := t.layers[layerNum]
		if idx >= len(layer.models) {
			idx = len(layer.models) - 1
		}
		m := layer.models[idx]
		if m == nil {
			return p, 0, 0
		}
		p = m.PredictF64(key)
	}

	leaf := t.layers[len(t.layers)-1].models[idx]
	if leaf == nil {
		return p, 0, 0
	}
	bound := t.leafBounds[idx]
	return p, bound.leftRadius, bound.rightRadius
}

// jsonTrainedRMI is the wire shape for TrainedRMI.MarshalJSON, matching
// spec.md §6's validation-result-file field set (scalar error metrics,
// layer counts, spec, branching factor as string, build_time as
// string nanoseconds, string-encoded per-leaf max-L1 arrays).
type jsonTrainedRMI struct {
	NumRMIRows        int      `json:"num_rmi_rows"`
	NumDataRows       int      `json:"num_data_rows"`
	ModelAvgError     float64  `json:"model_avg_error"`
	ModelAvgL2Error   float64  `json:"model_avg_l2_error"`
	ModelAvgLog2Error float64  `json:"model_avg_log2_error"`
	ModelMaxError     float64  `json:"model_max_error"`
	ModelMaxErrorIdx  int      `json:"model_max_error_idx"`
	ModelMaxLog2Error float64  `json:"model_max_log2_error"`
	LastLayerMaxL1s   []string `json:"last_layer_max_l1s"`
	ThirdLayerMaxL1s  []string `json:"third_layer_max_l1s,omitempty"`
	Layers            int      `json:"layers"`
	Models            string   `json:"models"`
	BranchingFactor   string   `json:"branching_factor"`
	BuildTime         string   `json:"build_time"`
}

// MarshalJSON renders the validation-result-file shape described in
// spec.md §6: branching factor and build time as strings, per-leaf
// max-L1 vectors string-encoded.
func (t *TrainedRMI) MarshalJSON() ([]byte, error) {
	out := jsonTrainedRMI{
		NumRMIRows:        t.NumRMIRows,
		NumDataRows:       t.NumDataRows,
		ModelAvgError:     t.ModelAvgError,
		ModelAvgL2Error:   t.ModelAvgL2Error,
		ModelAvgLog2Error: t.ModelAvgLog2Error,
		ModelMaxError:     t.ModelMaxError,
		ModelMaxErrorIdx:  t.ModelMaxErrorIdx,
		ModelMaxLog2Error: t.ModelMaxLog2Error,
		LastLayerMaxL1s:   floatsToStrings(t.LastLayerMaxL1s),
		Layers:            len(t.layers),
		Models:            t.ModelSpec,
		BranchingFactor:   itoa(t.BranchingFactor),
		BuildTime:         itoa(int(t.BuildTime.Nanoseconds())),
	}
	if t.ThirdLayerMaxL1s != nil {
		out.ThirdLayerMaxL1s = floatsToStrings(t.ThirdLayerMaxL1s)
	}
	return json.Marshal(out)
}

func floatsToStrings(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = formatFloat(v)
	}
	return out
}
