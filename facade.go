package rmi

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Train is the public entry point for training a single RMI
// configuration (spec.md §4.6). It dispatches on the model spec's
// length: two models (root+leaf) trains a two-layer RMI, three models
// trains a partial-three-layer RMI, and more than three trains the
// general N-layer path. This is where DESIGN.md's open-question 3 is
// applied: the source's panic for layer counts above two is replaced
// with TrainMultiLayer, not reproduced.
func Train(data *TrainingData, modelSpecStr string, bf int) (*TrainedRMI, error) {
	start := time.Now()
	modelSpec, err := parseModelSpec(modelSpecStr, data.Kind())
	if err != nil {
		return nil, err
	}

	var rmi *TrainedRMI
	switch len(modelSpec) {
	case 0, 1:
		return nil, errors.Wrap(ErrBadSpec, "train requires at least a root and a leaf model")
	case 2:
		rmi, err = TrainTwoLayer(data, modelSpec[0], modelSpec[1], bf)
	case 3:
		rmi, err = TrainPartialThreeLayer(data, modelSpec[0], modelSpec[1], modelSpec[2], bf)
	default:
		rmi, err = TrainMultiLayer(data, modelSpec, bf)
	}
	if err != nil {
		return nil, err
	}
	rmi.BuildTime = time.Since(start)
	return rmi, nil
}

// TrainForSize runs the optimizer with keep_n=1000 and returns the
// first (most accurate) frontier point whose size is under maxBytes
// (spec.md §4.6). Fails with ErrNoConfigFits if nothing fits.
func TrainForSize(data *TrainingData, maxBytes uint64) (*TrainedRMI, error) {
	start := time.Now()
	configs, err := FindParetoEfficientConfigs(data, 1000)
	if err != nil {
		return nil, err
	}
	for _, c := range configs {
		if c.Size < maxBytes {
			c.RMI.BuildTime = time.Since(start)
			return c.RMI, nil
		}
	}
	return nil, errors.Wrapf(ErrNoConfigFits, "no configuration fits under %d bytes", maxBytes)
}

// TrainBounded applies the cache-fix transform to data, trains modelSpec
// over the resulting anchor points, and attaches the spline payload
// (spec.md §4.6). Restricted to U64 data (ErrUnsupportedKind otherwise).
//
// DESIGN.md open-question 2: NumDataRows is set to the row count
// captured BEFORE the cache-fix transform runs, preserving the
// source's documented (if surprising) use-after-consume ordering —
// the returned TrainedRMI reports the original dataset's size even
// though it trained against the smaller set of spline anchors.
func TrainBounded(data *TrainingData, modelSpecStr string, bf, lineSize int) (*TrainedRMI, error) {
	if data.Kind() != U64 {
		return nil, errors.Wrap(ErrUnsupportedKind, "train_bounded requires U64 data")
	}
	start := time.Now()
	originalN := data.Len()

	payload := CacheFix(data, lineSize)
	anchorData := AnchorTrainingData(data.Kind(), payload)

	rmi, err := Train(anchorData, modelSpecStr, bf)
	if err != nil {
		return nil, err
	}
	rmi.CacheFix = payload
	rmi.NumDataRows = originalN
	rmi.BuildTime = time.Since(start)
	return rmi, nil
}

// ValidationResults holds the five side-by-side variants
// DriverValidation trains for benchmarking (spec.md §4.6). Entries
// whose spec length doesn't apply are left nil; MultiLayer is always
// trained.
type ValidationResults struct {
	TwoLayer          *TrainedRMI
	ThreeLayer        *TrainedRMI
	NaiveThreeLayer   *TrainedRMI
	PartialThreeLayer *TrainedRMI
	MultiLayer        *TrainedRMI
}

// MarshalJSON renders only the populated variants, keyed by name, per
// spec.md §6's "per-variant object" validation-result-file shape.
func (v *ValidationResults) MarshalJSON() ([]byte, error) {
	out := map[string]*TrainedRMI{}
	if v.TwoLayer != nil {
		out["two_layer"] = v.TwoLayer
	}
	if v.ThreeLayer != nil {
		out["three_layer"] = v.ThreeLayer
	}
	if v.NaiveThreeLayer != nil {
		out["naive_three_layer"] = v.NaiveThreeLayer
	}
	if v.PartialThreeLayer != nil {
		out["partial_three_layer"] = v.PartialThreeLayer
	}
	if v.MultiLayer != nil {
		out["multi_layer"] = v.MultiLayer
	}
	return json.Marshal(out)
}

// DriverValidation trains up to five variants of the same spec side by
// side for benchmarking (spec.md §4.6): multi_layer always; two_layer
// when the spec has exactly two models; three_layer, naive_three_layer,
// and partial_three_layer when it has exactly three.
func DriverValidation(data *TrainingData, modelSpecStr string, bf int) (*ValidationResults, error) {
	modelSpec, err := parseModelSpec(modelSpecStr, data.Kind())
	if err != nil {
		return nil, err
	}

	results := &ValidationResults{}

	// timed runs one variant's trainer and records its own build time.
	timed := func(train func() (*TrainedRMI, error)) (*TrainedRMI, error) {
		start := time.Now()
		rmi, err := train()
		if err == nil {
			rmi.BuildTime = time.Since(start)
		}
		return rmi, err
	}
	d := data.SoftCopy
	m := modelSpec

	results.MultiLayer, err = timed(func() (*TrainedRMI, error) { return TrainMultiLayer(d(), m, bf) })
	if err != nil {
		return nil, err
	}

	switch len(modelSpec) {
	case 2:
		results.TwoLayer, err = timed(func() (*TrainedRMI, error) { return TrainTwoLayer(d(), m[0], m[1], bf) })
		if err != nil {
			return nil, err
		}
	case 3:
		results.PartialThreeLayer, err = timed(func() (*TrainedRMI, error) { return TrainPartialThreeLayer(d(), m[0], m[1], m[2], bf) })
		if err != nil {
			return nil, err
		}
		results.ThreeLayer, err = timed(func() (*TrainedRMI, error) { return TrainThreeLayer(d(), m[0], m[1], m[2], bf) })
		if err != nil {
			return nil, err
		}
		results.NaiveThreeLayer, err = timed(func() (*TrainedRMI, error) { return TrainNaiveThreeLayer(d(), m[0], m[1], m[2], bf) })
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
