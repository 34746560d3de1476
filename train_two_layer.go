package rmi

import (
	"github.com/pkg/errors"
)

// TrainTwoLayer trains a root model over the full dataset and B leaf
// models over the buckets it routes pairs into (spec.md §4.2). It is
// exactly TrainMultiLayer's general pattern specialized to a
// two-element spec; the teacher's buildRecursive supplies the
// left/right bookkeeping this generalizes.
func TrainTwoLayer(data *TrainingData, rootSpec, leafSpec string, bf int) (*TrainedRMI, error) {
	return TrainMultiLayer(data, []string{rootSpec, leafSpec}, bf)
}

// TrainPartialThreeLayer buckets at the root exactly as TrainTwoLayer
// does, but each bucket trains a middle model instead of a leaf; each
// middle model then re-buckets its own slice into B sub-buckets, each
// of which becomes a leaf (spec.md §4.2, "Partial three-layer"). This
// is the three-element case of the same general pattern TrainTwoLayer
// uses, so it is implemented identically via TrainMultiLayer; the
// middle layer's own per-bucket max error lands in ThirdLayerMaxL1s.
func TrainPartialThreeLayer(data *TrainingData, rootSpec, midSpec, leafSpec string, bf int) (*TrainedRMI, error) {
	return TrainMultiLayer(data, []string{rootSpec, midSpec, leafSpec}, bf)
}

// TrainThreeLayer is like TrainPartialThreeLayer, except the middle
// model in each root bucket is trained to predict the ROOT's own
// prediction for each key rather than the key's true position
// (spec.md §4.2, "Three-layer... can tighten error bounds when the
// root is noisy"). Only the middle layer's training target changes;
// bucketing, sub-bucketing, and the leaf layer proceed exactly as in
// TrainPartialThreeLayer.
func TrainThreeLayer(data *TrainingData, rootSpec, midSpec, leafSpec string, bf int) (*TrainedRMI, error) {
	modelSpec := []string{rootSpec, midSpec, leafSpec}
	if err := validate(modelSpec, data.Kind()); err != nil {
		return nil, err
	}
	if data.Empty() {
		return nil, errors.Wrap(ErrEmptyData, "no training pairs")
	}

	totalN := data.Len()

	root, err := newModel(rootSpec, data)
	if err != nil {
		return nil, err
	}
	rootBuckets := bucketSplit(data, root, bf, totalN)

	midModels := make([]Model, bf)
	midBucketData := make([]*TrainingData, bf)
	var thirdLayerMaxL1s []float64

	for j, bucket := range rootBuckets {
		if bucket == nil || bucket.Empty() {
			midModels[j] = nil
			midBucketData[j] = nil
			thirdLayerMaxL1s = append(thirdLayerMaxL1s, 0)
			continue
		}
		// Replace the middle model's regression target with the root's
		// own prediction for each key in the bucket, per this trainer's
		// defining difference from TrainPartialThreeLayer.
		targets := make([]float64, bucket.Len())
		for i := 0; i < bucket.Len(); i++ {
			targets[i] = root.PredictF64(bucket.Key(i))
		}
		retargeted := bucket.WithCustomTargets(targets)

		m, err := newModel(midSpec, retargeted)
		if err != nil {
			return nil, err
		}
		midModels[j] = m
		midBucketData[j] = bucket
		thirdLayerMaxL1s = append(thirdLayerMaxL1s, leafMaxAbsError(m, retargeted))
	}

	leafModels := make([]Model, 0, bf*bf)
	leafData := make([]*TrainingData, 0, bf*bf)

	for j, bucket := range midBucketData {
		mid := midModels[j]
		if bucket == nil || bucket.Empty() || mid == nil {
			for c := 0; c < bf; c++ {
				leafModels = append(leafModels, nil)
				leafData = append(leafData, nil)
			}
			continue
		}
		// Leaf routing and training use true positions again, exactly as
		// in partial-three-layer — only the middle layer's own training
		// target was substituted above.
		children := bucketSplit(bucket, mid, bf, totalN)
		for _, child := range children {
			leafData = append(leafData, child)
			if child == nil || child.Empty() {
				boundary := float64(bucket.AbsIndex(0))
				leafModels = append(leafModels, newNullLeaf(data.Kind(), boundary))
				continue
			}
			m, err := newModel(leafSpec, child)
			if err != nil {
				return nil, err
			}
			leafModels = append(leafModels, m)
		}
	}

	leafBounds := make([]leafBound, len(leafModels))
	var allErrors []float64
	var lastLayerMaxL1s []float64
	numRows := 0

	for i, m := range leafModels {
		d := leafData[i]
		if m == nil || d == nil || d.Empty() {
			lastLayerMaxL1s = append(lastLayerMaxL1s, 0)
			continue
		}
		numRows++
		leafBounds[i] = computeLeafBound(m, d)
		maxAbs := 0.0
		for k := 0; k < d.Len(); k++ {
			e := m.PredictF64(d.Key(k)) - d.Target(k)
			allErrors = append(allErrors, e)
			if a := absf(e); a > maxAbs {
				maxAbs = a
			}
		}
		lastLayerMaxL1s = append(lastLayerMaxL1s, maxAbs)
	}

	agg := computeAggregateErrors(allErrors)

	layers := []trainedLayer{
		{models: []Model{root}},
		{models: midModels},
		{models: leafModels},
	}

	return &TrainedRMI{
		Kind:              data.Kind(),
		ModelSpec:         joinModelSpec(modelSpec),
		ModelNames:        modelSpec,
		BranchingFactor:   bf,
		layers:            layers,
		leafBounds:        leafBounds,
		NumRMIRows:        numRows,
		NumDataRows:       totalN,
		ModelAvgError:     agg.avgError,
		ModelAvgL2Error:   agg.avgL2Error,
		ModelAvgLog2Error: agg.avgLog2Error,
		ModelMaxError:     agg.maxError,
		ModelMaxErrorIdx:  agg.maxErrorIdx,
		ModelMaxLog2Error: agg.maxLog2Error,
		LastLayerMaxL1s:   lastLayerMaxL1s,
		ThirdLayerMaxL1s:  thirdLayerMaxL1s,
	}, nil
}

// TrainNaiveThreeLayer trains all three layers independently over the
// FULL dataset, each predicting true position directly from the key,
// with no bucket-level refinement between them (spec.md §4.2: "used
// only as a baseline for validation"). Only the leaf model's
// predictions and error metrics are meaningful for lookup; root and
// middle are trained and measured purely for DriverValidation's
// side-by-side comparison.
func TrainNaiveThreeLayer(data *TrainingData, rootSpec, midSpec, leafSpec string, bf int) (*TrainedRMI, error) {
	modelSpec := []string{rootSpec, midSpec, leafSpec}
	if err := validate(modelSpec, data.Kind()); err != nil {
		return nil, err
	}
	if data.Empty() {
		return nil, errors.Wrap(ErrEmptyData, "no training pairs")
	}

	root, err := newModel(rootSpec, data)
	if err != nil {
		return nil, err
	}
	mid, err := newModel(midSpec, data)
	if err != nil {
		return nil, err
	}
	leaf, err := newModel(leafSpec, data)
	if err != nil {
		return nil, err
	}

	n := data.Len()
	bound := computeLeafBound(leaf, data)
	var allErrors []float64
	maxAbs := 0.0
	for i := 0; i < n; i++ {
		e := leaf.PredictF64(data.Key(i)) - data.Target(i)
		allErrors = append(allErrors, e)
		if a := absf(e); a > maxAbs {
			maxAbs = a
		}
	}
	agg := computeAggregateErrors(allErrors)

	layers := []trainedLayer{
		{models: []Model{root}},
		{models: []Model{mid}},
		{models: []Model{leaf}},
	}

	return &TrainedRMI{
		Kind:              data.Kind(),
		ModelSpec:         joinModelSpec(modelSpec),
		ModelNames:        modelSpec,
		BranchingFactor:   bf,
		layers:            layers,
		leafBounds:        []leafBound{bound},
		NumRMIRows:        1,
		NumDataRows:       n,
		ModelAvgError:     agg.avgError,
		ModelAvgL2Error:   agg.avgL2Error,
		ModelAvgLog2Error: agg.avgLog2Error,
		ModelMaxError:     agg.maxError,
		ModelMaxErrorIdx:  agg.maxErrorIdx,
		ModelMaxLog2Error: agg.maxLog2Error,
		LastLayerMaxL1s:   []float64{maxAbs},
	}, nil
}
