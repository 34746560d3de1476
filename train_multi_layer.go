package rmi

import "github.com/pkg/errors"

// TrainMultiLayer is the general N-layer trainer (spec.md §4.2,
// "General multi-layer"): it iteratively applies the two-layer split
// pattern layer by layer, so layer L's model at bucket j is trained on
// exactly the pairs routed to j by layers 0..L-1. TwoLayer (N=2) and
// PartialThreeLayer (N=3) are both instances of this same pattern —
// see train_two_layer.go's thin wrappers.
//
// This replaces the teacher lineage's Rust panic for spec lengths > 2
// (REDESIGN FLAGS / DESIGN.md open-question 3): Train dispatches here
// whenever modelSpec has more than two layers.
func TrainMultiLayer(data *TrainingData, modelSpec []string, bf int) (*TrainedRMI, error) {
	if len(modelSpec) == 0 {
		return nil, errors.Wrap(ErrBadSpec, "empty model spec")
	}
	if err := validate(modelSpec, data.Kind()); err != nil {
		return nil, err
	}
	if data.Empty() {
		return nil, errors.Wrap(ErrEmptyData, "no training pairs")
	}

	totalN := data.Len()
	layerCount := len(modelSpec)

	layers := make([]trainedLayer, layerCount)
	// bucketData[i] is the TrainingData view routed to flat index i of
	// the layer currently being built; nil means an empty bucket.
	bucketData := []*TrainingData{data}

	root, err := newModel(modelSpec[0], data)
	if err != nil {
		return nil, err
	}
	layers[0] = trainedLayer{models: []Model{root}}

	var thirdLayerMaxL1s []float64

	for layerNum := 1; layerNum < layerCount; layerNum++ {
		name := modelSpec[layerNum]
		prevModels := layers[layerNum-1].models
		nextBucketData := make([]*TrainingData, 0, len(prevModels)*bf)
		nextModels := make([]Model, 0, len(prevModels)*bf)

		var layerMaxL1s []float64

		for pIdx, pdata := range bucketData {
			parentModel := prevModels[pIdx]
			if pdata == nil || pdata.Empty() || parentModel == nil {
				for c := 0; c < bf; c++ {
					nextBucketData = append(nextBucketData, nil)
					nextModels = append(nextModels, nil)
					layerMaxL1s = append(layerMaxL1s, 0)
				}
				continue
			}

			children := bucketSplit(pdata, parentModel, bf, totalN)
			for _, child := range children {
				nextBucketData = append(nextBucketData, child)
				if child == nil || child.Empty() {
					boundary := float64(pdata.AbsIndex(0))
					nextModels = append(nextModels, newNullLeaf(data.Kind(), boundary))
					layerMaxL1s = append(layerMaxL1s, 0)
					continue
				}
				m, err := newModel(name, child)
				if err != nil {
					return nil, err
				}
				nextModels = append(nextModels, m)
				layerMaxL1s = append(layerMaxL1s, leafMaxAbsError(m, child))
			}
		}

		layers[layerNum] = trainedLayer{models: nextModels}
		bucketData = nextBucketData

		// third_layer_max_l1s is only meaningful for a three-layer RMI
		// (spec.md §3); layerMaxL1s here is the middle layer's.
		if layerCount == 3 && layerNum == 1 {
			thirdLayerMaxL1s = layerMaxL1s
		}
	}

	leafData := bucketData
	leafModels := layers[layerCount-1].models
	leafBounds := make([]leafBound, len(leafModels))
	var allErrors []float64
	var lastLayerMaxL1s []float64
	numRows := 0

	for i, m := range leafModels {
		d := leafData[i]
		if m == nil || d == nil || d.Empty() {
			leafBounds[i] = leafBound{}
			lastLayerMaxL1s = append(lastLayerMaxL1s, 0)
			continue
		}
		numRows++
		leafBounds[i] = computeLeafBound(m, d)
		var maxAbs float64
		for k := 0; k < d.Len(); k++ {
			e := m.PredictF64(d.Key(k)) - d.Target(k)
			allErrors = append(allErrors, e)
			if abs := e; abs < 0 {
				abs = -abs
				if abs > maxAbs {
					maxAbs = abs
				}
			} else if abs > maxAbs {
				maxAbs = abs
			}
		}
		lastLayerMaxL1s = append(lastLayerMaxL1s, maxAbs)
	}

	agg := computeAggregateErrors(allErrors)

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

// leafMaxAbsError scans d against m, the trained model for d, and
// reports the largest absolute prediction error observed — used for
// the middle layer's per-bucket max-L1 tracking (third_layer_max_l1s).
func leafMaxAbsError(m Model, d *TrainingData) float64 {
	var maxAbs float64
	for i := 0; i < d.Len(); i++ {
		e := m.PredictF64(d.Key(i)) - d.Target(i)
		if e < 0 {
			e = -e
		}
		if e > maxAbs {
			maxAbs = e
		}
	}
	return maxAbs
}
