package rmi

// leafBound is the error-radius correction for one leaf model,
// derived from its signed residuals over its own training pairs
// (spec.md §4.3). A lookup using the leaf's prediction p should search
// [p-left_radius, p+right_radius] to be guaranteed to find the true
// position, since left_radius/right_radius are the worst-case signed
// overshoot/undershoot observed during training.
type leafBound struct {
	leftRadius  float64
	rightRadius float64
}

// maxError is the single per-leaf bound TrainedRMI stores alongside
// each leaf (spec.md §4.3: "the stored per-leaf maximum is
// max(left_radius, right_radius)").
func (b leafBound) maxError() float64 {
	if b.leftRadius > b.rightRadius {
		return b.leftRadius
	}
	return b.rightRadius
}

// computeLeafBound walks a leaf's training pairs, predicting each key
// against the already-trained model and tracking the worst-case signed
// residual in each direction. A leaf with fewer than two training
// pairs gets a zero bound on both sides: a single point can be fit
// exactly and carries no information about a worst case.
func computeLeafBound(model Model, data *TrainingData) leafBound {
	n := data.Len()
	if n < 2 {
		return leafBound{}
	}

	var maxOver, maxUnder float64
	for i := 0; i < n; i++ {
		e := model.PredictF64(data.Key(i)) - data.Target(i)
		if e > maxOver {
			maxOver = e
		}
		if -e > maxUnder {
			maxUnder = -e
		}
	}
	return leafBound{leftRadius: maxOver, rightRadius: maxUnder}
}
