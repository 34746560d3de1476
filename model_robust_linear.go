package rmi

import "sort"

// robustTrimFraction is the fixed fraction of extreme residuals
// trimmed from each side before the second least-squares pass, per
// spec.md §4.1 ("alpha is a fixed constant (~1%)").
const robustTrimFraction = 0.01

// RobustLinearModel is ordinary least squares refit after trimming
// the extreme +-1% of residuals from an initial fit, so a handful of
// outlier keys can't drag the whole line off the bulk of the data.
// No teacher equivalent; grounded on spec.md §4.1's training-math
// column and built from the same mean/covariance/variance helpers as
// LinearModel.
type RobustLinearModel struct {
	baseModel
	slope, intercept float64
}

// NewRobustLinearModel trains an initial OLS fit, trims the
// robustTrimFraction of points with the largest absolute residual
// from each side, and refits OLS over the remainder. Falls back like
// LinearModel when either pass is numerically degenerate.
func NewRobustLinearModel(data *TrainingData) *RobustLinearModel {
	keys := data.Keys()
	targets := data.Targets()

	m := &RobustLinearModel{baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64}}

	slope, intercept, ok := fitOLS(keys, targets)
	if !ok {
		m.intercept = midpoint(targets)
		Logger.Warn().Str("model", "robust_linear").Msg("NumericDegenerate on initial fit, falling back to constant model")
		return m
	}

	type resid struct {
		idx int
		res float64
	}
	residuals := make([]resid, len(keys))
	for i := range keys {
		pred := slope*keys[i] + intercept
		residuals[i] = resid{idx: i, res: pred - targets[i]}
	}
	// sorted by signed residual, so trimming both ends drops the most
	// negative and the most positive residuals.
	sort.Slice(residuals, func(i, j int) bool { return residuals[i].res < residuals[j].res })

	trim := int(float64(len(residuals)) * robustTrimFraction)
	if 2*trim >= len(residuals) {
		trim = 0 // too little data to trim safely; keep the full fit
	}
	kept := residuals[trim : len(residuals)-trim]

	trimmedKeys := make([]float64, len(kept))
	trimmedTargets := make([]float64, len(kept))
	for i, r := range kept {
		trimmedKeys[i] = keys[r.idx]
		trimmedTargets[i] = targets[r.idx]
	}

	slope2, intercept2, ok2 := fitOLS(trimmedKeys, trimmedTargets)
	if !ok2 {
		m.slope, m.intercept = slope, intercept
		return m
	}
	m.slope, m.intercept = slope2, intercept2
	return m
}

func (m *RobustLinearModel) Name() string { return "robust_linear" }

func (m *RobustLinearModel) PredictF64(key U512) float64 {
	return m.slope*KeyToFloat64(m.inputKind, key) + m.intercept
}

func (m *RobustLinearModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *RobustLinearModel) Params() []float64 { return []float64{m.slope, m.intercept} }

func (m *RobustLinearModel) SizeInBytes() uint64 { return 16 }

func (m *RobustLinearModel) Restriction() Restriction { return Unrestricted }

func fitOLS(x, y []float64) (slope, intercept float64, ok bool) {
	meanX, varX := meanAndVariance(x)
	if varX == 0 {
		return 0, 0, false
	}
	meanY := mean(y)
	slope = covariance(x, y, meanX, meanY) / varX
	intercept = meanY - meanX*slope
	return slope, intercept, true
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
