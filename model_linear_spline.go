package rmi

// LinearSplineModel is the two-point line through the bucket's
// min-key and max-key endpoints, scaled to [0, N). It is leaf-only
// (spec.md §4.1) because it needs no iterative fit at all — it's
// exact at the endpoints by construction, which only makes sense once
// there's no child layer left to route through.
type LinearSplineModel struct {
	baseModel
	slope, intercept float64
}

// NewLinearSplineModel draws the line through (minKey, minTarget) and
// (maxKey, maxTarget) of data. Falls back to a constant model
// (NumericDegenerate) when every key in the bucket is identical.
func NewLinearSplineModel(data *TrainingData) *LinearSplineModel {
	m := &LinearSplineModel{baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64}}

	n := data.Len()
	if n == 0 {
		return m
	}
	minKey, maxKey := data.KeyF64(0), data.KeyF64(n-1)
	minTarget, maxTarget := data.Target(0), data.Target(n-1)

	if maxKey == minKey {
		m.intercept = (minTarget + maxTarget) / 2
		Logger.Warn().Str("model", "linear_spline").Msg("NumericDegenerate: endpoint keys identical, falling back to constant model")
		return m
	}

	m.slope = (maxTarget - minTarget) / (maxKey - minKey)
	m.intercept = minTarget - m.slope*minKey
	return m
}

func (m *LinearSplineModel) Name() string { return "linear_spline" }

func (m *LinearSplineModel) PredictF64(key U512) float64 {
	return m.slope*KeyToFloat64(m.inputKind, key) + m.intercept
}

func (m *LinearSplineModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *LinearSplineModel) Params() []float64 { return []float64{m.slope, m.intercept} }

func (m *LinearSplineModel) SizeInBytes() uint64 { return 16 }

func (m *LinearSplineModel) Restriction() Restriction { return LeafOnly }
