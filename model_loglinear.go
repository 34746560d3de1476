package rmi

import "math"

// LogLinearModel is ordinary least squares on (log(key+1), position).
// Requires keys to be nonnegative, per spec.md §4.1.
type LogLinearModel struct {
	baseModel
	slope, intercept float64
}

// NewLogLinearModel fits position ~= slope*log(key+1) + intercept.
func NewLogLinearModel(data *TrainingData) *LogLinearModel {
	m := &LogLinearModel{baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64}}

	n := data.Len()
	logKeys := make([]float64, n)
	for i := 0; i < n; i++ {
		logKeys[i] = math.Log1p(math.Max(data.KeyF64(i), 0))
	}
	targets := data.Targets()

	slope, intercept, ok := fitOLS(logKeys, targets)
	if !ok {
		m.intercept = midpoint(targets)
		Logger.Warn().Str("model", "loglinear").Msg("NumericDegenerate: zero log-key variance, falling back to constant model")
		return m
	}
	m.slope, m.intercept = slope, intercept
	return m
}

func (m *LogLinearModel) Name() string { return "loglinear" }

func (m *LogLinearModel) PredictF64(key U512) float64 {
	k := math.Log1p(math.Max(KeyToFloat64(m.inputKind, key), 0))
	return m.slope*k + m.intercept
}

func (m *LogLinearModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *LogLinearModel) Params() []float64 { return []float64{m.slope, m.intercept} }

func (m *LogLinearModel) SizeInBytes() uint64 { return 16 }

func (m *LogLinearModel) Restriction() Restriction { return Unrestricted }
