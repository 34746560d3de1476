package rmi

import "math"

// NormalModel fits a Gaussian CDF to the data via method-of-moments
// (mean and standard deviation of the keys), scaling the CDF's [0,1]
// range to [0, N). LognormalModel is the same fit over log(key+1).
type NormalModel struct {
	baseModel
	mean, stddev float64
	n            float64
	logSpace     bool
}

func fitMoments(values []float64) (meanV, stddev float64) {
	meanV = mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - meanV
		sumSq += d * d
	}
	if len(values) > 0 {
		stddev = math.Sqrt(sumSq / float64(len(values)))
	}
	return meanV, stddev
}

// NewNormalModel fits the key distribution's mean/stddev directly.
func NewNormalModel(data *TrainingData) *NormalModel {
	return newNormalModel(data, false)
}

// NewLognormalModel fits the mean/stddev of log(key+1) instead of the
// raw key, for distributions whose keys are log-normally distributed.
func NewLognormalModel(data *TrainingData) *NormalModel {
	return newNormalModel(data, true)
}

func newNormalModel(data *TrainingData, logSpace bool) *NormalModel {
	m := &NormalModel{
		baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64},
		n:         float64(data.Len()),
		logSpace:  logSpace,
	}

	n := data.Len()
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		k := data.KeyF64(i)
		if logSpace {
			k = math.Log1p(math.Max(k, 0))
		}
		values[i] = k
	}

	m.mean, m.stddev = fitMoments(values)
	if m.stddev == 0 {
		m.stddev = 1 // degenerate guard: avoid dividing by zero in PredictF64
		Logger.Warn().Str("model", m.Name()).Msg("NumericDegenerate: zero key variance, clamping stddev to 1")
	}
	return m
}

func (m *NormalModel) Name() string {
	if m.logSpace {
		return "lognormal"
	}
	return "normal"
}

// standardNormalCDF evaluates the standard normal CDF via the
// stdlib's math.Erf, avoiding a hand-rolled erf approximation.
func standardNormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func (m *NormalModel) PredictF64(key U512) float64 {
	k := KeyToFloat64(m.inputKind, key)
	if m.logSpace {
		k = math.Log1p(math.Max(k, 0))
	}
	z := (k - m.mean) / m.stddev
	return standardNormalCDF(z) * m.n
}

func (m *NormalModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *NormalModel) Params() []float64 { return []float64{m.mean, m.stddev, m.n} }

func (m *NormalModel) SizeInBytes() uint64 { return 24 }

func (m *NormalModel) Restriction() Restriction { return Unrestricted }
