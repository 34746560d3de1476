package rmi

// LinearModel is ordinary least squares at machine precision:
// position ~= slope*key + intercept. Grounded on
// sachaservan-rmi/regression.go's coefficients path, computed here at
// float64 precision instead of extended precision (see
// LinearModelBig for the extended-precision variant).
type LinearModel struct {
	baseModel
	slope, intercept float64
	degenerate       bool // true if the fallback constant model was used
}

// NewLinearModel trains an ordinary least squares fit over data.
// Falls back to a constant model predicting the midpoint of the
// target range when the key variance is zero (NumericDegenerate, per
// spec.md §7): all keys identical, so no slope can be determined.
func NewLinearModel(data *TrainingData) *LinearModel {
	keys := data.Keys()
	targets := data.Targets()

	m := &LinearModel{baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64}}

	meanX, varX := meanAndVariance(keys)
	if varX == 0 {
		m.degenerate = true
		m.intercept = midpoint(targets)
		Logger.Warn().Str("model", "linear").Msg("NumericDegenerate: all keys identical, falling back to constant model")
		return m
	}

	meanY := mean(targets)
	covar := covariance(keys, targets, meanX, meanY)
	m.slope = covar / varX
	m.intercept = meanY - meanX*m.slope
	return m
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) PredictF64(key U512) float64 {
	return m.slope*KeyToFloat64(m.inputKind, key) + m.intercept
}

func (m *LinearModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *LinearModel) Params() []float64 { return []float64{m.slope, m.intercept} }

func (m *LinearModel) SizeInBytes() uint64 { return 16 }

func (m *LinearModel) Restriction() Restriction { return Unrestricted }

// LinearModelBig is ordinary least squares computed at extended
// precision (a 256-bit big.Float mantissa), required when N exceeds
// ~2^26 or keys span more than 53 bits of precision: summing products
// of large keys at float64 precision loses the low bits to
// catastrophic cancellation. Grounded directly on
// sachaservan-rmi/regression.go's coefficients/mean/covariance/
// variance, which already used *big.Float accumulation for exactly
// this reason.
type LinearModelBig struct {
	baseModel
	slope, intercept float64
	degenerate       bool
}

// NewLinearModelBig trains an ordinary least squares fit with
// extended-precision accumulation. Falls back to a constant model
// under the same NumericDegenerate condition as NewLinearModel.
func NewLinearModelBig(data *TrainingData) *LinearModelBig {
	keys := data.Keys()
	targets := data.Targets()

	m := &LinearModelBig{baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64}}

	mCoef, bCoef, ok := bigCoefficients(keys, targets)
	if !ok {
		m.degenerate = true
		m.intercept = midpoint(targets)
		Logger.Warn().Str("model", "linear_big").Msg("NumericDegenerate: all keys identical, falling back to constant model")
		return m
	}

	m.slope, _ = mCoef.Float64()
	m.intercept, _ = bCoef.Float64()
	return m
}

func (m *LinearModelBig) Name() string { return "linear_big" }

func (m *LinearModelBig) PredictF64(key U512) float64 {
	return m.slope*KeyToFloat64(m.inputKind, key) + m.intercept
}

func (m *LinearModelBig) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *LinearModelBig) Params() []float64 { return []float64{m.slope, m.intercept} }

func (m *LinearModelBig) SizeInBytes() uint64 { return 16 }

func (m *LinearModelBig) Restriction() Restriction { return Unrestricted }

// shouldUseBigPrecision reports whether a "big" variant should be
// selected automatically in place of the standard variant, per
// spec.md §4.1: N beyond ~2^26 rows, or a key width that crosses 53
// bits of usable mantissa (anything wider than U64).
func shouldUseBigPrecision(data *TrainingData) bool {
	const bigRowThreshold = 1 << 26
	if data.Len() > bigRowThreshold {
		return true
	}
	switch data.Kind() {
	case U128, U512Kind:
		return true
	default:
		return false
	}
}

// --- small numeric helpers shared by the machine-precision models ---

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanAndVariance(values []float64) (meanV, varV float64) {
	meanV = mean(values)
	for _, v := range values {
		d := v - meanV
		varV += d * d
	}
	return meanV, varV
}

func covariance(x, y []float64, meanX, meanY float64) float64 {
	var covar float64
	for i := range x {
		covar += (x[i] - meanX) * (y[i] - meanY)
	}
	return covar
}

func midpoint(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	return (targets[0] + targets[len(targets)-1]) / 2
}
