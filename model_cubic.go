package rmi

// CubicModel is a degree-3 polynomial regression fit to (key,
// position): position ~= c3*key^3 + c2*key^2 + c1*key + c0.
type CubicModel struct {
	baseModel
	coef [4]float64 // c0, c1, c2, c3
}

// NewCubicModel fits a cubic polynomial via the normal equations.
// Falls back to a constant model (NumericDegenerate) if the normal
// equations matrix is singular, e.g. fewer than 4 distinct keys.
func NewCubicModel(data *TrainingData) *CubicModel {
	m := &CubicModel{baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64}}

	n := data.Len()
	keys := data.Keys()
	targets := data.Targets()

	// Normal equations for degree-3 polynomial regression: build the
	// 4x4 system (sum of key powers 0..6) x (sum of key^p * target).
	var powerSums [7]float64
	var rhs [4]float64
	for i := 0; i < n; i++ {
		k := keys[i]
		p := 1.0
		for d := 0; d <= 6; d++ {
			powerSums[d] += p
			p *= k
		}
		p = 1.0
		for d := 0; d <= 3; d++ {
			rhs[d] += p * targets[i]
			p *= k
		}
	}

	a := make([][]float64, 4)
	for r := 0; r < 4; r++ {
		a[r] = make([]float64, 4)
		for c := 0; c < 4; c++ {
			a[r][c] = powerSums[r+c]
		}
	}

	sol, ok := solveLinearSystem(a, rhs[:])
	if !ok {
		m.coef[0] = midpoint(targets)
		Logger.Warn().Str("model", "cubic").Msg("NumericDegenerate: singular normal-equations matrix, falling back to constant model")
		return m
	}
	copy(m.coef[:], sol)
	return m
}

func (m *CubicModel) Name() string { return "cubic" }

func (m *CubicModel) PredictF64(key U512) float64 {
	k := KeyToFloat64(m.inputKind, key)
	return m.coef[0] + k*(m.coef[1]+k*(m.coef[2]+k*m.coef[3]))
}

func (m *CubicModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *CubicModel) Params() []float64 { return append([]float64(nil), m.coef[:]...) }

func (m *CubicModel) SizeInBytes() uint64 { return 32 }

func (m *CubicModel) Restriction() Restriction { return Unrestricted }
