package rmi

import "sort"

// PiecewiseLinearModel approximates the CDF as a monotone piecewise
// linear function over a fixed number of equal-population segments.
// pwl uses 28 segments, pwl30 uses 30, per spec.md §4.1.
type PiecewiseLinearModel struct {
	baseModel
	segments int
	// breakKeys/breakTargets hold segments+1 control points; predict
	// interpolates linearly between the two points bracketing a key.
	breakKeys    []float64
	breakTargets []float64
}

// NewPiecewiseLinearModel partitions data into segments equal-size
// (by row count, not by key range) chunks and records the (key,
// target) control point at each chunk boundary.
func NewPiecewiseLinearModel(data *TrainingData, segments int) *PiecewiseLinearModel {
	m := &PiecewiseLinearModel{
		baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64},
		segments:  segments,
	}

	n := data.Len()
	if n == 0 {
		m.breakKeys = []float64{0}
		m.breakTargets = []float64{0}
		return m
	}

	numPoints := segments + 1
	m.breakKeys = make([]float64, 0, numPoints)
	m.breakTargets = make([]float64, 0, numPoints)
	for j := 0; j < numPoints; j++ {
		idx := j * (n - 1) / segments
		if numPoints == 1 {
			idx = 0
		}
		m.breakKeys = append(m.breakKeys, data.KeyF64(idx))
		m.breakTargets = append(m.breakTargets, data.Target(idx))
	}
	return m
}

func pwlName(segments int) string {
	if segments == 30 {
		return "pwl30"
	}
	return "pwl"
}

func (m *PiecewiseLinearModel) Name() string { return pwlName(m.segments) }

func (m *PiecewiseLinearModel) PredictF64(key U512) float64 {
	k := KeyToFloat64(m.inputKind, key)
	n := len(m.breakKeys)
	if n == 1 {
		return m.breakTargets[0]
	}

	// Find the first breakpoint with key >= k; segment is
	// [idx-1, idx].
	idx := sort.SearchFloat64s(m.breakKeys, k)
	if idx <= 0 {
		idx = 1
	}
	if idx >= n {
		idx = n - 1
	}

	k0, k1 := m.breakKeys[idx-1], m.breakKeys[idx]
	t0, t1 := m.breakTargets[idx-1], m.breakTargets[idx]
	if k1 == k0 {
		return t0
	}
	frac := (k - k0) / (k1 - k0)
	return t0 + frac*(t1-t0)
}

func (m *PiecewiseLinearModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *PiecewiseLinearModel) Params() []float64 {
	out := make([]float64, 0, len(m.breakKeys)+len(m.breakTargets))
	out = append(out, m.breakKeys...)
	out = append(out, m.breakTargets...)
	return out
}

func (m *PiecewiseLinearModel) SizeInBytes() uint64 {
	return uint64(len(m.breakKeys)+len(m.breakTargets)) * 8
}

func (m *PiecewiseLinearModel) Restriction() Restriction { return Unrestricted }
