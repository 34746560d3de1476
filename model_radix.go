package rmi

import "math/big"

// RadixModel extracts the top k bits of the key and scales them to
// [0, N). It is RootOnly (spec.md §4.1): a pure bit-prefix extractor
// is only a sensible root-layer router, never an accurate leaf
// predictor. "radix" picks k ~= log2(N) automatically; radix18 and
// radix22 fix k at 18 and 22 bits respectively.
type RadixModel struct {
	baseModel
	name      string
	k         int // number of leading bits extracted
	totalBits int // bit width of the key kind
	n         float64
}

func keyTotalBits(kind KeyType) int {
	switch kind {
	case U32:
		return 32
	case U64, F64:
		return 64
	case U128:
		return 128
	case U512Kind:
		return 512
	default:
		return 64
	}
}

func log2Ceil(n int) int {
	if n <= 1 {
		return 1
	}
	bits := 0
	for v := n - 1; v > 0; v >>= 1 {
		bits++
	}
	return bits
}

func newRadixModel(data *TrainingData, name string, k int) *RadixModel {
	m := &RadixModel{
		baseModel: baseModel{inputKind: data.Kind(), outputKind: OutputF64},
		name:      name,
		totalBits: keyTotalBits(data.Kind()),
		n:         float64(data.Len()),
	}
	if k > m.totalBits {
		k = m.totalBits
	}
	m.k = k
	return m
}

// NewRadixModel picks k = ceil(log2(N)), clamped to the key's total
// bit width.
func NewRadixModel(data *TrainingData) *RadixModel {
	return newRadixModel(data, "radix", log2Ceil(data.Len()))
}

// NewRadix18Model fixes k = 18 bits.
func NewRadix18Model(data *TrainingData) *RadixModel {
	return newRadixModel(data, "radix18", 18)
}

// NewRadix22Model fixes k = 22 bits.
func NewRadix22Model(data *TrainingData) *RadixModel {
	return newRadixModel(data, "radix22", 22)
}

func (m *RadixModel) Name() string { return m.name }

// topBits extracts the top m.k bits of key's totalBits-wide exact bit
// pattern, using math/big so the extraction is exact for U128/U512
// keys (no precision loss from routing through float64 first), per
// spec.md §4.2's "bit-identical" bucket-mapping requirement.
func (m *RadixModel) topBits(key U512) uint64 {
	if m.k <= 0 {
		return 0
	}
	v := key.BigInt()
	shift := m.totalBits - m.k
	if shift > 0 {
		v = new(big.Int).Rsh(v, uint(shift))
	}
	return v.Uint64()
}

func (m *RadixModel) PredictF64(key U512) float64 {
	top := m.topBits(key)
	span := uint64(1) << uint(m.k)
	return float64(top) / float64(span) * m.n
}

func (m *RadixModel) PredictU64(key U512) uint64 {
	return predictU64FromF64(m.PredictF64(key))
}

func (m *RadixModel) Params() []float64 { return []float64{float64(m.k), float64(m.totalBits), m.n} }

func (m *RadixModel) SizeInBytes() uint64 { return 24 }

func (m *RadixModel) Restriction() Restriction { return RootOnly }
