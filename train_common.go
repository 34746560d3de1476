package rmi

import "math"

// bucketIndex is the bucket-to-child mapping spec.md §4.2 calls
// "critical": for a prediction p over a range of N rows routed into B
// children, child = clamp(floor(p*B/N), 0, B-1). This exact formula
// must be used by both the trainer and TrainedRMI.Predict, or the
// lookup contract breaks.
func bucketIndex(p float64, b, n int) int {
	if n <= 0 {
		return 0
	}
	j := int(math.Floor(p * float64(b) / float64(n)))
	if j < 0 {
		j = 0
	}
	if j > b-1 {
		j = b - 1
	}
	return j
}

// nullLeaf is the Model emitted for an empty bucket (spec.md §4.2
// point 4): its "prediction" is always its bucket's boundary position
// and its contribution to the error metrics is zero.
type nullLeaf struct {
	baseModel
	boundary float64
}

func newNullLeaf(kind KeyType, boundary float64) *nullLeaf {
	return &nullLeaf{baseModel: baseModel{inputKind: kind, outputKind: OutputF64}, boundary: boundary}
}

func (m *nullLeaf) Name() string                 { return "null" }
func (m *nullLeaf) PredictF64(U512) float64      { return m.boundary }
func (m *nullLeaf) PredictU64(U512) uint64       { return predictU64FromF64(m.boundary) }
func (m *nullLeaf) Params() []float64            { return []float64{m.boundary} }
func (m *nullLeaf) SizeInBytes() uint64          { return 8 }
func (m *nullLeaf) Restriction() Restriction     { return Unrestricted }

// bucketSplit partitions data into b contiguous soft-copy ranges using
// predictor's prediction for each pair and bucketIndex, against
// totalN (the full dataset's row count — bucket mapping always scales
// against the whole dataset, never a bucket's local size, since every
// model in this package predicts absolute positions; see DESIGN.md's
// "absolute vs. locally-rescaled" decision). Because pairs are
// bucketed "in iteration order" (spec.md §4.2's ordering rule) and
// keys are non-decreasing, a monotone predictor produces contiguous
// ranges; bucketSplit does not assume monotonicity and instead scans
// once, tracking each bucket's [first, last) span directly, which also
// tolerates a noisy (non-monotone-prediction) root without losing any
// pair.
func bucketSplit(data *TrainingData, predictor Model, b, totalN int) []*TrainingData {
	n := data.Len()
	firstSeen := make([]int, b)
	lastSeen := make([]int, b)
	seen := make([]bool, b)

	for i := 0; i < n; i++ {
		p := predictor.PredictF64(data.Key(i))
		j := bucketIndex(p, b, totalN)
		if !seen[j] {
			firstSeen[j] = i
			seen[j] = true
		}
		lastSeen[j] = i
	}

	out := make([]*TrainingData, b)
	for j := 0; j < b; j++ {
		if !seen[j] {
			out[j] = nil
			continue
		}
		out[j] = data.Restrict(firstSeen[j], lastSeen[j]+1)
	}
	return out
}

// aggregateErrors computes the scalar error metrics spec.md §4.2 point
// 5 requires (mean absolute, mean squared -> reported as mean L2, mean
// log2(|e|+1), max absolute with its global index, max log2), scanning
// every pair of the full dataset against its assigned leaf prediction.
type aggregateErrors struct {
	avgError     float64
	avgL2Error   float64
	avgLog2Error float64
	maxError     float64
	maxErrorIdx  int
	maxLog2Error float64
}

func computeAggregateErrors(errs []float64) aggregateErrors {
	var sumAbs, sumSq, sumLog2 float64
	var maxAbs, maxLog2 float64
	maxIdx := 0
	for i, e := range errs {
		abs := math.Abs(e)
		sumAbs += abs
		sumSq += e * e
		l2 := math.Log2(abs + 1)
		sumLog2 += l2
		if abs > maxAbs {
			maxAbs = abs
			maxIdx = i
		}
		if l2 > maxLog2 {
			maxLog2 = l2
		}
	}
	n := float64(len(errs))
	if n == 0 {
		return aggregateErrors{}
	}
	return aggregateErrors{
		avgError:     sumAbs / n,
		avgL2Error:   sumSq / n,
		avgLog2Error: sumLog2 / n,
		maxError:     maxAbs,
		maxErrorIdx:  maxIdx,
		maxLog2Error: maxLog2,
	}
}
