package rmi

// Pair is a single (key, position) training observation. Pos is
// always the pair's absolute index into the original sorted dataset
// (0..N-1), never rescaled by a soft copy's output-scale factor —
// see DESIGN.md's "train_bounded row count" / bucket-training open
// question for why positions stay absolute while only the regression
// *target* is allowed to move.
type Pair struct {
	Key U512
	Pos int
}

// TrainingData is a lazy, indexable view over (key, position) pairs
// tagged with a key-width kind. It supports cheap "soft copies" that
// share the underlying key slice while allowing independent
// sub-range restrictions and output-scale factors, per spec.md §3.
//
// There is no teacher equivalent: sachaservan-rmi passes a plain
// []*big.Int to NewRMI and re-slices it directly at each recursion
// step. This type generalizes that re-slicing into an explicit,
// reusable view so the layered trainers (which need independent
// soft copies per bucket) don't have to thread raw slice bounds by
// hand.
type TrainingData struct {
	keys   []U512 // shared, read-only backing storage
	kind   KeyType
	lo, hi int // restricted range [lo, hi) into keys

	// scale/offset transform the regression *target*: Target(i) =
	// scale*AbsIndex(i) + offset. Defaults to the identity (1, 0),
	// which is what every trainer in this package uses; the fields
	// exist so a soft copy can expose a rescaled training target
	// without a third concept bolted onto Pair.
	scale, offset float64

	// customTargets, when non-nil, overrides Target(i) entirely. Used
	// only by train_three_layer's middle models, which (per spec.md
	// §4.2) train against the root's predicted position rather than
	// the pair's true index.
	customTargets []float64
}

// NewTrainingData builds a root training-data view over keys, which
// must already be sorted non-decreasing for kind. Positions are
// implicit: keys[i] has absolute position i.
func NewTrainingData(kind KeyType, keys []U512) *TrainingData {
	return &TrainingData{
		keys:  keys,
		kind:  kind,
		lo:    0,
		hi:    len(keys),
		scale: 1,
	}
}

// Kind reports the key width/representation this view was built for.
func (d *TrainingData) Kind() KeyType { return d.kind }

// Len reports the number of pairs visible through this view.
func (d *TrainingData) Len() int { return d.hi - d.lo }

// Empty reports whether the view has no pairs.
func (d *TrainingData) Empty() bool { return d.hi <= d.lo }

// AbsIndex returns the absolute index into the original dataset for
// the i-th pair of this view, i in [0, Len()).
func (d *TrainingData) AbsIndex(i int) int { return d.lo + i }

// Key returns the raw key of the i-th pair of this view.
func (d *TrainingData) Key(i int) U512 { return d.keys[d.lo+i] }

// KeyF64 returns the i-th key converted to float64, the
// representation every model in the zoo trains and predicts against
// except the radix extractors (which use the exact bit pattern).
func (d *TrainingData) KeyF64(i int) float64 {
	return KeyToFloat64(d.kind, d.keys[d.lo+i])
}

// Target returns the i-th pair's regression target: the
// (possibly output-scaled) position a model should learn to predict.
func (d *TrainingData) Target(i int) float64 {
	if d.customTargets != nil {
		return d.customTargets[i]
	}
	return d.scale*float64(d.AbsIndex(i)) + d.offset
}

// WithCustomTargets returns a soft copy whose Target(i) reads from
// targets (length must equal Len()) instead of computing
// scale*AbsIndex(i)+offset.
func (d *TrainingData) WithCustomTargets(targets []float64) *TrainingData {
	cp := *d
	cp.customTargets = targets
	return &cp
}

// SoftCopy returns an independent handle sharing this view's backing
// key storage. Mutating one soft copy's range or scale never affects
// another — spec.md §3's soft-copy invariant.
func (d *TrainingData) SoftCopy() *TrainingData {
	cp := *d
	return &cp
}

// Restrict returns a soft copy further narrowed to the contiguous
// sub-range [lo, hi) of THIS view's index space (not the backing
// array's). A soft copy's iteration order is identical to slicing
// the original, so Restrict(0, Len()) is a no-op copy.
func (d *TrainingData) Restrict(lo, hi int) *TrainingData {
	if lo < 0 {
		lo = 0
	}
	if hi > d.Len() {
		hi = d.Len()
	}
	if hi < lo {
		hi = lo
	}
	cp := *d
	cp.lo = d.lo + lo
	cp.hi = d.lo + hi
	return &cp
}

// WithOutputScale returns a soft copy whose Target function reports
// scale*AbsIndex(i)+offset instead of the identity transform.
func (d *TrainingData) WithOutputScale(scale, offset float64) *TrainingData {
	cp := *d
	cp.scale = scale
	cp.offset = offset
	return &cp
}

// Keys materializes the float64 keys of this view, in order.
func (d *TrainingData) Keys() []float64 {
	out := make([]float64, d.Len())
	for i := range out {
		out[i] = d.KeyF64(i)
	}
	return out
}

// Targets materializes the regression targets of this view, in
// order.
func (d *TrainingData) Targets() []float64 {
	out := make([]float64, d.Len())
	for i := range out {
		out[i] = d.Target(i)
	}
	return out
}

// AbsIndices materializes the absolute indices of this view, in
// order.
func (d *TrainingData) AbsIndices() []int {
	out := make([]int, d.Len())
	for i := range out {
		out[i] = d.AbsIndex(i)
	}
	return out
}

// Pairs materializes every (key, absolute position) pair of this
// view, in order.
func (d *TrainingData) Pairs() []Pair {
	out := make([]Pair, d.Len())
	for i := range out {
		out[i] = Pair{Key: d.keys[d.lo+i], Pos: d.AbsIndex(i)}
	}
	return out
}
