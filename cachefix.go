package rmi

import "math"

// buildCacheFixSpline scans key stream keys (already converted to
// float64 via KeyToFloat64 by the caller) with a sliding window,
// maintaining the current segment's slope-feasible cone: the
// intersection of every (slope, intercept) line that stays within
// lineSize/2 of every point seen so far in the segment. When no slope
// keeps the new point within tolerance, the cone is empty — the
// segment ends at the previous point and a new one starts at the
// current point (spec.md §4.4). A segment is also closed once it spans
// lineSize points, so every key lies within lineSize positions of its
// segment's start. Each segment is recorded as one anchor at its first
// point.
//
// This is an O(1)-update convex-hull trick: instead of tracking the
// cone as a polygon, track only the tightest surviving upper and lower
// slope bounds, which is sufficient for a 1-D monotone line-fit cone.
func buildCacheFixSpline(keys []float64, lineSize int) []SplineAnchor {
	n := len(keys)
	if n == 0 {
		return nil
	}
	tolerance := float64(lineSize) / 2

	var anchors []SplineAnchor
	segStart := 0
	var minSlope, maxSlope float64
	haveBounds := false

	flushSegment := func(endIdx int) {
		anchors = append(anchors, SplineAnchor{Key: keys[segStart], OriginalOffset: segStart})
		_ = endIdx
	}

	for i := segStart + 1; i < n; i++ {
		if i-segStart >= lineSize {
			// the segment already spans a full cache line: start a new one
			// at i.
			flushSegment(i - 1)
			segStart = i
			haveBounds = false
			continue
		}
		dx := keys[i] - keys[segStart]
		di := float64(i - segStart)
		if dx == 0 {
			// identical keys: any slope satisfies the window trivially.
			continue
		}
		lo := (di - tolerance) / dx
		hi := (di + tolerance) / dx

		if !haveBounds {
			minSlope, maxSlope = lo, hi
			haveBounds = true
			continue
		}
		newMin := math.Max(minSlope, lo)
		newMax := math.Min(maxSlope, hi)
		if newMin > newMax {
			// cone just went empty: close the segment at i-1, start a new
			// one at i.
			flushSegment(i - 1)
			segStart = i
			haveBounds = false
			continue
		}
		minSlope, maxSlope = newMin, newMax
	}
	// final segment always gets an anchor at its start.
	anchors = append(anchors, SplineAnchor{Key: keys[segStart], OriginalOffset: segStart})

	return anchors
}

// CacheFix builds a CacheFixPayload over data's keys (spec.md §4.4).
// The result is a monotone spline whose segments each fit within
// lineSize elements of the original array, reindexed 0..M-1 so it can
// be used directly as training input for a regular RMI (see
// TrainBounded).
func CacheFix(data *TrainingData, lineSize int) *CacheFixPayload {
	keys := data.Keys()
	spline := buildCacheFixSpline(keys, lineSize)
	return &CacheFixPayload{LineSize: lineSize, Spline: spline}
}

// AnchorTrainingData converts a cache-fix spline into a TrainingData
// suitable for training the bounded RMI: keys are the spline's
// anchor keys, and position i's target is its own index 0..M-1 (the
// anchor index, not the original offset — downstream, the served
// lookup maps an anchor index back to OriginalOffset and probes one
// cache line around it).
func AnchorTrainingData(kind KeyType, payload *CacheFixPayload) *TrainingData {
	keys := make([]U512, len(payload.Spline))
	for i, a := range payload.Spline {
		if kind == F64 {
			keys[i] = U512FromFloat64Bits(a.Key)
		} else {
			keys[i] = U512FromUint64(uint64(a.Key))
		}
	}
	return NewTrainingData(kind, keys)
}
