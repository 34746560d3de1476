package rmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParetoFront is spec property 5: pareto_front(R) contains exactly
// the non-dominated members.
func TestParetoFront(t *testing.T) {
	stats := []RMIStatistics{
		{ModelSpec: "a", Size: 100, AverageLog2Error: 5.0},
		{ModelSpec: "b", Size: 200, AverageLog2Error: 3.0},
		{ModelSpec: "c", Size: 300, AverageLog2Error: 1.0},
		{ModelSpec: "d", Size: 250, AverageLog2Error: 4.0}, // dominated by b (smaller size, smaller error)
	}

	front := paretoFront(stats)
	if len(front) != 3 {
		t.Fatalf("expected 3 frontier points, got %d: %+v", len(front), front)
	}
	for _, f := range front {
		if f.ModelSpec == "d" {
			t.Fatalf("dominated point %q should not survive paretoFront", f.ModelSpec)
		}
	}
	for _, f := range front {
		for _, other := range stats {
			if f.ModelSpec == other.ModelSpec {
				continue
			}
			if other.dominates(f) {
				t.Fatalf("%q is dominated by %q but survived paretoFront", f.ModelSpec, other.ModelSpec)
			}
		}
	}
}

// TestNarrowFront is spec property 6: narrow_front(F, k) returns
// exactly k elements, always keeps the smallest-size member, and is
// sorted by ascending mean_log2_error.
func TestNarrowFront(t *testing.T) {
	stats := []RMIStatistics{
		{ModelSpec: "a", Size: 100, AverageLog2Error: 9.0},
		{ModelSpec: "b", Size: 105, AverageLog2Error: 8.5},
		{ModelSpec: "c", Size: 400, AverageLog2Error: 4.0},
		{ModelSpec: "d", Size: 1000, AverageLog2Error: 1.0},
		{ModelSpec: "e", Size: 1050, AverageLog2Error: 0.9},
	}

	narrowed := narrowFront(stats, 3)
	if len(narrowed) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(narrowed))
	}

	foundSmallest := false
	gotSpecs := map[string]bool{}
	for _, n := range narrowed {
		gotSpecs[n.ModelSpec] = true
		if n.Size == 100 {
			foundSmallest = true
		}
	}
	if !foundSmallest {
		t.Fatal("narrowFront dropped the smallest-size model")
	}
	// a,b,e survive; c and d (the less accurate, higher-error members
	// of their respective smallest-ratio pairs) must be the ones dropped.
	for _, want := range []string{"a", "b", "e"} {
		if !gotSpecs[want] {
			t.Fatalf("expected %q to survive narrowFront, got %v", want, gotSpecs)
		}
	}
	if gotSpecs["c"] || gotSpecs["d"] {
		t.Fatalf("narrowFront kept a dominated-by-error survivor: %v", gotSpecs)
	}

	for i := 1; i < len(narrowed); i++ {
		if narrowed[i].AverageLog2Error < narrowed[i-1].AverageLog2Error {
			t.Fatalf("narrowFront output not sorted by ascending mean_log2_error at index %d", i)
		}
	}
}

func TestNarrowFrontNoopWhenUnderKeepN(t *testing.T) {
	stats := []RMIStatistics{
		{ModelSpec: "a", Size: 100, AverageLog2Error: 2.0},
		{ModelSpec: "b", Size: 200, AverageLog2Error: 1.0},
	}
	narrowed := narrowFront(stats, 5)
	if len(narrowed) != 2 {
		t.Fatalf("expected all %d elements retained, got %d", len(stats), len(narrowed))
	}
}

// TestOptimizerProfiles checks the default profile's branching-factor
// range and root-only candidate count against spec.md §4.5's table.
func TestOptimizerProfiles(t *testing.T) {
	def := defaultProfile()
	bfs := def.branchingFactors()
	if bfs[0] != 1<<6 || bfs[len(bfs)-1] != 1<<24 {
		t.Fatalf("default profile branching factors out of range: %v", bfs)
	}
	if len(def.topLayerCandidates()) != 4 {
		t.Fatalf("default profile expected 4 root-capable models, got %d", len(def.topLayerCandidates()))
	}
}

func TestFirstPhaseConfigsSamplesEveryFifthBranchingFactor(t *testing.T) {
	p := defaultProfile()
	configs := firstPhaseConfigs(p)

	full := p.branchingFactors()
	var expectedSampleCount int
	for i := 0; i < len(full); i += 5 {
		expectedSampleCount++
	}
	wantTotal := len(allTopModels(p)) * len(p.anywhereCandidates()) * expectedSampleCount
	if len(configs) != wantTotal {
		t.Fatalf("expected %d phase-1 configs, got %d", wantTotal, len(configs))
	}
}

// TestFirstPhaseConfigsIncludesAnywhereModelsAsRoots is the concrete
// divergence the maintainer's review flagged: linear/cubic/
// linear_spline must be enumerable as the top/root model in phase 1,
// not just radix/radix18/radix22/robust_linear.
func TestFirstPhaseConfigsIncludesAnywhereModelsAsRoots(t *testing.T) {
	p := defaultProfile()
	configs := firstPhaseConfigs(p)
	var sawLinearRoot bool
	for _, c := range configs {
		if c.TopModel == "linear" {
			sawLinearRoot = true
			break
		}
	}
	if !sawLinearRoot {
		t.Fatal("expected \"linear\" to appear as a root candidate in phase 1")
	}
}

func TestJoinAndParseModelSpecRoundTrip(t *testing.T) {
	names := []string{"radix", "linear", "linear_spline"}
	spec := joinModelSpec(names)
	parsed, err := parseModelSpec(spec, U64)
	require.NoError(t, err)
	assert.Equal(t, names, parsed)
}
