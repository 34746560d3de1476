package rmi

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc/pool"
)

// paretoEpsilon absorbs float noise when comparing mean_log2_error
// values for strict dominance (spec.md §4.5: "strictness at equality
// is handled by an epsilon comparison on the log2 error").
const paretoEpsilon = 1e-9

// RMIStatistics is one measured point in the optimizer's search space:
// a trained config's size/accuracy summary, kept separate from the
// full TrainedRMI so frontier bookkeeping doesn't have to drag every
// model's parameters around.
type RMIStatistics struct {
	ModelSpec        string
	TopModel         string
	LeafModel        string
	BranchingFactor  int
	AverageLog2Error float64
	MaxLog2Error     float64
	Size             uint64
	RMI              *TrainedRMI
}

// dominates reports whether s is at least as good as other on both
// axes (size, mean log2 error) and strictly better on at least one,
// per spec.md §4.5's Pareto dominance rule.
func (s RMIStatistics) dominates(other RMIStatistics) bool {
	sizeLE := s.Size <= other.Size
	errLE := s.AverageLog2Error <= other.AverageLog2Error+paretoEpsilon
	if !sizeLE || !errLE {
		return false
	}
	sizeLT := s.Size < other.Size
	errLT := s.AverageLog2Error < other.AverageLog2Error-paretoEpsilon
	return sizeLT || errLT
}

// hasConfig reports whether stats already contains a measurement for
// (topModel, leafModel, bf) — used by phase 2 to skip branching
// factors phase 1 already tried for a surviving spec.
func hasConfig(stats []RMIStatistics, topModel, leafModel string, bf int) bool {
	for _, s := range stats {
		if s.TopModel == topModel && s.LeafModel == leafModel && s.BranchingFactor == bf {
			return true
		}
	}
	return false
}

// ToGridSpec renders the (models, branching_factor) pair as a compact
// "<models>_<branching factor>" string. The optimizer result file's
// "layers" field (spec.md §6) holds ModelSpec alone, not this string.
func (s RMIStatistics) ToGridSpec() string {
	return fmt.Sprintf("%s_%d", s.ModelSpec, s.BranchingFactor)
}

// displayTable writes a human-readable table of stats to w, in the
// same spirit as the source's tabular-crate dump. text/tabwriter is
// stdlib — no table-formatting library appears anywhere in the
// retrieved pack (DESIGN.md).
func displayTable(w *os.File, stats []RMIStatistics) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODELS\tBRANCHING\tSIZE\tAVG_LOG2_ERR\tMAX_LOG2_ERR")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.4f\n", s.ModelSpec, s.BranchingFactor, s.Size, s.AverageLog2Error, s.MaxLog2Error)
	}
	tw.Flush()
}

// paretoFront returns the subset of stats not dominated by any other
// member (spec.md §8 property 5).
func paretoFront(stats []RMIStatistics) []RMIStatistics {
	var front []RMIStatistics
	for i, candidate := range stats {
		dominated := false
		for j, other := range stats {
			if i == j {
				continue
			}
			if other.dominates(candidate) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, candidate)
		}
	}
	return front
}

// narrowFront reduces front to at most keepN points (spec.md §4.5
// "Narrowing" / §8 property 6): sort by ascending size, protect the
// globally smallest model (it never takes part in a removal), and
// repeatedly find whichever adjacent pair among the rest has the
// smallest size ratio and drop the worse (higher mean_log2_error)
// member of that pair. Grounded on
// original_source/RMI/rmi_lib/src/optimizer.rs:141-146 ("if err1 > err2
// { remove(idx1) } else { remove(idx2) }" — the higher-error element
// of the pair is removed, never the larger one). The result is
// re-sorted by ascending mean_log2_error before it's returned.
func narrowFront(front []RMIStatistics, keepN int) []RMIStatistics {
	points := append([]RMIStatistics(nil), front...)
	sort.Slice(points, func(i, j int) bool { return points[i].Size < points[j].Size })
	if len(points) == 0 {
		return points
	}

	protected := points[0]
	rest := append([]RMIStatistics(nil), points[1:]...)

	for len(rest)+1 > keepN && len(rest) > 0 {
		if len(rest) == 1 {
			rest = nil
			break
		}
		bestIdx := 0
		bestRatio := -1.0
		for i := 0; i+1 < len(rest); i++ {
			sizeI := rest[i].Size
			if sizeI == 0 {
				sizeI = 1
			}
			ratio := float64(rest[i+1].Size) / float64(sizeI)
			if bestRatio < 0 || ratio < bestRatio {
				bestRatio = ratio
				bestIdx = i
			}
		}
		drop := bestIdx
		if rest[bestIdx].AverageLog2Error <= rest[bestIdx+1].AverageLog2Error {
			drop = bestIdx + 1
		}
		rest = append(rest[:drop], rest[drop+1:]...)
	}

	points = append([]RMIStatistics{protected}, rest...)
	sort.Slice(points, func(i, j int) bool {
		if points[i].AverageLog2Error != points[j].AverageLog2Error {
			return points[i].AverageLog2Error < points[j].AverageLog2Error
		}
		if points[i].Size != points[j].Size {
			return points[i].Size < points[j].Size
		}
		return points[i].ModelSpec < points[j].ModelSpec
	})
	return points
}

// optimizerProfile is the resolved candidate set and branching-factor
// range for one RMI_OPTIMIZER_PROFILE value (spec.md §4.5's table).
type optimizerProfile struct {
	topModels  []string
	leafModels []string
	expMin     int
	expMax     int // inclusive
	expStep    int
}

func defaultProfile() optimizerProfile {
	return optimizerProfile{
		topModels:  []string{"radix", "radix18", "radix22", "robust_linear"},
		leafModels: []string{"linear", "cubic", "linear_spline"},
		expMin:     6, expMax: 24, expStep: 1,
	}
}

// resolveOptimizerProfile reads RMI_OPTIMIZER_PROFILE and returns the
// matching candidate set (spec.md §4.5's table / §6's environment
// contract: unset/"fast"/"memory"/"disk", any other value aborts).
func resolveOptimizerProfile() (optimizerProfile, error) {
	val, set := os.LookupEnv("RMI_OPTIMIZER_PROFILE")
	if !set || val == "" {
		return defaultProfile(), nil
	}
	switch val {
	case "fast":
		return optimizerProfile{
			topModels:  []string{"robust_linear"},
			leafModels: []string{"linear", "cubic"},
			expMin:     6, expMax: 24, expStep: 2,
		}, nil
	case "memory":
		return defaultProfile(), nil
	case "disk":
		p := defaultProfile()
		p.topModels = append(append([]string(nil), p.topModels...), "normal", "lognormal", "loglinear")
		p.expMax = 27
		return p, nil
	default:
		return optimizerProfile{}, fmt.Errorf("rmi: invalid RMI_OPTIMIZER_PROFILE %q", val)
	}
}

// topLayerCandidates is the set of model names the optimizer considers
// for the root/top layer of a two-layer config.
func (p optimizerProfile) topLayerCandidates() []string { return p.topModels }

// anywhereCandidates is the set of model names the optimizer considers
// for the leaf layer.
func (p optimizerProfile) anywhereCandidates() []string { return p.leafModels }

// branchingFactors enumerates 2^e for every exponent in [expMin,
// expMax] stepped by expStep (spec.md §4.5: "Branching factors are
// 2^e for e in the configured exponent range").
func (p optimizerProfile) branchingFactors() []int {
	var out []int
	for e := p.expMin; e <= p.expMax; e += p.expStep {
		out = append(out, 1<<uint(e))
	}
	return out
}

// configCandidate is one (top model, leaf model, branching factor)
// point the optimizer will train and measure.
type configCandidate struct {
	TopModel        string
	LeafModel       string
	BranchingFactor int
}

// allTopModels is the candidate set considered for the top/root layer
// in phase 1: the RootOnly-only set union the set also usable
// elsewhere, matching original_source/RMI/rmi_lib/src/optimizer.rs's
// first_phase_configs, which builds all_top_models as
// top_only_layers() ∪ anywhere_layers() rather than iterating
// top_only_layers() alone — otherwise root-capable-but-not-RootOnly
// models like linear/cubic never get enumerated as roots and never
// survive into phase 2.
func allTopModels(p optimizerProfile) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range p.topLayerCandidates() {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range p.anywhereCandidates() {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// firstPhaseConfigs enumerates the Cartesian product {top_models} x
// {leaf_models} x {branching_factors sampled every 5th step} (spec.md
// §4.5 phase 1).
func firstPhaseConfigs(p optimizerProfile) []configCandidate {
	allBf := p.branchingFactors()
	var sampledBf []int
	for i := 0; i < len(allBf); i += 5 {
		sampledBf = append(sampledBf, allBf[i])
	}
	var out []configCandidate
	for _, top := range allTopModels(p) {
		for _, leaf := range p.anywhereCandidates() {
			for _, bf := range sampledBf {
				out = append(out, configCandidate{TopModel: top, LeafModel: leaf, BranchingFactor: bf})
			}
		}
	}
	return out
}

// secondPhaseConfigs takes the phase-1 Pareto survivors and, for each
// distinct (top, leaf) spec among them, adds every branching factor
// from the full range not already measured in phase 1 (spec.md §4.5
// phase 2).
func secondPhaseConfigs(p optimizerProfile, phase1Results []RMIStatistics, survivors []RMIStatistics) []configCandidate {
	seenSpecs := map[[2]string]bool{}
	var out []configCandidate
	for _, s := range survivors {
		key := [2]string{s.TopModel, s.LeafModel}
		if seenSpecs[key] {
			continue
		}
		seenSpecs[key] = true
		for _, bf := range p.branchingFactors() {
			if hasConfig(phase1Results, s.TopModel, s.LeafModel, bf) {
				continue
			}
			out = append(out, configCandidate{TopModel: s.TopModel, LeafModel: s.LeafModel, BranchingFactor: bf})
		}
	}
	return out
}

// measureRMIs trains every candidate config against data using a
// worker pool of the given degree (default 4, spec.md §5), collecting
// one RMIStatistics per config that trains successfully. A single
// config's training fault aborts only that config (logged via
// Logger), per spec.md §7 — the frontier is computed over survivors,
// so measureRMIs never fails outright; multierror aggregates the
// faults purely for the diagnostic it logs once all configs finish.
//
// Grounded on original_source/RMI/rmi_lib/src/optimizer.rs's
// measure_rmis, which fans out via rayon::par_iter; conc/pool is this
// codebase's worker-pool equivalent (DESIGN.md).
func measureRMIs(data *TrainingData, configs []configCandidate, workers int) []RMIStatistics {
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	var results []RMIStatistics
	var faults error

	p := pool.New().WithMaxGoroutines(workers)
	for _, cfg := range configs {
		cfg := cfg
		p.Go(func() {
			soft := data.SoftCopy()
			rmi, err := TrainTwoLayer(soft, cfg.TopModel, cfg.LeafModel, cfg.BranchingFactor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				faults = multierror.Append(faults, fmt.Errorf("config %s,%s bf=%d: %w", cfg.TopModel, cfg.LeafModel, cfg.BranchingFactor, err))
				return
			}
			results = append(results, RMIStatistics{
				ModelSpec:        rmi.ModelSpec,
				TopModel:         cfg.TopModel,
				LeafModel:        cfg.LeafModel,
				BranchingFactor:  cfg.BranchingFactor,
				AverageLog2Error: rmi.ModelAvgLog2Error,
				MaxLog2Error:     rmi.ModelMaxLog2Error,
				Size:             rmi.SizeInBytes(),
				RMI:              rmi,
			})
		})
	}
	p.Wait()

	if faults != nil {
		Logger.Warn().Err(faults).Int("fault_count", countMultierror(faults)).Msg("optimizer: some configurations failed to train and were skipped")
	}
	return results
}

func countMultierror(err error) int {
	if me, ok := err.(*multierror.Error); ok {
		return len(me.Errors)
	}
	return 1
}

// FindParetoEfficientConfigs runs the two-phase optimizer sweep over
// data (spec.md §4.5/§4.6) and returns the frontier narrowed to at
// most keepN points, sorted by ascending mean log2 error.
func FindParetoEfficientConfigs(data *TrainingData, keepN int) ([]RMIStatistics, error) {
	return findParetoEfficientConfigsWithWorkers(data, keepN, 4)
}

func findParetoEfficientConfigsWithWorkers(data *TrainingData, keepN, workers int) ([]RMIStatistics, error) {
	profile, err := resolveOptimizerProfile()
	if err != nil {
		return nil, err
	}

	phase1Configs := firstPhaseConfigs(profile)
	phase1Results := measureRMIs(data, phase1Configs, workers)

	survivors := paretoFront(phase1Results)

	phase2Configs := secondPhaseConfigs(profile, phase1Results, survivors)
	phase2Results := measureRMIs(data, phase2Configs, workers)

	merged := append(append([]RMIStatistics(nil), phase1Results...), phase2Results...)
	front := paretoFront(merged)
	return narrowFront(front, keepN), nil
}
