// Command rmi is the external driver around the core training library
// (spec.md §6: "Out of scope... the command-line driver"). It loads a
// memory-mapped key file, trains or optimizes an RMI, and writes a
// result file — the parts the core package deliberately leaves to a
// caller.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/go-rmi/rmi"
)

var (
	flagOptimize             string
	flagParamGrid            string
	flagMaxSize              uint64
	flagBounded              int
	flagNoCode               bool
	flagNoErrors             bool
	flagDisableParallelTrain bool
	flagZeroBuildTime        bool
	flagThreads              int
	flagDataPath             string
	flagStatsFile            string
)

func main() {
	root := &cobra.Command{
		Use:   "rmi <input> <models> <branching_factor>",
		Short: "Train a recursive model index over a sorted key file",
		Args:  cobra.ExactArgs(3),
		RunE:  run,
	}

	root.Flags().StringVar(&flagOptimize, "optimize", "", "run the Pareto optimizer and write results to this file")
	root.Flags().StringVar(&flagParamGrid, "param-grid", "", "JSON file naming an explicit (model, branching factor) grid")
	root.Flags().Uint64Var(&flagMaxSize, "max-size", 0, "use the optimizer to find an RMI with size less than this many bytes")
	root.Flags().IntVar(&flagBounded, "bounded", 0, "apply the cache-fix transform with this line size before training")
	root.Flags().BoolVar(&flagNoCode, "no-code", false, "skip code generation")
	root.Flags().BoolVar(&flagNoErrors, "no-errors", false, "accepted but has no effect: the stats file always includes last-level error vectors")
	root.Flags().BoolVar(&flagDisableParallelTrain, "disable-parallel-training", false, "train --param-grid configurations one at a time (the optimizer is not affected)")
	root.Flags().BoolVar(&flagZeroBuildTime, "zero-build-time", false, "report build_time as zero (useful for reproducible stats files)")
	root.Flags().IntVar(&flagThreads, "threads", 4, "number of worker threads for --param-grid training (the optimizer always uses 4)")
	root.Flags().StringVar(&flagDataPath, "data-path", "", "accepted but has no effect: trained parameters are not exported")
	root.Flags().StringVar(&flagStatsFile, "stats-file", "", "write validation statistics to this file")

	if err := root.Execute(); err != nil {
		rmi.Logger.Error().Err(err).Msg("rmi: fatal")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath, modelSpec, branchingFactor := args[0], args[1], args[2]

	kind, keys, err := loadKeys(inputPath)
	if err != nil {
		return err
	}
	data := rmi.NewTrainingData(kind, keys)
	rmi.Logger.Info().
		Str("file", inputPath).
		Int("rows", data.Len()).
		Str("size", humanize.Bytes(uint64(data.Len())*uint64(kind.ByteWidth()))).
		Msg("loaded training data")

	workers := flagThreads
	if flagDisableParallelTrain {
		workers = 1
	}

	if flagOptimize != "" {
		return runOptimize(data, workers)
	}

	if flagParamGrid != "" {
		return runParamGrid(data, flagParamGrid, workers)
	}

	if flagMaxSize > 0 {
		return runTrainForSize(data, flagMaxSize)
	}

	bf := atoiOrExit(branchingFactor)
	if flagBounded > 0 {
		return runTrainBounded(data, modelSpec, bf, flagBounded)
	}
	return runTrain(data, modelSpec, bf)
}

func runOptimize(data *rmi.TrainingData, workers int) error {
	bar := progressbar.Default(-1, "optimizing")
	defer bar.Close()

	configs, err := rmi.FindParetoEfficientConfigs(data, 1000)
	if err != nil {
		return err
	}
	bar.Add(len(configs))

	payload := struct {
		Configs []optimizerConfigEntry `json:"configs"`
	}{}
	for _, c := range configs {
		payload.Configs = append(payload.Configs, optimizerConfigEntry{
			Layers:          c.ModelSpec,
			BranchingFactor: c.BranchingFactor,
			Namespace:       fmt.Sprintf("X_%d", c.BranchingFactor),
			Size:            c.Size,
			AverageLog2Err:  c.AverageLog2Error,
			Binary:          true,
		})
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(flagOptimize, b, 0o644)
}

// optimizerConfigEntry is the wire shape of one "configs" element in
// spec.md §6's optimizer result file.
type optimizerConfigEntry struct {
	Layers          string  `json:"layers"`
	BranchingFactor int     `json:"branching factor"`
	Namespace       string  `json:"namespace"`
	Size            uint64  `json:"size"`
	AverageLog2Err  float64 `json:"average log2 error"`
	Binary          bool    `json:"binary"`
}

// paramGridConfigEntry is one entry of a --param-grid input file's
// "configs" array (the layers/branching factor/namespace fields of the
// optimizerConfigEntry shape runOptimize writes, spec.md §6), naming an explicit
// (models, branching factor) pair to train directly instead of
// running the optimizer search over it.
type paramGridConfigEntry struct {
	Layers          string `json:"layers"`
	BranchingFactor int    `json:"branching factor"`
	Namespace       string `json:"namespace"`
}

// paramGridResultEntry is one entry of the "<file>_results" file
// runParamGrid writes, grounded on original_source/RMI/src/main.rs's
// param-grid result_obj.
type paramGridResultEntry struct {
	Layers          string  `json:"layers"`
	BranchingFactor int     `json:"branching factor"`
	AverageError    float64 `json:"average error"`
	AverageL2Error  float64 `json:"average l2 error"`
	AverageLog2Err  float64 `json:"average log2 error"`
	MaxError        float64 `json:"max error"`
	MaxLog2Error    float64 `json:"max log2 error"`
	SizeBytes       uint64  `json:"size binary search"`
	Namespace       string  `json:"namespace,omitempty"`
}

// runParamGrid loads an explicit (models, branching factor) grid from
// gridPath's "configs" array and trains every entry directly, writing
// a "<gridPath>_results" file with each entry's measured statistics
// (spec.md §SUPPLEMENTED / original_source/RMI/src/main.rs's
// param-grid branch).
func runParamGrid(data *rmi.TrainingData, gridPath string, workers int) error {
	raw, err := os.ReadFile(gridPath)
	if err != nil {
		return err
	}
	var grid struct {
		Configs []paramGridConfigEntry `json:"configs"`
	}
	if err := json.Unmarshal(raw, &grid); err != nil {
		return err
	}

	if workers <= 0 {
		workers = 4
	}

	bar := progressbar.Default(int64(len(grid.Configs)), "training param grid")
	defer bar.Close()

	results := make([]paramGridResultEntry, len(grid.Configs))
	p := pool.New().WithMaxGoroutines(workers)
	for i, cfg := range grid.Configs {
		i, cfg := i, cfg
		p.Go(func() {
			defer bar.Add(1)
			trained, err := rmi.Train(data.SoftCopy(), cfg.Layers, cfg.BranchingFactor)
			if err != nil {
				rmi.Logger.Warn().Err(err).Str("layers", cfg.Layers).Int("branching_factor", cfg.BranchingFactor).Msg("rmi: param-grid entry failed to train, skipping")
				return
			}
			if flagZeroBuildTime {
				trained.BuildTime = 0
			}
			results[i] = paramGridResultEntry{
				Layers:          cfg.Layers,
				BranchingFactor: cfg.BranchingFactor,
				AverageError:    trained.ModelAvgError,
				AverageL2Error:  trained.ModelAvgL2Error,
				AverageLog2Err:  trained.ModelAvgLog2Error,
				MaxError:        trained.ModelMaxError,
				MaxLog2Error:    trained.ModelMaxLog2Error,
				SizeBytes:       trained.SizeInBytes(),
				Namespace:       cfg.Namespace,
			}
		})
	}
	p.Wait()

	payload := struct {
		Results []paramGridResultEntry `json:"results"`
	}{Results: results}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(gridPath+"_results", b, 0o644)
}

func runTrainForSize(data *rmi.TrainingData, maxSize uint64) error {
	result, err := rmi.TrainForSize(data, maxSize)
	if err != nil {
		return err
	}
	return writeResult(result)
}

func runTrainBounded(data *rmi.TrainingData, modelSpec string, bf, lineSize int) error {
	result, err := rmi.TrainBounded(data, modelSpec, bf, lineSize)
	if err != nil {
		return err
	}
	return writeResult(result)
}

func runTrain(data *rmi.TrainingData, modelSpec string, bf int) error {
	result, err := rmi.Train(data, modelSpec, bf)
	if err != nil {
		return err
	}
	if flagZeroBuildTime {
		result.BuildTime = 0
	}
	return writeResult(result)
}

func writeResult(result *rmi.TrainedRMI) error {
	if flagZeroBuildTime {
		result.BuildTime = 0
	}
	rmi.Logger.Info().
		Int("leaves", result.NumRMIRows).
		Float64("avg_log2_error", result.ModelAvgLog2Error).
		Dur("build_time", result.BuildTime).
		Msg("training complete")

	if flagStatsFile == "" {
		return nil
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(flagStatsFile, b, 0o644)
}

func atoiOrExit(s string) int {
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	if err != nil {
		rmi.Logger.Fatal().Str("branching_factor", s).Msg("rmi: branching factor must be an integer")
	}
	return v
}
