package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/corpus-sim/corpus-sim/sim"
	"github.com/corpus-sim/corpus-sim/sim/metrics"
	"github.com/corpus-sim/corpus-sim/sim/topology"
	"github.com/corpus-sim/corpus-sim/sim/validate"
)

var (
	// Shared flags
	inputPath string // YAML input bundle (counts, partition, frequencies, corpus)
	logLevel  string // Log verbosity level
	seed      int64  // Base seed for synthetic corpus generation

	// Validation flags
	samples        int     // Monte Carlo sample count M
	workers        int     // Parallel Monte Carlo workers
	zThreshold     float64 // |z| match threshold
	minSupport     float64 // Minimum expected count for depletion cells
	depletionRatio float64 // observed/expected depletion cut-off
	tailOverrides  []string

	// Topology flags
	bandStrong   float64
	bandModerate float64
	bandWeak     float64
	tvSteps      []int
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "corpus-sim",
	Short: "Markov corpus modeling and validation engine",
}

// PipelineReport is the combined output of a full validation run: the three
// automaton matrices, the real-corpus metrics with their comparison table,
// and the transition-matrix topology analysis.
type PipelineReport struct {
	Automaton  *sim.Automaton   `yaml:"automaton"`
	Validation *validate.Report `yaml:"validation"`
	Topology   *topology.Report `yaml:"topology"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an automaton against its real corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, automaton, err := loadAndBuild()
		if err != nil {
			return err
		}
		if len(bundle.RealCorpus) == 0 {
			return &sim.ConfigurationError{Msg: "validate requires a real corpus in the input bundle"}
		}

		metricCfg := metrics.Config{
			Symbols:        automaton.Symbols,
			MinSupport:     minSupport,
			DepletionRatio: depletionRatio,
		}
		real := metrics.Extract(bundle.RealCorpus, metricCfg)

		tails, err := parseTailOverrides(tailOverrides)
		if err != nil {
			return err
		}
		report, err := validate.Run(automaton, bundle.LengthProfile(), real, validate.Config{
			Samples:    samples,
			Seed:       seed,
			Workers:    workers,
			ZThreshold: zThreshold,
			Tails:      tails,
			Metrics:    metricCfg,
		})
		if err != nil {
			return err
		}

		return emit(&PipelineReport{
			Automaton:  automaton,
			Validation: report,
			Topology:   topology.Analyze(automaton, topologyConfig()),
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draw one synthetic corpus and print its statistic battery",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, automaton, err := loadAndBuild()
		if err != nil {
			return err
		}
		corpus, warnings := sim.Simulate(automaton, bundle.LengthProfile(), sim.NewRand(seed))
		for _, w := range warnings {
			logrus.Warnf("%s: %s", w.Kind, w.Detail)
		}
		return emit(struct {
			Corpus  sim.Corpus     `yaml:"corpus"`
			Metrics metrics.Vector `yaml:"metrics"`
		}{
			Corpus:  corpus,
			Metrics: metrics.Extract(corpus, metrics.Config{Symbols: automaton.Symbols}),
		})
	},
}

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Analyze the state-transition matrix structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, automaton, err := loadAndBuild()
		if err != nil {
			return err
		}
		return emit(topology.Analyze(automaton, topologyConfig()))
	},
}

// loadAndBuild handles the shared front half of every command: logging
// setup, bundle load, automaton construction.
func loadAndBuild() (*InputBundle, *sim.Automaton, error) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	logrus.SetLevel(level)

	bundle, err := LoadInputBundle(inputPath)
	if err != nil {
		return nil, nil, err
	}
	automaton, err := sim.BuildAutomaton(bundle.Counts, bundle.Partition, bundle.ClassFrequency)
	if err != nil {
		return nil, nil, err
	}
	logrus.Infof("built automaton: %d states over %d symbols", automaton.States, automaton.Symbols)
	if zero := automaton.ZeroTransitionRows(); len(zero) > 0 {
		logrus.Warnf("states %v have no observed outgoing transitions", zero)
	}
	return bundle, automaton, nil
}

func topologyConfig() topology.Config {
	return topology.Config{
		Strong:   bandStrong,
		Moderate: bandModerate,
		Weak:     bandWeak,
		TVSteps:  tvSteps,
	}
}

// parseTailOverrides parses repeated metric=tail flags.
func parseTailOverrides(specs []string) (map[metrics.ID]validate.Tail, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	known := make(map[metrics.ID]struct{})
	for _, id := range metrics.All() {
		known[id] = struct{}{}
	}
	tails := make(map[metrics.ID]validate.Tail, len(specs))
	for _, spec := range specs {
		name, tail, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("tail override %q is not metric=tail", spec)
		}
		id := metrics.ID(name)
		if _, exists := known[id]; !exists {
			return nil, fmt.Errorf("unknown metric %q in tail override", name)
		}
		switch t := validate.Tail(tail); t {
		case validate.TwoSided, validate.Lower, validate.Upper:
			tails[id] = t
		default:
			return nil, fmt.Errorf("unknown tail convention %q (want two-sided, lower, or upper)", tail)
		}
	}
	return tails, nil
}

// emit marshals a report to stdout as YAML.
func emit(report any) error {
	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "inputs.yaml", "Path to the YAML input bundle")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Base seed for synthetic corpus generation")

	validateCmd.Flags().IntVar(&samples, "samples", 100, "Monte Carlo sample count")
	validateCmd.Flags().IntVar(&workers, "workers", 1, "Parallel Monte Carlo workers (does not affect results)")
	validateCmd.Flags().Float64Var(&zThreshold, "z-threshold", 3, "Absolute z-score below which a metric matches")
	validateCmd.Flags().Float64Var(&minSupport, "min-support", 5, "Minimum expected count for a depletion cell")
	validateCmd.Flags().Float64Var(&depletionRatio, "depletion-ratio", 0.2, "observed/expected ratio below which a cell is depleted")
	validateCmd.Flags().StringSliceVar(&tailOverrides, "tail", nil, "Per-metric p-value tail override, metric=tail (repeatable)")

	for _, c := range []*cobra.Command{validateCmd, topologyCmd} {
		c.Flags().Float64Var(&bandStrong, "band-strong", 0.10, "Lower bound of the strong edge band")
		c.Flags().Float64Var(&bandModerate, "band-moderate", 0.03, "Lower bound of the moderate edge band")
		c.Flags().Float64Var(&bandWeak, "band-weak", 0.01, "Lower bound of the weak edge band")
		c.Flags().IntSliceVar(&tvSteps, "tv-steps", []int{2, 4, 8, 16, 32}, "Matrix-power steps for the mixing cross-check")
	}

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(topologyCmd)
}
