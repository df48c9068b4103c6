package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TomTonic/abcalc"
)

// scenario is the YAML form of a significance calculation. Flags set on the command line
// take precedence over the file.
type scenario struct {
	Control         abcalc.Arm  `yaml:"control"`
	Variant         abcalc.Arm  `yaml:"variant"`
	ConfidenceLevel float64     `yaml:"confidence_level"`
	Tail            abcalc.Tail `yaml:"tail"`
	Samples         uint64      `yaml:"samples"`
	Seed            uint64      `yaml:"seed"`
	LiftThresholds  []float64   `yaml:"lift_thresholds"`
	BootstrapReps   uint64      `yaml:"bootstrap_reps"`
}

func loadScenario(path string) (scenario, error) {
	sc := scenario{ConfidenceLevel: 95}
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("read scenario %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return sc, nil
}

func newSignificanceCmd(a *app) *cobra.Command {
	var (
		scenarioPath string
		tail         string
		output       string
		sc           = scenario{ConfidenceLevel: 95}
	)

	cmd := &cobra.Command{
		Use:   "significance",
		Short: "Evaluate a finished A/B test",
		Long: `Runs the z-test and the Bayesian comparison on the visitor and conversion counts of
a control and a variant. Counts come from flags or from a --scenario YAML file.`,
		Example: `  abcalc significance --control-visitors 1000 --control-conversions 100 \
    --variant-visitors 1000 --variant-conversions 130 --tail two-sided --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenarioPath != "" {
				fromFile, err := loadScenario(scenarioPath)
				if err != nil {
					return err
				}
				mergeScenario(cmd, &fromFile, sc)
				sc = fromFile
			}
			if cmd.Flags().Changed("tail") || scenarioPath == "" {
				t, err := abcalc.ParseTail(tail)
				if err != nil {
					return err
				}
				sc.Tail = t
			}
			if sc.Samples == 0 {
				sc.Samples = a.cfg.Bayes.Samples
			}
			if sc.Seed == 0 {
				sc.Seed = a.cfg.Bayes.Seed
			}

			if sc.BootstrapReps == 0 && len(sc.LiftThresholds) > 0 {
				sc.BootstrapReps = abcalc.DefaultBootstrapReps
			}
			if err := checkBudget(a.cfg.Server.MaxSamples, "samples", sc.Samples); err != nil {
				return err
			}
			if err := checkBudget(a.cfg.Server.MaxSamples, "bootstrap-reps", sc.BootstrapReps); err != nil {
				return err
			}

			report, err := abcalc.Analyze(abcalc.Input{
				Control:         sc.Control,
				Variant:         sc.Variant,
				ConfidenceLevel: sc.ConfidenceLevel,
			}, abcalc.Options{
				Tail:           sc.Tail,
				Bayes:          abcalc.BayesOptions{Samples: sc.Samples, Seed: sc.Seed},
				LiftThresholds: sc.LiftThresholds,
				BootstrapReps:  sc.BootstrapReps,
			})
			if err != nil {
				return err
			}
			a.logger.Debug("significance calculated",
				zap.Uint64("seed", report.Bayesian.Seed),
				zap.Duration("elapsed", report.Elapsed),
			)
			return writeReport(cmd.OutOrStdout(), output, report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&scenarioPath, "scenario", "", "YAML file describing the experiment")
	f.Int64Var(&sc.Control.Visitors, "control-visitors", 0, "visitors in the control arm")
	f.Int64Var(&sc.Control.Conversions, "control-conversions", 0, "conversions in the control arm")
	f.Int64Var(&sc.Variant.Visitors, "variant-visitors", 0, "visitors in the variant arm")
	f.Int64Var(&sc.Variant.Conversions, "variant-conversions", 0, "conversions in the variant arm")
	f.Float64Var(&sc.ConfidenceLevel, "confidence", 95, "confidence level in percent for the interval")
	f.StringVar(&tail, "tail", "one-sided", "p-value that decides significance: one-sided or two-sided")
	f.Uint64Var(&sc.Samples, "samples", 0, "Monte Carlo draws (0 uses the configured default)")
	f.Uint64Var(&sc.Seed, "seed", 0, "random seed (0 picks a fresh one)")
	f.Float64SliceVar(&sc.LiftThresholds, "lift-thresholds", nil, "relative lifts to bootstrap, e.g. 0,0.05,0.1")
	f.Uint64Var(&sc.BootstrapReps, "bootstrap-reps", 0, "bootstrap replicates (0 uses 10000)")
	f.StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

// checkBudget applies server.max_samples to the CLI as well. A zero limit disables it.
func checkBudget(limit uint64, name string, n uint64) error {
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: --%s %d exceeds server.max_samples %d", abcalc.ErrInvalidInput, name, n, limit)
	}
	return nil
}

// mergeScenario copies every flag the user set explicitly from flags into dst.
func mergeScenario(cmd *cobra.Command, dst *scenario, flags scenario) {
	changed := cmd.Flags().Changed
	if changed("control-visitors") {
		dst.Control.Visitors = flags.Control.Visitors
	}
	if changed("control-conversions") {
		dst.Control.Conversions = flags.Control.Conversions
	}
	if changed("variant-visitors") {
		dst.Variant.Visitors = flags.Variant.Visitors
	}
	if changed("variant-conversions") {
		dst.Variant.Conversions = flags.Variant.Conversions
	}
	if changed("confidence") {
		dst.ConfidenceLevel = flags.ConfidenceLevel
	}
	if changed("samples") {
		dst.Samples = flags.Samples
	}
	if changed("seed") {
		dst.Seed = flags.Seed
	}
	if changed("lift-thresholds") {
		dst.LiftThresholds = flags.LiftThresholds
	}
	if changed("bootstrap-reps") {
		dst.BootstrapReps = flags.BootstrapReps
	}
}

func writeReport(w io.Writer, output string, report *abcalc.Report) error {
	switch output {
	case "json":
		return writeJSON(w, report)
	case "text", "":
		renderReport(w, report)
		return nil
	}
	return fmt.Errorf("unknown output format %q", output)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
