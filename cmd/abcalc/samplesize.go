package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TomTonic/abcalc"
)

func newSampleSizeCmd(a *app) *cobra.Command {
	var (
		p          abcalc.SizingParams
		effectType string
		zMethod    string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "samplesize",
		Short: "Plan the sample size and duration of an A/B test",
		Long: `Computes the visitors each arm needs to detect the minimum detectable effect at the
given confidence and power, with a Bonferroni correction for several variants.`,
		Example: `  abcalc samplesize --baseline 0.10 --mde 0.20 --weekly-traffic 2000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.EffectType = abcalc.EffectType(effectType)
			p.ZMethod = abcalc.ZMethod(zMethod)
			if p.ZMethod == "" {
				p.ZMethod = a.cfg.Sizing.ZMethod
			}
			res, err := abcalc.SampleSize(p)
			if err != nil {
				return err
			}
			a.logger.Debug("sample size calculated", zap.Int64("per_arm", res.SampleSizePerArm))

			switch output {
			case "json":
				return writeJSON(cmd.OutOrStdout(), res)
			case "text", "":
				renderSizing(cmd.OutOrStdout(), p, res)
				return nil
			}
			return fmt.Errorf("unknown output format %q", output)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&p.ConfidenceLevel, "confidence", 95, "confidence level in percent")
	f.Float64Var(&p.Power, "power", 80, "statistical power in percent")
	f.Float64Var(&p.BaselineRate, "baseline", 0, "baseline conversion rate as a fraction, e.g. 0.1")
	f.Float64Var(&p.MinimumDetectableEffect, "mde", 0, "minimum detectable effect")
	f.StringVar(&effectType, "effect-type", string(abcalc.Relative), "how --mde applies: relative or absolute")
	f.IntVar(&p.NumVariants, "variants", 1, "number of variants besides the control")
	f.Int64Var(&p.WeeklyTraffic, "weekly-traffic", 0, "visitors per week across all arms")
	f.StringVar(&zMethod, "z-method", "", "analytic or table (default from config)")
	f.StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}
