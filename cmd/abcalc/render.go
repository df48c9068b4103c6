package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TomTonic/abcalc"
)

type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
}

// newStyles binds the styles to w so colours are dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Underline(true),
		label:   r.NewStyle().Width(22),
		good:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		bad:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

func (s styles) row(b *strings.Builder, label, format string, args ...any) {
	b.WriteString("  ")
	b.WriteString(s.label.Render(label))
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func percent(x float64) string {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return fmt.Sprint(x)
	}
	return fmt.Sprintf("%.2f%%", 100*x)
}

func signedPercent(x float64) string {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return fmt.Sprintf("%+v", x)
	}
	return fmt.Sprintf("%+.2f%%", 100*x)
}

func renderReport(w io.Writer, r *abcalc.Report) {
	s := newStyles(w)
	var b strings.Builder

	b.WriteString(s.heading.Render("Experiment"))
	b.WriteByte('\n')
	s.row(&b, "Control", "%d visitors, %d conversions (%s)", r.Control.Visitors, r.Control.Conversions, percent(r.Control.Rate))
	s.row(&b, "Variant", "%d visitors, %d conversions (%s)", r.Variant.Visitors, r.Variant.Conversions, percent(r.Variant.Rate))
	s.row(&b, "Relative lift", "%s", signedPercent(float64(r.RelativeLift)))
	s.row(&b, "Absolute difference", "%s", signedPercent(r.AbsoluteDifference))

	f := r.Frequentist
	b.WriteByte('\n')
	b.WriteString(s.heading.Render(fmt.Sprintf("Z-test (%s)", f.Tail)))
	b.WriteByte('\n')
	s.row(&b, "z-score", "%.4f", f.ZScore)
	s.row(&b, "Standard error", "%.6f", f.StandardError)
	s.row(&b, "p-value", "%.4f (one-sided %.4f, two-sided %.4f)", f.PValue, f.PValueOneSided, f.PValueTwoSided)
	s.row(&b, fmt.Sprintf("%g%% interval", f.ConfidenceLevel), "[%s, %s]", signedPercent(f.Interval.Lower), signedPercent(f.Interval.Upper))
	if f.Significant {
		s.row(&b, "Verdict", "%s", s.good.Render(fmt.Sprintf("significant (p < %g)", abcalc.SignificanceThreshold)))
	} else {
		s.row(&b, "Verdict", "%s", s.bad.Render("not significant"))
	}

	by := r.Bayesian
	b.WriteByte('\n')
	b.WriteString(s.heading.Render(fmt.Sprintf("Bayesian (%d draws, seed %d)", by.Samples, by.Seed)))
	b.WriteByte('\n')
	s.row(&b, "P(variant wins)", "%s", percent(by.ProbabilityVariantWins))
	s.row(&b, "P(control wins)", "%s", percent(by.ProbabilityControlWins))
	s.row(&b, "Bayes factor", "%.4g (log %.4f)", float64(by.BayesFactor), by.LogBayesFactor)
	s.row(&b, "Expected lift", "%s", signedPercent(by.ExpectedLift))
	s.row(&b, "95% lift interval", "[%s, %s]", signedPercent(by.LiftInterval.Lower), signedPercent(by.LiftInterval.Upper))

	if len(r.Bootstrap) > 0 {
		b.WriteByte('\n')
		b.WriteString(s.heading.Render("Bootstrap"))
		b.WriteByte('\n')
		for _, lc := range r.Bootstrap {
			s.row(&b, "lift ≥ "+signedPercent(lc.RelativeLift), "%s", percent(lc.Confidence))
		}
	}

	io.WriteString(w, b.String())
}

func renderSizing(w io.Writer, p abcalc.SizingParams, r abcalc.SizingResult) {
	s := newStyles(w)
	var b strings.Builder

	b.WriteString(s.heading.Render("Sample size"))
	b.WriteByte('\n')
	s.row(&b, "Baseline rate", "%s", percent(r.BaselineRate))
	s.row(&b, "Target rate", "%s", percent(r.TargetRate))
	s.row(&b, "Alpha (adjusted)", "%.4g", r.AdjustedAlpha)
	s.row(&b, "z(alpha), z(beta)", "%.3f, %.3f", r.ZAlpha, r.ZBeta)
	s.row(&b, "Per arm", "%s", s.good.Render(fmt.Sprint(r.SampleSizePerArm)))
	s.row(&b, "Total", "%d across %d arms", r.TotalSampleSize, r.Arms)
	s.row(&b, "Duration", "%d week(s) at %d visitors/week", r.EstimatedWeeks, p.WeeklyTraffic)

	io.WriteString(w, b.String())
}
