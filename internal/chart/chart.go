// Package chart renders the per-feature attribution of an assessment as an
// SVG waterfall: each bar starts where the previous one ended, beginning at
// the model's base value and finishing at the unclamped prediction.
package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
)

const (
	ColorIncrease = "#FF0D57"
	ColorDecrease = "#1E88E5"
	ColorNeutral  = "#9E9E9E"
)

// Bar is one waterfall segment.
type Bar struct {
	Field        analysis.Field
	Label        string // "<Display> = <value>"
	Contribution float64
	Start        float64
	End          float64
}

// Color returns the direction colour of the bar.
func (b Bar) Color() string {
	switch {
	case b.Contribution > 0:
		return ColorIncrease
	case b.Contribution < 0:
		return ColorDecrease
	default:
		return ColorNeutral
	}
}

// ContributionLabel is the signed display value with four decimals.
func (b Bar) ContributionLabel() string {
	return FormatContribution(b.Contribution)
}

// FormatContribution renders a contribution the way bar labels show it.
func FormatContribution(v float64) string {
	return fmt.Sprintf("%+.4f", v)
}

// exact is the shortest representation that parses back to the same float64.
func exact(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Chart is the render-ready attribution of one assessment.
type Chart struct {
	Base        float64
	Final       float64
	Probability float64
	Bars        []Bar
	// Lo and Hi bound the value axis.
	Lo, Hi float64
}

// Build lays out the bars from the assessment's contributions in their given order.
// It does not rescore: Final is base plus the running sum of contributions.
func Build(a analysis.Assessment) Chart {
	ch := Chart{
		Base:        a.Base,
		Probability: a.Probability,
		Bars:        make([]Bar, 0, len(a.Contributions)),
	}

	lo, hi := a.Base, a.Base
	cum := a.Base
	for _, c := range a.Contributions {
		label := c.Label
		if spec, ok := analysis.Spec(c.Field); ok {
			label = fmt.Sprintf("%s = %s", spec.Label, spec.FormatValue(c.Value))
		}

		bar := Bar{
			Field:        c.Field,
			Label:        label,
			Contribution: c.Contribution,
			Start:        cum,
		}
		cum += c.Contribution
		bar.End = cum
		ch.Bars = append(ch.Bars, bar)

		lo = math.Min(lo, cum)
		hi = math.Max(hi, cum)
	}
	ch.Final = cum

	span := hi - lo
	if span < 0.01 {
		span = 0.01
	}
	ch.Lo = lo - span*0.1
	ch.Hi = hi + span*0.1

	return ch
}
