package chart

import (
	"fmt"
	"html"
	"math"
	"strings"
)

const (
	svgWidth     = 760
	labelWidth   = 210
	rightMargin  = 90
	topMargin    = 48
	rowHeight    = 28
	barHeight    = 18
	axisHeight   = 36
	tickCount    = 5
	plotWidth    = svgWidth - labelWidth - rightMargin
	minBarWidth  = 1.0
	textBaseline = 5
)

func (ch Chart) x(v float64) float64 {
	if ch.Hi == ch.Lo {
		return labelWidth
	}
	return labelWidth + (v-ch.Lo)/(ch.Hi-ch.Lo)*plotWidth
}

// Height is the rendered height in pixels.
func (ch Chart) Height() int {
	return topMargin + len(ch.Bars)*rowHeight + axisHeight
}

// SVG renders the chart as a standalone <svg> element.
func (ch Chart) SVG() string {
	var b strings.Builder
	height := ch.Height()
	plotBottom := topMargin + len(ch.Bars)*rowHeight

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" class="attribution-chart" role="img" viewBox="0 0 %d %d" width="%d" height="%d" font-family="sans-serif" font-size="12">`,
		svgWidth, height, svgWidth, height)
	fmt.Fprintf(&b, `<title>Feature contributions from base value %s to %s</title>`,
		formatValue(ch.Base), formatValue(ch.Final))

	// axis
	fmt.Fprintf(&b, `<g class="axis"><line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#555"/>`,
		labelWidth, plotBottom, labelWidth+plotWidth, plotBottom)
	for i := 0; i <= tickCount; i++ {
		v := ch.Lo + (ch.Hi-ch.Lo)*float64(i)/tickCount
		x := ch.x(v)
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%d" x2="%.2f" y2="%d" stroke="#555"/>`, x, plotBottom, x, plotBottom+4)
		fmt.Fprintf(&b, `<text x="%.2f" y="%d" text-anchor="middle" fill="#555">%.2f</text>`, x, plotBottom+18, v)
	}
	b.WriteString(`</g>`)

	// base value reference
	bx := ch.x(ch.Base)
	fmt.Fprintf(&b, `<g class="base" data-value="%s"><line x1="%.2f" y1="%d" x2="%.2f" y2="%d" stroke="#333" stroke-dasharray="4 3"/>`,
		exact(ch.Base), bx, topMargin-16, bx, plotBottom)
	fmt.Fprintf(&b, `<text x="%.2f" y="%d" text-anchor="middle" fill="#333">base value %s</text></g>`,
		bx, topMargin-22, formatValue(ch.Base))

	for i, bar := range ch.Bars {
		y := topMargin + i*rowHeight
		x0, x1 := ch.x(bar.Start), ch.x(bar.End)
		left, width := math.Min(x0, x1), math.Abs(x1-x0)
		if width < minBarWidth {
			width = minBarWidth
		}
		cy := y + rowHeight/2

		fmt.Fprintf(&b, `<g class="bar" data-field="%s" data-contribution="%s">`,
			html.EscapeString(string(bar.Field)), exact(bar.Contribution))
		fmt.Fprintf(&b, `<title>%s: %s</title>`, html.EscapeString(bar.Label), exact(bar.Contribution))
		fmt.Fprintf(&b, `<text class="label" x="%d" y="%d" text-anchor="end" fill="#222">%s</text>`,
			labelWidth-8, cy+textBaseline, html.EscapeString(bar.Label))
		fmt.Fprintf(&b, `<rect x="%.2f" y="%d" width="%.2f" height="%d" fill="%s"/>`,
			left, cy-barHeight/2, width, barHeight, bar.Color())

		// value label sits past the bar's far end
		anchor, tx := "start", left+width+4
		if bar.Contribution < 0 {
			anchor, tx = "end", left-4
		}
		fmt.Fprintf(&b, `<text class="value" x="%.2f" y="%d" text-anchor="%s" fill="%s">%s</text>`,
			tx, cy+textBaseline, anchor, bar.Color(), bar.ContributionLabel())
		b.WriteString(`</g>`)
	}

	// final cumulative value
	fx := ch.x(ch.Final)
	fmt.Fprintf(&b, `<g class="final" data-value="%s"><line x1="%.2f" y1="%d" x2="%.2f" y2="%d" stroke="#222"/>`,
		exact(ch.Final), fx, topMargin-6, fx, plotBottom)
	fmt.Fprintf(&b, `<text x="%.2f" y="%d" text-anchor="middle" font-weight="bold" fill="#222">f(x) = %s</text></g>`,
		fx, topMargin-6, formatValue(ch.Final))

	b.WriteString(`</svg>`)
	return b.String()
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
