// Package viz renders evolution results in the terminal: static series
// plots for the CLI and a live step-by-step viewer.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/quantumduality/qdtlab/internal/engine"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// RenderSeries plots each of the six series plus the combined estimate.
func RenderSeries(res *engine.Result) string {
	var b strings.Builder

	series := []struct {
		caption string
		data    []float64
	}{
		{"combined estimate", res.Combined},
		{"void energy", res.Series.Void},
		{"filament energy", res.Series.Filament},
		{"emergence energy", res.Series.Emergence},
		{"crystal phase", res.Series.CrystalPhase},
		{"resonance", res.Series.Resonance},
		{"convergence", res.Series.Convergence},
	}

	for _, s := range series {
		if flat(s.data) {
			// asciigraph needs a spread; a flat series reads better as text.
			fmt.Fprintf(&b, "%s: constant at %.6f\n\n", s.caption, s.data[0])
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(s.caption),
		)
		b.WriteString(graph)
		b.WriteString("\n\n")
	}

	return b.String()
}

// RenderCombined plots the first n entries of the combined estimate.
func RenderCombined(res *engine.Result, n int) string {
	if n < 2 {
		n = 2
	}
	if n > len(res.Combined) {
		n = len(res.Combined)
	}
	data := res.Combined[:n]
	if flat(data) {
		return fmt.Sprintf("combined estimate: constant at %.6f", data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("combined estimate"),
	)
}

func flat(data []float64) bool {
	if len(data) == 0 {
		return true
	}
	for _, v := range data {
		if v != data[0] {
			return false
		}
	}
	return true
}
