package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// TerminalPlot draws ys as an ASCII chart. Non-finite samples are dropped
// and data longer than width is decimated.
func TerminalPlot(caption string, ys []float64, width, height int) string {
	data := make([]float64, 0, len(ys))
	for _, v := range ys {
		if finite(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return caption + ": no finite data\n"
	}
	if width > 0 && len(data) > width {
		data = decimate(data, width)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	) + "\n"
}

// TerminalReport stacks one TerminalPlot per named series.
func TerminalReport(names []string, series [][]float64, width, height int) string {
	var b strings.Builder
	for i, name := range names {
		b.WriteString(TerminalPlot(name, series[i], width, height))
		b.WriteString("\n")
	}
	return b.String()
}

func decimate(data []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*len(data)/n]
	}
	return out
}
