// Package viz renders run diagnostics.
//
// Line charts are drawn with go-chart, the collapse heatmap and the
// density movie are rasterised here, and asciigraph covers terminal output.
package viz
