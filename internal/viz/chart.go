package viz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 800
	chartHeight = 480
)

// ErrNoData is returned when no series has a finite point to draw.
var ErrNoData = errors.New("viz: no finite data to plot")

// Series is one named curve sharing the chart's x values.
type Series struct {
	Name  string
	Y     []float64
	Color drawing.Color
}

// Chart describes a line chart.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Series []Series
	Width  int
	Height int
}

type bounds struct {
	min, max float64
}

func newBounds() bounds { return bounds{min: math.Inf(1), max: math.Inf(-1)} }

func (b *bounds) add(v float64) {
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

func (b bounds) empty() bool { return b.min > b.max }

// rng pads degenerate ranges so the axis has non-zero extent.
func (b bounds) rng() *chart.ContinuousRange {
	lo, hi := b.min, b.max
	if hi-lo <= 1e-12*math.Max(1, math.Abs(lo)) {
		pad := math.Max(math.Abs(lo)*0.05, 0.5)
		lo, hi = lo-pad, hi+pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// Render writes the chart as PNG. Non-finite points are left out.
func (c *Chart) Render(w io.Writer) error {
	return c.render(w, nil)
}

// renderWithY pins the y axis to [lo, hi].
func (c *Chart) renderWithY(w io.Writer, lo, hi float64) error {
	return c.render(w, &bounds{min: lo, max: hi})
}

func (c *Chart) render(w io.Writer, fixedY *bounds) error {
	xb, yb := newBounds(), newBounds()
	series := make([]chart.Series, 0, len(c.Series))

	for _, s := range c.Series {
		n := min(len(c.X), len(s.Y))
		xs := make([]float64, 0, n)
		ys := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			if !finite(c.X[i]) || !finite(s.Y[i]) {
				continue
			}
			xs = append(xs, c.X[i])
			ys = append(ys, s.Y[i])
			xb.add(c.X[i])
			yb.add(s.Y[i])
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: s.Color, StrokeWidth: 2.0},
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	if fixedY != nil {
		yb = *fixedY
	}

	width, height := c.Width, c.Height
	if width == 0 {
		width = chartWidth
	}
	if height == 0 {
		height = chartHeight
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  c.XLabel,
			Style: chart.Style{FontSize: 10.0},
			Range: xb.rng(),
		},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Style: chart.Style{FontSize: 10.0},
			Range: yb.rng(),
			GridMajorStyle: chart.Style{
				StrokeColor: chart.ColorLightGray,
				StrokeWidth: 1.0,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// Save renders the chart into path.
func (c *Chart) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
