package viz

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/sim"
)

func testHistory(t *testing.T) (*dynamo.Grid, *sim.History) {
	t.Helper()
	g, err := dynamo.NewGrid(64, 20)
	require.NoError(t, err)

	psi := make(dynamo.Wavefunction, g.N)
	a := math.Pow(math.Pi, -0.25)
	for i, x := range g.X {
		psi[i] = complex(a*math.Exp(-(x+5)*(x+5)/2), 0)
	}

	s, err := sim.New(g, &sim.Config{
		NumSteps:         12,
		DTau:             0.001,
		Alpha:            1,
		Temperature:      1,
		Mass:             1,
		SnapshotInterval: 4,
	}, psi)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	return g, res.History
}

func TestViridis(t *testing.T) {
	assert.Equal(t, viridis[0], Viridis(0))
	assert.Equal(t, viridis[len(viridis)-1], Viridis(1))
	assert.Equal(t, viridis[0], Viridis(-3))
	assert.Equal(t, viridis[len(viridis)-1], Viridis(7))
	assert.Equal(t, missingColor, Viridis(math.NaN()))

	mid := Viridis(0.5)
	assert.Equal(t, uint8(255), mid.A)
}

func TestChartRender(t *testing.T) {
	c := &Chart{
		Title: "test",
		X:     []float64{0, 1, 2, 3},
		Series: []Series{
			{Name: "a", Y: []float64{1, 2, math.NaN(), 4}, Color: chart.ColorBlue},
			{Name: "flat", Y: []float64{2, 2, 2, 2}, Color: chart.ColorRed},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())
	assert.Equal(t, chartHeight, img.Bounds().Dy())
}

func TestChartRender_ConstantSeries(t *testing.T) {
	c := &Chart{
		X:      []float64{0, 0.1, 0.2},
		Series: []Series{{Name: "T", Y: []float64{1, 1, 1}, Color: chart.ColorBlue}},
	}
	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	assert.NotZero(t, buf.Len())
}

func TestChartRender_NoData(t *testing.T) {
	c := &Chart{
		X:      []float64{0, 1},
		Series: []Series{{Name: "nan", Y: []float64{math.NaN(), math.Inf(1)}}},
	}
	assert.ErrorIs(t, c.Render(&bytes.Buffer{}), ErrNoData)
}

func TestBoundsPadding(t *testing.T) {
	b := bounds{min: 3, max: 3}
	r := b.rng()
	assert.Less(t, r.Min, 3.0)
	assert.Greater(t, r.Max, 3.0)

	b = bounds{min: -1, max: 2}
	r = b.rng()
	assert.Equal(t, -1.0, r.Min)
	assert.Equal(t, 2.0, r.Max)
}

func TestHeatmap(t *testing.T) {
	g, h := testHistory(t)
	require.Len(t, h.Snapshots, 3)

	hm := &Heatmap{X: g.X, Tau: h.SnapshotTau, Snapshots: h.Snapshots}
	img, err := hm.Image()
	require.NoError(t, err)
	assert.Equal(t, heatWidth, img.Bounds().Dx())
	assert.Equal(t, heatHeight, img.Bounds().Dy())

	// left edge of the domain is far from the packet
	assert.Equal(t, Viridis(0), img.RGBAAt(marginLeft, marginTop))
	// colorbar top is the peak colour
	assert.Equal(t, Viridis(1), img.RGBAAt(heatWidth-marginRight+25, marginTop))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(heatWidth-5, heatHeight-5))
}

func TestHeatmap_Errors(t *testing.T) {
	_, err := (&Heatmap{}).Image()
	assert.ErrorIs(t, err, ErrNoData)

	hm := &Heatmap{X: []float64{0, 1, 2}, Snapshots: []dynamo.Wavefunction{{1, 1}}}
	_, err = hm.Image()
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestMovie(t *testing.T) {
	g, h := testHistory(t)
	path := filepath.Join(t.TempDir(), MovieFile)

	require.NoError(t, Movie(path, g.X, h.SnapshotTau, h.Snapshots, 0))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	assert.ErrorIs(t, Movie(path, g.X, nil, nil, 1), ErrNoData)
}

func TestTerminalPlot(t *testing.T) {
	out := TerminalPlot("Energy", []float64{3, 2, math.NaN(), 1}, 20, 5)
	assert.Contains(t, out, "Energy")

	out = TerminalPlot("Empty", []float64{math.NaN()}, 20, 5)
	assert.Equal(t, "Empty: no finite data\n", out)

	long := make([]float64, 500)
	for i := range long {
		long[i] = float64(i)
	}
	assert.Len(t, decimate(long, 50), 50)

	report := TerminalReport([]string{"a", "b"}, [][]float64{{1, 2}, {2, 1}}, 10, 3)
	assert.True(t, strings.Contains(report, "a") && strings.Contains(report, "b"))
}

func TestPlotHistory(t *testing.T) {
	g, h := testHistory(t)
	dir := filepath.Join(t.TempDir(), "plots")

	p := Plotter{Movie: true, FPS: 2}
	require.NoError(t, p.PlotHistory(dir, 0.001, g.X, h))

	for _, name := range []string{EntropyEnergyFile, TemperatureFile, ExpectationFile, HeatmapFile, MovieFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestPlotHistory_NoSnapshots(t *testing.T) {
	g, h := testHistory(t)
	h.Snapshots = nil
	h.SnapshotTau = nil
	dir := t.TempDir()

	require.NoError(t, Plotter{}.PlotHistory(dir, 0.001, g.X, h))
	assert.FileExists(t, filepath.Join(dir, EntropyEnergyFile))
	assert.NoFileExists(t, filepath.Join(dir, HeatmapFile))
}
