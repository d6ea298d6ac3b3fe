package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/entropic/internal/dynamo"
)

const (
	heatWidth   = 720
	heatHeight  = 480
	marginLeft  = 80
	marginRight = 110
	marginTop   = 40
	marginBot   = 50
	barWidth    = 20
)

// Heatmap is |ψ(x,τ)|² over the recorded snapshots.
type Heatmap struct {
	Title     string
	X         []float64
	Tau       []float64
	Snapshots []dynamo.Wavefunction
}

func densities(snaps []dynamo.Wavefunction) ([][]float64, float64) {
	rows := make([][]float64, len(snaps))
	peak := 0.0
	for i, snap := range snaps {
		rho := make([]float64, len(snap))
		for j, v := range snap {
			rho[j] = real(v)*real(v) + imag(v)*imag(v)
			if finite(rho[j]) {
				peak = math.Max(peak, rho[j])
			}
		}
		rows[i] = rho
	}
	if peak == 0 {
		peak = 1
	}
	return rows, peak
}

// Image rasterises the heatmap. Rows run from the first snapshot at the
// top to the last at the bottom.
func (h *Heatmap) Image() (*image.RGBA, error) {
	if len(h.Snapshots) == 0 {
		return nil, ErrNoData
	}
	n := len(h.Snapshots[0])
	if n != len(h.X) {
		return nil, fmt.Errorf("%w: snapshot has %d points, grid %d", dynamo.ErrDimensionMismatch, n, len(h.X))
	}

	img := image.NewRGBA(image.Rect(0, 0, heatWidth, heatHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	rows, peak := densities(h.Snapshots)
	plotW := heatWidth - marginLeft - marginRight
	plotH := heatHeight - marginTop - marginBot

	for py := 0; py < plotH; py++ {
		row := rows[py*len(rows)/plotH]
		for px := 0; px < plotW; px++ {
			v := row[px*n/plotW]
			img.SetRGBA(marginLeft+px, marginTop+py, Viridis(v/peak))
		}
	}

	barX := heatWidth - marginRight + 20
	for py := 0; py < plotH; py++ {
		c := Viridis(1 - float64(py)/float64(plotH-1))
		for px := 0; px < barWidth; px++ {
			img.SetRGBA(barX+px, marginTop+py, c)
		}
	}

	black := color.Black
	title := h.Title
	if title == "" {
		title = "Wavefunction Collapse"
	}
	addLabel(img, marginLeft+plotW/2-len(title)*7/2, marginTop-15, title, black)

	bottom := marginTop + plotH
	addLabel(img, marginLeft, bottom+18, fmt.Sprintf("%.3g", h.X[0]), black)
	last := fmt.Sprintf("%.3g", h.X[n-1])
	addLabel(img, marginLeft+plotW-len(last)*7, bottom+18, last, black)
	addLabel(img, marginLeft+plotW/2-3, bottom+36, "x", black)

	if len(h.Tau) > 0 {
		addLabel(img, 8, marginTop+10, fmt.Sprintf("%.3g", h.Tau[0]), black)
		addLabel(img, 8, bottom, fmt.Sprintf("%.3g", h.Tau[len(h.Tau)-1]), black)
	}
	addLabel(img, 8, marginTop+plotH/2, "tau", black)

	addLabel(img, barX+barWidth+4, marginTop+10, fmt.Sprintf("%.2g", peak), black)
	addLabel(img, barX+barWidth+4, bottom, "0", black)
	addLabel(img, barX-12, marginTop-15, "|psi|^2", black)

	return img, nil
}

// Render writes the heatmap as PNG.
func (h *Heatmap) Render(w io.Writer) error {
	img, err := h.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Save writes the heatmap PNG to path.
func (h *Heatmap) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := h.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func addLabel(img draw.Image, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
