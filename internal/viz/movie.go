package viz

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/icza/mjpeg"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/entropic/internal/dynamo"
)

const (
	movieWidth  = 640
	movieHeight = 360
	DefaultFPS  = 4
)

// Movie writes one MJPEG frame per snapshot showing the density profile
// at that τ. The y axis is shared by all frames.
func Movie(path string, x, tau []float64, snaps []dynamo.Wavefunction, fps int) error {
	if len(snaps) == 0 {
		return ErrNoData
	}
	if fps <= 0 {
		fps = DefaultFPS
	}

	rows, peak := densities(snaps)

	aw, err := mjpeg.New(path, movieWidth, movieHeight, int32(fps))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	var pngBuf, jpgBuf bytes.Buffer
	opts := &jpeg.Options{Quality: 90}

	for i, rho := range rows {
		title := fmt.Sprintf("frame %d", i)
		if i < len(tau) {
			title = fmt.Sprintf("tau = %.4f", tau[i])
		}
		c := &Chart{
			Title:  title,
			XLabel: "x",
			X:      x,
			Series: []Series{{Name: "|psi|^2", Y: rho, Color: chart.ColorBlue}},
			Width:  movieWidth,
			Height: movieHeight,
		}

		pngBuf.Reset()
		if err := c.renderWithY(&pngBuf, 0, peak*1.05); err != nil {
			aw.Close()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		img, err := png.Decode(&pngBuf)
		if err != nil {
			aw.Close()
			return fmt.Errorf("frame %d: %w", i, err)
		}

		jpgBuf.Reset()
		if err := jpeg.Encode(&jpgBuf, img, opts); err != nil {
			aw.Close()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := aw.AddFrame(jpgBuf.Bytes()); err != nil {
			aw.Close()
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	return aw.Close()
}
