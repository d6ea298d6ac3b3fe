package viz

import (
	"image/color"
	"math"
)

// viridis anchors, evenly spaced on [0, 1]
var viridis = []color.RGBA{
	{68, 1, 84, 255},
	{72, 40, 120, 255},
	{62, 74, 137, 255},
	{49, 104, 142, 255},
	{38, 130, 142, 255},
	{31, 158, 137, 255},
	{53, 183, 121, 255},
	{109, 205, 89, 255},
	{180, 222, 44, 255},
	{253, 231, 37, 255},
}

var missingColor = color.RGBA{128, 128, 128, 255}

// Viridis maps t in [0, 1] onto the viridis colormap. Values outside the
// interval are clamped; NaN maps to gray.
func Viridis(t float64) color.RGBA {
	if math.IsNaN(t) {
		return missingColor
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(viridis)-1)
	i := int(pos)
	if i >= len(viridis)-1 {
		return viridis[len(viridis)-1]
	}
	f := pos - float64(i)
	a, b := viridis[i], viridis[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}
