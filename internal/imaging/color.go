package imaging

import (
	"bytes"
	"image"
	"math"
)

var namedColors = map[string][3]float64{
	"Red":     {255, 0, 0},
	"Green":   {0, 255, 0},
	"Blue":    {0, 0, 255},
	"Yellow":  {255, 255, 0},
	"Cyan":    {0, 255, 255},
	"Magenta": {255, 0, 255},
	"White":   {255, 255, 255},
	"Black":   {0, 0, 0},
	"Gray":    {128, 128, 128},
	"Orange":  {255, 165, 0},
	"Purple":  {128, 0, 128},
	"Brown":   {165, 42, 42},
	"Gold":    {255, 215, 0},
	"Beige":   {245, 245, 220},
}

// DominantColor names the mean color of the image. Returns "" when the
// image cannot be decoded; analytics treats that as no data.
func DominantColor(data []byte) string {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	bounds := src.Bounds()
	var rSum, gSum, bSum, n float64
	// Sample a grid rather than every pixel; the mean is stable enough.
	stepX := bounds.Dx() / 64
	stepY := bounds.Dy() / 64
	if stepX < 1 {
		stepX = 1
	}
	if stepY < 1 {
		stepY = 1
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := src.At(x, y).RGBA()
			rSum += float64(r >> 8)
			gSum += float64(g >> 8)
			bSum += float64(b >> 8)
			n++
		}
	}
	if n == 0 {
		return ""
	}
	return NearestColorName(rSum/n, gSum/n, bSum/n)
}

// NearestColorName maps an RGB triple to the closest named color by
// Euclidean distance.
func NearestColorName(r, g, b float64) string {
	closest := "Unknown"
	minDist := math.Inf(1)
	for name, rgb := range namedColors {
		dist := math.Sqrt(
			(r-rgb[0])*(r-rgb[0]) +
				(g-rgb[1])*(g-rgb[1]) +
				(b-rgb[2])*(b-rgb[2]))
		if dist < minDist {
			minDist = dist
			closest = name
		}
	}
	return closest
}
