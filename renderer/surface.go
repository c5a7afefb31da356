// Package renderer draws particle batches onto raster surfaces.
//
// Rendering is stateless per call: everything a frame depends on lives in
// the particle batch, the parameters and the time t. Preview and export
// draw through the same functions, so a frame at t looks the same in both.
package renderer

import (
	"image"
	"image/color"
	"math"
)

// Surface is a 2D drawing target. Coordinates are in pixels with the origin
// at the top-left; shapes may extend past the bounds and are clipped.
type Surface interface {
	Bounds() image.Rectangle
	// Clear resets every pixel to transparent.
	Clear()
	// StrokeLine draws a round-capped segment.
	StrokeLine(x1, y1, x2, y2, width float64, c color.NRGBA)
	FillCircle(x, y, r float64, c color.NRGBA)
	// Blur applies a uniform blur of the given pixel radius. Zero is a no-op.
	Blur(radius int)
}

// White returns opaque-white paint at alpha a, clamped to [0, 1].
func White(a float64) color.NRGBA {
	return color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(clamp01(a) * 255))}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
