package renderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Raster is a CPU Surface backed by an *image.RGBA.
type Raster struct {
	img *image.RGBA
	dc  *gg.Context
}

// NewRaster creates a transparent w x h raster.
func NewRaster(w, h int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	dc.SetLineCapRound()
	return &Raster{img: img, dc: dc}
}

// Image returns the backing frame. It is reused by the next draw.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Bounds implements Surface.
func (r *Raster) Bounds() image.Rectangle {
	return r.img.Bounds()
}

// Clear implements Surface.
func (r *Raster) Clear() {
	clear(r.img.Pix)
}

// StrokeLine implements Surface.
func (r *Raster) StrokeLine(x1, y1, x2, y2, width float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

// FillCircle implements Surface.
func (r *Raster) FillCircle(x, y, radius float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	r.dc.SetColor(c)
	r.dc.DrawCircle(x, y, radius)
	r.dc.Fill()
}

// Blur implements Surface with a Gaussian of sigma radius.
func (r *Raster) Blur(radius int) {
	if radius <= 0 {
		return
	}
	blurred := imaging.Blur(r.img, float64(radius))
	draw.Draw(r.img, r.img.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
}
