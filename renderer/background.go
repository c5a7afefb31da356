package renderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/pthm-cable/weatherloop/config"
)

// BackgroundMode selects what export frames are drawn over.
type BackgroundMode string

const (
	BackgroundTransparent BackgroundMode = config.BackgroundTransparent
	BackgroundSolid       BackgroundMode = config.BackgroundSolid
	BackgroundChecker     BackgroundMode = config.BackgroundChecker
)

// Checker colours.
var (
	CheckerDark  = color.RGBA{R: 0x1f, G: 0x1f, B: 0x1f, A: 0xff}
	CheckerLight = color.RGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}
)

// Background fills a frame before particles are drawn.
type Background struct {
	Mode  BackgroundMode
	Color color.RGBA
	Tile  int

	checker *image.RGBA
}

// NewBackground returns a background for mode. Unknown modes are transparent.
func NewBackground(mode BackgroundMode, c color.RGBA, tile int) *Background {
	bg := &Background{Mode: mode, Color: c, Tile: tile}
	if mode == BackgroundChecker {
		bg.checker = CheckerTile(tile)
	}
	return bg
}

// BackgroundFor returns the export background configured in cfg.
func BackgroundFor(cfg *config.Config) *Background {
	c, _ := config.ParseHexColor(cfg.Export.BackgroundColor)
	mode := BackgroundMode(cfg.Export.Background)
	if cfg.Export.Background == config.BackgroundBlack {
		mode, c = BackgroundSolid, color.RGBA{A: 0xff}
	}
	return NewBackground(mode, c, cfg.Export.CheckerTile)
}

// CheckerTile builds the 2*tile square pattern cell: dark base with light
// top-left and bottom-right quadrants.
func CheckerTile(tile int) *image.RGBA {
	if tile < 1 {
		tile = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, 2*tile, 2*tile))
	draw.Draw(img, img.Bounds(), image.NewUniform(CheckerDark), image.Point{}, draw.Src)
	light := image.NewUniform(CheckerLight)
	draw.Draw(img, image.Rect(0, 0, tile, tile), light, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(tile, tile, 2*tile, 2*tile), light, image.Point{}, draw.Src)
	return img
}

// Draw fills dst. Transparent clears it.
func (bg *Background) Draw(dst *image.RGBA) {
	switch bg.Mode {
	case BackgroundSolid:
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg.Color), image.Point{}, draw.Src)
	case BackgroundChecker:
		step := bg.checker.Bounds().Dx()
		b := dst.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y += step {
			for x := b.Min.X; x < b.Max.X; x += step {
				draw.Draw(dst, image.Rect(x, y, x+step, y+step), bg.checker, image.Point{}, draw.Src)
			}
		}
	default:
		clear(dst.Pix)
	}
}

// Opaque reports whether every pixel the background draws is opaque.
func (bg *Background) Opaque() bool {
	return bg.Mode == BackgroundSolid || bg.Mode == BackgroundChecker
}
