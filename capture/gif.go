package capture

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"
)

// gifAlphaCutoff is the straight alpha below which a pixel becomes the
// transparent palette entry.
const gifAlphaCutoff = 8

// grayPalette holds a transparent entry at index 0 followed by 255 grays.
var grayPalette = func() color.Palette {
	p := make(color.Palette, 256)
	p[0] = color.RGBA{}
	for i := 1; i < 256; i++ {
		v := uint8((i - 1) * 255 / 254)
		p[i] = color.RGBA{R: v, G: v, B: v, A: 0xff}
	}
	return p
}()

// GIFSink encodes frames as a looping animated GIF with 1-bit transparency.
// Frames are buffered and written on Close.
type GIFSink struct {
	dst    io.Writer
	spec   StreamSpec
	anim   *gif.GIF
	delay  int
	frames int
}

// NewGIFSink returns a GIF sink writing to dst.
func NewGIFSink(dst io.Writer) *GIFSink {
	return &GIFSink{dst: dst}
}

// Start implements Sink.
func (s *GIFSink) Start(spec StreamSpec) error {
	if spec.FPS < 1 {
		return fmt.Errorf("gif: fps must be >= 1, got %d", spec.FPS)
	}
	s.spec = spec
	s.delay = GIFDelay(spec.FPS)
	s.anim = &gif.GIF{
		Config: image.Config{
			ColorModel: grayPalette,
			Width:      spec.Width,
			Height:     spec.Height,
		},
		LoopCount: 0,
	}
	s.frames = 0
	return nil
}

// WriteFrame implements Sink.
func (s *GIFSink) WriteFrame(img *image.RGBA) error {
	if s.anim == nil {
		return ErrNotStarted
	}
	if err := checkFrame(s.spec, img); err != nil {
		return err
	}
	s.anim.Image = append(s.anim.Image, toGray(img))
	s.anim.Delay = append(s.anim.Delay, s.delay)
	s.anim.Disposal = append(s.anim.Disposal, gif.DisposalBackground)
	s.frames++
	return nil
}

// Frames implements Sink.
func (s *GIFSink) Frames() int {
	return s.frames
}

// Close implements Sink.
func (s *GIFSink) Close() error {
	if s.anim == nil {
		return ErrNotStarted
	}
	anim := s.anim
	s.anim = nil
	if err := gif.EncodeAll(s.dst, anim); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	return nil
}

// Abort implements Sink.
func (s *GIFSink) Abort() {
	s.anim = nil
}

// GIFDelay returns the per-frame delay in hundredths of a second.
func GIFDelay(fps int) int {
	d := int(math.Round(100 / float64(fps)))
	if d < 1 {
		return 1
	}
	return d
}

// toGray maps a premultiplied RGBA frame onto grayPalette. Visible pixels
// keep their luma over black.
func toGray(img *image.RGBA) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), grayPalette)
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := src[4*x], src[4*x+1], src[4*x+2], src[4*x+3]
			if a < gifAlphaCutoff {
				dst[x] = 0
				continue
			}
			luma := (299*uint32(r) + 587*uint32(g) + 114*uint32(bl) + 500) / 1000
			dst[x] = uint8(1 + luma*254/255)
		}
	}
	return out
}
