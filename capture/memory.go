package capture

import (
	"image"
)

// Memory is a Sink that keeps a copy of every frame.
type Memory struct {
	Spec   StreamSpec
	Images []*image.RGBA
	Closed bool

	started bool
}

// Start implements Sink.
func (m *Memory) Start(spec StreamSpec) error {
	m.Spec = spec
	m.Images = m.Images[:0]
	m.Closed = false
	m.started = true
	return nil
}

// WriteFrame implements Sink.
func (m *Memory) WriteFrame(img *image.RGBA) error {
	if !m.started {
		return ErrNotStarted
	}
	if err := checkFrame(m.Spec, img); err != nil {
		return err
	}
	b := img.Bounds()
	cp := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		copy(cp.Pix[cp.PixOffset(b.Min.X, y):cp.PixOffset(b.Max.X, y)], img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)])
	}
	m.Images = append(m.Images, cp)
	return nil
}

// Frames implements Sink.
func (m *Memory) Frames() int {
	return len(m.Images)
}

// Close implements Sink.
func (m *Memory) Close() error {
	if !m.started {
		return ErrNotStarted
	}
	m.started = false
	m.Closed = true
	return nil
}

// Abort implements Sink.
func (m *Memory) Abort() {
	m.started = false
	m.Images = nil
}
