// Package camera fits the rendered frame into the preview viewport.
package camera

// Camera maps frame pixels onto a screen viewport. At the fit zoom the whole
// frame is visible and centred; larger zooms inspect part of it.
type Camera struct {
	// Position is the frame point shown at the viewport centre
	X, Y float32

	// Zoom level in screen pixels per frame pixel
	Zoom float32

	// Viewport rectangle on screen
	ViewportX, ViewportY float32
	ViewportW, ViewportH float32

	// Frame dimensions
	FrameW, FrameH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// maxZoomFactor bounds magnification relative to the fit zoom.
const maxZoomFactor = 8

// New creates a camera with a viewport at the screen origin, fitted to the
// frame.
func New(viewportW, viewportH, frameW, frameH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		FrameW:    frameW,
		FrameH:    frameH,
	}
	c.updateLimits()
	c.Reset()
	return c
}

// FitZoom returns the largest zoom at which the whole frame is visible.
func (c *Camera) FitZoom() float32 {
	if c.FrameW <= 0 || c.FrameH <= 0 {
		return 1
	}
	return min(c.ViewportW/c.FrameW, c.ViewportH/c.FrameH)
}

func (c *Camera) updateLimits() {
	fit := c.FitZoom()
	c.MinZoom = fit
	c.MaxZoom = fit * maxZoomFactor
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	if c.Zoom > c.MaxZoom {
		c.Zoom = c.MaxZoom
	}
}

// WorldToScreen converts frame coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportX + c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportY + c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to frame coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportX-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportY-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// InViewport reports whether a screen point lies inside the viewport.
func (c *Camera) InViewport(sx, sy float32) bool {
	return sx >= c.ViewportX && sx < c.ViewportX+c.ViewportW &&
		sy >= c.ViewportY && sy < c.ViewportY+c.ViewportH
}

// FrameRect returns the screen rectangle covered by the whole frame. Parts
// may fall outside the viewport when zoomed in.
func (c *Camera) FrameRect() (x, y, w, h float32) {
	x, y = c.WorldToScreen(0, 0)
	return x, y, c.FrameW * c.Zoom, c.FrameH * c.Zoom
}

// SetViewport moves and resizes the viewport and refits the zoom limits.
func (c *Camera) SetViewport(x, y, w, h float32) {
	if x == c.ViewportX && y == c.ViewportY && w == c.ViewportW && h == c.ViewportH {
		return
	}
	wasFit := c.Zoom == c.MinZoom
	c.ViewportX, c.ViewportY = x, y
	c.ViewportW, c.ViewportH = w, h
	c.updateLimits()
	if wasFit {
		c.Zoom = c.MinZoom
	}
	c.clampPosition()
}

// SetFrame changes the frame dimensions and resets the view.
func (c *Camera) SetFrame(w, h float32) {
	if w == c.FrameW && h == c.FrameH {
		return
	}
	c.FrameW, c.FrameH = w, h
	c.updateLimits()
	c.Reset()
}

// Pan moves the camera by the given delta in screen pixels. The view centre
// stays inside the frame.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampPosition()
}

func (c *Camera) clampPosition() {
	c.X = clamp(c.X, 0, c.FrameW)
	c.Y = clamp(c.Y, 0, c.FrameH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	if c.Zoom == c.MinZoom {
		c.X, c.Y = c.FrameW/2, c.FrameH/2
	}
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centres the frame at the fit zoom.
func (c *Camera) Reset() {
	c.X = c.FrameW / 2
	c.Y = c.FrameH / 2
	c.Zoom = c.MinZoom
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
