package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 1920, 1080)

	// Should be centered on the frame at the fit zoom
	if cam.X != 960 || cam.Y != 540 {
		t.Errorf("expected camera at (960, 540), got (%f, %f)", cam.X, cam.Y)
	}
	if math.Abs(float64(cam.Zoom)-2.0/3) > 1e-6 {
		t.Errorf("expected zoom 2/3, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetViewport(320, 0, 1280, 720)

	// Frame centre should map to viewport centre
	sx, sy := cam.WorldToScreen(640, 360)
	if math.Abs(float64(sx-960)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen (960, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 1920, 1080)
	cam.SetViewport(300, 20, 1280, 720)
	cam.ZoomBy(2)
	cam.Pan(40, -25)

	testCases := []struct{ sx, sy float32 }{
		{940, 380},  // centre
		{310, 30},   // top-left
		{1500, 700}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestFitLetterboxes(t *testing.T) {
	tests := []struct {
		name     string
		vw, vh   float32
		fw, fh   float32
		wantZoom float32
		wantX    float32
		wantY    float32
		wantW    float32
		wantH    float32
	}{
		{"same aspect", 640, 360, 1280, 720, 0.5, 0, 0, 640, 360},
		{"pillarbox", 800, 360, 1280, 720, 0.5, 80, 0, 640, 360},
		{"letterbox", 640, 600, 1280, 720, 0.5, 0, 120, 640, 360},
		{"upscale small frame", 640, 640, 64, 32, 10, 0, 160, 640, 320},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cam := New(tc.vw, tc.vh, tc.fw, tc.fh)
			if math.Abs(float64(cam.Zoom-tc.wantZoom)) > 1e-6 {
				t.Errorf("zoom = %f, want %f", cam.Zoom, tc.wantZoom)
			}
			x, y, w, h := cam.FrameRect()
			if math.Abs(float64(x-tc.wantX)) > 0.01 || math.Abs(float64(y-tc.wantY)) > 0.01 ||
				math.Abs(float64(w-tc.wantW)) > 0.01 || math.Abs(float64(h-tc.wantH)) > 0.01 {
				t.Errorf("frame rect = (%f, %f, %f, %f), want (%f, %f, %f, %f)",
					x, y, w, h, tc.wantX, tc.wantY, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	if cam.MinZoom != 0.5 || cam.MaxZoom != 4.0 {
		t.Errorf("expected zoom range [0.5, 4], got [%f, %f]", cam.MinZoom, cam.MaxZoom)
	}

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0) // Above max
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}
}

func TestZoomOutRecentres(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.ZoomBy(3)
	cam.Pan(300, 100)

	cam.SetZoom(cam.MinZoom)
	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected centred view at fit zoom, got (%f, %f)", cam.X, cam.Y)
	}
}

func TestPanStaysInFrame(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.ZoomBy(2)

	cam.Pan(-10000, 0)
	if cam.X != 0 {
		t.Errorf("expected X clamped to 0, got %f", cam.X)
	}
	cam.Pan(0, 10000)
	if cam.Y != 720 {
		t.Errorf("expected Y clamped to 720, got %f", cam.Y)
	}
}

func TestSetFrameRefits(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.ZoomBy(2)

	cam.SetFrame(640, 360)
	if cam.Zoom != 2 || cam.X != 320 || cam.Y != 180 {
		t.Errorf("expected fit zoom 2 at (320, 180), got %f at (%f, %f)", cam.Zoom, cam.X, cam.Y)
	}
}

func TestSetViewportKeepsFit(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetViewport(0, 0, 640, 360)
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom to follow the fit, got %f", cam.Zoom)
	}
}

func TestInViewport(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.SetViewport(320, 0, 1280, 720)

	if cam.InViewport(100, 100) {
		t.Error("panel area reported inside viewport")
	}
	if !cam.InViewport(400, 100) {
		t.Error("viewport point reported outside")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2.5)
	cam.Pan(100, 100)

	cam.Reset()

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected position (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
}
