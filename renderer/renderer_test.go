package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/systems"
)

type op struct {
	kind   string // line | circle | blur | clear
	x1, y1 float64
	x2, y2 float64
	width  float64
	c      color.NRGBA
	radius int
}

// recorder is a Surface that records draw calls.
type recorder struct {
	bounds image.Rectangle
	ops    []op
}

func newRecorder(w, h int) *recorder {
	return &recorder{bounds: image.Rect(0, 0, w, h)}
}

func (r *recorder) Bounds() image.Rectangle { return r.bounds }
func (r *recorder) Clear()                  { r.ops = append(r.ops, op{kind: "clear"}) }
func (r *recorder) Blur(radius int)         { r.ops = append(r.ops, op{kind: "blur", radius: radius}) }

func (r *recorder) StrokeLine(x1, y1, x2, y2, width float64, c color.NRGBA) {
	r.ops = append(r.ops, op{kind: "line", x1: x1, y1: y1, x2: x2, y2: y2, width: width, c: c})
}

func (r *recorder) FillCircle(x, y, radius float64, c color.NRGBA) {
	r.ops = append(r.ops, op{kind: "circle", x1: x, y1: y, width: radius, c: c})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func singleBatch(kind components.Kind, p components.Particle) *components.Batch {
	return &components.Batch{Kind: kind, Width: 200, Height: 100, Particles: []components.Particle{p}}
}

func TestWhite(t *testing.T) {
	tests := []struct {
		alpha float64
		want  uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{-1, 0},
		{3, 255},
	}
	for _, tc := range tests {
		if got := White(tc.alpha); got.A != tc.want || got.R != 255 {
			t.Errorf("White(%v) = %v, want alpha %d", tc.alpha, got, tc.want)
		}
	}
}

func TestDrawRainStreakGeometry(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Seamless = false
	cfg.Rain.SpeedJitter = 0 // no gust
	cfg.Rain.StreakLen = 20
	cfg.Rain.Thickness = 2

	// straight down, phase chosen so the bead stays off at t=0
	p := components.Particle{X0: 50, Y0: 50, VX: 0, VY: 100, Size: 1.5, Alpha: 0.5, LenScale: 1, ThickScale: 1, Phase: 0}
	b := singleBatch(components.KindRain, p)
	m := systems.NewMotion(b.Kind, b.Width, b.Height, cfg)

	rec := newRecorder(200, 100)
	DrawRain(rec, b, &cfg.Rain, m, 0)

	if rec.count("line") != 2 || rec.count("circle") != 0 {
		t.Fatalf("ops = %+v, want two lines and no bead", rec.ops)
	}
	tail, head := rec.ops[0], rec.ops[1]

	if math.Abs(tail.x1-50) > 1e-6 || math.Abs(tail.y1-50) > 1e-6 {
		t.Errorf("streak head at (%v, %v), want (50, 50)", tail.x1, tail.y1)
	}
	if math.Abs(tail.y2-30) > 1e-4 || math.Abs(tail.x2-50) > 1e-6 {
		t.Errorf("tail end at (%v, %v), want (50, 30)", tail.x2, tail.y2)
	}
	if math.Abs(head.y2-43) > 1e-4 {
		t.Errorf("head end y = %v, want 43", head.y2)
	}
	if tail.width != 3 || math.Abs(head.width-2.55) > 1e-9 {
		t.Errorf("widths = %v / %v, want 3 / 2.55", tail.width, head.width)
	}
	if tail.c.A != White(0.5*0.18).A || head.c.A != White(0.45).A {
		t.Errorf("alphas = %d / %d", tail.c.A, head.c.A)
	}
}

func TestDrawRainBead(t *testing.T) {
	cfg := config.Default()
	cfg.Rain.SpeedJitter = 0

	// sin(pi/2) = 1 puts the phase wave at its peak
	p := components.Particle{X0: 50, Y0: 50, VY: 100, Size: 1, Alpha: 1, LenScale: 1, ThickScale: 1, Sparkle: 1, Phase: math.Pi / 2}
	b := singleBatch(components.KindRain, p)
	m := systems.NewMotion(b.Kind, b.Width, b.Height, cfg)

	rec := newRecorder(200, 100)
	DrawRain(rec, b, &cfg.Rain, m, 0)

	if rec.count("circle") != 1 {
		t.Fatalf("bead count = %d, want 1", rec.count("circle"))
	}
	bead := rec.ops[2]
	// head alpha saturates at 1, bead at 0.6 of it
	if bead.c.A != White(0.6).A {
		t.Errorf("bead alpha = %d, want %d", bead.c.A, White(0.6).A)
	}
	if bead.width < 0.6 {
		t.Errorf("bead radius = %v, want >= 0.6", bead.width)
	}
}

func TestDrawSnowGlow(t *testing.T) {
	cfg := config.Default()
	p := components.Particle{X0: 100, Y0: 50, VY: 0, Size: 2, Alpha: 0.8}
	b := singleBatch(components.KindSnow, p)
	m := systems.NewMotion(b.Kind, b.Width, b.Height, cfg)

	cfg.Snow.Glow = 3
	rec := newRecorder(200, 100)
	DrawSnow(rec, b, &cfg.Snow, m, 0)
	if rec.count("circle") != 2 {
		t.Fatalf("circles = %d, want disc and halo", rec.count("circle"))
	}
	disc, halo := rec.ops[0], rec.ops[1]
	if disc.width != 2 || halo.width != 6 {
		t.Errorf("radii = %v / %v, want 2 / 6", disc.width, halo.width)
	}
	if halo.c.A != White(0.8*0.35).A {
		t.Errorf("halo alpha = %d, want %d", halo.c.A, White(0.8*0.35).A)
	}

	cfg.Snow.Glow = 0
	rec = newRecorder(200, 100)
	DrawSnow(rec, b, &cfg.Snow, m, 0)
	if rec.count("circle") != 1 {
		t.Errorf("circles with glow off = %d, want 1", rec.count("circle"))
	}
}

func TestRenderBlurPass(t *testing.T) {
	tests := []struct {
		name string
		kind components.Kind
		blur float64
		want int
	}{
		{"rain no blur", components.KindRain, 0, 0},
		{"rain fractional floors", components.KindRain, 2.7, 2},
		{"snow", components.KindSnow, 1.2, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Rain.Blur = tc.blur
			cfg.Snow.Blur = tc.blur
			b := systems.NewBatch(tc.kind, 200, 100, 1, cfg)
			m := systems.NewMotion(b.Kind, b.Width, b.Height, cfg)

			rec := newRecorder(200, 100)
			Render(rec, b, cfg, m, 0.5)
			last := rec.ops[len(rec.ops)-1]
			if last.kind != "blur" || last.radius != tc.want {
				t.Errorf("last op = %+v, want blur %d", last, tc.want)
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	cfg := config.Default()
	b := systems.NewBatch(components.KindRain, 320, 180, 7, cfg)
	m := systems.NewMotion(b.Kind, b.Width, b.Height, cfg)

	a := NewRaster(320, 180)
	c := NewRaster(320, 180)
	Render(a, b, cfg, m, 1.25)
	Render(c, b, cfg, m, 1.25)

	if string(a.Image().Pix) != string(c.Image().Pix) {
		t.Error("same batch and time rendered different frames")
	}
}

func TestRasterDrawsAndClears(t *testing.T) {
	r := NewRaster(64, 64)
	r.FillCircle(32, 32, 10, White(1))

	center := r.Image().RGBAAt(32, 32)
	if center.A != 255 || center.R != 255 {
		t.Errorf("centre pixel = %v, want opaque white", center)
	}
	if corner := r.Image().RGBAAt(0, 0); corner.A != 0 {
		t.Errorf("corner pixel = %v, want transparent", corner)
	}

	r.Clear()
	if got := r.Image().RGBAAt(32, 32); got.A != 0 {
		t.Errorf("after clear = %v, want transparent", got)
	}
}

func TestRasterStrokeClipsOffscreen(t *testing.T) {
	r := NewRaster(32, 32)
	r.StrokeLine(-100, -100, -50, -50, 4, White(1))
	for i, v := range r.Image().Pix {
		if v != 0 {
			t.Fatalf("pixel byte %d = %d, want untouched", i, v)
		}
	}
}

func TestRasterBlurSpreads(t *testing.T) {
	r := NewRaster(64, 64)
	r.FillCircle(32, 32, 3, White(1))
	before := r.Image().RGBAAt(32, 40).A

	r.Blur(3)
	after := r.Image().RGBAAt(32, 40).A
	if after <= before {
		t.Errorf("alpha 8px from the disc = %d after blur, want more than %d", after, before)
	}
	if peak := r.Image().RGBAAt(32, 32).A; peak == 255 {
		t.Error("blur left the disc centre fully opaque")
	}
}

func TestCheckerTile(t *testing.T) {
	img := CheckerTile(24)
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 48 {
		t.Fatalf("tile size = %v, want 48x48", img.Bounds())
	}
	if img.RGBAAt(0, 0) != CheckerLight || img.RGBAAt(30, 30) != CheckerLight {
		t.Error("light quadrants misplaced")
	}
	if img.RGBAAt(30, 0) != CheckerDark || img.RGBAAt(0, 30) != CheckerDark {
		t.Error("dark quadrants misplaced")
	}
}

func TestBackgroundDraw(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 60))

	NewBackground(BackgroundSolid, color.RGBA{R: 10, G: 20, B: 30, A: 255}, 24).Draw(dst)
	if got := dst.RGBAAt(99, 59); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("solid pixel = %v", got)
	}

	NewBackground(BackgroundChecker, color.RGBA{}, 24).Draw(dst)
	// tiles repeat every 48px
	if dst.RGBAAt(5, 5) != dst.RGBAAt(53, 53) || dst.RGBAAt(5, 5) != CheckerLight {
		t.Errorf("checker does not repeat: %v vs %v", dst.RGBAAt(5, 5), dst.RGBAAt(53, 53))
	}

	NewBackground(BackgroundTransparent, color.RGBA{}, 24).Draw(dst)
	if got := dst.RGBAAt(50, 30); got.A != 0 {
		t.Errorf("transparent pixel = %v", got)
	}
}

func TestBackgroundFor(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Background = config.BackgroundBlack
	bg := BackgroundFor(cfg)
	if bg.Mode != BackgroundSolid || bg.Color != (color.RGBA{A: 255}) || !bg.Opaque() {
		t.Errorf("black background = %+v", bg)
	}

	cfg.Export.Background = config.BackgroundTransparent
	if BackgroundFor(cfg).Opaque() {
		t.Error("transparent background reports opaque")
	}
}
