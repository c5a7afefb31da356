package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
)

// circularDist returns the distance between a and b on a ring of length span.
func circularDist(a, b, span float64) float64 {
	d := mod(a-b, span)
	return math.Min(d, span-d)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		x, lo, hi float64
		want      float64
	}{
		{"inside", 50, 0, 100, 50},
		{"at min", 0, 0, 100, 0},
		{"at max wraps to min", 100, 0, 100, 0},
		{"past max", 250, 0, 100, 50},
		{"below min", -30, 0, 100, 70},
		{"far below min", -1030, 0, 100, 70},
		{"offset range", 1400, -40, 1320, 40},
		{"zero span", 12, 5, 5, 5},
		{"negative span", 12, 5, 1, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Wrap(tc.x, tc.lo, tc.hi); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Wrap(%v, %v, %v) = %v, want %v", tc.x, tc.lo, tc.hi, got, tc.want)
			}
		})
	}
}

func TestWrapIdempotent(t *testing.T) {
	for _, x := range []float64{-5000.5, -40, 0, 17.25, 1319.9, 99999} {
		once := Wrap(x, -40, 1320)
		if once < -40 || once >= 1320 {
			t.Errorf("Wrap(%v) = %v outside [-40, 1320)", x, once)
		}
		if twice := Wrap(once, -40, 1320); twice != once {
			t.Errorf("Wrap not idempotent at %v: %v then %v", x, once, twice)
		}
	}
}

func TestBounds(t *testing.T) {
	b := RainBounds(1280, 720, 34)
	if b.MinX != -68 || b.MaxX != 1348 || b.MinY != -68 || b.MaxY != 788 {
		t.Errorf("rain bounds = %+v, want margin 68", b)
	}
	if b := RainBounds(1280, 720, 10); b.MinX != -40 {
		t.Errorf("short streak margin = %v, want 40", -b.MinX)
	}
	s := SnowBounds(1280, 720)
	if s.Width() != 1360 || s.Height() != 800 {
		t.Errorf("snow spans = %vx%v, want 1360x800", s.Width(), s.Height())
	}
}

func TestRainGust(t *testing.T) {
	const period, jitter = 8.0, 220.0

	if g := RainGust(0, period, jitter); g != 0 {
		t.Errorf("gust at 0 = %v, want 0", g)
	}
	if g := RainGust(period, period, jitter); math.Abs(g) > 1e-9 {
		t.Errorf("gust at period = %v, want 0", g)
	}
	// two cycles per loop: first peak at T/8
	if g := RainGust(period/8, period, jitter); math.Abs(g-jitter*0.12) > 1e-9 {
		t.Errorf("gust peak = %v, want %v", g, jitter*0.12)
	}
}

func TestCloseAxis(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		span     float64
		period   float64
		wantV    float64
		wantLaps int
	}{
		{"small drift cancels", 5, 100, 8, 0, 0},
		{"zero stays zero", 0, 100, 8, 0, 0},
		{"half span rounds up", 6.25, 100, 8, 12.5, 1},
		{"negative rounds away", -6.25, 100, 8, -12.5, -1},
		{"exact multiple", 25, 100, 8, 25, 2},
		{"long travel rounds to nearest", 1750, 856, 8, 16 * 856.0 / 8, 16},
		{"negative long travel", -1750, 856, 8, -16 * 856.0 / 8, -16},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := CloseAxis(tc.base, tc.span, tc.period)
			if a.Laps != tc.wantLaps || math.Abs(a.Velocity-tc.wantV) > 1e-9 {
				t.Errorf("CloseAxis(%v, %v, %v) = %+v, want velocity %v laps %d",
					tc.base, tc.span, tc.period, a, tc.wantV, tc.wantLaps)
			}
			if a.Base != tc.base {
				t.Errorf("base = %v, want %v", a.Base, tc.base)
			}
		})
	}
}

func TestAxisOffset(t *testing.T) {
	const span, period = 100.0, 8.0
	a := CloseAxis(30, span, period)

	for _, v := range []float64{-40, 0, 30, 95} {
		if got := a.Offset(v, 0, period); got != 0 {
			t.Errorf("offset at 0 for v=%v = %v, want 0", v, got)
		}
		if got, want := a.Offset(v, period, period), float64(a.Laps)*span; math.Abs(got-want) > 1e-9 {
			t.Errorf("offset at period for v=%v = %v, want %v", v, got, want)
		}
		// deviation from the shared velocity survives at the loop start
		if got, want := a.Speed(v, 0, period), a.Velocity+v-a.Base; math.Abs(got-want) > 1e-9 {
			t.Errorf("speed at 0 for v=%v = %v, want %v", v, got, want)
		}
	}
}

func TestBatchSharesLapCount(t *testing.T) {
	tests := []struct {
		name   string
		kind   components.Kind
		mutate func(c *config.Config)
	}{
		{"snow default", components.KindSnow, func(c *config.Config) {}},
		{"snow light wind", components.KindSnow, func(c *config.Config) { c.Snow.Wind = 40 }},
		{"snow wind", components.KindSnow, func(c *config.Config) { c.Snow.Wind = 80 }},
		{"snow strong wind", components.KindSnow, func(c *config.Config) { c.Snow.Wind = -260 }},
		{"rain default", components.KindRain, func(c *config.Config) {}},
		{"rain small angle", components.KindRain, func(c *config.Config) { c.Rain.AngleDeg = 3 }},
		{"rain short loop", components.KindRain, func(c *config.Config) { c.Duration = 1.3 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			if err := cfg.Finalize(); err != nil {
				t.Fatal(err)
			}
			b := NewBatch(tc.kind, 1280, 720, 12345, cfg)
			m := NewMotion(b.Kind, b.Width, b.Height, cfg)
			T := m.Period
			spanX, spanY := m.Bounds.Width(), m.Bounds.Height()

			for i := range b.Particles {
				p := &b.Particles[i]
				lapsX := (m.X.Offset(p.VX, T, T) - m.X.Offset(p.VX, 0, T)) / spanX
				lapsY := (m.Y.Offset(p.VY, T, T) - m.Y.Offset(p.VY, 0, T)) / spanY
				if math.Abs(lapsX-float64(m.X.Laps)) > 1e-9 || math.Abs(lapsY-float64(m.Y.Laps)) > 1e-9 {
					t.Fatalf("particle %d travels (%v, %v) laps, want (%d, %d) like the batch",
						i, lapsX, lapsY, m.X.Laps, m.Y.Laps)
				}
			}
		})
	}
}

func TestClosureKeepsDriftSpread(t *testing.T) {
	for _, wind := range []float64{0, 40, 80} {
		cfg := config.Default()
		cfg.Snow.Wind = wind
		b := NewBatch(components.KindSnow, 1280, 720, 12345, cfg)
		m := NewMotion(b.Kind, b.Width, b.Height, cfg)

		// every flake is shifted by the same snap, so raw drift differences
		// survive and no flake is singled out
		shift := m.X.Velocity - m.X.Base
		moving := 0
		for i := range b.Particles {
			p := &b.Particles[i]
			got := m.X.Speed(p.VX, 0, m.Period)
			if math.Abs(got-(p.VX+shift)) > 1e-9 {
				t.Fatalf("wind %v: flake %d speed %v, want %v", wind, i, got, p.VX+shift)
			}
			if math.Abs(got) > 1e-6 {
				moving++
			}
		}
		if moving < b.Len()-1 {
			t.Errorf("wind %v: %d/%d flakes keep horizontal velocity", wind, moving, b.Len())
		}
	}
}

func TestRainLoopCloses(t *testing.T) {
	cfg := config.Default()
	b := NewBatch(components.KindRain, 1280, 720, cfg.Seed, cfg)
	m := NewMotion(b.Kind, b.Width, b.Height, cfg)
	T := m.Period

	g0 := RainGust(0, T, cfg.Rain.SpeedJitter)
	gT := RainGust(T, T, cfg.Rain.SpeedJitter)
	for i := range b.Particles {
		p := &b.Particles[i]
		x0, y0, _, _ := m.RainPosition(p, g0, 0)
		x1, y1, _, _ := m.RainPosition(p, gT, T)
		if circularDist(x0, x1, m.Bounds.Width()) > 1e-6 || circularDist(y0, y1, m.Bounds.Height()) > 1e-6 {
			t.Fatalf("particle %d: (%v, %v) at 0 but (%v, %v) at T", i, x0, y0, x1, y1)
		}
	}
}

func TestSnowLoopCloses(t *testing.T) {
	cfg := config.Default()
	cfg.Snow.Wind = 35
	b := NewBatch(components.KindSnow, 1280, 720, 4242, cfg)
	m := NewMotion(b.Kind, b.Width, b.Height, cfg)
	T := m.Period
	wAng := AngularRate(cfg.Snow.WobbleCycles(), T)

	for i := range b.Particles {
		p := &b.Particles[i]
		x0, y0 := m.SnowPosition(p, cfg.Snow.Wobble, wAng, 0)
		x1, y1 := m.SnowPosition(p, cfg.Snow.Wobble, wAng, T)
		if circularDist(x0, x1, m.Bounds.Width()) > 1e-6 || circularDist(y0, y1, m.Bounds.Height()) > 1e-6 {
			t.Fatalf("particle %d: (%v, %v) at 0 but (%v, %v) at T", i, x0, y0, x1, y1)
		}
	}
}

func TestRawMotionMatchesLinearWrap(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Seamless = false
	m := NewMotion(components.KindSnow, 1280, 720, cfg)

	p := &components.Particle{X0: 100, Y0: 200, VX: 33, VY: 180, Phase: 1}
	const tt = 3.7
	x, y := m.SnowPosition(p, 0, 0, tt)
	if want := Wrap(100+33*tt, -40, 1320); math.Abs(x-want) > 1e-9 {
		t.Errorf("x = %v, want %v", x, want)
	}
	if want := Wrap(200+180*tt, -40, 760); math.Abs(y-want) > 1e-9 {
		t.Errorf("y = %v, want %v", y, want)
	}
}

func TestPositionsStayInsideBounds(t *testing.T) {
	cfg := config.Default()
	b := NewBatch(components.KindRain, 640, 360, 3, cfg)
	m := NewMotion(b.Kind, b.Width, b.Height, cfg)

	for _, tt := range []float64{0, 0.37, 2, 5.5, 7.99} {
		g := RainGust(tt, m.Period, cfg.Rain.SpeedJitter)
		for i := range b.Particles {
			x, y, ux, uy := m.RainPosition(&b.Particles[i], g, tt)
			if x < m.Bounds.MinX || y < m.Bounds.MinY {
				t.Fatalf("particle %d at (%v, %v) below wrap minimum", i, x, y)
			}
			if n := math.Hypot(ux, uy); math.Abs(n-1) > 1e-3 {
				t.Fatalf("direction norm = %v, want 1", n)
			}
		}
	}
}

func TestAngularRateFloorsPeriod(t *testing.T) {
	if got, want := AngularRate(2, 0), 2*math.Pi*2/0.001; math.Abs(got-want) > 1e-6 {
		t.Errorf("AngularRate(2, 0) = %v, want %v", got, want)
	}
}
