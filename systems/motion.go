package systems

import (
	"math"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
)

// Motion constants.
const (
	// RainCycles is the number of gust and bead cycles per loop.
	RainCycles = 2
	// SnowMargin is the off-screen wrap margin for snow.
	SnowMargin = 40
	// minRainMargin is the smallest off-screen wrap margin for rain.
	minRainMargin = 40
)

// Bounds is a toroidal wrap region. It extends past the frame on every side
// so particles enter and leave off-screen.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Width returns the horizontal wrap span.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical wrap span.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func marginBounds(w, h int, margin float64) Bounds {
	return Bounds{
		MinX: -margin,
		MaxX: float64(w) + margin,
		MinY: -margin,
		MaxY: float64(h) + margin,
	}
}

// RainBounds returns the wrap region for rain. The margin grows with the
// streak length so whole streaks leave the frame before wrapping.
func RainBounds(w, h int, streakLen float64) Bounds {
	return marginBounds(w, h, math.Max(minRainMargin, 2*streakLen))
}

// SnowBounds returns the wrap region for snow.
func SnowBounds(w, h int) Bounds {
	return marginBounds(w, h, SnowMargin)
}

// Wrap maps x into [lo, hi). A non-positive span returns lo.
func Wrap(x, lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return lo
	}
	return lo + mod(x-lo, span)
}

// AngularRate returns the angular frequency of cycles whole oscillations per
// period.
func AngularRate(cycles int, period float64) float64 {
	return 2 * math.Pi * float64(cycles) / math.Max(0.001, period)
}

// RainGust returns the shared gust velocity at time t. It completes
// RainCycles oscillations per period and is zero at both loop ends.
func RainGust(t, period, speedJitter float64) float64 {
	return math.Sin(AngularRate(RainCycles, period)*t) * speedJitter * 0.12
}

// Axis is the loop closure of one motion axis. The velocity every particle
// shares is snapped to a whole number of wrap spans per period. A particle's
// deviation from the shared velocity becomes an oscillation with one cycle
// per period, so every particle on the axis travels exactly Laps spans per
// loop and the field moves as one.
type Axis struct {
	Base     float64 // shared velocity before snapping
	Velocity float64 // shared velocity after snapping
	Laps     int
}

// CloseAxis snaps the shared velocity base to the nearest whole number of
// span laps per period. Shared drift under half a span per loop is
// cancelled.
func CloseAxis(base, span, period float64) Axis {
	a := Axis{Base: base, Velocity: base}
	if span <= 0 || period <= 0 {
		return a
	}
	a.Laps = int(math.Round(base * period / span))
	a.Velocity = float64(a.Laps) * span / period
	return a
}

// Offset returns the displacement at t of a particle with raw velocity v.
// Its velocity at t=0 is v shifted by the snap of the shared velocity.
func (a Axis) Offset(v, t, period float64) float64 {
	w := AngularRate(1, period)
	return a.Velocity*t + (v-a.Base)*math.Sin(w*t)/w
}

// Speed returns the velocity at t of a particle with raw velocity v.
func (a Axis) Speed(v, t, period float64) float64 {
	return a.Velocity + (v-a.Base)*math.Cos(AngularRate(1, period)*t)
}

// BaseVelocity returns the velocity shared by every particle of kind under
// cfg, before per-particle jitter.
func BaseVelocity(kind components.Kind, cfg *config.Config) (vx, vy float64) {
	if kind == components.KindSnow {
		return cfg.Snow.Wind, cfg.Snow.Fall
	}
	ang := cfg.Rain.AngleDeg * math.Pi / 180
	return cfg.Rain.Speed * math.Sin(ang), cfg.Rain.Speed * math.Cos(ang)
}

// Motion is the loop-wide motion model for one batch and period.
type Motion struct {
	Period   float64
	Bounds   Bounds
	Seamless bool
	X, Y     Axis
}

// NewMotion returns the motion model for kind at w x h under cfg.
func NewMotion(kind components.Kind, w, h int, cfg *config.Config) Motion {
	m := Motion{
		Period:   cfg.Derived.Period,
		Seamless: cfg.Loop.Seamless,
	}
	if kind == components.KindSnow {
		m.Bounds = SnowBounds(w, h)
	} else {
		m.Bounds = RainBounds(w, h, cfg.Rain.StreakLen)
	}
	bx, by := BaseVelocity(kind, cfg)
	m.X = CloseAxis(bx, m.Bounds.Width(), m.Period)
	m.Y = CloseAxis(by, m.Bounds.Height(), m.Period)
	return m
}

// travel returns the displacement and velocity of p at t.
func (m Motion) travel(p *components.Particle, t float64) (dx, dy, vx, vy float64) {
	if !m.Seamless {
		return p.VX * t, p.VY * t, p.VX, p.VY
	}
	dx = m.X.Offset(p.VX, t, m.Period)
	dy = m.Y.Offset(p.VY, t, m.Period)
	return dx, dy, m.X.Speed(p.VX, t, m.Period), m.Y.Speed(p.VY, t, m.Period)
}

// RainPosition returns the wrapped head of p at time t and the unit
// direction of travel. gust is the shared RainGust value at t.
func (m Motion) RainPosition(p *components.Particle, gust, t float64) (x, y, ux, uy float64) {
	dx, dy, vx, vy := m.travel(p, t)
	gx, gy := gust*0.25, gust*0.05

	x = Wrap(p.X0+dx+gx*t, m.Bounds.MinX, m.Bounds.MaxX)
	y = Wrap(p.Y0+dy+gy*t, m.Bounds.MinY, m.Bounds.MaxY)

	vx += gx
	vy += gy
	n := math.Hypot(vx, vy) + 1e-6
	return x, y, vx / n, vy / n
}

// SnowPosition returns the wrapped centre of p at time t. wAng is the
// wobble angular rate and wobble its amplitude in pixels.
func (m Motion) SnowPosition(p *components.Particle, wobble, wAng, t float64) (x, y float64) {
	dx, dy, _, _ := m.travel(p, t)
	sway := math.Sin(p.Phase+wAng*t) * wobble

	x = Wrap(p.X0+dx+sway, m.Bounds.MinX, m.Bounds.MaxX)
	y = Wrap(p.Y0+dy, m.Bounds.MinY, m.Bounds.MaxY)
	return x, y
}
