package renderer

import (
	"math"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/systems"
)

// Rain streak shading.
const (
	headLength = 0.35 // bright head as a fraction of the streak
	headWidth  = 0.85
	tailAlpha  = 0.18
	beadAbove  = 0.92 // bead shows while the phase wave is above this
	beadOffset = 1.5  // px ahead of the head
)

// Halo alpha relative to the flake.
const glowAlpha = 0.35

// Render draws b at time t onto s and applies the blur post-pass of its kind.
// s is not cleared first.
func Render(s Surface, b *components.Batch, cfg *config.Config, m systems.Motion, t float64) {
	if b == nil {
		return
	}
	Draw(s, b, cfg, m, t)
	s.Blur(BlurRadius(b.Kind, cfg))
}

// Draw draws b at time t without the blur pass.
func Draw(s Surface, b *components.Batch, cfg *config.Config, m systems.Motion, t float64) {
	if b.Kind == components.KindSnow {
		DrawSnow(s, b, &cfg.Snow, m, t)
		return
	}
	DrawRain(s, b, &cfg.Rain, m, t)
}

// BlurRadius returns the integer blur radius for kind.
func BlurRadius(kind components.Kind, cfg *config.Config) int {
	if kind == components.KindSnow {
		return int(math.Floor(cfg.Snow.Blur))
	}
	return int(math.Floor(cfg.Rain.Blur))
}

// DrawRain draws every drop as a faint tail streak with a brighter head.
// Drops whose phase wave peaks also get a small bead at the tip.
func DrawRain(s Surface, b *components.Batch, p *config.RainConfig, m systems.Motion, t float64) {
	gust := systems.RainGust(t, m.Period, p.SpeedJitter)
	wAng := systems.AngularRate(systems.RainCycles, m.Period)

	for i := range b.Particles {
		a := &b.Particles[i]
		x, y, ux, uy := m.RainPosition(a, gust, t)

		length := p.StreakLen * a.LenScale
		lw := math.Max(1, a.Size*p.Thickness*a.ThickScale)
		head := clamp01(a.Alpha * (0.9 + 0.35*a.Sparkle))
		tail := clamp01(a.Alpha * tailAlpha)

		s.StrokeLine(x, y, x-ux*length, y-uy*length, lw, White(tail))
		s.StrokeLine(x, y, x-ux*length*headLength, y-uy*length*headLength, lw*headWidth, White(head))

		if math.Sin(a.Phase+wAng*t)*0.5+0.5 > beadAbove {
			s.FillCircle(x+ux*beadOffset, y+uy*beadOffset, math.Max(0.6, lw*0.45), White(head*0.6))
		}
	}
}

// DrawSnow draws every flake as a disc, plus a faint halo when glow is set.
func DrawSnow(s Surface, b *components.Batch, p *config.SnowConfig, m systems.Motion, t float64) {
	wAng := systems.AngularRate(p.WobbleCycles(), m.Period)

	for i := range b.Particles {
		a := &b.Particles[i]
		x, y := m.SnowPosition(a, p.Wobble, wAng, t)

		s.FillCircle(x, y, math.Max(1, a.Size), White(a.Alpha))
		if p.Glow > 0 {
			s.FillCircle(x, y, math.Max(1, a.Size*p.Glow), White(a.Alpha*glowAlpha))
		}
	}
}
