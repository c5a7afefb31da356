// Package systems holds the numeric core: the particle factory and the
// closed-loop motion model shared by preview and export.
package systems

import (
	"math"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/rng"
)

// Reference area for density values.
const (
	ReferenceWidth  = 1920
	ReferenceHeight = 1080
)

// ParticleCount scales a 1080p density to a w x h frame. At least one
// particle is always produced.
func ParticleCount(density float64, w, h int) int {
	area := float64(w) * float64(h) / (ReferenceWidth * ReferenceHeight)
	n := int(math.Floor(density * area))
	if n < 1 {
		return 1
	}
	return n
}

// NewRainParticle draws one raindrop from r.
// Draw order is fixed: it defines which batch a seed produces.
func NewRainParticle(r *rng.LCG, w, h int, p *config.RainConfig) components.Particle {
	ang := p.AngleDeg * math.Pi / 180
	baseVY := p.Speed * math.Cos(ang)
	baseVX := p.Speed * math.Sin(ang)

	vy := baseVY + r.Signed()*p.SpeedJitter
	vx := baseVX + r.Signed()*p.SpeedJitter*0.25

	size := math.Max(1, clamp(p.DropSize+r.Gaussian()*p.DropSizeJitter, p.MinDropSize, p.MaxDropSize))
	alpha := clamp(p.Opacity+r.Gaussian()*p.OpacityJitter, 0.05, 1)
	lenScale := clamp(1+r.Gaussian()*0.35, 0.55, 1.9)
	thickScale := clamp(1+r.Gaussian()*0.25, 0.65, 1.7)
	sparkle := clamp01(r.Float64() * 1.25)

	return components.Particle{
		X0:         (r.Float64()*1.4 - 0.2) * float64(w),
		Y0:         (r.Float64()*1.2 - 0.2) * float64(h),
		VX:         vx,
		VY:         vy,
		Size:       size,
		Alpha:      alpha,
		LenScale:   lenScale,
		ThickScale: thickScale,
		Sparkle:    sparkle,
		Phase:      r.Float64() * 2 * math.Pi,
	}
}

// NewSnowParticle draws one flake from r.
func NewSnowParticle(r *rng.LCG, w, h int, p *config.SnowConfig) components.Particle {
	size := math.Max(1, clamp(p.FlakeSize+r.Gaussian()*p.FlakeSizeJitter, p.MinFlakeSize, p.MaxFlakeSize))
	alpha := clamp(p.Opacity+r.Gaussian()*p.OpacityJitter, 0.05, 1)

	x0 := (r.Float64()*1.2 - 0.1) * float64(w)
	y0 := (r.Float64()*1.2 - 0.2) * float64(h)
	vx := p.Wind + r.Signed()*p.Drift
	vy := (0.7 + 0.6*r.Float64()) * p.Fall

	return components.Particle{
		X0:    x0,
		Y0:    y0,
		VX:    vx,
		VY:    vy,
		Size:  size,
		Alpha: alpha,
		Phase: r.Float64() * 2 * math.Pi,
	}
}

// NewBatch builds the particle batch for kind at w x h from a fresh stream
// seeded with seed. Identical inputs always give identical batches.
func NewBatch(kind components.Kind, w, h int, seed uint32, cfg *config.Config) *components.Batch {
	r := rng.New(seed)
	b := &components.Batch{
		Kind:   kind,
		Width:  w,
		Height: h,
		Seed:   seed,
	}

	if kind == components.KindSnow {
		n := ParticleCount(cfg.Snow.Density1080, w, h)
		b.Particles = make([]components.Particle, n)
		for i := range b.Particles {
			b.Particles[i] = NewSnowParticle(r, w, h, &cfg.Snow)
		}
		return b
	}

	n := ParticleCount(cfg.Rain.Density1080, w, h)
	b.Particles = make([]components.Particle, n)
	for i := range b.Particles {
		b.Particles[i] = NewRainParticle(r, w, h, &cfg.Rain)
	}
	return b
}

// BatchKey identifies everything a batch depends on. Two configs with equal
// keys produce identical batches; anything else is render-only.
type BatchKey struct {
	Kind          components.Kind
	Width, Height int
	Count         int
	Seed          uint32
	Params        [9]float64
}

// KeyFor returns the batch key of cfg at its current kind and size.
func KeyFor(cfg *config.Config) BatchKey {
	d := cfg.Derived
	k := BatchKey{
		Kind:   d.Kind,
		Width:  d.Width,
		Height: d.Height,
		Count:  ParticleCount(cfg.Density(), d.Width, d.Height),
		Seed:   cfg.Seed,
	}
	if d.Kind == components.KindSnow {
		s := cfg.Snow
		k.Params = [9]float64{s.Fall, s.Wind, s.Drift, s.MinFlakeSize, s.MaxFlakeSize, s.FlakeSize, s.FlakeSizeJitter, s.Opacity, s.OpacityJitter}
	} else {
		r := cfg.Rain
		k.Params = [9]float64{r.AngleDeg, r.Speed, r.SpeedJitter, r.MinDropSize, r.MaxDropSize, r.DropSize, r.DropSizeJitter, r.Opacity, r.OpacityJitter}
	}
	return k
}
