package config

import (
	"math"

	"github.com/pthm-cable/weatherloop/components"
)

// MinSizeJitter is the floor for derived size jitter.
const MinSizeJitter = 0.01

// Range is the control range of one tunable parameter.
type Range struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

// Control ranges for the rain sliders.
var (
	RainDensityRange     = Range{"Density", 50, 4000, 10}
	RainAngleRange       = Range{"Angle", -45, 45, 1}
	RainSpeedRange       = Range{"Weight", 200, 3200, 10}
	RainSpeedJitterRange = Range{"Speed Jitter", 0, 800, 5}
	RainStreakLenRange   = Range{"Streak Length", 4, 120, 1}
	RainThicknessRange   = Range{"Thickness", 0.3, 3, 0.05}
	MinDropSizeRange     = Range{"Min Drop Size", 0.5, 6, 0.05}
	MaxDropSizeRange     = Range{"Max Drop Size", 0.5, 8, 0.05}
	OpacityRange         = Range{"Opacity", 0.05, 1, 0.01}
	OpacityJitterRange   = Range{"Opacity Jitter", 0, 0.6, 0.01}
	BlurRange            = Range{"Blur", 0, 6, 0.1}
)

// Control ranges for the snow sliders.
var (
	SnowDensityRange    = Range{"Density", 50, 2500, 10}
	SnowFallRange       = Range{"Fall Speed", 20, 900, 5}
	SnowWindRange       = Range{"Wind", -400, 400, 5}
	SnowDriftRange      = Range{"Drift", 0, 350, 5}
	SnowWobbleRange     = Range{"Wobble", 0, 320, 5}
	SnowTurbulenceRange = Range{"Turbulence", 1, 30, 1}
	MinFlakeSizeRange   = Range{"Min Flake Size", 0.6, 10, 0.05}
	MaxFlakeSizeRange   = Range{"Max Flake Size", 0.6, 14, 0.05}
	SnowGlowRange       = Range{"Glow", 0, 6, 0.05}
)

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return clamp(v, r.Min, r.Max)
}

// Snap rounds v to the nearest step and clamps it.
func (r Range) Snap(v float64) float64 {
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
	}
	return r.Clamp(v)
}

// SetDropSizeBounds updates the drop size bounds and re-derives the base size
// and jitter from them. Inverted bounds are swapped.
func (r *RainConfig) SetDropSizeBounds(minSize, maxSize float64) {
	r.MinDropSize, r.MaxDropSize, r.DropSize, r.DropSizeJitter =
		pairedBounds(MinDropSizeRange.Clamp(minSize), MaxDropSizeRange.Clamp(maxSize))
}

// SetFlakeSizeBounds updates the flake size bounds and re-derives the base
// size and jitter from them. Inverted bounds are swapped.
func (s *SnowConfig) SetFlakeSizeBounds(minSize, maxSize float64) {
	s.MinFlakeSize, s.MaxFlakeSize, s.FlakeSize, s.FlakeSizeJitter =
		pairedBounds(MinFlakeSizeRange.Clamp(minSize), MaxFlakeSizeRange.Clamp(maxSize))
}

// pairedBounds returns ordered bounds with base at the midpoint.
func pairedBounds(a, b float64) (lo, hi, base, jitter float64) {
	lo, hi = math.Min(a, b), math.Max(a, b)
	base = (lo + hi) / 2
	jitter = math.Max(MinSizeJitter, (hi-lo)/2)
	return lo, hi, base, jitter
}

// WobbleCycles returns the whole number of wobble cycles per loop.
func (s *SnowConfig) WobbleCycles() int {
	return int(math.Max(1, math.Round(s.Turbulence)))
}

// Control binds a Range to the parameter it edits.
type Control struct {
	Range
	Get func(c *Config) float64
	Set func(c *Config, v float64)
}

// Controls returns the tunable parameters of kind k in panel order.
// Size bound controls go through the paired setters.
func Controls(k components.Kind) []Control {
	if k == components.KindSnow {
		return snowControls
	}
	return rainControls
}

func field(r Range, p func(c *Config) *float64) Control {
	return Control{
		Range: r,
		Get:   func(c *Config) float64 { return *p(c) },
		Set:   func(c *Config, v float64) { *p(c) = r.Snap(v) },
	}
}

var rainControls = []Control{
	field(RainDensityRange, func(c *Config) *float64 { return &c.Rain.Density1080 }),
	field(RainAngleRange, func(c *Config) *float64 { return &c.Rain.AngleDeg }),
	field(RainSpeedRange, func(c *Config) *float64 { return &c.Rain.Speed }),
	field(RainSpeedJitterRange, func(c *Config) *float64 { return &c.Rain.SpeedJitter }),
	field(RainStreakLenRange, func(c *Config) *float64 { return &c.Rain.StreakLen }),
	field(RainThicknessRange, func(c *Config) *float64 { return &c.Rain.Thickness }),
	{
		Range: MinDropSizeRange,
		Get:   func(c *Config) float64 { return c.Rain.MinDropSize },
		Set: func(c *Config, v float64) {
			c.Rain.SetDropSizeBounds(MinDropSizeRange.Snap(v), c.Rain.MaxDropSize)
		},
	},
	{
		Range: MaxDropSizeRange,
		Get:   func(c *Config) float64 { return c.Rain.MaxDropSize },
		Set: func(c *Config, v float64) {
			c.Rain.SetDropSizeBounds(c.Rain.MinDropSize, MaxDropSizeRange.Snap(v))
		},
	},
	field(OpacityRange, func(c *Config) *float64 { return &c.Rain.Opacity }),
	field(OpacityJitterRange, func(c *Config) *float64 { return &c.Rain.OpacityJitter }),
	field(BlurRange, func(c *Config) *float64 { return &c.Rain.Blur }),
}

var snowControls = []Control{
	field(SnowDensityRange, func(c *Config) *float64 { return &c.Snow.Density1080 }),
	field(SnowFallRange, func(c *Config) *float64 { return &c.Snow.Fall }),
	field(SnowWindRange, func(c *Config) *float64 { return &c.Snow.Wind }),
	field(SnowDriftRange, func(c *Config) *float64 { return &c.Snow.Drift }),
	field(SnowWobbleRange, func(c *Config) *float64 { return &c.Snow.Wobble }),
	field(SnowTurbulenceRange, func(c *Config) *float64 { return &c.Snow.Turbulence }),
	{
		Range: MinFlakeSizeRange,
		Get:   func(c *Config) float64 { return c.Snow.MinFlakeSize },
		Set: func(c *Config, v float64) {
			c.Snow.SetFlakeSizeBounds(MinFlakeSizeRange.Snap(v), c.Snow.MaxFlakeSize)
		},
	},
	{
		Range: MaxFlakeSizeRange,
		Get:   func(c *Config) float64 { return c.Snow.MaxFlakeSize },
		Set: func(c *Config, v float64) {
			c.Snow.SetFlakeSizeBounds(c.Snow.MinFlakeSize, MaxFlakeSizeRange.Snap(v))
		},
	},
	field(SnowGlowRange, func(c *Config) *float64 { return &c.Snow.Glow }),
	field(OpacityRange, func(c *Config) *float64 { return &c.Snow.Opacity }),
	field(OpacityJitterRange, func(c *Config) *float64 { return &c.Snow.OpacityJitter }),
	field(BlurRange, func(c *Config) *float64 { return &c.Snow.Blur }),
}
