// Package config provides configuration loading and the simulation parameters
// for both weather kinds.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/weatherloop/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MinPeriod is the shortest loop period in seconds.
const MinPeriod = 0.2

// Errors returned by Validate and ParseSize.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidSize      = errors.New("invalid size")
)

// Export background modes. Black is shorthand for solid #000000.
const (
	BackgroundTransparent = "transparent"
	BackgroundSolid       = "solid"
	BackgroundBlack       = "black"
	BackgroundChecker     = "checker"
)

// Config holds the complete generator configuration.
type Config struct {
	Mode      string          `yaml:"mode"`
	Size      string          `yaml:"size"`
	FPS       int             `yaml:"fps"`
	Duration  float64         `yaml:"duration"`
	Seed      uint32          `yaml:"seed"`
	Rain      RainConfig      `yaml:"rain"`
	Snow      SnowConfig      `yaml:"snow"`
	Loop      LoopConfig      `yaml:"loop"`
	Export    ExportConfig    `yaml:"export"`
	Preview   PreviewConfig   `yaml:"preview"`
	Generator GeneratorConfig `yaml:"generator"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RainConfig holds the rain simulation parameters.
// MinDropSize/MaxDropSize are the user-facing bounds; DropSize and
// DropSizeJitter are derived from them by SetDropSizeBounds.
type RainConfig struct {
	Density1080    float64 `yaml:"density_1080" json:"density1080"`        // drops at 1920x1080
	AngleDeg       float64 `yaml:"angle_deg" json:"angleDeg"`              // 0 = straight down, positive leans right
	Speed          float64 `yaml:"speed" json:"speed"`                     // px/sec
	SpeedJitter    float64 `yaml:"speed_jitter" json:"speedJitter"`        // px/sec
	StreakLen      float64 `yaml:"streak_len" json:"streakLen"`            // px
	Thickness      float64 `yaml:"thickness" json:"thickness"`             // width multiplier
	MinDropSize    float64 `yaml:"min_drop_size" json:"minDropSize"`       // px
	MaxDropSize    float64 `yaml:"max_drop_size" json:"maxDropSize"`       // px
	DropSize       float64 `yaml:"drop_size" json:"dropSize"`              // derived mean
	DropSizeJitter float64 `yaml:"drop_size_jitter" json:"dropSizeJitter"` // derived stddev
	Opacity        float64 `yaml:"opacity" json:"opacity"`
	OpacityJitter  float64 `yaml:"opacity_jitter" json:"opacityJitter"`
	Blur           float64 `yaml:"blur" json:"blur"` // px, floored before use
}

// SnowConfig holds the snow simulation parameters.
type SnowConfig struct {
	Density1080     float64 `yaml:"density_1080" json:"density1080"`
	Fall            float64 `yaml:"fall" json:"fall"`             // px/sec
	Wind            float64 `yaml:"wind" json:"wind"`             // px/sec, positive pushes right
	Drift           float64 `yaml:"drift" json:"drift"`           // px/sec random sideways
	Wobble          float64 `yaml:"wobble" json:"wobble"`         // px sway amplitude
	Turbulence      float64 `yaml:"turbulence" json:"turbulence"` // wobble cycles per loop
	MinFlakeSize    float64 `yaml:"min_flake_size" json:"minFlakeSize"`
	MaxFlakeSize    float64 `yaml:"max_flake_size" json:"maxFlakeSize"`
	FlakeSize       float64 `yaml:"flake_size" json:"flakeSize"`
	FlakeSizeJitter float64 `yaml:"flake_size_jitter" json:"flakeSizeJitter"`
	Glow            float64 `yaml:"glow" json:"glow"` // halo radius multiplier, 0 disables
	Opacity         float64 `yaml:"opacity" json:"opacity"`
	OpacityJitter   float64 `yaml:"opacity_jitter" json:"opacityJitter"`
	Blur            float64 `yaml:"blur" json:"blur"`
}

// LoopConfig controls the loop-closure model.
type LoopConfig struct {
	// Seamless snaps the shared velocity of each axis to whole wrap spans per
	// loop and turns per-particle jitter into a closed oscillation, so the
	// last frame flows into the first. False keeps raw velocities.
	Seamless bool `yaml:"seamless"`
}

// ExportConfig holds clip export settings.
type ExportConfig struct {
	Background      string `yaml:"background"`       // transparent | solid | black | checker
	BackgroundColor string `yaml:"background_color"` // hex, used by solid
	CheckerTile     int    `yaml:"checker_tile"`
	Format          string `yaml:"format"`  // webm-vp9 | webm-vp8 | mp4-h264 | gif
	Bitrate         int    `yaml:"bitrate"` // bits/sec, 0 = encoder default
	FFmpegPath      string `yaml:"ffmpeg_path"`
	BuiltinFallback bool   `yaml:"builtin_fallback"`
	ProgressEvery   int    `yaml:"progress_every"` // frames between progress logs
}

// PreviewConfig holds live preview settings.
type PreviewConfig struct {
	Scale         float64 `yaml:"scale"` // 0.25..1
	Checker       bool    `yaml:"checker"`
	TargetFPS     int     `yaml:"target_fps"`
	StatsInterval float64 `yaml:"stats_interval"` // seconds between perf logs, 0 disables
	PanelWidth    int     `yaml:"panel_width"`
}

// GeneratorConfig describes the external high-fidelity generator invocation.
type GeneratorConfig struct {
	Interpreter string `yaml:"interpreter"`
	Script      string `yaml:"script"`
	CRF         int    `yaml:"crf"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Kind   components.Kind
	Width  int
	Height int
	Period float64 // max(MinPeriod, Duration)
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize normalizes, validates and recomputes derived values.
// Call it after changing fields by hand (flag overrides, UI edits).
func (c *Config) Finalize() error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Clone returns a deep copy. Exports run on a clone so they never share
// mutable state with the preview.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Normalize clamps values that have a well-defined repair: size bounds are
// reordered through the paired setters and turbulence gets at least one cycle.
func (c *Config) Normalize() {
	r := &c.Rain
	if r.MinDropSize > r.MaxDropSize || r.DropSize < r.MinDropSize || r.DropSize > r.MaxDropSize || r.DropSizeJitter < MinSizeJitter {
		r.SetDropSizeBounds(r.MinDropSize, r.MaxDropSize)
	}
	s := &c.Snow
	if s.MinFlakeSize > s.MaxFlakeSize || s.FlakeSize < s.MinFlakeSize || s.FlakeSize > s.MaxFlakeSize || s.FlakeSizeJitter < MinSizeJitter {
		s.SetFlakeSizeBounds(s.MinFlakeSize, s.MaxFlakeSize)
	}
	if s.Turbulence < 1 {
		s.Turbulence = 1
	}
	c.Preview.Scale = clamp(c.Preview.Scale, 0.25, 1)
	if c.Export.CheckerTile <= 0 {
		c.Export.CheckerTile = 24
	}
}

// Validate rejects values the numeric core cannot work with.
func (c *Config) Validate() error {
	if _, err := components.ParseKind(c.Mode); err != nil {
		return fmt.Errorf("%w: mode: %v", ErrInvalidParameter, err)
	}
	if _, _, err := ParseSize(c.Size); err != nil {
		return err
	}
	if c.FPS < 1 {
		return fmt.Errorf("%w: fps must be >= 1, got %d", ErrInvalidParameter, c.FPS)
	}
	if !finite(c.Duration) || c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be a positive number, got %v", ErrInvalidParameter, c.Duration)
	}

	r := c.Rain
	for name, v := range map[string]float64{
		"rain.density_1080": r.Density1080, "rain.angle_deg": r.AngleDeg, "rain.speed": r.Speed,
		"rain.speed_jitter": r.SpeedJitter, "rain.streak_len": r.StreakLen, "rain.thickness": r.Thickness,
		"rain.min_drop_size": r.MinDropSize, "rain.max_drop_size": r.MaxDropSize, "rain.drop_size": r.DropSize,
		"rain.drop_size_jitter": r.DropSizeJitter, "rain.opacity": r.Opacity, "rain.opacity_jitter": r.OpacityJitter,
		"rain.blur": r.Blur,
	} {
		if !finite(v) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, name)
		}
	}
	s := c.Snow
	for name, v := range map[string]float64{
		"snow.density_1080": s.Density1080, "snow.fall": s.Fall, "snow.wind": s.Wind, "snow.drift": s.Drift,
		"snow.wobble": s.Wobble, "snow.turbulence": s.Turbulence, "snow.min_flake_size": s.MinFlakeSize,
		"snow.max_flake_size": s.MaxFlakeSize, "snow.flake_size": s.FlakeSize,
		"snow.flake_size_jitter": s.FlakeSizeJitter, "snow.glow": s.Glow, "snow.opacity": s.Opacity,
		"snow.opacity_jitter": s.OpacityJitter, "snow.blur": s.Blur,
	} {
		if !finite(v) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, name)
		}
	}
	if r.Density1080 < 0 || s.Density1080 < 0 {
		return fmt.Errorf("%w: density must be >= 0", ErrInvalidParameter)
	}
	if r.Blur < 0 || s.Blur < 0 || s.Glow < 0 {
		return fmt.Errorf("%w: blur and glow must be >= 0", ErrInvalidParameter)
	}
	switch c.Export.Background {
	case BackgroundTransparent, BackgroundSolid, BackgroundBlack, BackgroundChecker:
	default:
		return fmt.Errorf("%w: export.background %q", ErrInvalidParameter, c.Export.Background)
	}
	if _, err := ParseHexColor(c.Export.BackgroundColor); err != nil {
		return err
	}
	if c.Export.Bitrate < 0 {
		return fmt.Errorf("%w: export.bitrate must be >= 0", ErrInvalidParameter)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	kind, err := components.ParseKind(c.Mode)
	if err != nil {
		return fmt.Errorf("%w: mode: %v", ErrInvalidParameter, err)
	}
	w, h, err := ParseSize(c.Size)
	if err != nil {
		return err
	}
	c.Derived = DerivedConfig{
		Kind:   kind,
		Width:  w,
		Height: h,
		Period: math.Max(MinPeriod, c.Duration),
	}
	return nil
}

// SetKind switches the active weather kind.
func (c *Config) SetKind(k components.Kind) {
	c.Mode = k.String()
	c.Derived.Kind = k
}

// SetSize sets the frame size.
func (c *Config) SetSize(w, h int) error {
	s := FormatSize(w, h)
	if _, _, err := ParseSize(s); err != nil {
		return err
	}
	c.Size = s
	c.Derived.Width, c.Derived.Height = w, h
	return nil
}

// Density returns the density of the active kind at 1080p.
func (c *Config) Density() float64 {
	if c.Derived.Kind == components.KindSnow {
		return c.Snow.Density1080
	}
	return c.Rain.Density1080
}

// ParseSize parses "WIDTHxHEIGHT". Both sides must be at least 16.
func ParseSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q, want WIDTHxHEIGHT", ErrInvalidSize, s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidSize, s, err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidSize, s, err)
	}
	if !finite(w) || !finite(h) || w < 16 || h < 16 {
		return 0, 0, fmt.Errorf("%w: %q, both sides must be >= 16", ErrInvalidSize, s)
	}
	return int(math.Floor(w)), int(math.Floor(h)), nil
}

// SeedValue checks that v fits the 32-bit seed space.
func SeedValue(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: seed %d exceeds %d", ErrInvalidParameter, v, uint64(math.MaxUint32))
	}
	return uint32(v), nil
}

// FormatSize formats a size as "WIDTHxHEIGHT".
func FormatSize(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}

// ParseHexColor parses an opaque "#RRGGBB" or "#RGB" colour.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: colour %q, want #RRGGBB", ErrInvalidParameter, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: colour %q: %v", ErrInvalidParameter, s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
