package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/weatherloop/components"
)

// paramsDoc is the shareable parameter document. JSON keys follow the
// companion generator; YAML keys follow the config file so a YAML export
// loads back as a config.
type paramsDoc struct {
	Mode     string     `json:"mode" yaml:"mode"`
	Size     string     `json:"size" yaml:"size"`
	FPS      int        `json:"fps" yaml:"fps"`
	Duration float64    `json:"duration" yaml:"duration"`
	Seed     uint32     `json:"seed" yaml:"seed"`
	Rain     RainConfig `json:"rain" yaml:"rain"`
	Snow     SnowConfig `json:"snow" yaml:"snow"`
}

// ExportParams serializes the shareable parameters as "json" or "yaml".
func ExportParams(c *Config, format string) ([]byte, error) {
	doc := paramsDoc{
		Mode:     c.Mode,
		Size:     c.Size,
		FPS:      c.FPS,
		Duration: c.Duration,
		Seed:     c.Seed,
		Rain:     c.Rain,
		Snow:     c.Snow,
	}
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling params: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshaling params: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: params format %q, want json or yaml", ErrInvalidParameter, format)
	}
}

// GeneratorCommand returns the command line that renders the active kind
// with the external high-fidelity generator.
func GeneratorCommand(c *Config) string {
	kind := c.Derived.Kind
	args := []string{
		c.Generator.Interpreter, c.Generator.Script, kind.String(),
		"--out", kind.String() + "_alpha.webm",
		"--duration", num(c.Duration),
		"--fps", strconv.Itoa(c.FPS),
		"--size", FormatSize(c.Derived.Width, c.Derived.Height),
		"--seed", strconv.FormatUint(uint64(c.Seed), 10),
	}

	if kind == components.KindSnow {
		s := c.Snow
		args = append(args,
			"--density", num(s.Density1080),
			"--fall", num(s.Fall),
			"--wind", num(s.Wind),
			"--drift", num(s.Drift),
			"--wobble", num(s.Wobble),
			"--turbulence", num(s.Turbulence),
			"--flake-size", num(s.FlakeSize),
			"--flake-size-jitter", num(s.FlakeSizeJitter),
			"--glow", num(s.Glow),
			"--opacity", num(s.Opacity),
			"--opacity-jitter", num(s.OpacityJitter),
			"--blur", num(s.Blur),
		)
	} else {
		r := c.Rain
		args = append(args,
			"--density", num(r.Density1080),
			"--angle", num(r.AngleDeg),
			"--speed", num(r.Speed),
			"--speed-jitter", num(r.SpeedJitter),
			"--streak-len", num(r.StreakLen),
			"--drop-size", num(r.DropSize),
			"--drop-size-jitter", num(r.DropSizeJitter),
			"--thickness", num(r.Thickness),
			"--opacity", num(r.Opacity),
			"--opacity-jitter", num(r.OpacityJitter),
			"--blur", num(r.Blur),
		)
	}

	args = append(args, "--crf", strconv.Itoa(c.Generator.CRF))
	return strings.Join(args, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
