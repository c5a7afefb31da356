// Seam check tool - measures how far the last frame of a loop is from the
// first, in particle positions and in pixels.
//
// Usage: go run ./cmd/seamcheck -mode snow -size 1280x720 -out seam
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/renderer"
	"github.com/pthm-cable/weatherloop/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "", "Weather kind: rain or snow (empty = use config)")
	size := flag.String("size", "", "Frame size WxH (empty = use config)")
	seed := flag.Uint64("seed", 0, "Particle seed, 0 to 4294967295 (unset = use config)")
	raw := flag.Bool("raw", false, "Disable loop closure to compare against raw velocities")
	outPrefix := flag.String("out", "", "Write <out>_first.png and <out>_last.png when set")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *size != "" {
		cfg.Size = *size
	}
	if isSet("seed") {
		v, err := config.SeedValue(*seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid seed: %v\n", err)
			os.Exit(1)
		}
		cfg.Seed = v
	}
	if *raw {
		cfg.Loop.Seamless = false
	}
	if err := cfg.Finalize(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	d := cfg.Derived
	batch := systems.NewBatch(d.Kind, d.Width, d.Height, cfg.Seed, cfg)
	m := systems.NewMotion(d.Kind, d.Width, d.Height, cfg)

	maxErr, meanErr := positionError(batch, cfg, m)
	first := frame(batch, cfg, m, 0)
	last := frame(batch, cfg, m, m.Period)
	diff := meanPixelDiff(first, last)

	fmt.Printf("kind:       %s\n", d.Kind)
	fmt.Printf("size:       %s\n", config.FormatSize(d.Width, d.Height))
	fmt.Printf("particles:  %d\n", batch.Len())
	fmt.Printf("period:     %.3fs\n", m.Period)
	fmt.Printf("seamless:   %v\n", m.Seamless)
	fmt.Printf("pos error:  max %.6fpx mean %.6fpx\n", maxErr, meanErr)
	fmt.Printf("pixel diff: %.4f/255\n", diff)

	if *outPrefix != "" {
		for name, img := range map[string]*image.RGBA{"first": first, "last": last} {
			path := fmt.Sprintf("%s_%s.png", *outPrefix, name)
			if err := writePNG(path, img); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s\n", path)
		}
	}
}

// positionError compares every particle at t=0 and t=period on the wrap
// torus.
func positionError(b *components.Batch, cfg *config.Config, m systems.Motion) (maxErr, meanErr float64) {
	spanX, spanY := m.Bounds.Width(), m.Bounds.Height()
	at := func(p *components.Particle, t float64) (float64, float64) {
		if b.Kind == components.KindSnow {
			wAng := systems.AngularRate(cfg.Snow.WobbleCycles(), m.Period)
			return m.SnowPosition(p, cfg.Snow.Wobble, wAng, t)
		}
		gust := systems.RainGust(t, m.Period, cfg.Rain.SpeedJitter)
		x, y, _, _ := m.RainPosition(p, gust, t)
		return x, y
	}

	for i := range b.Particles {
		p := &b.Particles[i]
		x0, y0 := at(p, 0)
		x1, y1 := at(p, m.Period)
		e := math.Hypot(torus(x1-x0, spanX), torus(y1-y0, spanY))
		maxErr = math.Max(maxErr, e)
		meanErr += e
	}
	if n := b.Len(); n > 0 {
		meanErr /= float64(n)
	}
	return maxErr, meanErr
}

// torus returns the shortest signed distance for d on a ring of span.
func torus(d, span float64) float64 {
	d = math.Mod(d, span)
	if d > span/2 {
		d -= span
	} else if d < -span/2 {
		d += span
	}
	return d
}

func frame(b *components.Batch, cfg *config.Config, m systems.Motion, t float64) *image.RGBA {
	r := renderer.NewRaster(b.Width, b.Height)
	renderer.Render(r, b, cfg, m, t)
	return r.Image()
}

func meanPixelDiff(a, b *image.RGBA) float64 {
	var sum float64
	for i := range a.Pix {
		sum += math.Abs(float64(a.Pix[i]) - float64(b.Pix[i]))
	}
	return sum / float64(len(a.Pix))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// isSet reports whether the named flag was given on the command line.
func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
