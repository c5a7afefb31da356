// Package loop runs the live preview: one render per display refresh against
// the live particle batch and parameters.
//
// Parameter edits apply on the next tick without resetting phase. Only a
// change that invalidates the batch (kind, size, count, seed or a factory
// parameter) builds a fresh batch and restarts the loop from t=0.
package loop

import (
	"context"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/weatherloop/components"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/renderer"
	"github.com/pthm-cable/weatherloop/systems"
	"github.com/pthm-cable/weatherloop/telemetry"
)

// State is the preview's exclusively owned loop state.
type State struct {
	Kind    components.Kind
	Width   int
	Height  int
	Batch   *components.Batch
	Key     systems.BatchKey
	Start   time.Time
	Started bool
}

// Display is the refresh source and presentation target.
type Display interface {
	// Next blocks until the next refresh. False ends the loop.
	Next() bool
	// Present shows a rendered frame. img is reused by the next tick.
	Present(img *image.RGBA)
	Now() time.Time
}

// Loop is the live preview scheduler. It is not safe for concurrent use;
// exports work on a Config clone instead.
type Loop struct {
	cfg    *config.Config
	state  State
	raster *renderer.Raster
	perf   *telemetry.PerfCollector
	logger *slog.Logger

	ticks     int
	rebuilds  int
	lastStats time.Time
}

// New creates a preview loop over cfg, which must be finalized. The loop owns
// cfg from here on; change it through Update.
func New(cfg *config.Config, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	window := cfg.Preview.TargetFPS
	if window < 1 {
		window = 60
	}
	return &Loop{
		cfg:    cfg,
		perf:   telemetry.NewPerfCollector(window),
		logger: logger,
	}
}

// Config returns the live parameters. Callers must not modify them.
func (l *Loop) Config() *config.Config {
	return l.cfg
}

// Snapshot returns an independent copy of the live parameters.
func (l *Loop) Snapshot() *config.Config {
	return l.cfg.Clone()
}

// Update applies fn to a copy of the parameters and commits it if the result
// validates. On error the live parameters are unchanged.
func (l *Loop) Update(fn func(c *config.Config)) error {
	next := l.cfg.Clone()
	fn(next)
	if err := next.Finalize(); err != nil {
		return err
	}
	l.cfg = next
	return nil
}

// Restart makes the next tick latch a new start time.
func (l *Loop) Restart() {
	l.state.Started = false
}

// State returns a copy of the loop state.
func (l *Loop) State() State {
	return l.state
}

// Perf returns the loop's performance collector.
func (l *Loop) Perf() *telemetry.PerfCollector {
	return l.perf
}

// Ticks returns the number of ticks so far.
func (l *Loop) Ticks() int {
	return l.ticks
}

// Rebuilds returns how many batches have been built.
func (l *Loop) Rebuilds() int {
	return l.rebuilds
}

// Tick refreshes the batch if the parameters invalidated it, latches the
// start time on the first tick after a (re)start and returns the loop time
// at now.
func (l *Loop) Tick(now time.Time) float64 {
	l.perf.StartPhase(telemetry.PhaseBatch)
	l.refresh()

	if !l.state.Started {
		l.state.Start = now
		l.state.Started = true
	}
	l.ticks++
	return LoopTime(now.Sub(l.state.Start), l.cfg.Duration)
}

// LoopTime maps elapsed wall time onto [0, max(MinPeriod, duration)).
func LoopTime(elapsed time.Duration, duration float64) float64 {
	period := math.Max(config.MinPeriod, duration)
	t := math.Mod(elapsed.Seconds(), period)
	if t < 0 {
		t += period
	}
	return t
}

func (l *Loop) refresh() {
	key := systems.KeyFor(l.cfg)
	if l.state.Batch != nil && key == l.state.Key {
		return
	}

	d := l.cfg.Derived
	batch := systems.NewBatch(d.Kind, d.Width, d.Height, l.cfg.Seed, l.cfg)
	if l.raster == nil || l.state.Width != d.Width || l.state.Height != d.Height {
		l.raster = renderer.NewRaster(d.Width, d.Height)
	}
	l.state = State{
		Kind:   d.Kind,
		Width:  d.Width,
		Height: d.Height,
		Batch:  batch,
		Key:    key,
	}
	l.rebuilds++

	l.logger.Debug("batch rebuilt", "kind", d.Kind, "seed", l.cfg.Seed,
		"width", d.Width, "height", d.Height, "count", batch.Len())
}

// Frame renders the particle layer at t into the loop's raster. The image is
// transparent outside the particles and is reused by the next call.
func (l *Loop) Frame(t float64) *image.RGBA {
	if l.state.Batch == nil {
		l.refresh()
	}
	s := l.state
	m := systems.NewMotion(s.Kind, s.Width, s.Height, l.cfg)

	l.perf.StartPhase(telemetry.PhaseRender)
	l.raster.Clear()
	renderer.Draw(l.raster, s.Batch, l.cfg, m, t)

	l.perf.StartPhase(telemetry.PhaseBlur)
	l.raster.Blur(renderer.BlurRadius(s.Kind, l.cfg))
	return l.raster.Image()
}

// Run renders one frame per display refresh until ctx is cancelled or the
// display stops. Cancellation takes effect before the next tick.
func (l *Loop) Run(ctx context.Context, d Display) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Next() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		now := d.Now()
		l.perf.StartTick()
		t := l.Tick(now)
		img := l.Frame(t)

		l.perf.StartPhase(telemetry.PhasePresent)
		d.Present(img)
		l.perf.EndTick()
		l.perf.RecordFrame()

		l.logStats(now)
	}
}

func (l *Loop) logStats(now time.Time) {
	interval := l.cfg.Preview.StatsInterval
	if interval <= 0 {
		return
	}
	if l.lastStats.IsZero() {
		l.lastStats = now
		return
	}
	if now.Sub(l.lastStats).Seconds() < interval {
		return
	}
	l.lastStats = now
	l.perf.Stats().LogStats(l.logger)
}
