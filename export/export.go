// Package export renders one loop period frame by frame into a capture sink.
//
// An export builds its own particle batch from the seed with the same rule
// the preview uses, so the clip is phase-identical to what the preview
// showed. Frames are sampled at t = f/N*T for f in [0, N), which covers
// exactly one period without repeating t=T (equal to t=0).
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pthm-cable/weatherloop/capture"
	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/renderer"
	"github.com/pthm-cable/weatherloop/systems"
	"github.com/pthm-cable/weatherloop/telemetry"
)

// ErrFrameCount is returned when a sink did not consume exactly one frame
// per scheduled sample.
var ErrFrameCount = errors.New("sink frame count mismatch")

// Schedule returns the number of frames in one loop and the loop period.
// A product short of a whole frame count only by rounding error, such as
// 4.1*30, counts that frame.
func Schedule(fps int, duration float64) (int, float64) {
	frames := int(math.Floor(duration*float64(fps) + 1e-9))
	if frames < 1 {
		frames = 1
	}
	return frames, math.Max(config.MinPeriod, duration)
}

// FrameTime returns the loop time of frame f.
func FrameTime(f, frames int, period float64) float64 {
	return float64(f) / float64(frames) * period
}

// Job describes one export.
type Job struct {
	// Config is copied before use; the caller may keep editing its own.
	Config *config.Config
	// Background overrides the configured export background.
	Background *renderer.Background
}

// Result summarizes a finished export.
type Result struct {
	Frames  int
	Period  float64
	Times   []float64
	Format  capture.Format
	Path    string
	Bytes   int64
	Elapsed time.Duration
	Batch   telemetry.BatchStats
}

// Pipeline renders exports. The zero value logs to slog.Default and writes
// no telemetry files.
type Pipeline struct {
	Logger *slog.Logger
	Output *telemetry.OutputManager
	// Progress, if set, is called after every frame the sink consumed.
	Progress func(done, total int)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Run renders job into sink. Each frame is handed to the sink and the call
// waits for it to be consumed before the next frame is drawn. Cancelling ctx
// aborts the sink; any other failure aborts it too.
func (p *Pipeline) Run(ctx context.Context, job Job, sink capture.Sink) (*Result, error) {
	logger := p.logger()
	cfg := job.Config.Clone()
	d := cfg.Derived
	frames, period := Schedule(cfg.FPS, cfg.Duration)
	started := time.Now()

	batch := systems.NewBatch(d.Kind, d.Width, d.Height, cfg.Seed, cfg)
	motion := systems.NewMotion(d.Kind, d.Width, d.Height, cfg)
	bg := job.Background
	if bg == nil {
		bg = renderer.BackgroundFor(cfg)
	}

	res := &Result{
		Frames: frames,
		Period: period,
		Times:  make([]float64, 0, frames),
		Batch:  telemetry.SummarizeBatch(batch),
	}
	logger.Info("export started", "kind", d.Kind, "seed", cfg.Seed, "width", d.Width, "height", d.Height,
		"fps", cfg.FPS, "frames", frames, "count", batch.Len(), "background", bg.Mode)

	if err := p.Output.WriteConfig(cfg); err != nil {
		logger.Warn("writing config snapshot", "error", err)
	}
	if err := p.Output.WriteBatch(res.Batch); err != nil {
		logger.Warn("writing batch stats", "error", err)
	}

	spec := capture.StreamSpec{Width: d.Width, Height: d.Height, FPS: cfg.FPS, Bitrate: cfg.Export.Bitrate}
	if err := sink.Start(spec); err != nil {
		return nil, fmt.Errorf("starting capture: %w", err)
	}

	frame := renderer.NewRaster(d.Width, d.Height)
	blur := renderer.BlurRadius(d.Kind, cfg)
	perf := telemetry.NewPerfCollector(cfg.FPS)
	every := cfg.Export.ProgressEvery

	for f := 0; f < frames; f++ {
		if err := ctx.Err(); err != nil {
			sink.Abort()
			return nil, fmt.Errorf("export cancelled at frame %d: %w", f, err)
		}
		t := FrameTime(f, frames, period)
		frameStart := time.Now()

		perf.StartTick()
		perf.StartPhase(telemetry.PhaseBackground)
		bg.Draw(frame.Image())

		perf.StartPhase(telemetry.PhaseRender)
		renderer.Draw(frame, batch, cfg, motion, t)

		// Blur covers the background too
		perf.StartPhase(telemetry.PhaseBlur)
		frame.Blur(blur)
		renderDone := time.Now()

		perf.StartPhase(telemetry.PhaseEncode)
		if err := sink.WriteFrame(frame.Image()); err != nil {
			sink.Abort()
			return nil, fmt.Errorf("encoding frame %d: %w", f, err)
		}
		sample := perf.EndTick()
		res.Times = append(res.Times, t)

		if err := p.Output.WriteFrame(telemetry.FrameRecord{
			Frame:    f,
			T:        t,
			RenderUS: renderDone.Sub(frameStart).Microseconds(),
			EncodeUS: sample.Phases[telemetry.PhaseEncode].Microseconds(),
			TotalUS:  sample.TickDuration.Microseconds(),
		}); err != nil {
			logger.Warn("writing frame record", "frame", f, "error", err)
		}
		if p.Progress != nil {
			p.Progress(f+1, frames)
		}
		if every > 0 && (f+1)%every == 0 && f+1 < frames {
			logger.Info("export progress", "frame", f+1, "frames", frames,
				"elapsed_ms", time.Since(started).Milliseconds())
			if err := p.Output.WritePerf(perf.Stats(), f+1); err != nil {
				logger.Warn("writing perf window", "error", err)
			}
		}
	}

	if got := sink.Frames(); got != frames {
		sink.Abort()
		return nil, fmt.Errorf("%w: sink consumed %d frames, want %d", ErrFrameCount, got, frames)
	}
	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("finalizing capture: %w", err)
	}

	res.Elapsed = time.Since(started)
	stats := perf.Stats()
	if err := p.Output.WritePerf(stats, frames); err != nil {
		logger.Warn("writing perf window", "error", err)
	}
	logger.Info("export finished", "frames", frames, "elapsed_ms", res.Elapsed.Milliseconds(), "perf", stats)
	return res, nil
}

// ExportFile negotiates a capture format for cfg, renders the clip and
// writes it to path. The extension of path is replaced when the negotiated
// format differs from the preferred one. A partial file is removed on error.
func (p *Pipeline) ExportFile(ctx context.Context, cfg *config.Config, path string) (*Result, error) {
	logger := p.logger()
	preferred, err := capture.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	prober := capture.FFmpegProber{Path: cfg.Export.FFmpegPath}
	format, err := capture.Negotiate(ctx, preferred, prober, cfg.Export.BuiltinFallback, logger)
	if err != nil {
		return nil, err
	}
	if !format.Alpha() && cfg.Export.Background == config.BackgroundTransparent {
		logger.Warn("format has no alpha channel, transparent areas will encode as black", "format", format)
	}

	path = OutputPath(path, cfg.Derived.Kind.String(), format)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating export file: %w", err)
	}
	out := &countingWriter{w: f}

	sink, err := capture.Open(format, out, capture.Options{FFmpegPath: cfg.Export.FFmpegPath, Logger: logger})
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}

	res, err := p.Run(ctx, Job{Config: cfg}, sink)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing export file: %w", closeErr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	res.Format = format
	res.Path = path
	res.Bytes = out.n
	logger.Info("export written", "path", path, "format", format, "encoder", format.Encoder(), "bytes", out.n)
	return res, nil
}

// OutputPath returns path with the extension of format. An empty path
// becomes "<kind>_alpha" plus the extension.
func OutputPath(path, kind string, format capture.Format) string {
	if path == "" {
		return kind + "_alpha" + format.Ext()
	}
	if ext := filepath.Ext(path); ext != "" {
		path = strings.TrimSuffix(path, ext)
	}
	return path + format.Ext()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
