package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/export"
	"github.com/pthm-cable/weatherloop/game"
	"github.com/pthm-cable/weatherloop/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "", "Weather kind: rain or snow (empty = use config)")
	size := flag.String("size", "", "Frame size WxH (empty = use config)")
	fps := flag.Int("fps", 0, "Frames per second (0 = use config)")
	duration := flag.Float64("duration", 0, "Loop duration in seconds (0 = use config)")
	seed := flag.Uint64("seed", 0, "Particle seed, 0 to 4294967295 (unset = use config)")
	headless := flag.Bool("headless", false, "Export one loop without opening a window")
	out := flag.String("out", "", "Export path (extension follows the format)")
	format := flag.String("format", "", "Export format: webm-vp9, webm-vp8, mp4-h264 or gif (empty = use config)")
	bg := flag.String("bg", "", "Export background: transparent, solid, black or checker (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	printParams := flag.Bool("print-params", false, "Print the shareable parameters and exit")
	paramsFormat := flag.String("params-format", "json", "Format for -print-params: json or yaml")
	printCommand := flag.Bool("print-command", false, "Print the generator command line and exit")
	logText := flag.Bool("log-text", false, "Log as text instead of JSON")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if *logText {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides are validated together with the file
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *size != "" {
		cfg.Size = *size
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if isSet("seed") {
		v, err := config.SeedValue(*seed)
		if err != nil {
			slog.Error("invalid seed", "error", err)
			os.Exit(1)
		}
		cfg.Seed = v
	}
	if *format != "" {
		cfg.Export.Format = *format
	}
	if *bg != "" {
		cfg.Export.Background = *bg
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	switch {
	case *printParams:
		data, err := config.ExportParams(cfg, *paramsFormat)
		if err != nil {
			slog.Error("failed to export params", "error", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	case *printCommand:
		fmt.Println(config.GeneratorCommand(cfg))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		if err := runHeadless(ctx, cfg, *out, *outputDir, logger); err != nil {
			slog.Error("export failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	w, h := game.WindowSize(cfg)
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(w, h, "Weather Loop")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Preview.TargetFPS))

	g := game.NewGame(cfg, game.Options{
		ExportPath: *out,
		OutputDir:  *outputDir,
		Logger:     logger,
	})
	defer g.Unload()

	if err := g.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("preview stopped", "error", err)
	}
}

// runHeadless exports one loop of cfg to path.
func runHeadless(ctx context.Context, cfg *config.Config, path, outputDir string, logger *slog.Logger) error {
	p := &export.Pipeline{Logger: logger}
	if outputDir != "" {
		dir := filepath.Join(outputDir, "export-"+time.Now().Format("20060102-150405"))
		om, err := telemetry.NewOutputManager(dir)
		if err != nil {
			return err
		}
		defer om.Close()
		p.Output = om
	}

	slog.Info("starting headless export",
		"kind", cfg.Derived.Kind,
		"size", config.FormatSize(cfg.Derived.Width, cfg.Derived.Height),
		"fps", cfg.FPS,
		"duration", cfg.Duration,
		"seed", cfg.Seed,
		"format", cfg.Export.Format,
	)

	res, err := p.ExportFile(ctx, cfg, path)
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	return nil
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
