package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/weatherloop/config"
)

// Minimum window dimensions
const (
	MinScreenWidth  = 640
	MinScreenHeight = 720
)

// Options configures the preview shell.
type Options struct {
	// ExportPath is where the E key writes clips. Empty uses
	// "<kind>_alpha" plus the format extension.
	ExportPath string
	// OutputDir receives per-export telemetry when set.
	OutputDir string
	Logger    *slog.Logger
}

// WindowSize returns the initial window size for cfg: the frame at preview
// scale next to the control panel.
func WindowSize(cfg *config.Config) (int32, int32) {
	scale := cfg.Preview.Scale
	w := int32(math.Round(float64(cfg.Derived.Width)*scale)) + int32(cfg.Preview.PanelWidth)
	h := int32(math.Round(float64(cfg.Derived.Height) * scale))
	return max(w, MinScreenWidth), max(h, MinScreenHeight)
}
