package capture

import (
	"context"
	"log/slog"
)

// Prober lists the encoders an external tool provides.
type Prober interface {
	Encoders(ctx context.Context) (map[string]bool, error)
}

// Negotiate walks the fallback chain from preferred and returns the first
// available format. ffmpeg formats are available when the prober lists their
// encoder; GIF is available when requested or when builtinFallback is set.
// A failing prober only rules out the ffmpeg formats.
func Negotiate(ctx context.Context, preferred Format, p Prober, builtinFallback bool, logger *slog.Logger) (Format, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var encoders map[string]bool
	if p != nil {
		var err error
		encoders, err = p.Encoders(ctx)
		if err != nil {
			logger.Warn("encoder probe failed", "error", err)
		}
	}

	for _, f := range preferred.Chain() {
		if f == FormatGIF {
			if builtinFallback || f == preferred {
				if f != preferred {
					logger.Warn("falling back to built-in encoder", "preferred", preferred, "format", f)
				}
				return f, nil
			}
			continue
		}
		if encoders[f.Encoder()] {
			if f != preferred {
				logger.Warn("preferred format unavailable", "preferred", preferred, "format", f)
			}
			return f, nil
		}
	}
	return "", ErrCaptureUnavailable
}
