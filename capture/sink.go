// Package capture turns a sequence of rendered frames into an encoded clip.
//
// A Sink accepts frames one at a time at a fixed rate. WriteFrame returns
// only once the frame has been handed to the encoder, so callers can pace
// rendering on it and never drop or coalesce frames.
package capture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
)

// Errors returned by sinks and negotiation.
var (
	ErrCaptureUnavailable = errors.New("no capture format available")
	ErrFFmpegNotFound     = errors.New("ffmpeg not found")
	ErrFrameSize          = errors.New("frame size does not match stream")
	ErrNotStarted         = errors.New("sink not started")
	ErrUnknownFormat      = errors.New("unknown capture format")
)

// StreamSpec describes the stream a sink encodes.
type StreamSpec struct {
	Width   int
	Height  int
	FPS     int
	Bitrate int // bits/sec, 0 = encoder default
}

// Sink consumes rendered frames.
type Sink interface {
	// Start opens the stream. It must be called once before WriteFrame.
	Start(spec StreamSpec) error
	// WriteFrame encodes one frame and returns once it has been consumed.
	// img is not retained.
	WriteFrame(img *image.RGBA) error
	// Frames returns the number of frames consumed so far.
	Frames() int
	// Close finalizes the clip.
	Close() error
	// Abort discards the clip and releases resources.
	Abort()
}

// Format is an output clip format.
type Format string

const (
	FormatVP9  Format = "webm-vp9"
	FormatVP8  Format = "webm-vp8"
	FormatH264 Format = "mp4-h264"
	FormatGIF  Format = "gif"
)

// defaultChain is the negotiation order after the preferred format.
var defaultChain = []Format{FormatVP9, FormatVP8, FormatH264, FormatGIF}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range defaultChain {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encoder returns the ffmpeg encoder name, or "" for the built-in GIF encoder.
func (f Format) Encoder() string {
	switch f {
	case FormatVP9:
		return "libvpx-vp9"
	case FormatVP8:
		return "libvpx"
	case FormatH264:
		return "libx264"
	}
	return ""
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatH264:
		return ".mp4"
	case FormatGIF:
		return ".gif"
	}
	return ".webm"
}

// Alpha reports whether the format keeps the alpha channel.
func (f Format) Alpha() bool {
	return f == FormatVP9 || f == FormatVP8 || f == FormatGIF
}

// Chain returns the fallback order starting at f.
func (f Format) Chain() []Format {
	chain := []Format{f}
	for _, c := range defaultChain {
		if c != f {
			chain = append(chain, c)
		}
	}
	return chain
}

// Options configures sink construction.
type Options struct {
	FFmpegPath string
	Logger     *slog.Logger
}

// Open builds a sink for format f writing the clip to dst.
func Open(f Format, dst io.Writer, opts Options) (Sink, error) {
	switch f {
	case FormatGIF:
		return NewGIFSink(dst), nil
	case FormatVP9, FormatVP8, FormatH264:
		return NewFFmpegSink(opts.FFmpegPath, f, dst, opts.Logger), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

func checkFrame(spec StreamSpec, img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != spec.Width || b.Dy() != spec.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), spec.Width, spec.Height)
	}
	return nil
}
