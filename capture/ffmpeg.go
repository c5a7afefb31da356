package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// maxStderr bounds the ffmpeg diagnostics kept for error messages.
const maxStderr = 8 << 10

// FFmpegProber lists encoders by running "ffmpeg -encoders".
type FFmpegProber struct {
	Path string
}

// Encoders implements Prober.
func (p FFmpegProber) Encoders(ctx context.Context) (map[string]bool, error) {
	path, err := lookFFmpeg(p.Path)
	if err != nil {
		return nil, err
	}
	out, err := exec.CommandContext(ctx, path, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("listing ffmpeg encoders: %w", err)
	}
	return parseEncoders(bytes.NewReader(out)), nil
}

// parseEncoders reads the table printed by "ffmpeg -encoders". Rows follow a
// "------" separator; the second column is the encoder name.
func parseEncoders(r io.Reader) map[string]bool {
	encoders := make(map[string]bool)
	sc := bufio.NewScanner(r)
	inTable := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !inTable {
			inTable = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			encoders[fields[1]] = true
		}
	}
	return encoders
}

func lookFFmpeg(path string) (string, error) {
	if path == "" {
		path = "ffmpeg"
	}
	found, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	return found, nil
}

// FFmpegSink pipes raw RGBA frames into an ffmpeg process and streams the
// encoded clip to a writer.
type FFmpegSink struct {
	path   string
	format Format
	dst    io.Writer
	logger *slog.Logger

	spec   StreamSpec
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *limitedBuffer
	buf    []byte
	frames int
}

// NewFFmpegSink returns a sink encoding format f with the ffmpeg binary at
// path ("" searches PATH).
func NewFFmpegSink(path string, f Format, dst io.Writer, logger *slog.Logger) *FFmpegSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpegSink{path: path, format: f, dst: dst, logger: logger}
}

// Args returns the ffmpeg command line arguments for spec.
func (s *FFmpegSink) Args(spec StreamSpec) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", strconv.Itoa(spec.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", s.format.Encoder(),
	}

	switch s.format {
	case FormatVP9, FormatVP8:
		args = append(args, "-pix_fmt", "yuva420p", "-auto-alt-ref", "0")
	case FormatH264:
		args = append(args, "-pix_fmt", "yuv420p")
	}
	if spec.Bitrate > 0 {
		args = append(args, "-b:v", strconv.Itoa(spec.Bitrate))
	}

	if s.format == FormatH264 {
		// mp4 on a pipe needs a fragmented layout
		args = append(args, "-movflags", "frag_keyframe+empty_moov", "-f", "mp4")
	} else {
		args = append(args, "-f", "webm")
	}
	return append(args, "pipe:1")
}

// Start implements Sink.
func (s *FFmpegSink) Start(spec StreamSpec) error {
	path, err := lookFFmpeg(s.path)
	if err != nil {
		return err
	}

	cmd := exec.Command(path, s.Args(spec)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("creating ffmpeg pipe: %w", err)
	}
	s.stderr = &limitedBuffer{max: maxStderr}
	cmd.Stdout = s.dst
	cmd.Stderr = s.stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}
	s.logger.Debug("ffmpeg started", "format", s.format, "encoder", s.format.Encoder(),
		"width", spec.Width, "height", spec.Height, "fps", spec.FPS)

	s.spec = spec
	s.cmd = cmd
	s.stdin = stdin
	s.buf = make([]byte, spec.Width*spec.Height*4)
	s.frames = 0
	return nil
}

// WriteFrame implements Sink. It returns once ffmpeg has read the frame.
func (s *FFmpegSink) WriteFrame(img *image.RGBA) error {
	if s.cmd == nil {
		return ErrNotStarted
	}
	if err := checkFrame(s.spec, img); err != nil {
		return err
	}
	Unpremultiply(s.buf, img)
	if _, err := s.stdin.Write(s.buf); err != nil {
		return fmt.Errorf("writing frame %d to ffmpeg: %w%s", s.frames, err, s.stderr.suffix())
	}
	s.frames++
	return nil
}

// Frames implements Sink.
func (s *FFmpegSink) Frames() int {
	return s.frames
}

// Close implements Sink. It waits for ffmpeg to flush the clip.
func (s *FFmpegSink) Close() error {
	if s.cmd == nil {
		return ErrNotStarted
	}
	cmd := s.cmd
	s.cmd = nil

	closeErr := s.stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w%s", err, s.stderr.suffix())
	}
	if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) {
		return fmt.Errorf("closing ffmpeg input: %w", closeErr)
	}
	return nil
}

// Abort implements Sink.
func (s *FFmpegSink) Abort() {
	if s.cmd == nil {
		return
	}
	cmd := s.cmd
	s.cmd = nil

	s.stdin.Close()
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
	cmd.Wait()
	s.logger.Debug("ffmpeg aborted", "frames", s.frames)
}

// Unpremultiply writes img as straight-alpha RGBA bytes into dst, which must
// hold 4*width*height bytes.
func Unpremultiply(dst []byte, img *image.RGBA) {
	b := img.Bounds()
	w := b.Dx()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < w; x++ {
			r, g, bl, a := row[4*x], row[4*x+1], row[4*x+2], row[4*x+3]
			switch a {
			case 0:
				dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
			case 0xff:
				dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, bl, a
			default:
				dst[i] = unmul(r, a)
				dst[i+1] = unmul(g, a)
				dst[i+2] = unmul(bl, a)
				dst[i+3] = a
			}
			i += 4
		}
	}
}

func unmul(c, a uint8) uint8 {
	v := (uint32(c)*0xff + uint32(a)/2) / uint32(a)
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}

// limitedBuffer keeps the first max bytes written to it.
type limitedBuffer struct {
	bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}

// suffix formats captured diagnostics for an error message.
func (b *limitedBuffer) suffix() string {
	if b == nil {
		return ""
	}
	msg := strings.TrimSpace(b.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}
