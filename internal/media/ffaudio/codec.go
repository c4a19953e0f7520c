// Package ffaudio decodes arbitrary audio files into PCM buffers and renders
// buffers back to disk, shelling out to ffmpeg for every container or codec
// that is not plain WAV.
package ffaudio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/media/pcm"
	"dubline/internal/procrun"
	"dubline/internal/services"
)

// Codec converts between files and pcm.Buffer values at a fixed format.
type Codec struct {
	runner  procrun.Runner
	ffmpeg  string
	format  pcm.Format
	tempDir string
	timeout time.Duration
	bitrate string
	logger  *slog.Logger
}

// Option customizes a Codec.
type Option func(*Codec)

// WithRunner injects a custom process runner.
func WithRunner(r procrun.Runner) Option {
	return func(c *Codec) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logging.NewComponentLogger(logger, "ffaudio")
	}
}

// WithTempDir sets the scratch directory for intermediate WAV files.
func WithTempDir(dir string) Option {
	return func(c *Codec) { c.tempDir = dir }
}

// WithTimeout bounds each ffmpeg invocation.
func WithTimeout(d time.Duration) Option {
	return func(c *Codec) { c.timeout = d }
}

// WithBitrate sets the lossy output bitrate (e.g. "192k").
func WithBitrate(bitrate string) Option {
	return func(c *Codec) { c.bitrate = strings.TrimSpace(bitrate) }
}

// New constructs a codec that decodes everything into format.
func New(ffmpegBinary string, format pcm.Format, opts ...Option) *Codec {
	c := &Codec{
		runner:  procrun.NewExec(),
		ffmpeg:  strings.TrimSpace(ffmpegBinary),
		format:  format,
		timeout: 5 * time.Minute,
		bitrate: "192k",
		logger:  logging.NewNop(),
	}
	if c.ffmpeg == "" {
		c.ffmpeg = "ffmpeg"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format returns the sample layout produced by Decode.
func (c *Codec) Format() pcm.Format {
	return c.format
}

// Decode loads path into a buffer at the codec's format. WAV files already at
// the target format are read directly; everything else is resampled by ffmpeg.
func (c *Codec) Decode(ctx context.Context, path string) (*pcm.Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "ffaudio", "decode", fmt.Sprintf("audio file %q missing", path), err)
		}
		return nil, services.Wrap(services.ErrValidation, "ffaudio", "decode", "stat audio file", err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "ffaudio", "decode", fmt.Sprintf("%q is a directory", path), nil)
	}

	if isWAV(path) {
		if buf, err := pcm.ReadWAVFile(path); err == nil && buf.Format == c.format {
			return buf, nil
		}
	}

	tmp, err := fileutil.TempPath(c.tempDir, "decode-"+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), ".wav")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ffaudio", "decode", "allocate temp file", err)
	}
	defer func() {
		if rmErr := fileutil.RemoveQuietly(tmp); rmErr != nil {
			c.logger.Debug("temp wav cleanup failed", logging.String("path", tmp), logging.Error(rmErr))
		}
	}()

	cmd := procrun.Command{
		Binary:  c.ffmpeg,
		Args:    DecodeArgs(path, tmp, c.format),
		Timeout: c.timeout,
	}
	if _, err := procrun.RunChecked(ctx, c.runner, cmd); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	buf, err := pcm.ReadWAVFile(tmp)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ffaudio", "decode", "read transcoded wav", err)
	}
	if buf.Format != c.format {
		return nil, services.Wrap(services.ErrExternalTool, "ffaudio", "decode",
			fmt.Sprintf("ffmpeg produced %d Hz/%d ch, want %d Hz/%d ch",
				buf.Format.SampleRate, buf.Format.Channels, c.format.SampleRate, c.format.Channels), nil)
	}
	return buf, nil
}

// Encode writes buf to path. The container is chosen from the extension:
// ".wav" is written natively, anything else is transcoded by ffmpeg. Partial
// output is removed on failure.
func (c *Codec) Encode(ctx context.Context, buf *pcm.Buffer, path string) error {
	if buf == nil {
		return services.Wrap(services.ErrValidation, "ffaudio", "encode", "nil buffer", nil)
	}
	if isWAV(path) {
		if err := pcm.WriteWAVFile(path, buf); err != nil {
			return services.Wrap(services.ErrExternalTool, "ffaudio", "encode", "write wav", err)
		}
		return nil
	}

	tmp, err := fileutil.TempPath(c.tempDir, "encode", ".wav")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "ffaudio", "encode", "allocate temp file", err)
	}
	defer func() { _ = fileutil.RemoveQuietly(tmp) }()

	if err := pcm.WriteWAVFile(tmp, buf); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffaudio", "encode", "write intermediate wav", err)
	}
	cmd := procrun.Command{
		Binary:  c.ffmpeg,
		Args:    EncodeArgs(tmp, path, c.bitrate),
		Timeout: c.timeout,
	}
	if _, err := procrun.RunChecked(ctx, c.runner, cmd); err != nil {
		_ = fileutil.RemoveQuietly(path)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// DecodeArgs builds the ffmpeg arguments that resample src into a 16-bit WAV.
func DecodeArgs(src, dst string, format pcm.Format) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", src,
		"-vn",
		"-ac", fmt.Sprint(format.Channels),
		"-ar", fmt.Sprint(format.SampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
}

// EncodeArgs builds the ffmpeg arguments that transcode a WAV into the
// container implied by dst's extension.
func EncodeArgs(src, dst, bitrate string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", src}
	if codec := codecForExt(filepath.Ext(dst)); codec != "" {
		args = append(args, "-c:a", codec)
	}
	if bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	return append(args, dst)
}

func codecForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "libmp3lame"
	case ".m4a", ".aac", ".mp4":
		return "aac"
	case ".ogg", ".opus":
		return "libopus"
	case ".flac":
		return "flac"
	default:
		return ""
	}
}

func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
