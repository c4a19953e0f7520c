// Package video opens source videos for export: it probes duration and audio
// streams with ffprobe and extracts the chosen background track with ffmpeg.
package video

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"dubline/internal/logging"
	"dubline/internal/media/audio"
	"dubline/internal/media/ffprobe"
	"dubline/internal/media/pcm"
	"dubline/internal/procrun"
	"dubline/internal/services"
)

// Source is an opened video. Close releases it; ExtractAudio fails afterwards.
type Source interface {
	Duration() float64
	HasAudio() bool
	ExtractAudio(ctx context.Context, dest string) error
	Close() error
}

// Opener probes videos on disk.
type Opener struct {
	runner            procrun.Runner
	ffprobe           string
	ffmpeg            string
	probeTimeout      time.Duration
	extractTimeout    time.Duration
	format            pcm.Format
	preferredLanguage string
	logger            *slog.Logger
}

// Option customizes an Opener.
type Option func(*Opener)

// WithRunner injects a custom process runner.
func WithRunner(r procrun.Runner) Option {
	return func(o *Opener) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) {
		o.logger = logging.NewComponentLogger(logger, "video")
	}
}

// WithTimeouts bounds probing and extraction.
func WithTimeouts(probe, extract time.Duration) Option {
	return func(o *Opener) {
		if probe > 0 {
			o.probeTimeout = probe
		}
		if extract > 0 {
			o.extractTimeout = extract
		}
	}
}

// WithPreferredLanguage ranks background tracks in this language first.
func WithPreferredLanguage(lang string) Option {
	return func(o *Opener) { o.preferredLanguage = strings.TrimSpace(lang) }
}

// NewOpener constructs an Opener that extracts audio in the given format.
func NewOpener(ffmpegBinary, ffprobeBinary string, format pcm.Format, opts ...Option) *Opener {
	o := &Opener{
		runner:         procrun.NewExec(),
		ffmpeg:         strings.TrimSpace(ffmpegBinary),
		ffprobe:        strings.TrimSpace(ffprobeBinary),
		probeTimeout:   30 * time.Second,
		extractTimeout: 5 * time.Minute,
		format:         format,
		logger:         logging.NewNop(),
	}
	if o.ffmpeg == "" {
		o.ffmpeg = "ffmpeg"
	}
	if o.ffprobe == "" {
		o.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open probes path and returns a Source.
func (o *Opener) Open(ctx context.Context, path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "video", "open", fmt.Sprintf("video %q missing", path), err)
		}
		return nil, services.Wrap(services.ErrValidation, "video", "open", "stat video", err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "video", "open", fmt.Sprintf("%q is a directory", path), nil)
	}

	probe, err := ffprobe.Inspect(ctx, o.runner, o.ffprobe, path, o.probeTimeout)
	if err != nil {
		return nil, err
	}
	duration := probe.DurationSeconds()
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		duration = 0
	}
	selection := audio.Select(probe.AudioStreams(), o.preferredLanguage)
	if selection.Found() {
		o.logger.Debug("background track selected",
			logging.String("video", path),
			logging.Int("stream_index", selection.Index),
			logging.String("track", selection.Label()),
		)
	}
	return &source{opener: o, path: path, duration: duration, selection: selection}, nil
}

type source struct {
	opener    *Opener
	path      string
	duration  float64
	selection audio.Selection
	closed    atomic.Bool
}

func (s *source) Duration() float64 { return s.duration }

func (s *source) HasAudio() bool { return s.selection.Found() }

func (s *source) ExtractAudio(ctx context.Context, dest string) error {
	if s.closed.Load() {
		return services.Wrap(services.ErrValidation, "video", "extract audio", "source closed", nil)
	}
	if !s.selection.Found() {
		return services.Wrap(services.ErrNotFound, "video", "extract audio", "no audio stream", nil)
	}
	cmd := procrun.Command{
		Binary:  s.opener.ffmpeg,
		Args:    ExtractArgs(s.path, dest, s.selection.Position, s.opener.format),
		Timeout: s.opener.extractTimeout,
	}
	if _, err := procrun.RunChecked(ctx, s.opener.runner, cmd); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

func (s *source) Close() error {
	s.closed.Store(true)
	return nil
}

// ExtractArgs builds the ffmpeg arguments that copy one audio stream into a
// 16-bit WAV at the mix format.
func ExtractArgs(src, dst string, position int, format pcm.Format) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", src,
		"-map", fmt.Sprintf("0:a:%d", position),
		"-vn",
		"-ac", fmt.Sprint(format.Channels),
		"-ar", fmt.Sprint(format.SampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
}
