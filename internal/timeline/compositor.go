package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"dubline/internal/config"
	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/media/pcm"
	"dubline/internal/segment"
	"dubline/internal/services"
)

// silenceDB is the attenuation used when the original track is muted.
const silenceDB = -100.0

// Codec decodes audio files into buffers and renders buffers to disk.
type Codec interface {
	Decode(ctx context.Context, path string) (*pcm.Buffer, error)
	Encode(ctx context.Context, buf *pcm.Buffer, path string) error
}

// Ducking policies.
const (
	DuckStatic  = config.DuckingStatic
	DuckDynamic = config.DuckingDynamic
)

// Options configures how layers are combined and rendered.
type Options struct {
	Ducking      string
	DuckDepthDB  float64
	CrossfadeMs  int
	Format       pcm.Format
	OutputFormat string
	TempDir      string
}

// OptionsFromConfig maps the [mix] and [paths] sections onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Ducking:      cfg.Mix.Ducking,
		DuckDepthDB:  cfg.Mix.DuckDepthDB,
		CrossfadeMs:  cfg.Mix.CrossfadeMs,
		Format:       pcm.Format{SampleRate: cfg.Mix.SampleRate, Channels: cfg.Mix.Channels},
		OutputFormat: cfg.Mix.OutputFormat,
		TempDir:      cfg.Paths.TempDir,
	}
}

// Request describes one composition.
type Request struct {
	Segments       []segment.Segment
	TotalDuration  float64
	BackgroundPath string
	OriginalVolume float64
	DubbedVolume   float64
}

// Issue records a recoverable problem encountered while composing.
type Issue struct {
	Subject string
	Message string
}

func (i Issue) String() string {
	if i.Subject == "" {
		return i.Message
	}
	return i.Subject + ": " + i.Message
}

// Mix is an in-memory composition.
type Mix struct {
	Buffer *pcm.Buffer
	Mask   VoiceMask
	Issues []Issue
	// Placed counts segments whose clip reached the voice layer.
	Placed int
}

// Result is a rendered composition.
type Result struct {
	Path     string
	Mask     VoiceMask
	Duration time.Duration
	Issues   []Issue
	Placed   int
}

// Compositor builds dubbed audio tracks.
type Compositor struct {
	codec  Codec
	opts   Options
	logger *slog.Logger
}

// New constructs a Compositor.
func New(codec Codec, opts Options, logger *slog.Logger) *Compositor {
	if strings.TrimSpace(opts.Ducking) == "" {
		opts.Ducking = DuckStatic
	}
	if strings.TrimSpace(opts.OutputFormat) == "" {
		opts.OutputFormat = "mp3"
	}
	return &Compositor{
		codec:  codec,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "timeline"),
	}
}

// BaseGainDB returns the uniform attenuation applied to the original track:
// -20*(1-v) for positive volumes and effective silence otherwise.
func BaseGainDB(originalVolume float64) float64 {
	if originalVolume > 0 {
		return -20 * (1 - originalVolume)
	}
	return silenceDB
}

// VoiceGainDB returns the adjustment applied to every clip: 20*(v-1).
func VoiceGainDB(dubbedVolume float64) float64 {
	return 20 * (dubbedVolume - 1)
}

func validateRequest(req Request) error {
	if math.IsNaN(req.TotalDuration) || math.IsInf(req.TotalDuration, 0) || req.TotalDuration <= 0 {
		return services.Wrap(services.ErrValidation, "timeline", "compose",
			fmt.Sprintf("total duration must be positive (got %v)", req.TotalDuration), nil)
	}
	for name, v := range map[string]float64{"original volume": req.OriginalVolume, "dubbed volume": req.DubbedVolume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return services.Wrap(services.ErrValidation, "timeline", "compose",
				fmt.Sprintf("%s must be finite and >= 0 (got %v)", name, v), nil)
		}
	}
	return nil
}

// Mixdown composes the dubbed track in memory. It only fails on invalid
// requests or cancellation; every per-input failure becomes an Issue.
func (c *Compositor) Mixdown(ctx context.Context, req Request) (Mix, error) {
	if err := validateRequest(req); err != nil {
		return Mix{}, err
	}
	if err := c.opts.Format.Validate(); err != nil {
		return Mix{}, services.Wrap(services.ErrConfiguration, "timeline", "compose", "mix format", err)
	}
	logger := logging.WithContext(ctx, c.logger)
	totalMs := int(req.TotalDuration * 1000)
	var mix Mix

	base := c.backgroundLayer(ctx, logger, req.BackgroundPath, totalMs, &mix)

	voice := pcm.Silent(c.opts.Format, totalMs)
	voiceDB := VoiceGainDB(req.DubbedVolume)
	for i, seg := range req.Segments {
		if err := ctx.Err(); err != nil {
			return Mix{}, err
		}
		if !seg.HasAudio() {
			continue
		}
		label := seg.Label(i)
		clip, err := c.codec.Decode(ctx, seg.AudioPath)
		if err == nil && clip.Format != c.opts.Format {
			err = fmt.Errorf("%w: clip is %d Hz/%d ch", pcm.ErrFormatMismatch, clip.Format.SampleRate, clip.Format.Channels)
		}
		if err != nil {
			c.recordIssue(logger, &mix, label, "segment audio skipped", "segment_audio_skipped", err,
				"verify the synthesized clip exists and is readable")
			continue
		}
		if req.DubbedVolume != 1.0 {
			clip.Gain(voiceDB)
		}
		startMs := int(seg.Start * 1000)
		if _, err := voice.Overlay(clip, startMs); err != nil {
			c.recordIssue(logger, &mix, label, "segment overlay failed", "segment_overlay_failed", err,
				"check the clip sample format")
			continue
		}
		mix.Mask = append(mix.Mask, Interval{StartMs: startMs, EndMs: startMs + clip.DurationMs()})
		mix.Placed++
	}

	baseDB := BaseGainDB(req.OriginalVolume)
	base.Gain(baseDB)
	policy := strings.ToLower(strings.TrimSpace(c.opts.Ducking))
	if policy == DuckDynamic && req.OriginalVolume > 0 && len(mix.Mask) > 0 {
		env := duckEnvelope(c.opts.Format, base.Frames(), mix.Mask.Merged(), c.opts.DuckDepthDB, c.opts.CrossfadeMs)
		base.ApplyEnvelope(env)
		logger.Debug("background ducked under voice",
			logging.Args(append(logging.DecisionAttrs("ducking", DuckDynamic, "voice intervals present"),
				logging.Float64("depth_db", c.opts.DuckDepthDB),
				logging.Int("voiced_ms", mix.Mask.VoicedMs()),
			)...)...)
	} else {
		logger.Debug("background attenuated uniformly",
			logging.Args(append(logging.DecisionAttrs("ducking", DuckStatic, policy),
				logging.Float64("gain_db", baseDB),
			)...)...)
	}

	if _, err := base.Overlay(voice, 0); err != nil {
		return Mix{}, services.Wrap(services.ErrTransient, "timeline", "compose", "final mix", err)
	}
	mix.Buffer = base
	return mix, nil
}

func (c *Compositor) backgroundLayer(ctx context.Context, logger *slog.Logger, path string, totalMs int, mix *Mix) *pcm.Buffer {
	if strings.TrimSpace(path) == "" {
		return pcm.Silent(c.opts.Format, totalMs)
	}
	buf, err := c.codec.Decode(ctx, path)
	if err == nil && buf.Format != c.opts.Format {
		err = fmt.Errorf("%w: background is %d Hz/%d ch", pcm.ErrFormatMismatch, buf.Format.SampleRate, buf.Format.Channels)
	}
	if err != nil {
		c.recordIssue(logger, mix, "background", "original audio unavailable; using silence", "background_fallback", err,
			"check the source video's audio track")
		return pcm.Silent(c.opts.Format, totalMs)
	}
	buf.Fit(totalMs)
	return buf
}

func (c *Compositor) recordIssue(logger *slog.Logger, mix *Mix, subject, msg, event string, err error, hint string) {
	mix.Issues = append(mix.Issues, Issue{Subject: subject, Message: fmt.Sprintf("%s: %v", msg, err)})
	logging.WarnWithContext(logger, msg, event,
		logging.String("subject", subject),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "dubbed track rendered without this input"),
	)
}

// Compose mixes the request and renders it to a uniquely named temp file.
// The caller owns the returned path. Partial output is removed on failure.
func (c *Compositor) Compose(ctx context.Context, req Request) (Result, error) {
	mix, err := c.Mixdown(ctx, req)
	if err != nil {
		return Result{}, err
	}
	ext := "." + strings.TrimPrefix(strings.ToLower(c.opts.OutputFormat), ".")
	path, err := fileutil.TempPath(c.opts.TempDir, "dubbed", ext)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "timeline", "render", "allocate output", err)
	}
	if err := c.codec.Encode(ctx, mix.Buffer, path); err != nil {
		_ = fileutil.RemoveQuietly(path)
		return Result{}, fmt.Errorf("render dubbed audio: %w", err)
	}
	duration := time.Duration(mix.Buffer.DurationMs()) * time.Millisecond
	logging.WithContext(ctx, c.logger).Info("dubbed audio rendered",
		logging.String("path", path),
		logging.Duration("duration", duration),
		logging.Int("segments_placed", mix.Placed),
		logging.Int("issues", len(mix.Issues)),
		logging.Float64("peak", float64(mix.Buffer.Peak())),
	)
	return Result{Path: path, Mask: mix.Mask, Duration: duration, Issues: mix.Issues, Placed: mix.Placed}, nil
}
