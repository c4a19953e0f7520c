package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dubline/internal/config"
	"dubline/internal/encoding"
	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/media/ffaudio"
	"dubline/internal/media/pcm"
	"dubline/internal/media/video"
	"dubline/internal/procrun"
	"dubline/internal/segment"
	"dubline/internal/services"
	"dubline/internal/subtitles"
	"dubline/internal/timeline"
)

// Progress stages reported through ProgressFunc, in order.
const (
	StagePreparingAudio     = "preparing audio"
	StagePreparingSubtitles = "preparing subtitles"
	StageRendering          = "rendering"
)

// ProgressFunc receives a human-readable stage name at each transition.
type ProgressFunc func(stage string)

// VideoSource is an opened source video.
type VideoSource = video.Source

// VideoOpener opens source videos.
type VideoOpener interface {
	Open(ctx context.Context, path string) (video.Source, error)
}

// Compositor renders the dubbed audio track.
type Compositor interface {
	Compose(ctx context.Context, req timeline.Request) (timeline.Result, error)
}

// Encoder runs the preview trim and the final merge.
type Encoder interface {
	Merge(ctx context.Context, req encoding.MergeRequest) error
	Trim(ctx context.Context, src, dst string, seconds float64) error
}

// Exporter runs export jobs. It holds no per-job state and may be shared.
type Exporter struct {
	opener     VideoOpener
	compositor Compositor
	encoder    Encoder
	tempDir    string
	progress   ProgressFunc
	logger     *slog.Logger
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithProgress installs a progress sink.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Exporter) { e.progress = fn }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logging.NewComponentLogger(logger, "export") }
}

// New assembles an Exporter from its collaborators. Temporary files are
// created under tempDir.
func New(opener VideoOpener, compositor Compositor, encoder Encoder, tempDir string, opts ...Option) *Exporter {
	e := &Exporter{
		opener:     opener,
		compositor: compositor,
		encoder:    encoder,
		tempDir:    tempDir,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig wires the ffmpeg-backed collaborators. A nil runner uses
// real subprocesses.
func NewFromConfig(cfg *config.Config, runner procrun.Runner, logger *slog.Logger, opts ...Option) *Exporter {
	if runner == nil {
		runner = procrun.NewExec()
	}
	format := pcm.Format{SampleRate: cfg.Mix.SampleRate, Channels: cfg.Mix.Channels}
	opener := video.NewOpener(cfg.FFmpeg.FFmpegBinary, cfg.FFmpeg.FFprobeBinary, format,
		video.WithRunner(runner),
		video.WithLogger(logger),
		video.WithTimeouts(cfg.ProbeTimeout(), cfg.ExtractTimeout()),
		video.WithPreferredLanguage(cfg.Mix.BackgroundLanguage),
	)
	codec := ffaudio.New(cfg.FFmpeg.FFmpegBinary, format,
		ffaudio.WithRunner(runner),
		ffaudio.WithLogger(logger),
		ffaudio.WithTempDir(cfg.Paths.TempDir),
		ffaudio.WithTimeout(cfg.ExtractTimeout()),
		ffaudio.WithBitrate(cfg.Mix.OutputBitrate),
	)
	encoder := encoding.NewEncoder(cfg, logger)
	encoder.WithCommandRunner(runner)

	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(opener, timeline.New(codec, timeline.OptionsFromConfig(cfg), logger), encoder, cfg.Paths.TempDir, opts...)
}

// Export runs job and reports whether the merge succeeded.
func (e *Exporter) Export(ctx context.Context, job Job) bool {
	return e.Run(ctx, job).Success
}

// Run executes job. It never panics and always removes the job's temporary
// files before returning.
func (e *Exporter) Run(ctx context.Context, job Job) (out Outcome) {
	started := time.Now()
	ctx = services.WithJobID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, e.logger)
	temps := newArtifacts(logger)

	defer func() {
		if r := recover(); r != nil {
			out.Success = false
			out.Err = services.Wrap(services.ErrTransient, "export", "run", fmt.Sprintf("panic: %v", r), nil)
		}
		temps.cleanup()
		out.Duration = time.Since(started)
		if out.Success {
			logger.Info("export complete",
				logging.String(logging.FieldEventType, "export_complete"),
				logging.String("output", job.OutputPath),
				logging.Duration("elapsed", out.Duration),
				logging.Int("segments", out.SegmentsUsed),
				logging.Int("issues", len(out.Issues)),
			)
			return
		}
		logging.ErrorWithContext(logger, "export failed", "export_failed",
			logging.String("output", job.OutputPath),
			logging.String("error_kind", services.Kind(out.Err)),
			logging.Error(out.Err),
			logging.String(logging.FieldErrorHint, hintFor(out.Err)),
		)
	}()

	if err := e.run(ctx, job, temps, &out); err != nil {
		out.Err = err
		return out
	}
	out.Success = true
	return out
}

func (e *Exporter) run(ctx context.Context, job Job, temps *artifacts, out *Outcome) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if e.opener == nil || e.compositor == nil || e.encoder == nil {
		return services.Wrap(services.ErrConfiguration, "export", "run", "exporter not fully configured", nil)
	}
	settings := job.Config

	ctx = e.enter(ctx, StagePreparingAudio)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("export started",
		logging.String(logging.FieldEventType, "export_start"),
		logging.String("video", job.VideoPath),
		logging.String("output", job.OutputPath),
		logging.Int("segments", len(job.Segments)),
		logging.Bool("preview", settings.Previewing()),
	)

	total, background, err := e.prepareSource(ctx, logger, job, temps, out)
	if err != nil {
		return err
	}

	segments := job.Segments
	if settings.Previewing() {
		if settings.PreviewDuration < total {
			total = settings.PreviewDuration
		}
		segments = segment.StartingBefore(segments, settings.PreviewDuration)
		logger.Debug("preview window applied",
			logging.Float64("preview_seconds", settings.PreviewDuration),
			logging.Int("segments_kept", len(segments)),
			logging.Int("segments_dropped", len(job.Segments)-len(segments)),
		)
	}
	out.SegmentsUsed = len(segments)
	logger.Info("composing dubbed audio",
		logging.Int("segments", len(segments)),
		logging.Int("segments_with_audio", segment.WithAudio(segments)),
		logging.Float64("duration_seconds", total),
	)

	composed, err := e.compositor.Compose(ctx, timeline.Request{
		Segments:       segments,
		TotalDuration:  total,
		BackgroundPath: background,
		OriginalVolume: settings.OriginalVolume,
		DubbedVolume:   settings.DubbedVolume,
	})
	if composed.Path != "" {
		temps.add(composed.Path)
	}
	if err != nil {
		return fmt.Errorf("compose dubbed audio: %w", err)
	}
	out.VoicedSegments = composed.Placed
	for _, issue := range composed.Issues {
		out.Issues = append(out.Issues, issue.String())
	}

	ctx = e.enter(ctx, StagePreparingSubtitles)
	srtPath := ""
	if settings.BurnSubtitles {
		srtPath, err = e.writeSubtitles(ctx, segments, settings.MaxLineWidth, total, temps)
		if err != nil {
			return err
		}
	}

	ctx = e.enter(ctx, StageRendering)
	videoPath := job.VideoPath
	if settings.Previewing() {
		ext := filepath.Ext(job.VideoPath)
		if ext == "" {
			ext = ".mp4"
		}
		trimmed, err := fileutil.TempPath(e.tempDir, "preview", ext)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "export", "trim", "allocate preview path", err)
		}
		temps.add(trimmed)
		if err := e.encoder.Trim(ctx, job.VideoPath, trimmed, settings.PreviewDuration); err != nil {
			return fmt.Errorf("trim preview: %w", err)
		}
		videoPath = trimmed
	}

	return e.encoder.Merge(ctx, encoding.MergeRequest{
		VideoPath:     videoPath,
		AudioPath:     composed.Path,
		OutputPath:    job.OutputPath,
		SubtitlePath:  srtPath,
		BurnSubtitles: settings.BurnSubtitles,
		FontSize:      settings.FontSize,
	})
}

// prepareSource opens the video, reads its duration, and extracts the
// background track when it will be heard. Extraction failures degrade to a
// silent background.
func (e *Exporter) prepareSource(ctx context.Context, logger *slog.Logger, job Job, temps *artifacts, out *Outcome) (float64, string, error) {
	src, err := e.opener.Open(ctx, job.VideoPath)
	if err != nil {
		return 0, "", fmt.Errorf("open video: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Debug("video close failed", logging.Error(cerr))
		}
	}()

	total := src.Duration()
	if !(total > 0) {
		return 0, "", services.Wrap(services.ErrValidation, "export", "open video",
			fmt.Sprintf("video duration must be positive (got %v)", total), nil)
	}
	if job.Config.OriginalVolume <= 0 || !src.HasAudio() {
		return total, "", nil
	}

	background, err := fileutil.TempPath(e.tempDir, "original", ".wav")
	if err == nil {
		temps.add(background)
		err = src.ExtractAudio(ctx, background)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, "", ctxErr
		}
		out.Issues = append(out.Issues, "background: extraction failed; using silence: "+err.Error())
		logging.WarnWithContext(logger, "original audio extraction failed; using silence", "background_extract_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the source video's audio track"),
			logging.String(logging.FieldImpact, "dubbed video has no background audio"),
		)
		return total, "", nil
	}
	return total, background, nil
}

func (e *Exporter) writeSubtitles(ctx context.Context, segments []segment.Segment, width int, total float64, temps *artifacts) (string, error) {
	path, err := fileutil.TempPath(e.tempDir, "subtitles", ".srt")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "export", "subtitles", "allocate subtitle path", err)
	}
	temps.add(path)
	if err := subtitles.WriteSRT(path, segments, width); err != nil {
		return "", services.Wrap(services.ErrTransient, "export", "subtitles", "write srt", err)
	}
	logger := logging.WithContext(ctx, e.logger)
	for _, issue := range subtitles.ValidateContent(path, total) {
		logging.WarnWithContext(logger, "subtitle validation issue", "subtitle_validation",
			logging.String("issue", issue),
			logging.String(logging.FieldErrorHint, "check segment timings against the video length"),
			logging.String(logging.FieldImpact, "subtitles may display incorrectly"),
		)
	}
	logger.Debug("subtitles formatted", logging.String("path", path), logging.Int("cues", len(segments)))
	return path, nil
}

func (e *Exporter) enter(ctx context.Context, stage string) context.Context {
	if e.progress != nil {
		e.progress(stage)
	}
	return services.WithStage(ctx, stage)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation):
		return "fix the job inputs and retry"
	case errors.Is(err, services.ErrNotFound):
		return "check that the input video exists"
	case errors.Is(err, services.ErrTimeout):
		return "raise the ffmpeg timeouts in config"
	case errors.Is(err, services.ErrExternalTool):
		return "inspect the ffmpeg output above"
	case errors.Is(err, context.Canceled):
		return "export was cancelled"
	default:
		return `rerun with logging.level = "debug"`
	}
}
