package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dubline/internal/config"
	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/procrun"
	"dubline/internal/services"
)

// Encoder runs merge and trim invocations.
type Encoder struct {
	runner       procrun.Runner
	ffmpeg       string
	preset       Preset
	mergeTimeout time.Duration
	trimTimeout  time.Duration
	logger       *slog.Logger
}

// NewEncoder constructs an Encoder from configuration.
func NewEncoder(cfg *config.Config, logger *slog.Logger) *Encoder {
	return &Encoder{
		runner:       procrun.NewExec(),
		ffmpeg:       cfg.FFmpeg.FFmpegBinary,
		preset:       PresetFromConfig(cfg),
		mergeTimeout: cfg.MergeTimeout(),
		trimTimeout:  cfg.TrimTimeout(),
		logger:       logging.NewComponentLogger(logger, "encoder"),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Encoder) WithCommandRunner(r procrun.Runner) {
	if e != nil && r != nil {
		e.runner = r
	}
}

// Merge encodes the final video. Output is written to a staging file beside
// OutputPath and renamed into place only after ffmpeg exits zero.
func (e *Encoder) Merge(ctx context.Context, req MergeRequest) error {
	if e == nil {
		return fmt.Errorf("encoder not initialized")
	}
	for name, p := range map[string]string{"video": req.VideoPath, "audio": req.AudioPath, "output": req.OutputPath} {
		if strings.TrimSpace(p) == "" {
			return services.Wrap(services.ErrValidation, "encoding", "merge", name+" path is required", nil)
		}
	}
	outDir := filepath.Dir(req.OutputPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "encoding", "merge", "create output directory", err)
	}

	final := req.OutputPath
	staging := filepath.Join(outDir, ".merge-"+uuid.NewString()[:8]+"-"+filepath.Base(final))
	req.OutputPath = staging

	args := BuildMergeArgs(req, e.preset)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("merge started",
		logging.String("video", req.VideoPath),
		logging.String("output", final),
		logging.Bool("burn_subtitles", req.burnsSubtitles()),
	)
	logger.Debug("ffmpeg merge command", logging.String("args", strings.Join(args, " ")))

	res, err := procrun.RunChecked(ctx, e.runner, procrun.Command{Binary: e.ffmpeg, Args: args, Timeout: e.mergeTimeout})
	if err != nil {
		_ = fileutil.RemoveQuietly(staging)
		return fmt.Errorf("merge: %w", err)
	}
	if !fileutil.Exists(staging) {
		return services.Wrap(services.ErrExternalTool, "encoding", "merge", "ffmpeg did not produce output", nil)
	}
	if err := os.Rename(staging, final); err != nil {
		_ = fileutil.RemoveQuietly(staging)
		return services.Wrap(services.ErrTransient, "encoding", "merge", "move output into place", err)
	}
	logger.Info("merge complete",
		logging.String(logging.FieldEventType, "merge_complete"),
		logging.String("output", final),
		logging.Duration("elapsed", res.Elapsed),
	)
	return nil
}

// Trim stream-copies the first seconds of src into dst.
func (e *Encoder) Trim(ctx context.Context, src, dst string, seconds float64) error {
	if e == nil {
		return fmt.Errorf("encoder not initialized")
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return services.Wrap(services.ErrValidation, "encoding", "trim", fmt.Sprintf("duration must be positive (got %v)", seconds), nil)
	}
	args := BuildTrimArgs(src, dst, seconds)
	if _, err := procrun.RunChecked(ctx, e.runner, procrun.Command{Binary: e.ffmpeg, Args: args, Timeout: e.trimTimeout}); err != nil {
		_ = fileutil.RemoveQuietly(dst)
		return fmt.Errorf("trim: %w", err)
	}
	logging.WithContext(ctx, e.logger).Debug("preview trimmed",
		logging.String("source", src),
		logging.Float64("seconds", seconds),
	)
	return nil
}
