package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dubline/internal/config"
	"dubline/internal/export"
	"dubline/internal/preflight"
	"dubline/internal/segment"
	"dubline/internal/services"
)

type exportFlags struct {
	video          string
	segments       string
	output         string
	originalVolume float64
	dubbedVolume   float64
	burn           bool
	fontSize       int
	maxLineWidth   int
	preview        float64
	skipPreflight  bool
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a dubbed video from a source video and a segment manifest",
		Example: `  dubline export --video talk.mp4 --segments talk.segments.yaml --output talk.vi.mp4
  dubline export --video talk.mp4 --segments talk.segments.yaml --output preview.mp4 --preview 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			job, err := buildExportJob(cmd, cfg, flags)
			if err != nil {
				return err
			}

			runCtx := services.WithRequestID(cmd.Context(), uuid.NewString())
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if !flags.skipPreflight {
				results := preflight.RunAll(runCtx, cfg, ctx.runner)
				if failed := preflight.Failed(results); len(failed) > 0 {
					for _, r := range failed {
						fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(r.Name, statusError, r.Detail, shouldColorize(cmd.ErrOrStderr())))
					}
					return fmt.Errorf("preflight failed: %d check(s) did not pass (run `dubline check` for details)", len(failed))
				}
			}

			unlock, err := lockOutput(job.OutputPath)
			if err != nil {
				return err
			}
			defer unlock()

			exporter := export.NewFromConfig(cfg, ctx.runner, logger,
				export.WithProgress(func(stage string) {
					fmt.Fprintln(out, renderStatusLine("Export", statusInfo, stage, colorize))
				}),
			)
			outcome := exporter.Run(runCtx, job)
			printOutcome(out, job, outcome, colorize)
			if !outcome.Success {
				return fmt.Errorf("export failed: %w", outcome.Err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.video, "video", "", "Source video path (required)")
	f.StringVar(&flags.segments, "segments", "", "Segment manifest, YAML or JSON (required)")
	f.StringVarP(&flags.output, "output", "o", "", "Output video path (required)")
	f.Float64Var(&flags.originalVolume, "original-volume", 0, "Background volume, 0 mutes it (default from config)")
	f.Float64Var(&flags.dubbedVolume, "dubbed-volume", 0, "Dubbed voice volume (default from config)")
	f.BoolVar(&flags.burn, "burn-subtitles", false, "Burn subtitles into the video (default from config)")
	f.IntVar(&flags.fontSize, "font-size", 0, "Subtitle font size (default from config)")
	f.IntVar(&flags.maxLineWidth, "max-line-width", 0, "Subtitle wrap width in characters, 0 disables wrapping (default from config)")
	f.Float64Var(&flags.preview, "preview", 0, "Only render the first N seconds (default from config)")
	f.BoolVar(&flags.skipPreflight, "skip-preflight", false, "Skip directory and ffmpeg checks")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("segments")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// buildExportJob resolves paths, loads the manifest, and overlays explicitly
// set flags onto the configured job settings.
func buildExportJob(cmd *cobra.Command, cfg *config.Config, flags exportFlags) (export.Job, error) {
	videoPath, err := resolvePath(flags.video)
	if err != nil {
		return export.Job{}, fmt.Errorf("resolve video path: %w", err)
	}
	outputPath, err := resolvePath(flags.output)
	if err != nil {
		return export.Job{}, fmt.Errorf("resolve output path: %w", err)
	}
	if videoPath == outputPath {
		return export.Job{}, errors.New("output path must differ from the source video")
	}
	manifestPath, err := resolvePath(flags.segments)
	if err != nil {
		return export.Job{}, fmt.Errorf("resolve manifest path: %w", err)
	}
	segments, err := segment.LoadManifest(manifestPath)
	if err != nil {
		return export.Job{}, err
	}

	settings := export.SettingsFromConfig(cfg)
	changed := cmd.Flags().Changed
	if changed("original-volume") {
		settings.OriginalVolume = flags.originalVolume
	}
	if changed("dubbed-volume") {
		settings.DubbedVolume = flags.dubbedVolume
	}
	if changed("burn-subtitles") {
		settings.BurnSubtitles = flags.burn
	}
	if changed("font-size") {
		settings.FontSize = flags.fontSize
	}
	if changed("max-line-width") {
		settings.MaxLineWidth = flags.maxLineWidth
	}
	if changed("preview") {
		settings.PreviewDuration = flags.preview
	}

	return export.Job{
		VideoPath:  videoPath,
		Segments:   segments,
		OutputPath: outputPath,
		Config:     settings,
	}, nil
}

// lockOutput takes an advisory lock beside the output so two invocations
// never write the same file.
func lockOutput(outputPath string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(outputPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another export is already writing %s", outputPath)
	}
	return func() { _ = lock.Unlock() }, nil
}

func printOutcome(out io.Writer, job export.Job, outcome export.Outcome, colorize bool) {
	for _, issue := range outcome.Issues {
		fmt.Fprintln(out, renderStatusLine("Issue", statusWarn, issue, colorize))
	}
	if !outcome.Success {
		fmt.Fprintln(out, renderStatusLine("Export", statusError, "failed after "+outcome.Duration.Round(time.Millisecond).String(), colorize))
		return
	}
	summary := fmt.Sprintf("%s (%d segment(s), %d voiced, %s)",
		job.OutputPath, outcome.SegmentsUsed, outcome.VoicedSegments, outcome.Duration.Round(time.Millisecond))
	fmt.Fprintln(out, renderStatusLine("Export", statusOK, summary, colorize))
}

func resolvePath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("path is empty")
	}
	return config.ExpandPath(value)
}
