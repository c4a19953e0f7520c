package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dubline/internal/segment"
	"dubline/internal/subtitles"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var manifest string
	var output string
	var width int

	cmd := &cobra.Command{
		Use:   "subtitles",
		Short: "Write an SRT file from a segment manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manifestPath, err := resolvePath(manifest)
			if err != nil {
				return fmt.Errorf("resolve manifest path: %w", err)
			}
			target, err := resolvePath(output)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			segments, err := segment.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-line-width") {
				width = cfg.Subtitles.MaxLineWidth
			}
			if err := subtitles.WriteSRT(target, segments, width); err != nil {
				return fmt.Errorf("write subtitles: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, issue := range subtitles.ValidateContent(target, 0) {
				fmt.Fprintln(out, renderStatusLine("Subtitles", statusWarn, issue, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Subtitles", statusOK, fmt.Sprintf("wrote %d cue(s) to %s", len(segments), target), colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "segments", "", "Segment manifest, YAML or JSON (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination .srt path (required)")
	cmd.Flags().IntVar(&width, "max-line-width", 0, "Wrap width in characters, 0 disables wrapping (default from config)")
	_ = cmd.MarkFlagRequired("segments")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
