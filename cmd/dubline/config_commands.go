package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dubline/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect or create the configuration file"}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		dest      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := sampleTarget(dest)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("stat %s: %w", target, err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "path", "p", "", "Where to write the file (default: the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func sampleTarget(dest string) (string, error) {
	if dest = strings.TrimSpace(dest); dest == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(dest)
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and print the effective settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			source := path
			if !exists {
				source = path + " (not found, defaults used)"
			}
			rows := [][]string{
				{"Config", source},
				{"Temp dir", cfg.Paths.TempDir},
				{"FFmpeg", cfg.FFmpeg.FFmpegBinary + " / " + cfg.FFmpeg.FFprobeBinary},
				{"Mix", fmt.Sprintf("%d Hz, %d ch, %s ducking, %s output", cfg.Mix.SampleRate, cfg.Mix.Channels, cfg.Mix.Ducking, cfg.Mix.OutputFormat)},
				{"Volumes", fmt.Sprintf("original %.2f, dubbed %.2f", cfg.Mix.OriginalVolume, cfg.Mix.DubbedVolume)},
				{"Subtitles", fmt.Sprintf("burn=%t, font %d, width %d", cfg.Subtitles.Burn, cfg.Subtitles.FontSize, cfg.Subtitles.MaxLineWidth)},
				{"Encode", fmt.Sprintf("%s %s crf %d, %s %s", cfg.FFmpeg.VideoCodec, cfg.FFmpeg.Preset, cfg.FFmpeg.CRF, cfg.FFmpeg.AudioCodec, cfg.FFmpeg.AudioBitrate)},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			fmt.Fprintln(out, renderStatusLine("Config", statusOK, "configuration valid", shouldColorize(out)))
			return nil
		},
	}
}
