package config

import (
	"errors"
	"fmt"
	"math"

	"dubline/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateMix(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if err := ensurePositiveMap(map[string]int{
		"ffmpeg.merge_timeout_seconds":   c.FFmpeg.MergeTimeoutSeconds,
		"ffmpeg.trim_timeout_seconds":    c.FFmpeg.TrimTimeoutSeconds,
		"ffmpeg.extract_timeout_seconds": c.FFmpeg.ExtractTimeoutSeconds,
		"ffmpeg.probe_timeout_seconds":   c.FFmpeg.ProbeTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 63 {
		return errors.New("ffmpeg.crf must be between 0 and 63")
	}
	return nil
}

func (c *Config) validateMix() error {
	if !finiteNonNegative(c.Mix.OriginalVolume) {
		return errors.New("mix.original_volume must be a finite value >= 0")
	}
	if !finiteNonNegative(c.Mix.DubbedVolume) {
		return errors.New("mix.dubbed_volume must be a finite value >= 0")
	}
	switch c.Mix.Ducking {
	case DuckingStatic, DuckingDynamic:
	default:
		return fmt.Errorf("mix.ducking: unsupported value %q (use %q or %q)", c.Mix.Ducking, DuckingStatic, DuckingDynamic)
	}
	if c.Mix.DuckDepthDB > 0 || math.IsNaN(c.Mix.DuckDepthDB) {
		return errors.New("mix.duck_depth_db must be <= 0")
	}
	if c.Mix.CrossfadeMs < 0 {
		return errors.New("mix.crossfade_ms must be >= 0")
	}
	if c.Mix.SampleRate < 8000 {
		return errors.New("mix.sample_rate must be at least 8000")
	}
	if c.Mix.Channels < 1 || c.Mix.Channels > 8 {
		return errors.New("mix.channels must be between 1 and 8")
	}
	switch c.Mix.OutputFormat {
	case "mp3", "wav":
	default:
		return fmt.Errorf("mix.output_format: unsupported value %q (use mp3 or wav)", c.Mix.OutputFormat)
	}
	if lang := c.Mix.BackgroundLanguage; lang != "" && language.ToISO2(lang) == "" {
		return fmt.Errorf("mix.background_language: unrecognized language %q", lang)
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.FontSize <= 0 {
		return errors.New("subtitles.font_size must be positive")
	}
	if c.Subtitles.MaxLineWidth < 0 {
		return errors.New("subtitles.max_line_width must be >= 0")
	}
	if c.Subtitles.Outline < 0 {
		return errors.New("subtitles.outline must be >= 0")
	}
	if c.Subtitles.Alignment < 1 || c.Subtitles.Alignment > 9 {
		return errors.New("subtitles.alignment must be between 1 and 9")
	}
	if c.Subtitles.MarginV < 0 {
		return errors.New("subtitles.margin_v must be >= 0")
	}
	return nil
}

func (c *Config) validatePreview() error {
	if !finiteNonNegative(c.Preview.DurationSeconds) {
		return errors.New("preview.duration_seconds must be a finite value >= 0")
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
