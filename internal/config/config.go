package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	TempDir string `toml:"temp_dir"`
	LogDir  string `toml:"log_dir"`
}

// FFmpeg contains external encoder binaries, timeouts, and the fixed output preset.
type FFmpeg struct {
	FFmpegBinary          string `toml:"ffmpeg_binary"`
	FFprobeBinary         string `toml:"ffprobe_binary"`
	MergeTimeoutSeconds   int    `toml:"merge_timeout_seconds"`
	TrimTimeoutSeconds    int    `toml:"trim_timeout_seconds"`
	ExtractTimeoutSeconds int    `toml:"extract_timeout_seconds"`
	ProbeTimeoutSeconds   int    `toml:"probe_timeout_seconds"`
	VideoCodec            string `toml:"video_codec"`
	Preset                string `toml:"preset"`
	CRF                   int    `toml:"crf"`
	AudioCodec            string `toml:"audio_codec"`
	AudioBitrate          string `toml:"audio_bitrate"`
}

// Mix contains the audio layering settings used by the timeline compositor.
type Mix struct {
	OriginalVolume     float64 `toml:"original_volume"`
	DubbedVolume       float64 `toml:"dubbed_volume"`
	Ducking            string  `toml:"ducking"`
	DuckDepthDB        float64 `toml:"duck_depth_db"`
	CrossfadeMs        int     `toml:"crossfade_ms"`
	SampleRate         int     `toml:"sample_rate"`
	Channels           int     `toml:"channels"`
	OutputFormat       string  `toml:"output_format"`
	OutputBitrate      string  `toml:"output_bitrate"`
	BackgroundLanguage string  `toml:"background_language"`
}

// Subtitles contains subtitle formatting and burn-in style settings.
type Subtitles struct {
	Burn          bool   `toml:"burn"`
	FontSize      int    `toml:"font_size"`
	MaxLineWidth  int    `toml:"max_line_width"`
	PrimaryColour string `toml:"primary_colour"`
	OutlineColour string `toml:"outline_colour"`
	Outline       int    `toml:"outline"`
	Alignment     int    `toml:"alignment"`
	MarginV       int    `toml:"margin_v"`
}

// Preview contains settings for truncated exports.
type Preview struct {
	DurationSeconds float64 `toml:"duration_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubline.
//
// Configuration sections by subsystem:
//   - Paths: temp artifact and log directories
//   - FFmpeg: encoder binaries, process timeouts, fixed output preset
//   - Mix: background/dub volumes and ducking policy
//   - Subtitles: wrapping width and burn-in style
//   - Preview: optional truncated export length
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Mix       Mix       `toml:"mix"`
	Subtitles Subtitles `toml:"subtitles"`
	Preview   Preview   `toml:"preview"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the export pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MergeTimeout returns the bounded wall-clock limit for the final encode.
func (c *Config) MergeTimeout() time.Duration {
	return time.Duration(c.FFmpeg.MergeTimeoutSeconds) * time.Second
}

// TrimTimeout returns the bounded wall-clock limit for preview trimming.
func (c *Config) TrimTimeout() time.Duration {
	return time.Duration(c.FFmpeg.TrimTimeoutSeconds) * time.Second
}

// ExtractTimeout returns the limit for audio extraction and decode/encode steps.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.FFmpeg.ExtractTimeoutSeconds) * time.Second
}

// ProbeTimeout returns the limit for ffprobe and availability checks.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.FFmpeg.ProbeTimeoutSeconds) * time.Second
}

// SubtitleStyle renders the force_style attribute list used for burn-in.
func (c *Config) SubtitleStyle(fontSize int) string {
	if fontSize <= 0 {
		fontSize = c.Subtitles.FontSize
	}
	return fmt.Sprintf("FontSize=%d,PrimaryColour=%s,OutlineColour=%s,Outline=%d,Alignment=%d,MarginV=%d",
		fontSize,
		c.Subtitles.PrimaryColour,
		c.Subtitles.OutlineColour,
		c.Subtitles.Outline,
		c.Subtitles.Alignment,
		c.Subtitles.MarginV,
	)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultTempDir() string {
	return filepath.Join(os.TempDir(), "dubline")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
