package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dubline/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "dubline", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if !filepath.IsAbs(cfg.Paths.TempDir) {
		t.Fatalf("expected absolute temp dir, got %q", cfg.Paths.TempDir)
	}
	if cfg.Mix.OriginalVolume != 0.1 || cfg.Mix.DubbedVolume != 1.0 {
		t.Fatalf("unexpected mix defaults: %+v", cfg.Mix)
	}
	if cfg.Mix.Ducking != config.DuckingStatic {
		t.Fatalf("expected static ducking by default, got %q", cfg.Mix.Ducking)
	}
	if cfg.FFmpeg.MergeTimeoutSeconds != 600 || cfg.FFmpeg.TrimTimeoutSeconds != 120 {
		t.Fatalf("unexpected timeouts: %+v", cfg.FFmpeg)
	}
	if !cfg.Subtitles.Burn || cfg.Subtitles.FontSize != 24 || cfg.Subtitles.MaxLineWidth != 50 {
		t.Fatalf("unexpected subtitle defaults: %+v", cfg.Subtitles)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dubline.toml")

	type payload struct {
		Mix struct {
			OriginalVolume float64 `toml:"original_volume"`
			Ducking        string  `toml:"ducking"`
			OutputFormat   string  `toml:"output_format"`
		} `toml:"mix"`
		Subtitles struct {
			FontSize int `toml:"font_size"`
		} `toml:"subtitles"`
		Preview struct {
			DurationSeconds float64 `toml:"duration_seconds"`
		} `toml:"preview"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Mix.OriginalVolume = 0.3
	custom.Mix.Ducking = " Dynamic "
	custom.Mix.OutputFormat = ".WAV"
	custom.Subtitles.FontSize = 32
	custom.Preview.DurationSeconds = 5
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Mix.OriginalVolume != 0.3 {
		t.Fatalf("expected original volume 0.3, got %v", cfg.Mix.OriginalVolume)
	}
	if cfg.Mix.Ducking != config.DuckingDynamic {
		t.Fatalf("expected normalized ducking policy, got %q", cfg.Mix.Ducking)
	}
	if cfg.Mix.OutputFormat != "wav" {
		t.Fatalf("expected normalized output format, got %q", cfg.Mix.OutputFormat)
	}
	if cfg.Subtitles.FontSize != 32 {
		t.Fatalf("expected font size 32, got %d", cfg.Subtitles.FontSize)
	}
	if cfg.Preview.DurationSeconds != 5 {
		t.Fatalf("expected preview 5s, got %v", cfg.Preview.DurationSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	if cfg.FFmpeg.Preset != "medium" {
		t.Fatalf("expected untouched defaults to survive, got preset %q", cfg.FFmpeg.Preset)
	}
}

func TestEnvVarOverridesBinaries(t *testing.T) {
	t.Setenv("DUBLINE_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("DUBLINE_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpeg.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.FFmpeg.FFmpegBinary)
	}
	if cfg.FFmpeg.FFprobeBinary != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("expected ffprobe from env, got %q", cfg.FFmpeg.FFprobeBinary)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[mix]") {
		t.Fatalf("sample config missing mix section: %s", contents)
	}

	cfg := config.Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
	if cfg.SubtitleStyle(0) != "FontSize=24,PrimaryColour=&HFFFFFF,OutlineColour=&H000000,Outline=2,Alignment=2,MarginV=20" {
		t.Fatalf("unexpected sample style: %s", cfg.SubtitleStyle(0))
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"merge timeout", func(c *config.Config) { c.FFmpeg.MergeTimeoutSeconds = 0 }},
		{"trim timeout", func(c *config.Config) { c.FFmpeg.TrimTimeoutSeconds = -1 }},
		{"crf", func(c *config.Config) { c.FFmpeg.CRF = 99 }},
		{"negative original volume", func(c *config.Config) { c.Mix.OriginalVolume = -0.1 }},
		{"ducking", func(c *config.Config) { c.Mix.Ducking = "sidechain" }},
		{"duck depth", func(c *config.Config) { c.Mix.DuckDepthDB = 3 }},
		{"sample rate", func(c *config.Config) { c.Mix.SampleRate = 100 }},
		{"channels", func(c *config.Config) { c.Mix.Channels = 0 }},
		{"output format", func(c *config.Config) { c.Mix.OutputFormat = "flac" }},
		{"background language", func(c *config.Config) { c.Mix.BackgroundLanguage = "klingonese" }},
		{"font size", func(c *config.Config) { c.Subtitles.FontSize = 0 }},
		{"alignment", func(c *config.Config) { c.Subtitles.Alignment = 10 }},
		{"preview", func(c *config.Config) { c.Preview.DurationSeconds = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestSubtitleStyleUsesFontSizeOverride(t *testing.T) {
	cfg := config.Default()
	style := cfg.SubtitleStyle(30)
	if !strings.HasPrefix(style, "FontSize=30,") {
		t.Fatalf("expected font size override, got %q", style)
	}
	if !strings.HasSuffix(style, "MarginV=20") {
		t.Fatalf("expected default margin, got %q", style)
	}
}
