package encoding

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"dubline/internal/config"
)

// MergeRequest describes one final encode.
type MergeRequest struct {
	VideoPath     string
	AudioPath     string
	OutputPath    string
	SubtitlePath  string
	BurnSubtitles bool
	FontSize      int
}

// Preset holds the fixed codec settings and subtitle style.
type Preset struct {
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
	// Style renders the force_style attribute list for a font size.
	Style func(fontSize int) string
}

// PresetFromConfig maps the [ffmpeg] and [subtitles] sections onto a Preset.
func PresetFromConfig(cfg *config.Config) Preset {
	return Preset{
		VideoCodec:   cfg.FFmpeg.VideoCodec,
		Preset:       cfg.FFmpeg.Preset,
		CRF:          cfg.FFmpeg.CRF,
		AudioCodec:   cfg.FFmpeg.AudioCodec,
		AudioBitrate: cfg.FFmpeg.AudioBitrate,
		Style:        cfg.SubtitleStyle,
	}
}

// DefaultPreset returns the preset built from repository defaults.
func DefaultPreset() Preset {
	cfg := config.Default()
	return PresetFromConfig(&cfg)
}

// EscapeFilterPath escapes a path for use inside a single-quoted filtergraph
// argument: backslashes are doubled first, then colons are escaped.
func EscapeFilterPath(path string) string {
	escaped := strings.ReplaceAll(path, `\`, `\\`)
	return strings.ReplaceAll(escaped, ":", `\:`)
}

// burnsSubtitles reports whether the burn-in branch applies: requested, a
// subtitle path is set, and the file exists.
func (r MergeRequest) burnsSubtitles() bool {
	if !r.BurnSubtitles || strings.TrimSpace(r.SubtitlePath) == "" {
		return false
	}
	info, err := os.Stat(r.SubtitlePath)
	return err == nil && !info.IsDir()
}

// BuildMergeArgs returns the ffmpeg argument list muxing video stream 0 with
// audio input 1, burning subtitles when applicable.
func BuildMergeArgs(req MergeRequest, preset Preset) []string {
	args := []string{"-y", "-i", req.VideoPath, "-i", req.AudioPath}
	if req.burnsSubtitles() {
		style := ""
		if preset.Style != nil {
			style = preset.Style(req.FontSize)
		}
		filter := fmt.Sprintf("[0:v]subtitles='%s':force_style='%s'[v]", EscapeFilterPath(req.SubtitlePath), style)
		args = append(args, "-filter_complex", filter, "-map", "[v]", "-map", "1:a")
	} else {
		args = append(args, "-map", "0:v", "-map", "1:a")
	}
	args = append(args,
		"-c:v", preset.VideoCodec,
		"-preset", preset.Preset,
		"-crf", strconv.Itoa(preset.CRF),
		"-c:a", preset.AudioCodec,
		"-b:a", preset.AudioBitrate,
		"-shortest",
		req.OutputPath,
	)
	return args
}

// BuildTrimArgs returns the stream-copy argument list keeping the first
// seconds of src.
func BuildTrimArgs(src, dst string, seconds float64) []string {
	return []string{"-y", "-i", src, "-t", strconv.FormatFloat(seconds, 'f', -1, 64), "-c", "copy", dst}
}
