package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"dubline/internal/config"
	"dubline/internal/segment"
	"dubline/internal/services"
)

// Settings are the per-job mix and subtitle knobs.
type Settings struct {
	OriginalVolume  float64
	DubbedVolume    float64
	BurnSubtitles   bool
	FontSize        int
	MaxLineWidth    int
	PreviewDuration float64
}

// SettingsFromConfig seeds job settings from the [mix], [subtitles] and
// [preview] sections.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		OriginalVolume:  cfg.Mix.OriginalVolume,
		DubbedVolume:    cfg.Mix.DubbedVolume,
		BurnSubtitles:   cfg.Subtitles.Burn,
		FontSize:        cfg.Subtitles.FontSize,
		MaxLineWidth:    cfg.Subtitles.MaxLineWidth,
		PreviewDuration: cfg.Preview.DurationSeconds,
	}
}

// Previewing reports whether the job renders a truncated preview.
func (s Settings) Previewing() bool {
	return s.PreviewDuration > 0
}

// Job is a single export request.
type Job struct {
	VideoPath  string
	Segments   []segment.Segment
	OutputPath string
	Config     Settings
}

// Validate rejects malformed jobs before any work starts.
func (j Job) Validate() error {
	if strings.TrimSpace(j.VideoPath) == "" {
		return invalid("video path is required")
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return invalid("output path is required")
	}
	for name, v := range map[string]float64{
		"original volume":  j.Config.OriginalVolume,
		"dubbed volume":    j.Config.DubbedVolume,
		"preview duration": j.Config.PreviewDuration,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalid(fmt.Sprintf("%s must be finite and >= 0 (got %v)", name, v))
		}
	}
	if j.Config.FontSize <= 0 {
		return invalid(fmt.Sprintf("font size must be positive (got %d)", j.Config.FontSize))
	}
	return segment.ValidateAll(j.Segments)
}

func invalid(msg string) error {
	return services.Wrap(services.ErrValidation, "export", "validate", msg, nil)
}

// Outcome is the result of Run. Err is set whenever Success is false.
type Outcome struct {
	Success bool
	Err     error
	// Duration is the wall-clock time the job took.
	Duration time.Duration
	// SegmentsUsed counts segments kept after preview filtering.
	SegmentsUsed int
	// VoicedSegments counts segments whose clip reached the dubbed track.
	VoicedSegments int
	Issues         []string
}
