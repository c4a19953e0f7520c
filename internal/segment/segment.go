package segment

import (
	"fmt"
	"math"
	"strings"

	"dubline/internal/services"
)

// Segment is one timed utterance on the source timeline. Times are seconds.
type Segment struct {
	ID             string  `yaml:"id" json:"id"`
	Start          float64 `yaml:"start" json:"start"`
	End            float64 `yaml:"end" json:"end"`
	Text           string  `yaml:"text" json:"text"`
	TranslatedText string  `yaml:"translated_text" json:"translated_text"`
	AudioPath      string  `yaml:"audio_path" json:"audio_path"`
}

// DisplayText is the subtitle text: the translation when present, otherwise
// the source text.
func (s Segment) DisplayText() string {
	if strings.TrimSpace(s.TranslatedText) != "" {
		return s.TranslatedText
	}
	return s.Text
}

// HasAudio reports whether a synthesized clip is attached.
func (s Segment) HasAudio() bool {
	return strings.TrimSpace(s.AudioPath) != ""
}

// Duration returns End-Start in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Label identifies the segment in logs and errors.
func (s Segment) Label(position int) string {
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	return fmt.Sprintf("#%d", position+1)
}

// Validate checks 0 <= Start < End with finite values.
func (s Segment) Validate() error {
	if math.IsNaN(s.Start) || math.IsInf(s.Start, 0) || math.IsNaN(s.End) || math.IsInf(s.End, 0) {
		return fmt.Errorf("start/end must be finite (got %v, %v)", s.Start, s.End)
	}
	if s.Start < 0 {
		return fmt.Errorf("start must be >= 0 (got %v)", s.Start)
	}
	if s.Start >= s.End {
		return fmt.Errorf("start must be before end (got %v >= %v)", s.Start, s.End)
	}
	return nil
}

// ValidateAll validates every segment, reporting the first failure with its label.
func ValidateAll(segments []Segment) error {
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return services.Wrap(services.ErrValidation, "segment", "validate", "segment "+seg.Label(i), err)
		}
	}
	return nil
}

// StartingBefore returns the segments whose start lies before cutoff seconds,
// preserving order. The input slice is not modified.
func StartingBefore(segments []Segment, cutoff float64) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Start < cutoff {
			out = append(out, seg)
		}
	}
	return out
}

// WithAudio counts segments that carry a synthesized clip.
func WithAudio(segments []Segment) int {
	n := 0
	for _, seg := range segments {
		if seg.HasAudio() {
			n++
		}
	}
	return n
}
