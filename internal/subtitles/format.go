package subtitles

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"dubline/internal/segment"
	"dubline/internal/services"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are rounded
// and carry into the seconds field; negative and NaN inputs clamp to zero.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	whole := math.Floor(seconds)
	ms := int64(math.Round((seconds - whole) * 1000))
	total := int64(whole)
	if ms >= 1000 {
		total++
		ms -= 1000
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, ms)
}

// Wrap splits text into lines of at most width code points, breaking only at
// whitespace. A single word longer than width occupies its own line. Width
// <= 0 disables wrapping and collapses whitespace into single spaces.
func Wrap(text string, width int) []string {
	words := strings.Fields(norm.NFC.String(text))
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var (
		lines   []string
		current strings.Builder
		used    int
	)
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if used > 0 && used+1+n > width {
			lines = append(lines, current.String())
			current.Reset()
			used = 0
		}
		if used > 0 {
			current.WriteByte(' ')
			used++
		}
		current.WriteString(word)
		used += n
	}
	if used > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Render formats segments as SRT cues numbered from 1 in input order.
func Render(segments []segment.Segment, maxLineWidth int) []byte {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.Join(Wrap(seg.DisplayText(), maxLineWidth), "\n"),
		)
	}
	return []byte(b.String())
}

// WriteSRT renders segments to path.
func WriteSRT(path string, segments []segment.Segment, maxLineWidth int) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, "subtitles", "write srt", "empty path", nil)
	}
	if err := os.WriteFile(path, Render(segments, maxLineWidth), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "write srt", path, err)
	}
	return nil
}
