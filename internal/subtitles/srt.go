package subtitles

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// durationToleranceSeconds is how far the last cue may run past the video.
const durationToleranceSeconds = 1.0

type cue struct {
	number int
	start  float64
	end    float64
	ok     bool
}

func parseCues(content string) []cue {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil
	}
	var cues []cue
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		c := cue{number: -1}
		if n, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			c.number = n
		}
		for _, line := range lines {
			if !strings.Contains(line, "-->") {
				continue
			}
			parts := strings.Split(line, "-->")
			if len(parts) != 2 {
				break
			}
			start, errStart := ParseTimestamp(parts[0])
			end, errEnd := ParseTimestamp(parts[1])
			if errStart == nil && errEnd == nil {
				c.start, c.end, c.ok = start, end, true
			}
			break
		}
		cues = append(cues, c)
	}
	return cues
}

// CountCues returns the number of non-empty cue blocks in SRT content.
func CountCues(content string) int {
	return len(parseCues(content))
}

// Bounds returns the earliest start and latest end across parseable cues.
// found is false when no cue carries a valid timing line.
func Bounds(content string) (first, last float64, found bool) {
	first = math.Inf(1)
	for _, c := range parseCues(content) {
		if !c.ok {
			continue
		}
		found = true
		first = math.Min(first, c.start)
		last = math.Max(last, c.end)
	}
	if !found {
		return 0, 0, false
	}
	return first, last, true
}

// ParseTimestamp parses HH:MM:SS,mmm (a period separator is also accepted).
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || seconds > 59 || millis > 999 || hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// ValidateContent checks an SRT file for format issues. It returns a list of
// issue codes; an empty slice means validation passed. videoSeconds <= 0
// skips the duration check.
func ValidateContent(path string, videoSeconds float64) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("read_error: %v", err)}
	}
	cues := parseCues(string(data))
	if len(cues) == 0 {
		return []string{"empty_subtitle_file"}
	}

	var issues []string
	invalid := 0
	for i, c := range cues {
		if c.number != i+1 {
			issues = append(issues, fmt.Sprintf("cue_numbering: block %d numbered %d", i+1, c.number))
			break
		}
	}
	for _, c := range cues {
		if !c.ok || c.end < c.start {
			invalid++
		}
	}
	if invalid > 0 {
		issues = append(issues, fmt.Sprintf("invalid_timing: %d cue(s)", invalid))
	}

	if videoSeconds > 0 {
		if _, last, found := Bounds(string(data)); found && last-videoSeconds > durationToleranceSeconds {
			issues = append(issues, fmt.Sprintf("cues_beyond_video: overrun=%.1fs", last-videoSeconds))
		}
	}
	return issues
}
