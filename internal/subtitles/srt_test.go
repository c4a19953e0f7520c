package subtitles

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubline/internal/segment"
)

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp(" 01:02:03,456 ")
	if err != nil || math.Abs(got-3723.456) > 1e-9 {
		t.Fatalf("ParseTimestamp = %v, %v", got, err)
	}
	if got, err := ParseTimestamp("00:00:01.500"); err != nil || got != 1.5 {
		t.Fatalf("period separator: %v, %v", got, err)
	}
	for _, bad := range []string{"", "1:2", "00:61:00,000", "aa:bb:cc,ddd"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFormatParseAgree(t *testing.T) {
	for _, s := range []float64{0, 0.001, 59.999, 3599.5, 86399.123} {
		parsed, err := ParseTimestamp(FormatTimestamp(s))
		if err != nil {
			t.Fatalf("parse %v: %v", s, err)
		}
		if d := parsed - s; d > 0.0005 || d < -0.0005 {
			t.Fatalf("round trip drift for %v: %v", s, parsed)
		}
	}
}

func TestBounds(t *testing.T) {
	content := "1\n00:00:02,000 --> 00:00:03,000\na\n\n2\n00:00:01,000 --> 00:00:09,500\nb\n"
	first, last, found := Bounds(content)
	if !found || first != 1 || last != 9.5 {
		t.Fatalf("Bounds = %v %v %v", first, last, found)
	}
	if _, _, found := Bounds("1\nno timing\n"); found {
		t.Fatal("expected no bounds without timing lines")
	}
}

func writeSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "check.srt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateContentAcceptsRenderedOutput(t *testing.T) {
	segs := []segment.Segment{{Start: 0, End: 1, Text: "a"}, {Start: 2, End: 3, Text: "b"}}
	path := writeSRT(t, string(Render(segs, 40)))
	if issues := ValidateContent(path, 10); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateContentReportsProblems(t *testing.T) {
	if issues := ValidateContent(writeSRT(t, "  \n"), 10); len(issues) != 1 || issues[0] != "empty_subtitle_file" {
		t.Fatalf("expected empty file issue, got %v", issues)
	}

	content := "1\n00:00:01,000 --> 00:00:02,000\na\n\n3\n00:00:05,000 --> 00:00:04,000\nb\n\n4\n00:00:30,000 --> 00:00:40,000\nc\n"
	issues := ValidateContent(writeSRT(t, content), 20)
	joined := strings.Join(issues, ";")
	for _, want := range []string{"cue_numbering", "invalid_timing: 1", "cues_beyond_video"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in %v", want, issues)
		}
	}

	if issues := ValidateContent(filepath.Join(t.TempDir(), "missing.srt"), 0); len(issues) != 1 || !strings.HasPrefix(issues[0], "read_error") {
		t.Fatalf("expected read error, got %v", issues)
	}
}
