package subtitles

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"dubline/internal/segment"
	"dubline/internal/services"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{3661.25, "01:01:01,250"},
		{59.9996, "00:01:00,000"},
		{7199.9999, "02:00:00,000"},
		{12.3456, "00:00:12,346"},
		{-3, "00:00:00,000"},
		{math.NaN(), "00:00:00,000"},
		{360000, "100:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps running far away"
	lines := Wrap(text, 20)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 20 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != text {
		t.Fatalf("wrapping must preserve words, got %v", lines)
	}
}

func TestWrapKeepsLongWordsWhole(t *testing.T) {
	lines := Wrap("a supercalifragilisticexpialidocious b", 10)
	want := []string{"a", "supercalifragilisticexpialidocious", "b"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestWrapCountsComposedCharacters(t *testing.T) {
	// "Việt" written with combining marks is 4 code points after NFC.
	decomposed := "Vie\u0323\u0302t Nam"
	lines := Wrap(decomposed, 8)
	if len(lines) != 1 {
		t.Fatalf("expected a single line after NFC normalization, got %v", lines)
	}
	if lines[0] != "Vi\u1ec7t Nam" {
		t.Fatalf("expected composed output, got %q", lines[0])
	}
}

func TestWrapDisabledAndEmpty(t *testing.T) {
	if got := Wrap("  one   two  ", 0); len(got) != 1 || got[0] != "one two" {
		t.Fatalf("unexpected unwrapped output %v", got)
	}
	if got := Wrap("   ", 10); got != nil {
		t.Fatalf("expected nil for blank text, got %v", got)
	}
}

func TestRenderNumbersCuesInInputOrder(t *testing.T) {
	segs := []segment.Segment{
		{Start: 5, End: 6, Text: "later"},
		{Start: 1, End: 2.5, Text: "Hello", TranslatedText: "Xin chào"},
	}
	got := string(Render(segs, 50))
	want := "1\n00:00:05,000 --> 00:00:06,000\nlater\n\n" +
		"2\n00:00:01,000 --> 00:00:02,500\nXin chào\n\n"
	if got != want {
		t.Fatalf("unexpected SRT:\n%q\nwant\n%q", got, want)
	}
	if CountCues(got) != 2 {
		t.Fatalf("expected 2 cues, got %d", CountCues(got))
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	segs := []segment.Segment{{Start: 0.1234, End: 1.9876, Text: "một hai ba bốn năm sáu bảy tám chín mười"}}
	if !bytes.Equal(Render(segs, 12), Render(segs, 12)) {
		t.Fatal("render output differs between runs")
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	segs := []segment.Segment{{Start: 0, End: 1, Text: "hi"}}
	if err := WriteSRT(path, segs, 42); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n" {
		t.Fatalf("unexpected file content %q", data)
	}
	if err := WriteSRT(" ", segs, 42); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty path, got %v", err)
	}
}
