package segment

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/services"
)

func TestDisplayText(t *testing.T) {
	cases := []struct {
		seg  Segment
		want string
	}{
		{Segment{Text: "Hello", TranslatedText: "Xin chào"}, "Xin chào"},
		{Segment{Text: "Hello", TranslatedText: "  "}, "Hello"},
		{Segment{}, ""},
	}
	for _, tc := range cases {
		if got := tc.seg.DisplayText(); got != tc.want {
			t.Errorf("DisplayText() = %q, want %q", got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := []Segment{{Start: 0, End: 0.1}, {Start: 5, End: 7.5}}
	if err := ValidateAll(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invalid := []Segment{
		{Start: 2, End: 2},
		{Start: 3, End: 1},
		{Start: -1, End: 1},
		{Start: math.NaN(), End: 1},
		{Start: 0, End: math.Inf(1)},
	}
	for _, seg := range invalid {
		err := ValidateAll([]Segment{seg})
		if !errors.Is(err, services.ErrValidation) {
			t.Errorf("segment %+v: expected ErrValidation, got %v", seg, err)
		}
	}
}

func TestStartingBefore(t *testing.T) {
	segs := []Segment{{ID: "a", Start: 0, End: 2}, {ID: "b", Start: 9.9, End: 12}, {ID: "c", Start: 10, End: 11}, {ID: "d", Start: 15, End: 16}}
	got := StartingBefore(segs, 10)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected filtered segments %+v", got)
	}
	if len(segs) != 4 {
		t.Fatal("input must not be modified")
	}
}

func TestLoadManifestYAMLResolvesRelativeAudio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segments.yaml")
	content := `segments:
  - id: 1
    start: 0.5
    end: 2.25
    text: Hello there
    translated_text: Xin chào
    audio_path: clips/001.wav
  - id: intro
    start: 3
    end: 4
    text: Second
    vietnamese: Thứ hai
    audio_path: /abs/002.wav
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	segs, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].ID != "1" || segs[0].Start != 0.5 || segs[0].End != 2.25 {
		t.Fatalf("unexpected first segment %+v", segs[0])
	}
	if segs[0].AudioPath != filepath.Join(dir, "clips", "001.wav") {
		t.Fatalf("expected relative audio resolved, got %q", segs[0].AudioPath)
	}
	if segs[1].AudioPath != "/abs/002.wav" {
		t.Fatalf("absolute path should be kept, got %q", segs[1].AudioPath)
	}
	if segs[1].DisplayText() != "Thứ hai" {
		t.Fatalf("expected legacy translation key honoured, got %q", segs[1].DisplayText())
	}
	if WithAudio(segs) != 2 {
		t.Fatalf("expected 2 segments with audio")
	}
}

func TestParseManifestJSONList(t *testing.T) {
	data := []byte(`[{"id": "s1", "start": 1, "end": 2, "text": "hi", "audio_file": "a.mp3"}]`)
	segs, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(segs) != 1 || segs[0].AudioPath != "a.mp3" || segs[0].DisplayText() != "hi" {
		t.Fatalf("unexpected segments %+v", segs)
	}
}

func TestParseManifestRejectsScalars(t *testing.T) {
	if _, err := ParseManifest([]byte(`"just a string"`)); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if segs, err := ParseManifest(nil); err != nil || len(segs) != 0 {
		t.Fatalf("expected empty manifest to yield nothing, got %v %v", segs, err)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
