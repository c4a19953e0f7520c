package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/media/pcm"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Tone returns a sine buffer of the given length and peak amplitude.
func Tone(format pcm.Format, ms int, amplitude float32) *pcm.Buffer {
	buf := pcm.Silent(format, ms)
	frames := buf.Frames()
	for f := 0; f < frames; f++ {
		s := amplitude * float32(math.Sin(2*math.Pi*440*float64(f)/float64(format.SampleRate)))
		for c := 0; c < format.Channels; c++ {
			buf.Data[f*format.Channels+c] = s
		}
	}
	return buf
}

// WriteTone writes a sine tone WAV to path.
func WriteTone(t testing.TB, path string, format pcm.Format, ms int, amplitude float32) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := pcm.WriteWAVFile(path, Tone(format, ms, amplitude)); err != nil {
		t.Fatalf("write tone %s: %v", path, err)
	}
}
