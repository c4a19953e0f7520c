package pcm

import (
	"errors"
	"fmt"
	"math"
)

// Format describes the sample layout shared by every buffer in a mix.
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports whether the format can hold samples.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("pcm format: sample rate must be positive (got %d)", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("pcm format: channels must be positive (got %d)", f.Channels)
	}
	return nil
}

// FramesForMs converts a millisecond length into whole frames.
func (f Format) FramesForMs(ms int) int {
	if ms <= 0 || f.SampleRate <= 0 {
		return 0
	}
	return int(int64(ms) * int64(f.SampleRate) / 1000)
}

// MsForFrames converts a frame count into whole milliseconds.
func (f Format) MsForFrames(frames int) int {
	if frames <= 0 || f.SampleRate <= 0 {
		return 0
	}
	return int(int64(frames) * 1000 / int64(f.SampleRate))
}

// ErrFormatMismatch is returned when two buffers with different layouts are mixed.
var ErrFormatMismatch = errors.New("pcm format mismatch")

// Buffer is an exclusively owned block of interleaved float32 samples in [-1, 1].
type Buffer struct {
	Format Format
	Data   []float32
}

// Silent allocates a zeroed buffer of the given length in milliseconds.
func Silent(format Format, ms int) *Buffer {
	frames := format.FramesForMs(ms)
	return &Buffer{Format: format, Data: make([]float32, frames*max(format.Channels, 1))}
}

// Frames returns the number of sample frames held.
func (b *Buffer) Frames() int {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.Format.Channels
}

// DurationMs returns the buffer length in whole milliseconds.
func (b *Buffer) DurationMs() int {
	if b == nil {
		return 0
	}
	return b.Format.MsForFrames(b.Frames())
}

// Fit trims or zero-pads the buffer so it holds exactly ms milliseconds.
func (b *Buffer) Fit(ms int) {
	want := b.Format.FramesForMs(ms) * b.Format.Channels
	switch {
	case len(b.Data) > want:
		b.Data = b.Data[:want]
	case len(b.Data) < want:
		padded := make([]float32, want)
		copy(padded, b.Data)
		b.Data = padded
	}
}

// GainFactor converts a decibel adjustment into a linear amplitude factor.
func GainFactor(db float64) float64 {
	return math.Pow(10, db/20)
}

// Gain scales every sample by the given decibel adjustment.
func (b *Buffer) Gain(db float64) {
	if db == 0 || b == nil {
		return
	}
	factor := float32(GainFactor(db))
	for i := range b.Data {
		b.Data[i] *= factor
	}
}

// Overlay mixes src additively into b starting at offsetMs. Samples that
// would land past the end of b are dropped, so b keeps its length. It returns
// the number of frames actually mixed.
func (b *Buffer) Overlay(src *Buffer, offsetMs int) (int, error) {
	if src == nil || len(src.Data) == 0 {
		return 0, nil
	}
	if b.Format != src.Format {
		return 0, fmt.Errorf("%w: %d Hz/%d ch into %d Hz/%d ch", ErrFormatMismatch,
			src.Format.SampleRate, src.Format.Channels, b.Format.SampleRate, b.Format.Channels)
	}
	if offsetMs < 0 {
		offsetMs = 0
	}
	start := b.Format.FramesForMs(offsetMs) * b.Format.Channels
	if start >= len(b.Data) {
		return 0, nil
	}
	n := min(len(src.Data), len(b.Data)-start)
	dst := b.Data[start : start+n]
	for i, s := range src.Data[:n] {
		dst[i] = clip(dst[i] + s)
	}
	return n / b.Format.Channels, nil
}

// ApplyEnvelope multiplies each frame by the matching per-frame gain. Frames
// beyond the envelope are left untouched.
func (b *Buffer) ApplyEnvelope(envelope []float32) {
	ch := b.Format.Channels
	if ch <= 0 {
		return
	}
	frames := min(b.Frames(), len(envelope))
	for f := 0; f < frames; f++ {
		g := envelope[f]
		if g == 1 {
			continue
		}
		base := f * ch
		for c := 0; c < ch; c++ {
			b.Data[base+c] *= g
		}
	}
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32
	if b == nil {
		return 0
	}
	for _, s := range b.Data {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

func clip(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return s
	}
}
