package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// ErrUnsupportedWAV marks WAV streams that are valid but not signed integer
// PCM at 16, 24 or 32 bits. Callers transcode those instead.
var ErrUnsupportedWAV = errors.New("unsupported wav encoding")

// DecodeWAV reads a signed integer PCM WAV stream into a float buffer
// normalized to [-1, 1].
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("decode wav: not a valid wav stream")
	}
	tag := decoder.WavAudioFormat
	if tag == formatExtensible {
		sub, err := extensibleSubFormat(r)
		if err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("decode wav: rewind: %w", err)
		}
		decoder = wav.NewDecoder(r)
		if !decoder.IsValidFile() {
			return nil, fmt.Errorf("decode wav: not a valid wav stream")
		}
		tag = sub
	}
	depth := int(decoder.BitDepth)
	switch {
	case tag != formatPCM:
		return nil, fmt.Errorf("decode wav: format tag %#x: %w", tag, ErrUnsupportedWAV)
	case depth != 16 && depth != 24 && depth != 32:
		return nil, fmt.Errorf("decode wav: %d-bit samples: %w", depth, ErrUnsupportedWAV)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil {
		return nil, fmt.Errorf("decode wav: missing format chunk")
	}
	scale := float32(int64(1) << uint(depth-1))
	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = clip(float32(v) / scale)
	}
	return &Buffer{
		Format: Format{SampleRate: buf.Format.SampleRate, Channels: buf.Format.NumChannels},
		Data:   data,
	}, nil
}

// extensibleSubFormat returns the format tag embedded in the sub-format GUID
// of a WAVE_FORMAT_EXTENSIBLE fmt chunk. It leaves r positioned mid-stream.
func extensibleSubFormat(r io.ReadSeeker) (uint16, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, err
	}
	if string(header[:4]) != "RIFF" || string(header[8:]) != "WAVE" {
		return 0, errors.New("missing RIFF/WAVE header")
	}
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return 0, fmt.Errorf("find fmt chunk: %w", err)
		}
		size := int64(binary.LittleEndian.Uint32(chunk[4:]))
		if string(chunk[:4]) != "fmt " {
			if _, err := r.Seek(size+size&1, io.SeekCurrent); err != nil {
				return 0, err
			}
			continue
		}
		// tag, channels, rate, byte rate, align, bits, cbSize, valid bits, mask, GUID
		if size < 40 {
			return 0, errors.New("short extensible fmt chunk")
		}
		var body [26]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint16(body[24:]), nil
	}
}

// EncodeWAV writes the buffer as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, b *Buffer) error {
	if err := b.Format.Validate(); err != nil {
		return err
	}
	encoder := wav.NewEncoder(w, b.Format.SampleRate, wavBitDepth, b.Format.Channels, 1)
	ints := make([]int, len(b.Data))
	for i, s := range b.Data {
		ints[i] = int(clip(s) * 32767.0)
	}
	out := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.Format.Channels,
			SampleRate:  b.Format.SampleRate,
		},
		Data:           ints,
		SourceBitDepth: wavBitDepth,
	}
	if err := encoder.Write(out); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode wav: close: %w", err)
	}
	return nil
}

// ReadWAVFile decodes the WAV file at path.
func ReadWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

// WriteWAVFile encodes the buffer to path, removing partial output on failure.
func WriteWAVFile(path string, b *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
