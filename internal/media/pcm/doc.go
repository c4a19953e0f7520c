// Package pcm holds decoded audio in memory as interleaved float32 samples and
// provides the mixing primitives the timeline compositor builds on: silence,
// fit-to-length, decibel gain, additive overlay, per-frame envelopes, and WAV
// encode/decode through go-audio.
package pcm
