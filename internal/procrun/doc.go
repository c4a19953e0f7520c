// Package procrun runs external binaries (ffmpeg, ffprobe) with bounded
// timeouts and captures their output.
//
// The Runner interface is the seam every media component executes through, so
// tests can substitute scripted fakes. Exec is the production implementation:
// it starts each command in its own process group and kills the whole group
// when the deadline expires, leaving no orphaned encoder children behind.
package procrun
