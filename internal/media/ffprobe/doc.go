// Package ffprobe runs ffprobe through a procrun.Runner and decodes the
// stream list and container duration from its JSON output.
package ffprobe
