package preflight

import (
	"context"

	"dubline/internal/config"
	"dubline/internal/procrun"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes the preflight checks for the given config. The temp
// directory is created when missing; the log directory is only checked when
// configured.
func RunAll(ctx context.Context, cfg *config.Config, runner procrun.Runner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{EnsureDirectory("Temp directory", cfg.Paths.TempDir)}
	if cfg.Paths.LogDir != "" {
		results = append(results, EnsureDirectory("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckFFmpegRunnable(ctx, runner, cfg.FFmpeg.FFmpegBinary))
	return results
}
