package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"dubline/internal/config"
	"dubline/internal/deps"
	"dubline/internal/procrun"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// EnsureDirectory creates path when missing and then checks access.
func EnsureDirectory(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckFFmpegRunnable runs the availability probe against the configured
// encoder binary.
func CheckFFmpegRunnable(ctx context.Context, runner procrun.Runner, binary string) Result {
	const name = "FFmpeg runnable"
	if deps.ProbeFFmpeg(ctx, runner, binary) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s -version ok", binary)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s -version failed", binary)}
}

// CheckSystemDeps resolves the external binaries named in the configuration.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpeg.FFmpegBinary,
			Description: "Required for extraction, mixing output, and the final merge",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFmpeg.FFprobeBinary,
			Description: "Required for video inspection",
		},
	})
}
