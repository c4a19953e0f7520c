package testsupport

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"dubline/internal/media/pcm"
	"dubline/internal/procrun"
)

// FakeRunner records commands and answers them through Handler. A nil
// Handler reports success without touching the filesystem.
type FakeRunner struct {
	Handler func(ctx context.Context, cmd procrun.Command) (procrun.Result, error)

	mu    sync.Mutex
	calls []procrun.Command
}

// Run implements procrun.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd procrun.Command) (procrun.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if f.Handler == nil {
		return procrun.Result{}, nil
	}
	return f.Handler(ctx, cmd)
}

// Calls returns a copy of the recorded commands.
func (f *FakeRunner) Calls() []procrun.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]procrun.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching returns recorded commands whose arguments contain flag.
func (f *FakeRunner) CallsMatching(flag string) []procrun.Command {
	var out []procrun.Command
	for _, cmd := range f.Calls() {
		for _, arg := range cmd.Args {
			if arg == flag {
				out = append(out, cmd)
				break
			}
		}
	}
	return out
}

// FFmpegEmulator answers ffmpeg invocations by producing plausible output
// files. WAV destinations receive a copy of a WAV input or, for non-WAV
// inputs such as videos, a tone of toneMs at the -ar/-ac format. Other
// destinations receive a copy of the first input.
func FFmpegEmulator(toneMs int) func(context.Context, procrun.Command) (procrun.Result, error) {
	return func(_ context.Context, cmd procrun.Command) (procrun.Result, error) {
		if len(cmd.Args) == 0 {
			return procrun.Result{ExitCode: 1, Stderr: []byte("no arguments")}, nil
		}
		dst := cmd.Args[len(cmd.Args)-1]
		src := ArgValue(cmd.Args, "-i")
		if strings.HasSuffix(strings.ToLower(dst), ".wav") {
			if buf, err := pcm.ReadWAVFile(src); err == nil {
				if err := pcm.WriteWAVFile(dst, buf); err != nil {
					return procrun.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
				}
				return procrun.Result{}, nil
			}
			format := pcm.Format{
				SampleRate: atoiDefault(ArgValue(cmd.Args, "-ar"), 8000),
				Channels:   atoiDefault(ArgValue(cmd.Args, "-ac"), 1),
			}
			if err := pcm.WriteWAVFile(dst, Tone(format, toneMs, 0.3)); err != nil {
				return procrun.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
			}
			return procrun.Result{}, nil
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return procrun.Result{ExitCode: 1, Stderr: []byte(src + ": No such file or directory")}, nil
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return procrun.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
		}
		return procrun.Result{}, nil
	}
}

// ArgValue returns the argument following the first occurrence of flag.
func ArgValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func atoiDefault(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
