package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"dubline/internal/services"
)

// Command describes one subprocess invocation.
type Command struct {
	Binary  string
	Args    []string
	Timeout time.Duration
	Dir     string
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Result captures the outcome of a finished subprocess.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Elapsed  time.Duration
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands. Run returns an error only when the process could
// not be started, was cancelled, or exceeded its timeout; a non-zero exit is
// reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (Result, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// Exec runs commands on the host.
type Exec struct {
	// WaitDelay bounds how long Run waits for output pipes after the process
	// group has been killed.
	WaitDelay time.Duration
}

// NewExec returns the default host runner.
func NewExec() *Exec {
	return &Exec{WaitDelay: 5 * time.Second}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, command Command) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	binary := strings.TrimSpace(command.Binary)
	if binary == "" {
		return Result{ExitCode: -1}, services.Wrap(services.ErrConfiguration, "procrun", "run", "binary not configured", nil)
	}

	runCtx := ctx
	cancel := func() {}
	if command.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, command.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureProcessGroup(cmd)
	if e != nil && e.WaitDelay > 0 {
		cmd.WaitDelay = e.WaitDelay
	}

	started := time.Now()
	err := cmd.Run()
	result := Result{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Elapsed:  time.Since(started),
	}

	if runCtx.Err() != nil {
		result.ExitCode = -1
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return result, services.Wrap(
				services.ErrTimeout,
				"procrun",
				"run",
				fmt.Sprintf("%s exceeded %s", binary, command.Timeout),
				errors.Join(runCtx.Err(), tailError(result.Stderr)),
			)
		}
		return result, ctx.Err()
	}

	if err == nil {
		return result, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	result.ExitCode = -1
	if errors.Is(err, exec.ErrNotFound) {
		return result, services.Wrap(services.ErrNotFound, "procrun", "start", fmt.Sprintf("binary %q not found", binary), err)
	}
	return result, services.Wrap(services.ErrExternalTool, "procrun", "start", binary, err)
}

// Check converts a non-zero exit into an ErrExternalTool error carrying the
// tail of stderr. It returns nil for successful results.
func Check(cmd Command, res Result) error {
	if res.Success() {
		return nil
	}
	return services.Wrap(
		services.ErrExternalTool,
		"procrun",
		strings.TrimSpace(cmd.Binary),
		fmt.Sprintf("exit status %d", res.ExitCode),
		tailError(res.Stderr),
	)
}

// RunChecked executes the command and folds non-zero exits into an error.
func RunChecked(ctx context.Context, runner Runner, cmd Command) (Result, error) {
	if runner == nil {
		runner = NewExec()
	}
	res, err := runner.Run(ctx, cmd)
	if err != nil {
		return res, err
	}
	return res, Check(cmd, res)
}

const (
	tailLines = 12
	tailBytes = 2048
)

// Tail returns the last few lines of process output, trimmed for error messages.
func Tail(output []byte) string {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return ""
	}
	if len(text) > tailBytes {
		cut := len(text) - tailBytes
		for cut < len(text) && !utf8.RuneStart(text[cut]) {
			cut++
		}
		text = text[cut:]
	}
	lines := strings.Split(text, "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func tailError(output []byte) error {
	tail := Tail(output)
	if tail == "" {
		return nil
	}
	return errors.New(tail)
}
