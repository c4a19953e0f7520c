// Package deps reports whether the external binaries dubline shells out to
// are installed and runnable.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dubline/internal/procrun"
)

// ProbeTimeout bounds a single availability probe.
const ProbeTimeout = 5 * time.Second

// Requirement names an external binary and what it is used for.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries resolves each requirement on PATH and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// ProbeFFmpeg reports whether binary answers "-version" with a zero exit
// within ProbeTimeout. Any failure, including a missing binary, is false.
func ProbeFFmpeg(ctx context.Context, runner procrun.Runner, binary string) bool {
	if strings.TrimSpace(binary) == "" {
		return false
	}
	if runner == nil {
		runner = procrun.NewExec()
	}
	_, err := procrun.RunChecked(ctx, runner, procrun.Command{
		Binary:  binary,
		Args:    []string{"-version"},
		Timeout: ProbeTimeout,
	})
	return err == nil
}
