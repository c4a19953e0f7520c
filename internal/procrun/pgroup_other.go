//go:build !unix

package procrun

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
