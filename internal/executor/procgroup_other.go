//go:build !unix

package executor

import "os/exec"

// configureProcessGroup falls back to exec.CommandContext's default of
// killing only the direct child.
func configureProcessGroup(cmd *exec.Cmd) {}
