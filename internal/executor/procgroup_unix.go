//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the child in a new process group and makes
// context cancellation kill the entire group instead of just the leader.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
