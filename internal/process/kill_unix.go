//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, which takes
// the browser's renderer and GPU helpers down with it.
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
