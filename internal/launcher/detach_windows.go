//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

// setDetachAttrPlatform creates the child in its own process group, so a
// Ctrl+C in this app's console does not reach the loader (the Windows
// analogue of the Unix Setpgid detach). The child's console is not detached.
func setDetachAttrPlatform(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
