//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

// setDetachAttrPlatform detaches the child into its own process group so it
// survives this process exiting, mirroring the teacher's
// startNodeLocal (pkg/newtlab/qemu.go: "Setpgid: true").
func setDetachAttrPlatform(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
