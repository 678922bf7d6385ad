//go:build !windows

package overlaysupervisor

import (
	"fmt"
	"os/exec"
)

// elevatedSpawn wraps exe in the platform's privileged-exec helper (spec
// §4.I: "On non-Windows targets the supervisor uses the platform's
// privileged-exec wrapper"), preferring pkexec's polkit prompt and falling
// back to sudo.
func elevatedSpawn(exe string, args []string) error {
	wrapper, wrapperArgs := privilegeWrapper()
	fullArgs := append(wrapperArgs, append([]string{exe}, args...)...)

	cmd := exec.Command(wrapper, fullArgs...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("overlaysupervisor: elevated spawn via %s: %w", wrapper, err)
	}
	go cmd.Wait()
	return nil
}

func privilegeWrapper() (string, []string) {
	if path, err := exec.LookPath("pkexec"); err == nil {
		return path, nil
	}
	return "sudo", nil
}
