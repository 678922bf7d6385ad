//go:build !windows

package netoptimizer

import (
	"fmt"
	"os/exec"
)

// elevatedSpawnHelper wraps exe in the platform's privileged-exec helper,
// mirroring the overlay supervisor's non-Windows elevation path.
func elevatedSpawnHelper(exe string, args []string) error {
	wrapper, wrapperArgs := privilegeWrapper()
	fullArgs := append(wrapperArgs, append([]string{exe}, args...)...)

	cmd := exec.Command(wrapper, fullArgs...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("netoptimizer: elevated spawn via %s: %w", wrapper, err)
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

// taskkillFallback has no non-Windows equivalent in this codebase's
// helper set; the terminate-then-kill sweep already covers this platform.
func taskkillFallback(exeName string) {}
