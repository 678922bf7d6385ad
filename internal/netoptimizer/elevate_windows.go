//go:build windows

package netoptimizer

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// elevatedSpawnHelper launches exe elevated via ShellExecute's "runas"
// verb, mirroring the overlay supervisor's elevation path (spec §4.J:
// "Launch a bundled binary elevated in run mode").
func elevatedSpawnHelper(exe string, args []string) error {
	verb, _ := syscall.UTF16PtrFromString("runas")
	file, _ := syscall.UTF16PtrFromString(exe)
	params, _ := syscall.UTF16PtrFromString(strings.Join(args, " "))

	const swHide = 0
	ret, _, err := procShellExecuteW.Call(
		0,
		uintptr(unsafe.Pointer(verb)),
		uintptr(unsafe.Pointer(file)),
		uintptr(unsafe.Pointer(params)),
		0,
		swHide,
	)
	if ret <= 32 {
		return fmt.Errorf("netoptimizer: ShellExecuteW failed (code %d): %w", ret, err)
	}
	return nil
}

var (
	modShell32        = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteW = modShell32.NewProc("ShellExecuteW")
)

// taskkillFallback invokes the system taskkill /F as a last resort. It runs
// with this process's own privileges whether or not they are
// administrative, no elevation is requested, and its result is ignored.
func taskkillFallback(exeName string) {
	_ = exec.Command("taskkill", "/F", "/IM", exeName).Run()
}
