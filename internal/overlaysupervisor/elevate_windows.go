//go:build windows

package overlaysupervisor

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// elevatedSpawn invokes ShellExecute with the "runas" verb to launch exe
// with a hidden window and administrative rights (spec §4.I "Elevation").
// The resulting process cannot be inherited as a child handle, so callers
// must locate it afterward by executable name.
func elevatedSpawn(exe string, args []string) error {
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
	// ShellExecuteW returns a value > 32 on success.
	if ret <= 32 {
		return fmt.Errorf("overlaysupervisor: ShellExecuteW failed (code %d): %w", ret, err)
	}
	return nil
}

var (
	modShell32        = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteW = modShell32.NewProc("ShellExecuteW")
)
