//go:build windows

package foreignproc

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"
)

func unixProcessAlive(proc *os.Process) bool { return false }

// windowsProcessAlive opens the process by PID and checks its exit code is
// still STILL_ACTIVE, since Windows recycles PIDs and os.FindProcess always
// succeeds regardless of liveness.
func windowsProcessAlive(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	const stillActive = 259
	return code == stillActive
}

// terminate is the same forced TerminateProcess call as kill: Windows has
// no generic unrelated-process SIGTERM equivalent, so no graceful close is
// requested and the process ends at once, without running its own cleanup.
func terminate(pid int) error {
	return kill(pid)
}

func kill(pid int) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.TerminateProcess(h, 1)
}

// findByName shells out to tasklist to enumerate PIDs for an un-inherited
// process by executable name (spec §9: "located by executable name").
func findByName(name string) ([]int, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	filter := fmt.Sprintf("IMAGENAME eq %s", name)
	out, err := exec.Command("tasklist", "/FI", filter, "/FO", "CSV", "/NH").Output()
	if err != nil {
		return nil, err
	}

	var pids []int
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Split(line, "\",\"")
		if len(fields) < 2 {
			continue
		}
		pidField := strings.Trim(fields[1], "\"")
		pid, err := strconv.Atoi(pidField)
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
