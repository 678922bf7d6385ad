// Package foreignproc models processes that were spawned elevated and
// cannot be inherited as child handles: un-inheritable once a privilege
// escalation prompt happens, they must be tracked by executable name and
// PID rather than an os/exec *Cmd handle. Grounded on the teacher's
// NodeState/BridgeState PID-bookkeeping pattern (pkg/newtlab/state.go) and
// its "kill by name" sweeps (spec §4.I, §4.J, §9).
package foreignproc

import (
	"context"
	"os"
	"runtime"
	"time"
)

// Handle is a thin adapter over a PID-identified process that may not be a
// child of this one. It supports poll/terminate/kill without relying on
// exit-code capture (spec §9: "treat 'process gone by name' as the
// termination signal").
type Handle struct {
	PID int
}

// ForPID wraps an already-known PID.
func ForPID(pid int) *Handle { return &Handle{PID: pid} }

// Alive reports whether the process is still running.
func (h *Handle) Alive() bool {
	return isRunning(h.PID)
}

// Terminate sends a polite termination request (SIGTERM) on Unix. On
// Windows it calls TerminateProcess, the same forced termination as Kill,
// so the process gets no chance to shut down cleanly there.
func (h *Handle) Terminate() error {
	return terminate(h.PID)
}

// Kill forcefully terminates the process.
func (h *Handle) Kill() error {
	return kill(h.PID)
}

// WaitGone polls until the process disappears or the context is done.
func (h *Handle) WaitGone(ctx context.Context, pollInterval time.Duration) bool {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if !h.Alive() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// FindByName returns PIDs of every running process whose executable name
// matches name (case-insensitive on Windows; elsewhere an exact match on
// name with any trailing ".exe" removed).
func FindByName(name string) ([]int, error) {
	return findByName(name)
}

// TerminateThenKill performs the spec's standard two-phase stop: send a
// polite terminate, wait up to grace, then force-kill. Used by the overlay
// supervisor, the LAN-broadcast helper, and the game launcher's
// conflicting-process cleanup (spec §4.G step 4, §4.I stop, §4.J stop).
func TerminateThenKill(pid int, grace time.Duration) error {
	h := ForPID(pid)
	if !h.Alive() {
		return nil
	}
	_ = h.Terminate()

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if h.WaitGone(ctx, 100*time.Millisecond) {
		return nil
	}
	return h.Kill()
}

// SweepByName best-effort terminates every process matching name, ignoring
// individual failures (spec §4.I: "Asynchronously sweep any remaining
// processes... best-effort; no hard failure").
func SweepByName(name string, grace time.Duration) {
	pids, err := FindByName(name)
	if err != nil {
		return
	}
	for _, pid := range pids {
		_ = TerminateThenKill(pid, grace)
	}
}

// isRunning reports whether pid refers to a live process. On Unix,
// os.FindProcess always succeeds; a zero-signal probe is required to learn
// liveness.
func isRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return windowsProcessAlive(pid)
	}
	return unixProcessAlive(proc)
}
