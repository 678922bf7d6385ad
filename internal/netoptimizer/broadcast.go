package netoptimizer

import (
	"fmt"
	"time"

	"github.com/modkit-dev/modkit/internal/foreignproc"
)

// lanBroadcastExe is the bundled helper's executable name, used both to
// spawn it and to poll/sweep the process table (spec §4.J "LAN-broadcast
// helper").
const lanBroadcastExe = "WinIPBroadcast.exe"

const lanBroadcastStopGrace = 2 * time.Second

// LANBroadcast controls the bundled LAN-broadcast relay helper.
type LANBroadcast struct {
	BinaryPath string
}

// Start launches the helper elevated in "run" mode (spec §4.J). Because
// the elevated launch yields no child handle, the running state must be
// confirmed afterward via Status.
func (b *LANBroadcast) Start() error {
	if b.Status() {
		return nil
	}
	return elevatedSpawnHelper(b.BinaryPath, []string{"run"})
}

// Status polls the OS process table by executable name.
func (b *LANBroadcast) Status() bool {
	pids, err := foreignproc.FindByName(lanBroadcastExe)
	if err != nil {
		return false
	}
	return len(pids) > 0
}

// Stop performs the two-phase terminate-then-kill sweep, falling back to
// a system taskkill if processes remain (spec §4.J "Stop performs a
// two-phase terminate-then-kill sweep... with a final fallback to a
// system taskkill").
func (b *LANBroadcast) Stop() error {
	pids, err := foreignproc.FindByName(lanBroadcastExe)
	if err != nil {
		return fmt.Errorf("netoptimizer: listing %s processes: %w", lanBroadcastExe, err)
	}
	for _, pid := range pids {
		_ = foreignproc.TerminateThenKill(pid, lanBroadcastStopGrace)
	}

	if b.Status() {
		taskkillFallback(lanBroadcastExe)
	}
	return nil
}
