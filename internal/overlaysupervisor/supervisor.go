// Package overlaysupervisor starts, monitors, and stops the external
// overlay-network daemon: elevation, PID-tracked liveness, status polling,
// and event emission (spec §4.I). Grounded on pkg/newtlab/qemu.go +
// pkg/newtlab/state.go's start/stop/poll-by-PID lifecycle for an
// externally-spawned, non-child process.
package overlaysupervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modkit-dev/modkit/internal/foreignproc"
	"github.com/modkit-dev/modkit/internal/overlayconfig"
	"github.com/modkit-dev/modkit/internal/roomconfig"
	"github.com/modkit-dev/modkit/internal/xerr"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// State is one of the overlay supervisor's three lifecycle states (spec
// §4.I "States").
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
)

const (
	stopGrace        = 1 * time.Second
	statusPollPeriod = 5 * time.Second
	warmUpWindow     = 500 * time.Millisecond
	cliTimeout       = 5 * time.Second
)

// Paths locates the binaries and files the supervisor needs.
type Paths struct {
	DaemonBinary string // the overlay daemon executable
	DaemonCLI    string // the daemon's companion CLI for status queries
	DriverDLL    string // platform driver required alongside the daemon
	ConfigPath   string // where the generated TOML config is written
	LogDir       string
}

// NodeInfo is the projected local-node status from the daemon CLI (spec
// §4.I status polling).
type NodeInfo struct {
	IPv4 string `json:"ipv4"`
}

// Peer is a projected remote peer entry (spec §4.I: the eleven-field
// peer projection).
type Peer struct {
	IP           string  `json:"ip"`
	Hostname     string  `json:"hostname"`
	LatencyMS    float64 `json:"latency_ms"`
	Cost         string  `json:"cost"`
	LossRate     float64 `json:"loss_rate"`
	RxBytes      int64   `json:"rx"`
	TxBytes      int64   `json:"tx"`
	TunnelProto  string  `json:"tunnel_proto"`
	NATType      string  `json:"nat_type"`
	Version      string  `json:"version"`
	ID           string  `json:"id"`
}

// Events is the set of callbacks the supervisor invokes (spec §4.I: "three
// events"): NetworkStatusChanged when the up/down state changes,
// PeerListUpdated and ConnectionInfoUpdated after every successful poll.
// Any nil field is skipped.
type Events struct {
	NetworkStatusChanged  func(up bool)
	PeerListUpdated       func(peers []Peer)
	ConnectionInfoUpdated func(info NodeInfo)
}

// Supervisor drives the overlay daemon's lifecycle.
type Supervisor struct {
	paths  Paths
	events Events

	mu      sync.Mutex
	state   State
	handle  *foreignproc.Handle
	lastUp  bool
	cancel  context.CancelFunc
}

// New constructs a Supervisor in the stopped state.
func New(paths Paths, events Events) *Supervisor {
	return &Supervisor{paths: paths, events: events, state: StateStopped}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// checkPrerequisites verifies the daemon binary, its CLI, and the driver
// DLL are all present (spec §4.I "Prerequisites").
func (s *Supervisor) checkPrerequisites() xerr.Outcome {
	for _, p := range []string{s.paths.DaemonBinary, s.paths.DaemonCLI, s.paths.DriverDLL} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return xerr.Failf("required overlay file missing: %s", p)
		}
	}
	return xerr.Ok()
}

// Start implements spec §4.I "Start": prerequisite checks, config
// generation, elevated spawn, PID discovery, and a warm-up before emitting
// running. Re-entry while running or starting is rejected.
func (s *Supervisor) Start(room roomconfig.Room, hostnameOverride string) xerr.Outcome {
	s.mu.Lock()
	if s.state == StateRunning || s.state == StateStarting {
		s.mu.Unlock()
		return xerr.Fail("overlay is already starting or running")
	}
	s.state = StateStarting
	s.mu.Unlock()

	if err := s.checkPrerequisites(); !err.OK {
		s.setStopped()
		return err
	}

	cfg, genErr := overlayconfig.Generate(room, hostnameOverride)
	if genErr != nil {
		s.setStopped()
		return xerr.Failf("generating overlay config: %v", genErr)
	}

	if err := os.MkdirAll(filepath.Dir(s.paths.ConfigPath), 0o755); err != nil {
		s.setStopped()
		return xerr.Failf("creating config directory: %v", err)
	}
	if err := os.WriteFile(s.paths.ConfigPath, []byte(overlayconfig.Write(cfg)), 0o644); err != nil {
		s.setStopped()
		return xerr.Failf("writing overlay config: %v", err)
	}

	args := []string{
		"--config-file", s.paths.ConfigPath,
		"--file-log-dir", s.paths.LogDir,
		"--file-log-level", "info",
		"--console-log-level", "warn",
	}

	if err := elevatedSpawn(s.paths.DaemonBinary, args); err != nil {
		s.setStopped()
		return classifyStartFailure(err)
	}

	time.Sleep(warmUpWindow)

	pids, findErr := foreignproc.FindByName(filepath.Base(s.paths.DaemonBinary))
	if findErr != nil || len(pids) == 0 {
		s.setStopped()
		return xerr.Fail("could not locate the overlay daemon process after start")
	}

	s.mu.Lock()
	s.handle = foreignproc.ForPID(pids[0])
	s.state = StateRunning
	s.mu.Unlock()

	s.startPolling()
	s.emitNetworkStatus(true)

	return xerr.Ok()
}

// classifyStartFailure surfaces the "create adapter" failure distinctly,
// since it is the one actionable-by-the-user startup error (spec §4.I
// "Failure modes").
func classifyStartFailure(err error) xerr.Outcome {
	if strings.Contains(strings.ToLower(err.Error()), "adapter") {
		return xerr.Fail("failed to create the network adapter; try reinstalling the driver or rebooting")
	}
	return xerr.Failf("starting overlay daemon: %v", err)
}

// Stop implements spec §4.I "Stop": polite terminate with a 1-second
// grace, then kill; stops the status timer; asynchronously sweeps
// residual processes by name.
func (s *Supervisor) Stop() xerr.Outcome {
	s.mu.Lock()
	handle := s.handle
	cancel := s.cancel
	s.handle = nil
	s.cancel = nil
	s.state = StateStopped
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if handle != nil {
		if err := foreignproc.TerminateThenKill(handle.PID, stopGrace); err != nil {
			xlog.WithField("pid", handle.PID).WithField("error", err).Warn("overlaysupervisor: stop did not cleanly terminate daemon")
		}
	}

	go foreignproc.SweepByName(filepath.Base(s.paths.DaemonBinary), stopGrace)

	s.emitNetworkStatus(false)
	return xerr.Ok()
}

func (s *Supervisor) setStopped() {
	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
}

// startPolling launches the periodic status-poll loop (spec §4.I "Status
// polling", default 5s). In this non-GUI port, the "UI-thread timer"
// concern translates to a cancellable goroutine driven by a context
// (see DESIGN.md: UI-thread-marshalling translation note).
func (s *Supervisor) startPolling() {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(statusPollPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pollOnce()
			}
		}
	}()
}

// pollOnce queries the daemon CLI once, detects process exit, and fans
// out change events.
func (s *Supervisor) pollOnce() {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()

	if handle == nil {
		return
	}
	if !handle.Alive() {
		s.Stop()
		xlog.Warn("overlaysupervisor: daemon process exited unexpectedly")
		return
	}

	if info, err := s.queryNodeInfo(); err == nil {
		if s.events.ConnectionInfoUpdated != nil {
			s.events.ConnectionInfoUpdated(info)
		}
	}

	if peers, err := s.queryPeerList(); err == nil {
		if s.events.PeerListUpdated != nil {
			s.events.PeerListUpdated(peers)
		}
	}
}

func (s *Supervisor) emitNetworkStatus(up bool) {
	s.mu.Lock()
	changed := s.lastUp != up
	s.lastUp = up
	s.mu.Unlock()

	if changed && s.events.NetworkStatusChanged != nil {
		s.events.NetworkStatusChanged(up)
	}
}

// queryNodeInfo invokes `<daemon-cli> -o json node info` (spec §6).
func (s *Supervisor) queryNodeInfo() (NodeInfo, error) {
	out, err := runCLI(s.paths.DaemonCLI, "-o", "json", "node", "info")
	if err != nil {
		return NodeInfo{}, err
	}
	var raw struct {
		IPv4 string `json:"ipv4"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return NodeInfo{}, fmt.Errorf("overlaysupervisor: parsing node info: %w", err)
	}
	return NodeInfo{IPv4: raw.IPv4}, nil
}

// rawPeer mirrors the daemon CLI's peer-list JSON shape before filtering.
type rawPeer struct {
	IP          string  `json:"ip"`
	Hostname    string  `json:"hostname"`
	LatencyMS   float64 `json:"latency_ms"`
	Cost        string  `json:"cost"`
	LossRate    float64 `json:"loss_rate"`
	RxBytes     int64   `json:"rx"`
	TxBytes     int64   `json:"tx"`
	TunnelProto string  `json:"tunnel_proto"`
	NATType     string  `json:"nat_type"`
	Version     string  `json:"version"`
	ID          string  `json:"id"`
}

// queryPeerList invokes `<daemon-cli> -o json peer list`, filters the
// local node and PublicServer-prefixed entries, and projects the rest
// (spec §4.I "Status polling").
func (s *Supervisor) queryPeerList() ([]Peer, error) {
	out, err := runCLI(s.paths.DaemonCLI, "-o", "json", "peer", "list")
	if err != nil {
		return nil, err
	}

	var raw []rawPeer
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("overlaysupervisor: parsing peer list: %w", err)
	}

	peers := filterPeers(raw)
	return peers, nil
}

func filterPeers(raw []rawPeer) []Peer {
	peers := make([]Peer, 0, len(raw))
	for _, p := range raw {
		if p.Cost == "Local" {
			continue
		}
		if strings.HasPrefix(p.Hostname, "PublicServer") {
			continue
		}
		peers = append(peers, Peer{
			IP:          p.IP,
			Hostname:    p.Hostname,
			LatencyMS:   p.LatencyMS,
			Cost:        p.Cost,
			LossRate:    p.LossRate,
			RxBytes:     p.RxBytes,
			TxBytes:     p.TxBytes,
			TunnelProto: p.TunnelProto,
			NATType:     p.NATType,
			Version:     p.Version,
			ID:          p.ID,
		})
	}
	return peers
}

func runCLI(cliPath string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, cliPath, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("overlaysupervisor: running %s: %w", cliPath, err)
	}
	return out, nil
}
