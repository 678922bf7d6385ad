// Package toolprovisioner unpacks auxiliary helper binaries (the LAN
// broadcast relay, the overlay daemon, its CLI) from a bundled archive,
// behaving analogously to internal/loaderfiles but with a stronger
// per-file integrity check, per spec §4.L.
package toolprovisioner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modkit-dev/modkit/internal/archiveutil"
	"github.com/modkit-dev/modkit/internal/cache"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// SentinelWindow is the on-disk fast-path freshness window (spec §4.L:
// "1-hour fast-path").
const SentinelWindow = time.Hour

// MemoryTTL is the in-memory verification-result cache lifetime (spec
// §4.L: "5-minute TTL").
const MemoryTTL = 5 * time.Minute

const sentinelName = ".tools_verified"

var peHeader = []byte("MZ")

// Provisioner manages the tools sub-directory and its extraction from a
// bundled archive.
type Provisioner struct {
	ToolsDir    string
	ArchivePath string
	Required    []string

	mem *cache.TTLCache
}

// New builds a Provisioner for the given tools directory, archive, and
// required filename list.
func New(toolsDir, archivePath string, required []string) *Provisioner {
	return &Provisioner{
		ToolsDir:    toolsDir,
		ArchivePath: archivePath,
		Required:    required,
		mem:         cache.NewTTLCache(MemoryTTL),
	}
}

func (p *Provisioner) sentinel() *cache.Sentinel {
	return cache.NewSentinel(filepath.Join(p.ToolsDir, sentinelName), SentinelWindow)
}

// EnsureAvailable verifies every required file's integrity, re-extracting
// from the bundled archive if any are missing or corrupt.
func (p *Provisioner) EnsureAvailable() error {
	if ok, hit := p.mem.Get("all"); hit && ok {
		return nil
	}

	sentinel := p.sentinel()
	if sentinel.Fresh() && p.allIntact() {
		p.mem.Set("all", true)
		return nil
	}

	if !p.allIntact() {
		if _, err := os.Stat(p.ArchivePath); err != nil {
			return fmt.Errorf("toolprovisioner: tools missing/corrupt and archive %s unavailable: %w", p.ArchivePath, err)
		}
		wanted := make(map[string]bool, len(p.Required))
		for _, name := range p.Required {
			wanted[name] = true
		}
		if _, err := archiveutil.ExtractFlattened(p.ArchivePath, p.ToolsDir, wanted); err != nil {
			return fmt.Errorf("toolprovisioner: extracting tools: %w", err)
		}
		xlog.Info("toolprovisioner: re-extracted auxiliary tools from archive")
	}

	if !p.allIntact() {
		p.mem.Set("all", false)
		return fmt.Errorf("toolprovisioner: tools still missing or corrupt after extraction")
	}

	if err := sentinel.Touch(); err != nil {
		return err
	}
	p.mem.Set("all", true)
	return nil
}

func (p *Provisioner) allIntact() bool {
	for _, name := range p.Required {
		if !checkFile(filepath.Join(p.ToolsDir, name)) {
			return false
		}
	}
	return true
}

// checkFile verifies: existence, non-zero size, first 1 KiB readable, and
// for .exe files the PE "MZ" header.
func checkFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}

	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	if n == 0 {
		return false
	}

	if strings.EqualFold(filepath.Ext(path), ".exe") {
		if n < 2 || !bytes.Equal(buf[:2], peHeader) {
			return false
		}
	}
	return true
}
