// Package loaderfiles ensures the fixed whitelist of mod-loader files is
// unpacked once from a bundled archive and copies them into the game
// directory, per spec §4.B.
package loaderfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modkit-dev/modkit/internal/archiveutil"
	"github.com/modkit-dev/modkit/internal/cache"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// FastPathWindow is how long the sentinel file is trusted without
// re-verifying the required files are present (spec §4.B: "1-hour window").
const FastPathWindow = time.Hour

const sentinelName = ".loader_files_verified"

// Whitelist is the fixed set of loader files that may ever be copied into
// the game directory. No other file ever propagates (spec §3 invariant).
var Whitelist = []string{
	"modengine2_launcher.exe",
	"ModEngine.dll",
	"modengine2.dll",
	"dinput8.dll",
}

// Provisioner manages the loader-files sub-directory and its extraction
// from a bundled archive.
type Provisioner struct {
	SourceDir   string // directory loader files are unpacked into / copied from
	ArchivePath string // bundled zip containing the loader files, if any
}

// New builds a Provisioner for the given source directory and archive path.
func New(sourceDir, archivePath string) *Provisioner {
	return &Provisioner{SourceDir: sourceDir, ArchivePath: archivePath}
}

func (p *Provisioner) sentinel() *cache.Sentinel {
	return cache.NewSentinel(filepath.Join(p.SourceDir, sentinelName), FastPathWindow)
}

// EnsureAvailable checks that every whitelisted file exists in SourceDir. If
// all are present, it succeeds immediately. Otherwise, if ArchivePath
// exists, it extracts only the whitelisted filenames (flattening nesting)
// and re-verifies. A sentinel file records success and gates a fast path
// that skips re-verification within FastPathWindow.
func (p *Provisioner) EnsureAvailable() error {
	sentinel := p.sentinel()
	if sentinel.Fresh() {
		return nil
	}

	if p.allPresent() {
		_ = sentinel.Touch()
		return nil
	}

	if _, err := os.Stat(p.ArchivePath); err != nil {
		return fmt.Errorf("loaderfiles: required files missing and archive %s unavailable: %w", p.ArchivePath, err)
	}

	wanted := make(map[string]bool, len(Whitelist))
	for _, name := range Whitelist {
		wanted[name] = true
	}
	found, err := archiveutil.ExtractFlattened(p.ArchivePath, p.SourceDir, wanted)
	if err != nil {
		return fmt.Errorf("loaderfiles: extracting from archive: %w", err)
	}
	xlog.WithField("count", len(found)).Info("loaderfiles: extracted loader files from archive")

	if !p.allPresent() {
		return fmt.Errorf("loaderfiles: required files still missing after extraction")
	}

	return sentinel.Touch()
}

func (p *Provisioner) allPresent() bool {
	for _, name := range Whitelist {
		if _, err := os.Stat(filepath.Join(p.SourceDir, name)); err != nil {
			return false
		}
	}
	return true
}

// FileResult reports the per-file outcome of Apply.
type FileResult struct {
	Name    string
	Success bool
	Err     error
}

// Apply copies every whitelisted file from SourceDir into gameDir, verifying
// each destination exists and matches the source's byte length. Each file
// succeeds or fails independently (spec §4.B); overall success requires
// all. Partially-applied files are left in place on failure — see
// DESIGN.md's policy note on the open question in spec §9.
func (p *Provisioner) Apply(gameDir string) ([]FileResult, bool) {
	results := make([]FileResult, 0, len(Whitelist))
	allOK := true
	for _, name := range Whitelist {
		src := filepath.Join(p.SourceDir, name)
		dst := filepath.Join(gameDir, name)
		err := copyFile(src, dst)
		if err == nil {
			err = verifySize(src, dst)
		}
		if err != nil {
			allOK = false
			results = append(results, FileResult{Name: name, Success: false, Err: err})
			xlog.WithField("file", name).WithField("error", err).Warn("loaderfiles: apply failed for file")
			continue
		}
		results = append(results, FileResult{Name: name, Success: true})
	}
	return results, allOK
}

// Remove deletes every whitelisted file from gameDir. Missing files are not
// errors for overall success (spec §4.B).
func (p *Provisioner) Remove(gameDir string) error {
	for _, name := range Whitelist {
		path := filepath.Join(gameDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loaderfiles: removing %s: %w", name, err)
		}
	}
	return nil
}

// IsApplied returns true iff every whitelisted file is present in gameDir.
func IsApplied(gameDir string) bool {
	for _, name := range Whitelist {
		if _, err := os.Stat(filepath.Join(gameDir, name)); err != nil {
			return false
		}
	}
	return true
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func verifySize(src, dst string) error {
	si, err := os.Stat(src)
	if err != nil {
		return err
	}
	di, err := os.Stat(dst)
	if err != nil {
		return err
	}
	if si.Size() != di.Size() {
		return fmt.Errorf("size mismatch: source %d bytes, dest %d bytes", si.Size(), di.Size())
	}
	return nil
}
