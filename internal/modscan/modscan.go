// Package modscan walks the mod directory and classifies each entry per
// spec §4.C, enumerating injectable native libraries along the way.
package modscan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/modkit-dev/modkit/internal/modregistry"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// Kind is the classification tag assigned to a mod-folder entry.
type Kind string

const (
	KindContentPackage Kind = "content-package"
	KindNativeLibrary   Kind = "native-library"
	KindMixed           Kind = "mixed"
	KindUnknown         Kind = "unknown"
)

// contentIndicatorFiles are files whose presence marks a content package.
var contentIndicatorFiles = []string{
	"regulation.bin",
}

// contentIndicatorDirs are sub-folders whose presence marks a content
// package.
var contentIndicatorDirs = []string{
	"message", "param", "chr", "script", "sfx", "map", "parts",
}

// contentArchivePatterns are glob patterns for packaged content archives.
var contentArchivePatterns = []string{
	"*.bnd", "*.bnd.dcx", "*.dcx",
}

// excludedDLLs are known vendor-runtime DLLs that never count as mod
// native libraries, e.g. shipped alongside a content package by accident.
var excludedDLLs = map[string]bool{
	"d3dcompiler_47.dll": true,
	"msvcp140.dll":        true,
	"vcruntime140.dll":    true,
	"vcruntime140_1.dll":  true,
}

// Entry describes one classified mod-folder entry.
type Entry struct {
	Name string
	Path string // absolute path to the folder (or external library file)
	Kind Kind
	DLLs []string // DLL paths for native-library/mixed entries (absolute for external natives)

	IsExternal bool
}

// Scan walks modDir's direct sub-directories, classifies each, and appends
// external entries from the registry with a visible "(external)" suffix.
func Scan(modDir string, registry *modregistry.Registry) ([]Entry, error) {
	entries, err := os.ReadDir(modDir)
	if err != nil {
		return nil, err
	}

	var result []Entry
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		name := de.Name()
		folder := filepath.Join(modDir, name)
		kind, dlls := classify(folder)
		result = append(result, Entry{Name: name, Path: folder, Kind: kind, DLLs: dlls})
	}

	// Legacy layout: top-level DLLs directly in the mod root.
	if rootDLLs, err := topLevelDLLs(modDir); err == nil {
		for _, dll := range rootDLLs {
			result = append(result, Entry{
				Name: dll,
				Path: filepath.Join(modDir, dll),
				Kind: KindNativeLibrary,
				DLLs: []string{dll},
			})
		}
	}

	if registry != nil {
		for name, path := range registry.PackagePaths() {
			result = append(result, Entry{
				Name:       name + " (external)",
				Path:       path,
				Kind:       classifyExternalPackage(path),
				IsExternal: true,
			})
		}
		for name, path := range registry.NativePaths() {
			result = append(result, Entry{
				Name:       name + " (external)",
				Path:       path,
				Kind:       KindNativeLibrary,
				DLLs:       []string{path},
				IsExternal: true,
			})
		}
	}

	return result, nil
}

// classify applies the four-tag heuristic from spec §4.C to a single
// mod-folder.
func classify(folder string) (Kind, []string) {
	dlls := enumerateDLLs(folder)
	hasNative := len(dlls) > 0
	hasContent := hasContentMarkers(folder)

	switch {
	case hasContent && hasNative:
		return KindMixed, dlls
	case hasNative:
		return KindNativeLibrary, dlls
	case hasContent:
		return KindContentPackage, nil
	default:
		return KindUnknown, nil
	}
}

func classifyExternalPackage(path string) Kind {
	if hasContentMarkers(path) {
		return KindContentPackage
	}
	return KindUnknown
}

// hasContentMarkers reports whether folder looks like game content: a
// regulation file, a known content sub-folder, or a packaged archive.
func hasContentMarkers(folder string) bool {
	for _, f := range contentIndicatorFiles {
		if _, err := os.Stat(filepath.Join(folder, f)); err == nil {
			return true
		}
	}
	for _, d := range contentIndicatorDirs {
		if info, err := os.Stat(filepath.Join(folder, d)); err == nil && info.IsDir() {
			return true
		}
	}
	for _, pat := range contentArchivePatterns {
		matches, _ := filepath.Glob(filepath.Join(folder, pat))
		if len(matches) > 0 {
			return true
		}
	}
	return false
}

// enumerateDLLs finds every non-excluded .dll under folder (root level and
// one level of nesting), returning paths relative to folder's parent in
// the form "<mod-folder>/<dll>" or "<mod-folder>/<sub>/<dll>".
func enumerateDLLs(folder string) []string {
	var dlls []string
	name := filepath.Base(folder)

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}
	for _, de := range entries {
		if de.IsDir() {
			subEntries, err := os.ReadDir(filepath.Join(folder, de.Name()))
			if err != nil {
				continue
			}
			for _, sub := range subEntries {
				if sub.IsDir() || !isDLL(sub.Name()) || excludedDLLs[strings.ToLower(sub.Name())] {
					continue
				}
				dlls = append(dlls, filepath.Join(name, de.Name(), sub.Name()))
			}
			continue
		}
		if !isDLL(de.Name()) || excludedDLLs[strings.ToLower(de.Name())] {
			continue
		}
		dlls = append(dlls, filepath.Join(name, de.Name()))
	}
	return dlls
}

func isDLL(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".dll")
}

func topLevelDLLs(modDir string) ([]string, error) {
	entries, err := os.ReadDir(modDir)
	if err != nil {
		return nil, err
	}
	var dlls []string
	for _, de := range entries {
		if de.IsDir() || !isDLL(de.Name()) || excludedDLLs[strings.ToLower(de.Name())] {
			continue
		}
		dlls = append(dlls, de.Name())
	}
	return dlls, nil
}

// Watch rescans modDir whenever its contents change, invoking onChange with
// a fresh Scan result. It blocks until stop is closed. Enrichment over
// spec.md per SPEC_FULL.md §1 (fsnotify pulled from the retrieval pack).
func Watch(modDir string, registry *modregistry.Registry, onChange func([]Entry), stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(modDir); err != nil {
		return err
	}

	for {
		select {
		case <-stop:
			return nil
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			entries, err := Scan(modDir, registry)
			if err != nil {
				xlog.WithField("error", err).Warn("modscan: rescan after fs event failed")
				continue
			}
			onChange(entries)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			xlog.WithField("error", err).Warn("modscan: watcher error")
		}
	}
}
