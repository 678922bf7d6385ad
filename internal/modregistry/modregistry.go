// Package modregistry persists user-added out-of-tree mod paths under
// stable names, per spec §4.D.
package modregistry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modkit-dev/modkit/internal/xerr"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// document is the on-disk JSON shape: two name->path mappings plus two
// parallel comment mappings (spec §3).
type document struct {
	Packages        map[string]string `json:"packages"`
	Natives         map[string]string `json:"natives"`
	PackageComments map[string]string `json:"package_comments"`
	NativeComments  map[string]string `json:"native_comments"`
}

// Registry holds the loaded external-mod registry for one mod directory.
type Registry struct {
	path       string
	internalDir string
	doc        document
}

// Load reads the registry from path. A missing or corrupt file never fails
// the process: parse errors reset to empty mappings with a logged warning
// (spec §4.D).
func Load(path, internalDir string) *Registry {
	r := &Registry{
		path:        path,
		internalDir: internalDir,
		doc: document{
			Packages:        map[string]string{},
			Natives:         map[string]string{},
			PackageComments: map[string]string{},
			NativeComments:  map[string]string{},
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			xlog.WithField("path", path).WithField("error", err).Warn("modregistry: failed reading registry, starting empty")
		}
		return r
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		xlog.WithField("path", path).WithField("error", err).Warn("modregistry: corrupt registry file, resetting to empty")
		return r
	}
	if doc.Packages == nil {
		doc.Packages = map[string]string{}
	}
	if doc.Natives == nil {
		doc.Natives = map[string]string{}
	}
	if doc.PackageComments == nil {
		doc.PackageComments = map[string]string{}
	}
	if doc.NativeComments == nil {
		doc.NativeComments = map[string]string{}
	}
	r.doc = doc
	return r
}

// Save performs a full-file, UTF-8, pretty-printed rewrite.
func (r *Registry) Save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r.doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// PackagePaths returns a copy of the name -> absolute folder path mapping.
func (r *Registry) PackagePaths() map[string]string {
	return cloneMap(r.doc.Packages)
}

// NativePaths returns a copy of the library-name -> absolute file path mapping.
func (r *Registry) NativePaths() map[string]string {
	return cloneMap(r.doc.Natives)
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AddPackage registers an external package folder, rejecting paths that
// don't exist, aren't directories, resolve inside the internal mod tree, or
// collide with an existing entry.
func (r *Registry) AddPackage(path string) (string, xerr.Outcome) {
	abs, outcome := r.validateCandidate(path, true)
	if !outcome.OK {
		return "", outcome
	}
	if outcome = r.checkDuplicate(abs, r.doc.Packages, nil); !outcome.OK {
		return "", outcome
	}

	name := filepath.Base(abs)
	r.doc.Packages[name] = abs
	if err := r.Save(); err != nil {
		return "", xerr.Failf("saving registry: %v", err)
	}
	return name, xerr.Ok()
}

// AddNative registers an external native library file, with name-duplicate
// checked against any existing DLL (internal or external).
func (r *Registry) AddNative(path string, existingInternalDLLNames map[string]bool) (string, xerr.Outcome) {
	abs, outcome := r.validateCandidate(path, false)
	if !outcome.OK {
		return "", outcome
	}
	if outcome = r.checkDuplicate(abs, r.doc.Natives, existingInternalDLLNames); !outcome.OK {
		return "", outcome
	}

	name := filepath.Base(abs)
	r.doc.Natives[name] = abs
	if err := r.Save(); err != nil {
		return "", xerr.Failf("saving registry: %v", err)
	}
	return name, xerr.Ok()
}

func (r *Registry) validateCandidate(path string, wantDir bool) (string, xerr.Outcome) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", xerr.Failf("resolving path: %v", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", xerr.Fail("path does not exist")
	}
	if wantDir && !info.IsDir() {
		return "", xerr.Fail("wrong type: expected a directory")
	}
	if !wantDir {
		if info.IsDir() || !strings.EqualFold(filepath.Ext(abs), ".dll") {
			return "", xerr.Fail("wrong type: expected a .dll file")
		}
	}

	if isInside(abs, r.internalDir) {
		return "", xerr.Fail("path is inside the internal mod directory")
	}

	return abs, xerr.Ok()
}

func (r *Registry) checkDuplicate(abs string, existing map[string]string, extraNames map[string]bool) xerr.Outcome {
	for _, p := range existing {
		if p == abs {
			return xerr.Fail("path-duplicate")
		}
	}
	name := filepath.Base(abs)
	for n := range existing {
		if n == name {
			return xerr.Fail("name-duplicate against existing DLL")
		}
	}
	if extraNames != nil && extraNames[name] {
		return xerr.Fail("name-duplicate against existing DLL")
	}
	return xerr.Ok()
}

// RemovePackage removes a registered external package by name.
func (r *Registry) RemovePackage(name string) xerr.Outcome {
	if _, ok := r.doc.Packages[name]; !ok {
		return xerr.Fail("no such external package")
	}
	delete(r.doc.Packages, name)
	delete(r.doc.PackageComments, name)
	if err := r.Save(); err != nil {
		return xerr.Failf("saving registry: %v", err)
	}
	return xerr.Ok()
}

// RemoveNative removes a registered external native library by name.
func (r *Registry) RemoveNative(name string) xerr.Outcome {
	if _, ok := r.doc.Natives[name]; !ok {
		return xerr.Fail("no such external native")
	}
	delete(r.doc.Natives, name)
	delete(r.doc.NativeComments, name)
	if err := r.Save(); err != nil {
		return xerr.Failf("saving registry: %v", err)
	}
	return xerr.Ok()
}

// SetComment sets a user comment for a package or native id, matching
// whichever mapping contains the id.
func (r *Registry) SetComment(id, text string) xerr.Outcome {
	switch {
	case hasKey(r.doc.Packages, id):
		r.doc.PackageComments[id] = text
	case hasKey(r.doc.Natives, id):
		r.doc.NativeComments[id] = text
	default:
		return xerr.Fail(fmt.Sprintf("no such external entry: %s", id))
	}
	if err := r.Save(); err != nil {
		return xerr.Failf("saving registry: %v", err)
	}
	return xerr.Ok()
}

func hasKey(m map[string]string, k string) bool {
	_, ok := m[k]
	return ok
}

// isInside reports whether candidate is inside or equal to dir.
func isInside(candidate, dir string) bool {
	rel, err := filepath.Rel(dir, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}
