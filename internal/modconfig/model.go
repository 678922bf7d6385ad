// Package modconfig holds the current mod selection and ordering
// constraints and writes the deterministic loader-profile file, per spec
// §4.E and the grammar in spec §6.
package modconfig

import "strings"

// Constraint is a single "load after/before target" ordering constraint
// (spec §3: "this package must load after the target").
type Constraint struct {
	TargetID string
	Optional bool
}

// Package is one mod package entry.
type Package struct {
	ID         string
	Source     string // relative for internal, absolute for external
	Enabled    bool
	IsExternal bool
	LoadAfter  []Constraint
	LoadBefore []Constraint
}

// Native is one native-library entry.
type Native struct {
	Path        string // file path; absolute for external
	Enabled     bool
	IsExternal  bool
	Optional    bool
	Initializer string
	Finalizer   string
	LoadAfter   []Constraint
	LoadBefore  []Constraint

	// LoadEarly marks this entry for preload (spec §6 "nrsc preload
	// rule"). AddNative sets this to true automatically when the
	// filename is nrsc.dll; callers may clear it explicitly.
	LoadEarly bool
}

// Model holds the ordered package and native lists for one profile.
type Model struct {
	Packages []*Package
	Natives  []*Native
}

// New returns an empty Model.
func New() *Model { return &Model{} }

// AddPackage appends a package entry, stripping any "(external)" UI suffix
// from id before storing.
func (m *Model) AddPackage(id, source string, enabled bool) *Package {
	p := &Package{ID: stripExternalSuffix(id), Source: source, Enabled: enabled}
	m.Packages = append(m.Packages, p)
	return p
}

// RemovePackage removes the package matching id (suffix-stripped).
func (m *Model) RemovePackage(id string) bool {
	id = stripExternalSuffix(id)
	for i, p := range m.Packages {
		if p.ID == id {
			m.Packages = append(m.Packages[:i], m.Packages[i+1:]...)
			return true
		}
	}
	return false
}

// TogglePackage flips the enabled flag of the package matching id
// (suffix-stripped).
func (m *Model) TogglePackage(id string) bool {
	id = stripExternalSuffix(id)
	for _, p := range m.Packages {
		if p.ID == id {
			p.Enabled = !p.Enabled
			return true
		}
	}
	return false
}

// AddNative appends a native entry. If path's filename is nrsc.dll, it is
// marked for preload by default (spec §6 "nrsc preload rule").
func (m *Model) AddNative(path string, enabled bool) *Native {
	n := &Native{Path: path, Enabled: enabled}
	if strings.EqualFold(filenameOf(path), "nrsc.dll") {
		n.LoadEarly = true
	}
	m.Natives = append(m.Natives, n)
	return n
}

// findNative resolves a native by order-sensitive matching: exact path,
// then stripped-suffix equivalence, then suffix-match on trailing filename
// (spec §4.E).
func (m *Model) findNative(path string) *Native {
	for _, n := range m.Natives {
		if n.Path == path {
			return n
		}
	}
	stripped := stripExternalSuffix(path)
	for _, n := range m.Natives {
		if stripExternalSuffix(n.Path) == stripped {
			return n
		}
	}
	for _, n := range m.Natives {
		if strings.HasSuffix(n.Path, filenameOf(path)) {
			return n
		}
	}
	return nil
}

// RemoveNative removes the first native matching path per findNative's
// matching rules.
func (m *Model) RemoveNative(path string) bool {
	n := m.findNative(path)
	if n == nil {
		return false
	}
	for i, cur := range m.Natives {
		if cur == n {
			m.Natives = append(m.Natives[:i], m.Natives[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleNative flips the enabled flag of the native matching path.
func (m *Model) ToggleNative(path string) bool {
	n := m.findNative(path)
	if n == nil {
		return false
	}
	n.Enabled = !n.Enabled
	return true
}

// SetForceLoadLast rewrites the target package's LoadAfter to list every
// other currently-enabled package as an optional dependency (spec §4.E).
func (m *Model) SetForceLoadLast(id string) bool {
	id = stripExternalSuffix(id)
	target := m.packageByID(id)
	if target == nil {
		return false
	}
	var after []Constraint
	for _, p := range m.Packages {
		if p.ID == id || !p.Enabled {
			continue
		}
		after = append(after, Constraint{TargetID: p.ID, Optional: true})
	}
	target.LoadAfter = after
	return true
}

// ClearForceLoadLast clears the target package's LoadAfter field.
func (m *Model) ClearForceLoadLast(id string) bool {
	id = stripExternalSuffix(id)
	target := m.packageByID(id)
	if target == nil {
		return false
	}
	target.LoadAfter = nil
	return true
}

// IsForceLoadLast reports whether the current LoadAfter set is a superset
// of every other enabled package id.
func (m *Model) IsForceLoadLast(id string) bool {
	id = stripExternalSuffix(id)
	target := m.packageByID(id)
	if target == nil {
		return false
	}
	have := make(map[string]bool, len(target.LoadAfter))
	for _, c := range target.LoadAfter {
		have[c.TargetID] = true
	}
	for _, p := range m.Packages {
		if p.ID == id || !p.Enabled {
			continue
		}
		if !have[p.ID] {
			return false
		}
	}
	return true
}

// SetForceLoadFirst writes LoadBefore against every other enabled native
// (the native-side analogue of SetForceLoadLast, spec §4.E).
func (m *Model) SetForceLoadFirst(path string) bool {
	target := m.findNative(path)
	if target == nil {
		return false
	}
	var before []Constraint
	for _, n := range m.Natives {
		if n == target || !n.Enabled {
			continue
		}
		before = append(before, Constraint{TargetID: n.Path, Optional: true})
	}
	target.LoadBefore = before
	return true
}

func (m *Model) packageByID(id string) *Package {
	for _, p := range m.Packages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func stripExternalSuffix(id string) string {
	return strings.TrimSuffix(id, " (external)")
}

func filenameOf(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
