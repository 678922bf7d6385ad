package modconfig

import (
	"path/filepath"
	"sort"
	"strings"
)

const (
	nighterDLL = "nighter.dll"
	nrscDLL    = "nrsc.dll"
)

// Write produces the textual profile described in spec §6: a pure function
// of Model state. Grounded on the teacher's deterministic strings.Builder
// emission in pkg/network/changeset.go (ChangeSet.String/Preview), which
// accumulates output in a fixed field order rather than relying on a
// generic marshaler.
func (m *Model) Write() string {
	var b strings.Builder
	b.WriteString("profileVersion = \"v1\"\n\n")

	for _, p := range m.Packages {
		if !p.Enabled {
			continue
		}
		writePackage(&b, p)
	}

	enabled, nighter, extra := orderedEnabledNatives(m.Natives)
	for _, n := range enabled {
		loadBefore := n.LoadBefore
		if n == nighter && extra != nil {
			loadBefore = append(cloneConstraints(n.LoadBefore), *extra)
		}
		writeNative(&b, n, loadBefore)
	}

	return b.String()
}

func writePackage(b *strings.Builder, p *Package) {
	b.WriteString("[[packages]]\n")
	b.WriteString("id = \"" + p.ID + "\"\n")
	b.WriteString("source = \"" + escapePath(p.Source) + "\"\n")
	writeConstraintLine(b, "load_after", p.LoadAfter)
	writeConstraintLine(b, "load_before", p.LoadBefore)
	b.WriteString("\n")
}

// writeNative emits one [[natives]] block. loadBefore is passed in rather
// than read from n.LoadBefore so the nighter->nrsc synthetic dependency
// (see orderedEnabledNatives) can be applied purely for emission, without
// writing back into the shared Native the model owns.
func writeNative(b *strings.Builder, n *Native, loadBefore []Constraint) {
	b.WriteString("[[natives]]\n")
	b.WriteString("path = \"" + escapePath(n.Path) + "\"\n")

	if isPreload(n) {
		b.WriteString("load_early = true\n")
	}
	if n.Optional {
		b.WriteString("optional = true\n")
	}
	if n.Initializer != "" {
		b.WriteString("initializer = \"" + n.Initializer + "\"\n")
	}
	if n.Finalizer != "" {
		b.WriteString("finalizer = \"" + n.Finalizer + "\"\n")
	}
	writeConstraintLine(b, "load_after", n.LoadAfter)
	writeConstraintLine(b, "load_before", loadBefore)
	b.WriteString("\n")
}

func writeConstraintLine(b *strings.Builder, key string, constraints []Constraint) {
	if len(constraints) == 0 {
		return
	}
	b.WriteString(key + " = [")
	for i, c := range constraints {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("{id = \"" + c.TargetID + "\", optional = " + boolStr(c.Optional) + "}")
	}
	b.WriteString("]\n")
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// escapePath doubles every backslash in the source/path field (spec §6).
func escapePath(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

// isPreload reports whether n is an nrsc.dll entry marked for early
// preload. Modeled as an explicit flag on Native (defaulted true by
// AddNative whenever the filename is nrsc.dll) rather than an
// unconditional filename check, so presets and the model can still
// distinguish "present but not preloaded" from "preloaded" as required by
// the nighter/nrsc ordering rule in spec §6.
func isPreload(n *Native) bool {
	return strings.EqualFold(filepath.Base(n.Path), nrscDLL) && n.LoadEarly
}

// orderedEnabledNatives returns the enabled natives pre-sorted so that any
// nighter.dll entry precedes any nrsc.dll entry, preserving relative order
// otherwise (spec §6: "nighter/nrsc ordering (implicit)"). It also reports
// which entry (if any) is the nighter.dll entry and the synthetic
// load_before constraint that must be layered onto it at emission time
// (nighter->nrsc), without ever writing back into the shared *Native the
// caller iterates — Write must stay a pure function of Model state across
// repeat calls.
func orderedEnabledNatives(natives []*Native) (enabled []*Native, nighter *Native, extra *Constraint) {
	for _, n := range natives {
		if n.Enabled {
			enabled = append(enabled, n)
		}
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return rankOf(enabled[i]) < rankOf(enabled[j])
	})

	var nrsc *Native
	for _, n := range enabled {
		base := strings.ToLower(filepath.Base(n.Path))
		switch base {
		case nighterDLL:
			nighter = n
		case nrscDLL:
			nrsc = n
		}
	}

	if nighter != nil && nrsc != nil && !isPreload(nrsc) {
		extra = &Constraint{TargetID: nrscDLL, Optional: false}
	}

	return enabled, nighter, extra
}

func cloneConstraints(cs []Constraint) []Constraint {
	out := make([]Constraint, len(cs))
	copy(out, cs)
	return out
}

// rankOf orders nighter.dll ahead of nrsc.dll; all other entries keep their
// relative (stable-sort) position.
func rankOf(n *Native) int {
	base := strings.ToLower(filepath.Base(n.Path))
	if base == nighterDLL {
		return 0
	}
	if base == nrscDLL {
		return 1
	}
	return 0
}
