package modconfig

import (
	"regexp"
	"strings"
)

var (
	kvRe         = regexp.MustCompile(`^(\w+)\s*=\s*(.*)$`)
	constraintRe = regexp.MustCompile(`\{id\s*=\s*"([^"]*)",\s*optional\s*=\s*(true|false)\}`)
)

// Read parses the loader-profile text grammar (spec §6) into a Model. This
// is the strict reader used by the round-trip property (spec §8.1): every
// entry it parses came from an enabled (written) entry, so reading back a
// written profile reconstructs the model modulo disabled entries, which are
// never written in the first place.
func Read(text string) *Model {
	m := New()

	lines := strings.Split(text, "\n")
	var cur *Package
	var curNative *Native
	section := ""

	flush := func() {
		if cur != nil {
			cur.Enabled = true
			m.Packages = append(m.Packages, cur)
			cur = nil
		}
		if curNative != nil {
			curNative.Enabled = true
			m.Natives = append(m.Natives, curNative)
			curNative = nil
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if line == "[[packages]]" {
			flush()
			section = "packages"
			cur = &Package{}
			continue
		}
		if line == "[[natives]]" {
			flush()
			section = "natives"
			curNative = &Native{}
			continue
		}
		if line == `profileVersion = "v1"` {
			continue
		}

		match := kvRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		key, val := match[1], match[2]

		switch section {
		case "packages":
			applyPackageField(cur, key, val)
		case "natives":
			applyNativeField(curNative, key, val)
		}
	}
	flush()

	return m
}

func applyPackageField(p *Package, key, val string) {
	switch key {
	case "id":
		p.ID = unquote(val)
	case "source":
		p.Source = unescapePath(unquote(val))
	case "load_after":
		p.LoadAfter = parseConstraints(val)
	case "load_before":
		p.LoadBefore = parseConstraints(val)
	}
}

func applyNativeField(n *Native, key, val string) {
	switch key {
	case "path":
		n.Path = unescapePath(unquote(val))
	case "optional":
		n.Optional = val == "true"
	case "initializer":
		n.Initializer = unquote(val)
	case "finalizer":
		n.Finalizer = unquote(val)
	case "load_early":
		n.LoadEarly = val == "true"
	case "load_after":
		n.LoadAfter = parseConstraints(val)
	case "load_before":
		n.LoadBefore = parseConstraints(val)
	}
}

func parseConstraints(val string) []Constraint {
	matches := constraintRe.FindAllStringSubmatch(val, -1)
	if matches == nil {
		return nil
	}
	out := make([]Constraint, 0, len(matches))
	for _, mm := range matches {
		out = append(out, Constraint{TargetID: mm[1], Optional: mm[2] == "true"})
	}
	return out
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func unescapePath(s string) string {
	return strings.ReplaceAll(s, `\\`, `\`)
}
