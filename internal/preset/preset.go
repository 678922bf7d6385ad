// Package preset parses and generates self-describing preset files in the
// loader-profile format with an embedded metadata prelude, per spec §4.F.
package preset

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/modkit-dev/modkit/internal/modconfig"
)

var metaLineRe = regexp.MustCompile(`^#\s*(\w+)\s*:\s*(.*)$`)

// Meta is the metadata prelude parsed from the preset's header comments.
type Meta struct {
	Name        string
	Description string
	Icon        string
}

// Missing describes one dependency a preset references that could not be
// resolved on disk.
type Missing struct {
	Kind string // "package" or "native"
	Name string
}

// Preset is one scanned preset file.
type Preset struct {
	Meta      Meta
	Path      string
	Model     *modconfig.Model
	Missing   []Missing
	Available bool
}

// Scan lists every preset file (".me3") in presetsDir, parsing metadata and
// resolving dependencies relative to presetsDir.
func Scan(presetsDir string) ([]*Preset, error) {
	entries, err := os.ReadDir(presetsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var presets []*Preset
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".me3") {
			continue
		}
		path := filepath.Join(presetsDir, de.Name())
		p, err := Parse(path)
		if err != nil {
			continue
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// Parse reads and parses a single preset file, resolving its dependencies
// relative to its own directory.
func Parse(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)

	meta := parseMeta(text)
	model := modconfig.Read(text)

	p := &Preset{Meta: meta, Path: path, Model: model}
	p.Missing = resolveMissing(model, filepath.Dir(path))
	p.Available = len(p.Missing) == 0
	return p, nil
}

func parseMeta(text string) Meta {
	var meta Meta
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			// Metadata prelude ends at the first non-comment line.
			break
		}
		match := metaLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		switch strings.ToLower(match[1]) {
		case "name":
			meta.Name = match[2]
		case "description":
			meta.Description = match[2]
		case "icon":
			meta.Icon = match[2]
		}
	}
	return meta
}

// resolveMissing checks every source/path string in the parsed model
// against presetDir, reporting basenames of anything not found.
func resolveMissing(m *modconfig.Model, presetDir string) []Missing {
	var missing []Missing
	for _, p := range m.Packages {
		resolved := filepath.Join(presetDir, p.Source)
		if _, err := os.Stat(resolved); err != nil {
			missing = append(missing, Missing{Kind: "package", Name: filepath.Base(p.Source)})
		}
	}
	for _, n := range m.Natives {
		resolved := filepath.Join(presetDir, n.Path)
		if _, err := os.Stat(resolved); err != nil {
			missing = append(missing, Missing{Kind: "native", Name: filepath.Base(n.Path)})
		}
	}
	return missing
}

// Generate writes a preset file at destPath from model, with a metadata
// prelude, using the identical body format as modconfig.Write. Internal
// mod references get a single "../" prefix so the preset remains portable
// between the preset folder and the profile folder (spec §4.F, §9).
func Generate(destPath string, meta Meta, model *modconfig.Model) error {
	var b strings.Builder
	writeMetaLine(&b, "name", meta.Name)
	writeMetaLine(&b, "description", meta.Description)
	writeMetaLine(&b, "icon", meta.Icon)
	b.WriteString("\n")

	relModel := withParentPrefix(model)
	b.WriteString(relModel.Write())

	return os.WriteFile(destPath, []byte(b.String()), 0o644)
}

func writeMetaLine(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString("# " + key + ": " + value + "\n")
}

// withParentPrefix returns a shallow copy of model where every internal
// (non-external) package/native path is prefixed with "../", per spec §9:
// "The generator always uses a single ../ prefix even when the scan walked
// through symbolic links." External mods never appear in presets (spec §3
// invariant), so they are skipped entirely.
func withParentPrefix(model *modconfig.Model) *modconfig.Model {
	out := modconfig.New()
	for _, p := range model.Packages {
		if p.IsExternal || !p.Enabled {
			continue
		}
		cp := *p
		cp.Source = "../" + p.Source
		out.Packages = append(out.Packages, &cp)
	}
	for _, n := range model.Natives {
		if n.IsExternal || !n.Enabled {
			continue
		}
		cn := *n
		cn.Path = "../" + n.Path
		out.Natives = append(out.Natives, &cn)
	}
	return out
}
