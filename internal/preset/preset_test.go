package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modkit-dev/modkit/internal/modconfig"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	// The preset lives in dir/presets/, mod files live in dir/, so Generate's
	// "../" prefixing must resolve back to dir when Parse is later run.
	presetsDir := filepath.Join(dir, "presets")
	if err := os.MkdirAll(presetsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "mods", "seamless-coop"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nighter.dll"), []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}

	model := modconfig.New()
	model.AddPackage("seamless-coop", "mods/seamless-coop", true)
	model.AddNative("nighter.dll", true)

	meta := Meta{Name: "Co-op Bundle", Description: "Seamless co-op plus launch natives", Icon: "coop.png"}
	destPath := filepath.Join(presetsDir, "coop-bundle.me3")

	if err := Generate(destPath, meta, model); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	p, err := Parse(destPath)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if p.Meta != meta {
		t.Errorf("meta mismatch: got %+v, want %+v", p.Meta, meta)
	}
	if len(p.Missing) != 0 {
		t.Errorf("expected all dependencies resolved, got missing: %+v", p.Missing)
	}
	if !p.Available {
		t.Errorf("expected preset to be available")
	}

	if len(p.Model.Packages) != 1 || p.Model.Packages[0].Source != "../mods/seamless-coop" {
		t.Fatalf("expected package source with ../ prefix, got: %+v", p.Model.Packages)
	}
	if len(p.Model.Natives) != 1 || p.Model.Natives[0].Path != "../nighter.dll" {
		t.Fatalf("expected native path with ../ prefix, got: %+v", p.Model.Natives)
	}
}

func TestGenerate_SkipsDisabledAndExternal(t *testing.T) {
	model := modconfig.New()
	model.AddPackage("enabled-mod", "mods/enabled-mod", true)
	model.AddPackage("disabled-mod", "mods/disabled-mod", false)
	ext := model.AddPackage("external-mod", "/abs/path/external-mod", true)
	ext.IsExternal = true

	out := withParentPrefix(model)
	if len(out.Packages) != 1 {
		t.Fatalf("expected only the single enabled, non-external package, got %+v", out.Packages)
	}
	if out.Packages[0].ID != "enabled-mod" || out.Packages[0].Source != "../mods/enabled-mod" {
		t.Errorf("unexpected package after withParentPrefix: %+v", out.Packages[0])
	}
}

func TestParse_ReportsMissingDependencies(t *testing.T) {
	dir := t.TempDir()
	destPath := filepath.Join(dir, "broken.me3")

	model := modconfig.New()
	model.AddPackage("ghost-mod", "mods/ghost-mod", true)
	model.AddNative("ghost.dll", true)

	if err := Generate(destPath, Meta{Name: "Broken"}, model); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	p, err := Parse(destPath)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Available {
		t.Errorf("expected preset to be unavailable when dependencies are missing")
	}
	if len(p.Missing) != 2 {
		t.Fatalf("expected 2 missing dependencies, got %+v", p.Missing)
	}
}

func TestScan_ListsOnlyPresetFiles(t *testing.T) {
	dir := t.TempDir()
	model := modconfig.New()
	model.AddPackage("enabled-mod", "mods/enabled-mod", true)

	if err := Generate(filepath.Join(dir, "one.me3"), Meta{Name: "One"}, model); err != nil {
		t.Fatal(err)
	}
	if err := Generate(filepath.Join(dir, "two.me3"), Meta{Name: "Two"}, model); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	presets, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}
}

func TestScan_MissingDirReturnsNoError(t *testing.T) {
	presets, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected nil error for missing dir, got %v", err)
	}
	if presets != nil {
		t.Errorf("expected nil presets, got %+v", presets)
	}
}
