package modconfig

import (
	"reflect"
	"strings"
	"testing"
)

func buildSampleModel() *Model {
	m := New()
	p1 := m.AddPackage("seamless-coop", "mods/seamless-coop", true)
	p1.LoadBefore = []Constraint{{TargetID: "elden-ring-reforged", Optional: true}}
	m.AddPackage("elden-ring-reforged", "mods/elden-ring-reforged", true)
	m.AddPackage("disabled-mod", "mods/disabled-mod", false)

	m.AddNative(`mods\dinput8.dll`, true)
	m.AddNative("nighter.dll", true)
	m.AddNative("nrsc.dll", true) // AddNative marks nrsc.dll LoadEarly by default
	return m
}

func TestWrite_RoundTrip(t *testing.T) {
	m := buildSampleModel()
	text := m.Write()

	got := Read(text)

	if len(got.Packages) != 2 {
		t.Fatalf("expected 2 enabled packages round-tripped, got %d", len(got.Packages))
	}
	if got.Packages[0].ID != "seamless-coop" || got.Packages[0].Source != "mods/seamless-coop" {
		t.Errorf("package 0 mismatch: %+v", got.Packages[0])
	}
	if !reflect.DeepEqual(got.Packages[0].LoadBefore, []Constraint{{TargetID: "elden-ring-reforged", Optional: true}}) {
		t.Errorf("package 0 LoadBefore mismatch: %+v", got.Packages[0].LoadBefore)
	}
	if got.Packages[1].ID != "elden-ring-reforged" {
		t.Errorf("package 1 mismatch: %+v", got.Packages[1])
	}

	if len(got.Natives) != 3 {
		t.Fatalf("expected 3 enabled natives round-tripped, got %d", len(got.Natives))
	}
	// Disabled packages/natives are never written, so they never round-trip —
	// that's the "modulo disabled entries" caveat Read documents.
	for _, p := range got.Packages {
		if p.ID == "disabled-mod" {
			t.Errorf("disabled package should not survive round-trip")
		}
	}
}

func TestWrite_EscapesBackslashes(t *testing.T) {
	m := New()
	n := m.AddNative(`mods\dinput8.dll`, true)
	n.LoadEarly = false
	text := m.Write()
	if !containsLine(text, `path = "mods\\dinput8.dll"`) {
		t.Errorf("expected doubled backslash in output, got:\n%s", text)
	}

	got := Read(text)
	if len(got.Natives) != 1 || got.Natives[0].Path != `mods\dinput8.dll` {
		t.Errorf("path did not round-trip through escape/unescape: %+v", got.Natives)
	}
}

func TestWrite_NighterPrecedesNrsc(t *testing.T) {
	m := New()
	// Add nrsc.dll first to prove Write reorders rather than preserving input order.
	m.AddNative("nrsc.dll", true)
	m.AddNative("nighter.dll", true)

	text := m.Write()
	nighterIdx := strings.Index(text, `path = "nighter.dll"`)
	nrscIdx := strings.Index(text, `path = "nrsc.dll"`)
	if nighterIdx < 0 || nrscIdx < 0 {
		t.Fatalf("expected both natives in output:\n%s", text)
	}
	if nighterIdx > nrscIdx {
		t.Errorf("expected nighter.dll block before nrsc.dll block, got nighter=%d nrsc=%d", nighterIdx, nrscIdx)
	}
}

func TestWrite_NighterGetsSyntheticLoadBefore(t *testing.T) {
	m := New()
	m.AddNative("nighter.dll", true)
	m.AddNative("nrsc.dll", true) // AddNative defaults LoadEarly=true, so no synthetic constraint expected

	text := m.Write()
	if containsLine(text, `load_before = [{id = "nrsc.dll", optional = false}]`) {
		t.Errorf("nrsc.dll is preloaded by default, so no synthetic load_before should be emitted:\n%s", text)
	}

	// Now force nrsc.dll to NOT be preloaded and confirm the synthetic
	// nighter->nrsc dependency appears.
	m2 := New()
	m2.AddNative("nighter.dll", true)
	nrsc := m2.AddNative("nrsc.dll", true)
	nrsc.LoadEarly = false

	text2 := m2.Write()
	if !containsLine(text2, `load_before = [{id = "nrsc.dll", optional = false}]`) {
		t.Errorf("expected synthetic nighter->nrsc load_before constraint:\n%s", text2)
	}
}

func TestWrite_IsPureAcrossRepeatCalls(t *testing.T) {
	// Regression test: Write used to mutate the shared *Native in place to
	// add the synthetic nighter->nrsc constraint, so a second call on the
	// same unchanged model produced a different (doubled-up) result.
	m := New()
	m.AddNative("nighter.dll", true)
	nrsc := m.AddNative("nrsc.dll", true)
	nrsc.LoadEarly = false

	first := m.Write()
	second := m.Write()
	third := m.Write()

	if first != second || second != third {
		t.Errorf("Write() is not pure across repeat calls:\n--- first ---\n%s\n--- second ---\n%s\n--- third ---\n%s", first, second, third)
	}
}

func TestWrite_DisabledEntriesOmitted(t *testing.T) {
	m := New()
	m.AddPackage("enabled-mod", "mods/enabled-mod", true)
	m.AddPackage("disabled-mod", "mods/disabled-mod", false)

	text := m.Write()
	if containsLine(text, `id = "disabled-mod"`) {
		t.Errorf("disabled package should not be written:\n%s", text)
	}
	if !containsLine(text, `id = "enabled-mod"`) {
		t.Errorf("enabled package should be written:\n%s", text)
	}
}

func containsLine(text, substr string) bool {
	return strings.Contains(text, substr)
}
