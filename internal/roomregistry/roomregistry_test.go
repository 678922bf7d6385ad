package roomregistry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modkit-dev/modkit/internal/roomconfig"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reg := New(dir)

	room := roomconfig.Room{
		NetworkName:   "lan1",
		NetworkSecret: "sec",
		Flags:         roomconfig.DefaultAdvancedFlags(),
	}
	if err := reg.Save(room); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := reg.Load("lan1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.NetworkName != room.NetworkName || got.NetworkSecret != room.NetworkSecret {
		t.Errorf("Load() = %+v, want %+v", got, room)
	}

	if _, err := os.Stat(filepath.Join(dir, "lan1.json")); err != nil {
		t.Errorf("expected lan1.json to exist: %v", err)
	}
}

func TestList_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	reg := New(dir)

	if err := reg.Save(roomconfig.Room{NetworkName: "good", NetworkSecret: "s", Flags: roomconfig.DefaultAdvancedFlags()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing malformed file: %v", err)
	}

	rooms := reg.List()
	if len(rooms) != 1 || rooms[0].NetworkName != "good" {
		t.Errorf("List() = %+v, want only the well-formed room", rooms)
	}
}

func TestValidateName_RejectsReservedChars(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"lan1", false},
		{"my:lan", true},
		{"", true},
		{"a/b", true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestDelete_RefusesWhileOverlayRunningOnCurrentRoom(t *testing.T) {
	dir := t.TempDir()
	reg := New(dir)
	room := roomconfig.Room{NetworkName: "lan1", NetworkSecret: "s", Flags: roomconfig.DefaultAdvancedFlags()}
	if err := reg.Save(room); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, outcome := reg.Delete("lan1", true, true)
	if outcome.OK {
		t.Error("Delete() should refuse deleting the active room while overlay is running")
	}
	if _, err := reg.Load("lan1"); err != nil {
		t.Errorf("room should still exist after refused delete: %v", err)
	}
}

func TestDelete_AutoLoadsFirstRemainingRoom(t *testing.T) {
	dir := t.TempDir()
	reg := New(dir)
	if err := reg.Save(roomconfig.Room{NetworkName: "lan1", NetworkSecret: "s", Flags: roomconfig.DefaultAdvancedFlags()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := reg.Save(roomconfig.Room{NetworkName: "lan2", NetworkSecret: "s", Flags: roomconfig.DefaultAdvancedFlags()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	next, outcome := reg.Delete("lan1", true, false)
	if !outcome.OK {
		t.Fatalf("Delete() outcome = %+v, want OK", outcome)
	}
	if next != "lan2" {
		t.Errorf("Delete() autoLoadNext = %q, want lan2", next)
	}
}
