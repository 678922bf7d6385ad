// Package roomregistry persists overlay rooms as one JSON file per room,
// named "<network-name>.json" (spec §4.K). Grounded on
// pkg/newtlab/state.go's one-file-per-entity, load-all-and-skip-malformed
// directory walk.
package roomregistry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modkit-dev/modkit/internal/roomconfig"
	"github.com/modkit-dev/modkit/internal/xerr"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// reservedChars are OS-reserved filename characters rejected at
// create-time (spec §6 "Room file").
const reservedChars = `<>:"/\|?*`

// Registry manages the room files under a fixed sub-folder.
type Registry struct {
	dir string
}

// New constructs a Registry rooted at dir.
func New(dir string) *Registry {
	return &Registry{dir: dir}
}

// ValidateName rejects network names containing OS-reserved characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("roomregistry: network name must not be empty")
	}
	if strings.ContainsAny(name, reservedChars) {
		return fmt.Errorf("roomregistry: network name %q contains a reserved character", name)
	}
	return nil
}

func (r *Registry) pathFor(networkName string) string {
	return filepath.Join(r.dir, networkName+".json")
}

// Save writes room atomically by full rewrite (spec §4.K "Save-room
// writes atomically by full rewrite").
func (r *Registry) Save(room roomconfig.Room) error {
	if err := ValidateName(room.NetworkName); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("roomregistry: creating rooms directory: %w", err)
	}

	data, err := json.MarshalIndent(room, "", "  ")
	if err != nil {
		return fmt.Errorf("roomregistry: marshaling room: %w", err)
	}

	final := r.pathFor(room.NetworkName)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("roomregistry: writing room: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("roomregistry: finalizing room write: %w", err)
	}
	return nil
}

// Load reads one room by network name.
func (r *Registry) Load(networkName string) (roomconfig.Room, error) {
	data, err := os.ReadFile(r.pathFor(networkName))
	if err != nil {
		return roomconfig.Room{}, fmt.Errorf("roomregistry: room %q not found: %w", networkName, err)
	}
	var room roomconfig.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return roomconfig.Room{}, fmt.Errorf("roomregistry: parsing room %q: %w", networkName, err)
	}
	return room, nil
}

// List walks the folder and parses each room; malformed files are
// skipped with a log line (spec §4.K "List-rooms").
func (r *Registry) List() []roomconfig.Room {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil
	}

	var rooms []roomconfig.Room
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			xlog.WithField("file", e.Name()).WithField("error", err).Warn("roomregistry: skipping unreadable room file")
			continue
		}
		var room roomconfig.Room
		if err := json.Unmarshal(data, &room); err != nil {
			xlog.WithField("file", e.Name()).WithField("error", err).Warn("roomregistry: skipping malformed room file")
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms
}

// Delete removes a room. If networkName is the currently-loaded room and
// overlayRunning is true, the delete is refused; otherwise the caller is
// told whether to auto-load the first remaining room (spec §4.K
// "Deleting the currently-loaded room...").
func (r *Registry) Delete(networkName string, isCurrentlyLoaded, overlayRunning bool) (autoLoadNext string, outcome xerr.Outcome) {
	if isCurrentlyLoaded && overlayRunning {
		return "", xerr.Fail("cannot delete the active room while the overlay is running")
	}

	if err := os.Remove(r.pathFor(networkName)); err != nil {
		return "", xerr.Failf("deleting room: %v", err)
	}

	if !isCurrentlyLoaded {
		return "", xerr.Ok()
	}

	remaining := r.List()
	if len(remaining) == 0 {
		return "", xerr.Ok()
	}
	return remaining[0].NetworkName, xerr.Ok()
}
