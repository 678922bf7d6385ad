// Package appsettings manages persistent user settings for the modkit CLI.
package appsettings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/modkit-dev/modkit/internal/xlog"
)

// Settings holds persistent user preferences for the CLI.
type Settings struct {
	// InstallRootOverride, if set, overrides path-resolver autodetection.
	InstallRootOverride string `json:"install_root_override,omitempty"`

	// LogLevel is the default logrus level applied at startup.
	LogLevel string `json:"log_level,omitempty"`

	// AuditLogPath overrides the default audit log location.
	AuditLogPath string `json:"audit_log_path,omitempty"`

	// AuditMaxSizeMB is the max audit log size in MB before rotation.
	AuditMaxSizeMB int `json:"audit_max_size_mb,omitempty"`

	// AuditMaxBackups is the max number of rotated audit log files kept.
	AuditMaxBackups int `json:"audit_max_backups,omitempty"`

	// GamePath is the resolved game executable path (spec §4.G step 1).
	GamePath string `json:"game_path,omitempty"`

	// GameBaseName is the expected basename of GamePath, checked at launch
	// time so a renamed or substituted executable is rejected.
	GameBaseName string `json:"game_base_name,omitempty"`

	// GameID is the loader's --game identifier for GamePath (spec §6 CLI
	// surface), e.g. "eldenring".
	GameID string `json:"game_id,omitempty"`

	// LoaderPath is the mod-loader executable path.
	LoaderPath string `json:"loader_path,omitempty"`

	// ConflictingExeNames lists process names best-effort killed before
	// launch (the game itself, the loader, and any helper process).
	ConflictingExeNames []string `json:"conflicting_exe_names,omitempty"`

	// LaunchParamTemplate is the optional template substituted with
	// %gameExe% / %essentialsConfig% before being appended to the loader
	// argument list.
	LaunchParamTemplate string `json:"launch_param_template,omitempty"`
}

const (
	// DefaultAuditMaxSizeMB is the default maximum audit log size in megabytes.
	DefaultAuditMaxSizeMB = 10
	// DefaultAuditMaxBackups is the default maximum number of rotated audit log files.
	DefaultAuditMaxBackups = 10
)

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "modkit_settings.json")
	}
	return filepath.Join(home, ".modkit", "settings.json")
}

// Load reads settings from the default location. A missing or corrupt file
// never fails the process: it logs a warning and returns defaults, matching
// the external-mod registry's tolerant-startup-load rule generalized to
// every JSON-backed store in this system (spec §4.D).
func Load() *Settings {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads settings from a specific path.
func LoadFrom(path string) *Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			xlog.WithField("path", path).WithField("error", err).Warn("appsettings: failed to read settings file, using defaults")
		}
		return &Settings{
			AuditMaxSizeMB:  DefaultAuditMaxSizeMB,
			AuditMaxBackups: DefaultAuditMaxBackups,
		}
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		xlog.WithField("path", path).WithField("error", err).Warn("appsettings: corrupt settings file, resetting to defaults")
		return &Settings{
			AuditMaxSizeMB:  DefaultAuditMaxSizeMB,
			AuditMaxBackups: DefaultAuditMaxBackups,
		}
	}
	if s.AuditMaxSizeMB == 0 {
		s.AuditMaxSizeMB = DefaultAuditMaxSizeMB
	}
	if s.AuditMaxBackups == 0 {
		s.AuditMaxBackups = DefaultAuditMaxBackups
	}
	return &s
}

// Save writes settings to the default location, full-file UTF-8 pretty-printed.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultPath())
}

// SaveTo writes settings to a specific path.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
