// modkit - Modded Game Launch & Overlay Network Orchestrator
//
// A CLI tool for composing a mod loadout, generating launch presets, and
// supervising the peer-to-peer overlay network used for private online
// play, with:
//   - Deterministic, round-trippable loader-profile generation
//   - Dry-run-free, always-commit mod/preset operations (writes are cheap
//     and local; there is no remote state to preview against)
//   - Elevated-process supervision for the overlay daemon and LAN-broadcast
//     helper, tracked by PID since they cannot be inherited as children
//   - Structured logging and persistent CLI settings
//
// Noun-group CLI Pattern:
//
//	modkit <noun> <action> [args] [flags]
//
// Examples:
//
//	modkit mods scan
//	modkit mods enable nrsc.dll
//	modkit external add-package ./MyModPackage
//	modkit preset generate --name "PvP Only" pvp.me3
//	modkit launch
//	modkit overlay start --room lan1
//	modkit overlay room create lan1 --secret s3cr3t
//	modkit optimize lan start
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/appsettings"
	"github.com/modkit-dev/modkit/internal/audit"
	"github.com/modkit-dev/modkit/internal/cliutil"
	"github.com/modkit-dev/modkit/internal/modregistry"
	"github.com/modkit-dev/modkit/internal/overlaysupervisor"
	"github.com/modkit-dev/modkit/internal/pathresolver"
	"github.com/modkit-dev/modkit/internal/roomregistry"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// App holds CLI state shared across all commands.
type App struct {
	// Option flags
	installRoot string
	jsonOutput  bool
	verbose     bool

	// Initialized state (set in PersistentPreRunE)
	settings *appsettings.Settings
	resolver *pathresolver.Resolver
	registry *modregistry.Registry
	rooms    *roomregistry.Registry
	overlay  *overlaysupervisor.Supervisor
	audit    *audit.Logger
}

// logAudit appends a best-effort audit event. A nil or failing logger never
// blocks the operation it's recording (the audit trail is observability,
// not a precondition).
func (a *App) logAudit(component, action, target string, success bool, reason string) {
	if a.audit == nil {
		return
	}
	_ = a.audit.Log(audit.Event{
		Component: component,
		Action:    action,
		Target:    target,
		Success:   success,
		Reason:    reason,
	})
}

// overlayPaths derives the overlaysupervisor.Paths from the resolved
// install root and persistent settings.
func (a *App) overlayPaths() overlaysupervisor.Paths {
	return overlaysupervisor.Paths{
		DaemonBinary: filepath.Join(a.resolver.ToolsDir(), overlayDaemonExe),
		DaemonCLI:    filepath.Join(a.resolver.ToolsDir(), overlayDaemonCLIExe),
		DriverDLL:    filepath.Join(a.resolver.ToolsDir(), overlayDriverDLL),
		ConfigPath:   a.resolver.OverlayDaemonConfigPath(),
		LogDir:       a.resolver.ESRDir(),
	}
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cliutil.Red(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "modkit",
	Short:             "Modded game launch & overlay network orchestrator",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `modkit composes a mod loadout, generates launch presets, and
supervises the peer-to-peer overlay network for private online play.

Commands are organized by resource (mods, external, preset, overlay,
optimize) plus a top-level launch shortcut.

  modkit <noun> <action> [args] [flags]

  modkit mods scan
  modkit preset generate --name "PvP Only" pvp.me3
  modkit launch
  modkit overlay start --room lan1
  modkit optimize lan start`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isSettingsOrHelp(cmd) {
			return nil
		}

		app.settings = appsettings.Load()
		if app.installRoot == "" {
			app.installRoot = app.settings.InstallRootOverride
		}
		if app.installRoot != "" {
			pathresolver.SetOverride(app.installRoot)
		}

		if app.verbose {
			_ = xlog.SetLevel("debug")
		} else if app.settings.LogLevel != "" {
			_ = xlog.SetLevel(app.settings.LogLevel)
		} else {
			_ = xlog.SetLevel("warn")
		}

		var err error
		app.resolver, err = pathresolver.New()
		if err != nil {
			return fmt.Errorf("resolving install root: %w", err)
		}

		app.registry = modregistry.Load(app.resolver.ExternalRegistryPath(), app.resolver.ModsDir())
		app.rooms = roomregistry.New(app.resolver.RoomsDir())

		auditPath := app.settings.AuditLogPath
		if auditPath == "" {
			auditPath = filepath.Join(app.resolver.Root(), "_internal", "audit.log")
		}
		logger, auditErr := audit.NewLogger(auditPath, audit.RotationConfig{
			MaxSizeMB:  app.settings.AuditMaxSizeMB,
			MaxBackups: app.settings.AuditMaxBackups,
		})
		if auditErr != nil {
			xlog.WithField("error", auditErr).Warn("main: could not initialize audit logging")
		} else {
			app.audit = logger
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&app.installRoot, "install-root", "", "Override the detected installation root")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVar(&app.jsonOutput, "json", false, "JSON output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "mods", Title: "Mod Loadout:"},
		&cobra.Group{ID: "network", Title: "Overlay Network:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{modsCmd, externalCmd, presetCmd, launchCmd} {
		cmd.GroupID = "mods"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{overlayCmd, optimizeCmd} {
		cmd.GroupID = "network"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, versionCmd, auditCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("modkit dev build")
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show persistent CLI settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := appsettings.Load()
		fmt.Printf("install_root_override: %s\n", dash(s.InstallRootOverride))
		fmt.Printf("log_level:              %s\n", dash(s.LogLevel))
		fmt.Printf("audit_log_path:         %s\n", dash(s.AuditLogPath))
		return nil
	},
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help,
// or version command that shouldn't trigger full initialization.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// dash returns s if non-empty, otherwise "-".
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printJSONOrTable(asJSON bool, jsonFn func() error, tableFn func()) error {
	if asJSON {
		return jsonFn()
	}
	tableFn()
	return nil
}
