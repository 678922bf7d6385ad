package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/jqfilter"
	"github.com/modkit-dev/modkit/internal/overlaysupervisor"
	"github.com/modkit-dev/modkit/internal/roomconfig"
	"github.com/modkit-dev/modkit/internal/roomregistry"
	"github.com/modkit-dev/modkit/internal/sharecode"
	"github.com/modkit-dev/modkit/internal/toolprovisioner"
)

var roomListQuery string

// Names of the overlay-daemon toolset, unpacked into the tools directory
// by the auxiliary archive provisioner (spec §4.B analogue for §4.I/J).
const (
	overlayDaemonExe    = "easytier-core.exe"
	overlayDaemonCLIExe = "easytier-cli.exe"
	overlayDriverDLL    = "wintun.dll"

	toolsArchiveName = "tools.zip"
)

// requiredOverlayTools lists every file ensureOverlayTools() must verify or
// re-extract before the overlay daemon can be spawned (spec §4.L).
var requiredOverlayTools = []string{overlayDaemonExe, overlayDaemonCLIExe, overlayDriverDLL}

// ensureOverlayTools verifies (or re-extracts from the bundled archive) the
// overlay daemon's auxiliary binaries before Start spawns them.
func ensureOverlayTools() error {
	p := toolprovisioner.New(app.resolver.ToolsDir(), filepath.Join(app.resolver.Root(), "_internal", toolsArchiveName), requiredOverlayTools)
	return p.EnsureAvailable()
}

var overlayRoomFlag string

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Start, stop, and inspect the overlay network daemon",
	Long: `Start, stop, and inspect the peer-to-peer overlay-network daemon
used for private online play, plus manage saved rooms (spec §4.I, §4.K).

Examples:
  modkit overlay start --room lan1
  modkit overlay status
  modkit overlay stop
  modkit overlay room create lan1 --secret s3cr3t
  modkit overlay room list
  modkit overlay room share lan1
  modkit overlay room join "modroom://..."`,
}

func overlaySupervisor() *overlaysupervisor.Supervisor {
	if app.overlay == nil {
		app.overlay = overlaysupervisor.New(app.overlayPaths(), overlaysupervisor.Events{
			NetworkStatusChanged: func(up bool) {
				fmt.Fprintf(os.Stderr, "overlay: network status changed: up=%v\n", up)
			},
		})
	}
	return app.overlay
}

var overlayStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the overlay daemon for a saved room",
	RunE: func(cmd *cobra.Command, args []string) error {
		if overlayRoomFlag == "" {
			return fmt.Errorf("--room is required")
		}
		if err := ensureOverlayTools(); err != nil {
			return fmt.Errorf("provisioning overlay tools: %w", err)
		}
		room, err := app.rooms.Load(overlayRoomFlag)
		if err != nil {
			return fmt.Errorf("loading room %q: %w", overlayRoomFlag, err)
		}
		outcome := overlaySupervisor().Start(room, "")
		app.logAudit("overlay-supervisor", "start", overlayRoomFlag, outcome.OK, outcome.Reason)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Println("overlay daemon starting")
		return nil
	},
}

var overlayStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the overlay daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome := overlaySupervisor().Stop()
		app.logAudit("overlay-supervisor", "stop", overlayRoomFlag, outcome.OK, outcome.Reason)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Println("overlay daemon stopped")
		return nil
	},
}

var overlayStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the overlay daemon's lifecycle state",
	RunE: func(cmd *cobra.Command, args []string) error {
		state := overlaySupervisor().State()
		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]string{"state": string(state)})
		}
		fmt.Println(state)
		return nil
	},
}

var overlayRoomCmd = &cobra.Command{
	Use:   "room",
	Short: "Manage saved overlay rooms",
}

var overlayRoomListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		rooms := app.rooms.List()
		if roomListQuery != "" {
			results, err := jqfilter.Apply(roomListQuery, rooms)
			if err != nil {
				return fmt.Errorf("applying --query: %w", err)
			}
			return json.NewEncoder(os.Stdout).Encode(results)
		}
		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(rooms)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NETWORK\tDHCP\tSTATIC IP\tPEERS")
		for _, r := range rooms {
			fmt.Fprintf(w, "%s\t%v\t%s\t%d\n", r.NetworkName, r.DHCP, dash(r.StaticIPv4), len(r.Peers))
		}
		w.Flush()
		return nil
	},
}

var (
	roomCreateSecret   string
	roomCreateStaticIP string
	roomCreateDisplay  string
)

var overlayRoomCreateCmd = &cobra.Command{
	Use:   "create <network-name>",
	Short: "Create and save a new room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := roomregistry.ValidateName(args[0]); err != nil {
			return err
		}
		room := roomconfig.Room{
			NetworkName:   args[0],
			NetworkSecret: roomCreateSecret,
			DisplayName:   roomCreateDisplay,
			DHCP:          roomCreateStaticIP == "",
			StaticIPv4:    roomCreateStaticIP,
			Flags:         roomconfig.DefaultAdvancedFlags(),
		}
		if err := app.rooms.Save(room); err != nil {
			app.logAudit("room-registry", "create", args[0], false, err.Error())
			return fmt.Errorf("saving room: %w", err)
		}
		app.logAudit("room-registry", "create", args[0], true, "")
		fmt.Printf("created room %q\n", room.NetworkName)
		return nil
	},
}

var overlayRoomDeleteCmd = &cobra.Command{
	Use:   "delete <network-name>",
	Short: "Delete a saved room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		running := overlaySupervisor().State() != overlaysupervisor.StateStopped
		isCurrent := overlayRoomFlag == args[0]
		_, outcome := app.rooms.Delete(args[0], isCurrent, running)
		app.logAudit("room-registry", "delete", args[0], outcome.OK, outcome.Reason)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Printf("deleted room %q\n", args[0])
		return nil
	},
}

var overlayRoomShareCmd = &cobra.Command{
	Use:   "share <network-name>",
	Short: "Print a compact share code for a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room, err := app.rooms.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading room: %w", err)
		}
		code, err := sharecode.Encode(room)
		if err != nil {
			return fmt.Errorf("encoding share code: %w", err)
		}
		fmt.Println(code)
		return nil
	},
}

var overlayRoomJoinCmd = &cobra.Command{
	Use:   "join <share-code>",
	Short: "Decode a share code and save it as a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room, err := sharecode.Decode(args[0])
		if err != nil {
			return fmt.Errorf("decoding share code: %w", err)
		}
		if err := app.rooms.Save(room); err != nil {
			app.logAudit("room-registry", "join", room.NetworkName, false, err.Error())
			return fmt.Errorf("saving room: %w", err)
		}
		app.logAudit("room-registry", "join", room.NetworkName, true, "")
		fmt.Printf("joined room %q\n", room.NetworkName)
		return nil
	},
}

func init() {
	overlayStartCmd.Flags().StringVar(&overlayRoomFlag, "room", "", "Network name of the room to start")
	overlayRoomListCmd.Flags().StringVar(&roomListQuery, "query", "", "Filter/reshape the listed rooms with a jq expression")

	overlayRoomCreateCmd.Flags().StringVar(&roomCreateSecret, "secret", "", "Network secret")
	overlayRoomCreateCmd.Flags().StringVar(&roomCreateStaticIP, "static-ip", "", "Static IPv4 address (omit for DHCP)")
	overlayRoomCreateCmd.Flags().StringVar(&roomCreateDisplay, "display-name", "", "Display name / hostname override")

	overlayRoomCmd.AddCommand(overlayRoomListCmd, overlayRoomCreateCmd, overlayRoomDeleteCmd, overlayRoomShareCmd, overlayRoomJoinCmd)
	overlayCmd.AddCommand(overlayStartCmd, overlayStopCmd, overlayStatusCmd, overlayRoomCmd)
}
