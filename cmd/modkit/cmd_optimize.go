package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/netoptimizer"
	"github.com/modkit-dev/modkit/internal/toolprovisioner"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Toggle the LAN-broadcast helper and NIC-metric adjustment",
	Long: `Independently toggle the two network optimizations of spec §4.J:
the LAN-broadcast relay helper and the overlay adapter's routing metric.

Examples:
  modkit optimize lan start
  modkit optimize lan stop
  modkit optimize metric start
  modkit optimize metric stop
  modkit optimize status`,
}

// toggleState is the CLI's own small persisted record of which toggles are
// enabled, since netoptimizer.Optimizer itself is stateless between process
// invocations (spec §4.J "Status object" is reconstructed from this plus a
// live LANBroadcast.Status() probe).
type toggleState struct {
	NICMetricOptimized bool `json:"nic_metric_optimized"`
}

func loadToggleState() toggleState {
	data, err := os.ReadFile(app.resolver.NetworkOptimizationPath())
	if err != nil {
		return toggleState{}
	}
	var s toggleState
	_ = json.Unmarshal(data, &s)
	return s
}

func saveToggleState(s toggleState) error {
	path := app.resolver.NetworkOptimizationPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func optimizer() *netoptimizer.Optimizer {
	return netoptimizer.New(filepath.Join(app.resolver.ToolsDir(), lanBroadcastBinaryName))
}

const lanBroadcastBinaryName = "WinIPBroadcast.exe"

// ensureLANBroadcastTool verifies (or re-extracts) the bundled
// LAN-broadcast helper before it is spawned.
func ensureLANBroadcastTool() error {
	p := toolprovisioner.New(app.resolver.ToolsDir(), filepath.Join(app.resolver.Root(), "_internal", toolsArchiveName), []string{lanBroadcastBinaryName})
	return p.EnsureAvailable()
}

var optimizeLANCmd = &cobra.Command{
	Use:   "lan",
	Short: "Control the LAN-broadcast helper",
}

var optimizeLANStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the LAN-broadcast helper",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureLANBroadcastTool(); err != nil {
			return fmt.Errorf("provisioning LAN broadcast helper: %w", err)
		}
		if err := optimizer().EnableLANBroadcast(); err != nil {
			return fmt.Errorf("starting LAN broadcast helper: %w", err)
		}
		fmt.Println("LAN-broadcast helper started")
		return nil
	},
}

var optimizeLANStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the LAN-broadcast helper",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := optimizer().DisableLANBroadcast(); err != nil {
			return fmt.Errorf("stopping LAN broadcast helper: %w", err)
		}
		fmt.Println("LAN-broadcast helper stopped")
		return nil
	},
}

var optimizeMetricCmd = &cobra.Command{
	Use:   "metric",
	Short: "Control the overlay adapter's routing metric",
}

var optimizeMetricStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Optimize the overlay adapter's routing metric",
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := optimizer().EnableNICMetric()
		if err != nil {
			return fmt.Errorf("optimizing NIC metric: %w", err)
		}
		state := loadToggleState()
		state.NICMetricOptimized = true
		if err := saveToggleState(state); err != nil {
			return fmt.Errorf("saving toggle state: %w", err)
		}
		fmt.Printf("adapter %q: metric %d -> %d\n", outcome.Name, outcome.Original, outcome.Current)
		return nil
	},
}

var optimizeMetricStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Roll back any adjusted NIC metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		outcomes := optimizer().DisableNICMetric()
		state := loadToggleState()
		state.NICMetricOptimized = false
		if err := saveToggleState(state); err != nil {
			return fmt.Errorf("saving toggle state: %w", err)
		}
		for _, o := range outcomes {
			fmt.Printf("adapter %q: metric rolled back to %d\n", o.Name, o.Original)
		}
		return nil
	},
}

var optimizeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the combined optimization status",
	RunE: func(cmd *cobra.Command, args []string) error {
		state := loadToggleState()
		summary := optimizer().Summary(state.NICMetricOptimized)
		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(summary)
		}
		fmt.Printf("lan_broadcast: %v\n", summary.WinIPBroadcast)
		fmt.Printf("nic_metric_optimized: %v\n", summary.NICMetricOptimized)
		return nil
	},
}

func init() {
	optimizeLANCmd.AddCommand(optimizeLANStartCmd, optimizeLANStopCmd)
	optimizeMetricCmd.AddCommand(optimizeMetricStartCmd, optimizeMetricStopCmd)
	optimizeCmd.AddCommand(optimizeLANCmd, optimizeMetricCmd, optimizeStatusCmd)
}
